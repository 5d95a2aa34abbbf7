// Package state holds the single app-state container: the project set and
// the append-only session log, backed by the local store. It is constructed
// once at startup and injected into everything that needs it. All methods
// are safe for concurrent use; the event loop, the timer's ticker and the
// sync commands all touch the same container.
package state

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sadopc/tempo/internal/model"
	"github.com/sadopc/tempo/internal/store"
)

type State struct {
	store *store.Store

	mu       sync.RWMutex
	projects []model.Project
	sessions []model.Session
}

// Load builds the container from whatever the store has. Missing or
// unreadable keys leave the corresponding slice empty.
func Load(s *store.Store) *State {
	st := &State{store: s}
	s.Load(store.KeyProjects, &st.projects)
	s.Load(store.KeySessions, &st.sessions)
	return st
}

// AddProject creates a project with a fresh id.
func (st *State) AddProject(name, color string) (model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Project{}, fmt.Errorf("project name must not be empty")
	}
	p := model.Project{ID: model.NewID(), Name: name, Color: color}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.projects = append(st.projects, p)
	st.saveProjectsLocked()
	return p, nil
}

// UpdateProject overwrites name and color of an existing project.
func (st *State) UpdateProject(id, name, color string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i := range st.projects {
		if st.projects[i].ID == id {
			st.projects[i].Name = name
			st.projects[i].Color = color
			st.saveProjectsLocked()
			return nil
		}
	}
	return fmt.Errorf("project %q not found", id)
}

// DeleteProject removes a project and cascades to every session that
// references it.
func (st *State) DeleteProject(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	kept := st.projects[:0]
	for _, p := range st.projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	st.projects = kept

	sessions := st.sessions[:0]
	for _, s := range st.sessions {
		if s.ProjectID != id {
			sessions = append(sessions, s)
		}
	}
	st.sessions = sessions

	st.saveProjectsLocked()
	st.saveSessionsLocked()
}

// ProjectByID returns the project with the given id, if present.
func (st *State) ProjectByID(id string) (model.Project, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, p := range st.projects {
		if p.ID == id {
			return p, true
		}
	}
	return model.Project{}, false
}

// HasSession reports whether a session with the given id exists.
func (st *State) HasSession(id string) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.hasSessionLocked(id)
}

func (st *State) hasSessionLocked(id string) bool {
	for _, s := range st.sessions {
		if s.ID == id {
			return true
		}
	}
	return false
}

// AddSession appends a completed session and persists the log. Sessions are
// immutable once recorded; there is no update path.
func (st *State) AddSession(s model.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions = append(st.sessions, s)
	st.saveSessionsLocked()
}

// AppendSession appends without persisting; callers batch a SaveSessions.
func (st *State) AppendSession(s model.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions = append(st.sessions, s)
}

// AppendSessionIfNew appends the session unless its id is already on the
// log, without persisting. The check and the append happen under one lock,
// so two merges of the same document can never double-append. Reports
// whether the session was added.
func (st *State) AppendSessionIfNew(s model.Session) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.hasSessionLocked(s.ID) {
		return false
	}
	st.sessions = append(st.sessions, s)
	return true
}

// UpsertProject inserts the project, or overwrites name/color when the id is
// already known and either differs. Reports whether anything changed. The
// reserved break id is never admitted to the project set.
func (st *State) UpsertProject(p model.Project) bool {
	if p.ID == model.BreakProject {
		return false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	for i := range st.projects {
		if st.projects[i].ID != p.ID {
			continue
		}
		if st.projects[i].Name == p.Name && st.projects[i].Color == p.Color {
			return false
		}
		st.projects[i] = p
		return true
	}
	st.projects = append(st.projects, p)
	return true
}

// ProjectList returns a snapshot copy of the project set.
func (st *State) ProjectList() []model.Project {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]model.Project(nil), st.projects...)
}

// SessionList returns a snapshot copy of the session log.
func (st *State) SessionList() []model.Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]model.Session(nil), st.sessions...)
}

// SessionCount returns the length of the session log.
func (st *State) SessionCount() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// SessionsOn returns the sessions filed under the given calendar date.
func (st *State) SessionsOn(date string) []model.Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	var out []model.Session
	for _, s := range st.sessions {
		if s.Date == date {
			out = append(out, s)
		}
	}
	return out
}

// SaveProjects persists the project set.
func (st *State) SaveProjects() {
	st.mu.RLock()
	defer st.mu.RUnlock()
	st.saveProjectsLocked()
}

// SaveSessions persists the session log.
func (st *State) SaveSessions() {
	st.mu.RLock()
	defer st.mu.RUnlock()
	st.saveSessionsLocked()
}

func (st *State) saveProjectsLocked() { st.store.Save(store.KeyProjects, st.projects) }
func (st *State) saveSessionsLocked() { st.store.Save(store.KeySessions, st.sessions) }
