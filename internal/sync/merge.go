package sync

import "github.com/sadopc/tempo/internal/model"

// LocalState is the slice of app state the merge needs. Satisfied by
// *state.State.
type LocalState interface {
	ProjectList() []model.Project
	SessionsOn(date string) []model.Session
	AppendSessionIfNew(s model.Session) bool
	UpsertProject(p model.Project) bool
	SaveProjects()
	SaveSessions()
}

// Merge reconciles a remote day document into local state, keyed entirely by
// identity. Remote wins on project conflicts (whole-entry overwrite);
// sessions are append-only and never updated or removed, so presence by id
// is the complete reconciliation rule. Merging the same document twice is a
// no-op the second time. Reports whether anything changed.
func Merge(st LocalState, remote *model.DayDocument) bool {
	projectsChanged := false
	for _, p := range remote.Projects {
		if st.UpsertProject(p) {
			projectsChanged = true
		}
	}

	sessionsChanged := false
	for _, s := range remote.Sessions {
		if st.AppendSessionIfNew(s) {
			sessionsChanged = true
		}
	}

	if projectsChanged {
		st.SaveProjects()
	}
	if sessionsChanged {
		st.SaveSessions()
	}
	return projectsChanged || sessionsChanged
}
