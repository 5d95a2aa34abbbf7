package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BreakProject is the reserved pseudo-project id used for break sessions.
// No Project entity ever carries this id.
const BreakProject = "break"

// SessionType classifies a completed timer run.
type SessionType int

const (
	TypeWork SessionType = iota
	TypeBreak
	TypePomodoro
)

var typeNames = map[SessionType]string{
	TypeWork:     "work",
	TypeBreak:    "break",
	TypePomodoro: "pomodoro",
}

func (t SessionType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "work"
}

func (t SessionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *SessionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for k, v := range typeNames {
		if v == s {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown session type %q", s)
}

// Project is a user-defined tracking target.
type Project struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Session is one completed, immutable timer run. Duration is the
// authoritative value; it is never re-derived from the timestamps.
// Date is assigned from the local clock at stop time, so a run that
// crosses midnight is filed under the day it was stopped.
type Session struct {
	ID        string      `json:"id"`
	ProjectID string      `json:"projectId"`
	StartTime time.Time   `json:"startTime"`
	EndTime   time.Time   `json:"endTime"`
	Duration  int         `json:"duration"` // seconds
	Date      string      `json:"date"`     // YYYY-MM-DD
	Type      SessionType `json:"type"`
}

// DayDocument is the remote store's one-document-per-day record.
type DayDocument struct {
	Date     string    `json:"date"`
	Sessions []Session `json:"sessions"`
	Projects []Project `json:"projects"`
	SyncedAt time.Time `json:"syncedAt"`
}

// Settings are the user-tunable knobs, persisted as one blob in the local
// store. AI credentials are not here; they live in the secrets table.
type Settings struct {
	MinSessionSeconds int    `json:"minSessionSeconds"`
	PomodoroSeconds   int    `json:"pomodoroSeconds"`
	BreakSeconds      int    `json:"breakSeconds"`
	SyncBaseURL       string `json:"syncBaseUrl"`
	SyncIntervalMin   int    `json:"syncIntervalMin"`
	AIProvider        string `json:"aiProvider"`
	AIModel           string `json:"aiModel"`
}

// DefaultSettings returns the out-of-the-box settings.
func DefaultSettings() Settings {
	return Settings{
		MinSessionSeconds: 60,
		PomodoroSeconds:   1500,
		BreakSeconds:      300,
		SyncIntervalMin:   10,
		AIProvider:        "local",
	}
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}
