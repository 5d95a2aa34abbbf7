package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/tempo/internal/model"
	"github.com/sadopc/tempo/internal/sync"
	"github.com/sadopc/tempo/internal/timer"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewProjects
	viewReports
	viewSync
	viewSettings
)

var viewNames = []string{"Dashboard", "Projects", "Reports", "Sync", "Settings"}

// --- Messages ---

type tickMsg time.Time

type statusMsg struct {
	text    string
	isError bool
}

// completionMsg surfaces a countdown that ran to zero.
type completionMsg timer.Completion

type sessionSavedMsg struct{}

type syncDoneMsg struct {
	date string
	err  error
}

type rangeFetchedMsg struct {
	result *sync.RangeResult
	err    error
}

type aiSummaryMsg struct {
	text string
	err  error
}

type exportDoneMsg struct {
	path string
}

type settingsSavedMsg struct {
	settings model.Settings
}

// --- Helpers ---

func formatSeconds(secs int) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatCountdown(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatHours(secs int) string {
	return fmt.Sprintf("%.1fh", float64(secs)/3600)
}
