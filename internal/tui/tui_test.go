package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/tempo/internal/model"
	"github.com/sadopc/tempo/internal/state"
	"github.com/sadopc/tempo/internal/store"
	"github.com/sadopc/tempo/internal/timer"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDeps(t *testing.T) (*deps, *fakeClock) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	st := state.Load(s)
	clock := &fakeClock{t: time.Date(2026, 3, 7, 10, 0, 0, 0, time.Local)}
	m := timer.New(s, st, timer.WithClock(clock.now), timer.WithoutTicker())

	d := &deps{store: s, st: st, machine: m}
	d.applySettings(model.DefaultSettings())
	return d, clock
}

func keyPress(s string) tea.KeyMsg {
	if s == "space" {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// ============================================================
// Dashboard
// ============================================================

func TestDashboardStartNoProjects(t *testing.T) {
	d, _ := newTestDeps(t)
	dash := newDashboardModel(d)

	dash, cmd := dash.update(keyPress("s"))
	if dash.picking {
		t.Fatal("picker should not open with zero projects")
	}
	if cmd == nil {
		t.Fatal("expected a status message command")
	}
	msg, ok := cmd().(statusMsg)
	if !ok || !msg.isError {
		t.Fatalf("expected error status, got %#v", msg)
	}
	if d.machine.Running() {
		t.Fatal("machine must stay idle")
	}
}

func TestDashboardStartSingleProject(t *testing.T) {
	d, _ := newTestDeps(t)
	p, _ := d.st.AddProject("Dev", "#000")

	dash := newDashboardModel(d)
	dash, _ = dash.update(keyPress("s"))

	if dash.picking {
		t.Fatal("single project should start directly, no picker")
	}
	if !d.machine.Running() || d.machine.Target() != p.ID {
		t.Fatal("machine should be running the only project")
	}
}

func TestDashboardPickerFlow(t *testing.T) {
	d, _ := newTestDeps(t)
	d.st.AddProject("Alpha", "#111")
	beta, _ := d.st.AddProject("Beta", "#222")

	dash := newDashboardModel(d)
	dash, _ = dash.update(keyPress("s"))
	if !dash.picking {
		t.Fatal("picker should open with multiple projects")
	}

	dash, _ = dash.update(tea.KeyMsg{Type: tea.KeyDown})
	dash, _ = dash.update(tea.KeyMsg{Type: tea.KeyEnter})

	if dash.picking {
		t.Fatal("picker should close on enter")
	}
	if d.machine.Target() != beta.ID {
		t.Fatalf("expected %s running, got %s", beta.ID, d.machine.Target())
	}
}

func TestDashboardPickerEscape(t *testing.T) {
	d, _ := newTestDeps(t)
	d.st.AddProject("Alpha", "#111")
	d.st.AddProject("Beta", "#222")

	dash := newDashboardModel(d)
	dash, _ = dash.update(keyPress("s"))
	dash, _ = dash.update(tea.KeyMsg{Type: tea.KeyEsc})

	if dash.picking {
		t.Fatal("escape should close the picker")
	}
	if d.machine.Running() {
		t.Fatal("escape should not start anything")
	}
}

func TestDashboardStopSaves(t *testing.T) {
	d, clock := newTestDeps(t)
	p, _ := d.st.AddProject("Dev", "#000")

	dash := newDashboardModel(d)
	dash, _ = dash.update(keyPress("s"))
	clock.advance(5 * time.Minute)
	dash, cmd := dash.update(keyPress("x"))

	if d.machine.Running() {
		t.Fatal("machine should be idle after stop")
	}
	if len(d.st.SessionList()) != 1 || d.st.SessionList()[0].ProjectID != p.ID {
		t.Fatalf("expected one saved session, got %d", len(d.st.SessionList()))
	}
	if cmd == nil {
		t.Fatal("stop should emit sessionSavedMsg")
	}
	if _, ok := cmd().(sessionSavedMsg); !ok {
		t.Fatal("expected sessionSavedMsg")
	}
}

func TestDashboardStopWhenIdle(t *testing.T) {
	d, _ := newTestDeps(t)
	dash := newDashboardModel(d)

	_, cmd := dash.update(keyPress("x"))
	if cmd != nil {
		t.Fatal("stop while idle should be a no-op")
	}
}

func TestDashboardPauseResume(t *testing.T) {
	d, _ := newTestDeps(t)
	d.st.AddProject("Dev", "#000")

	dash := newDashboardModel(d)
	dash, _ = dash.update(keyPress("s"))

	dash, _ = dash.update(keyPress("space"))
	if !d.machine.Paused() {
		t.Fatal("space should pause a running timer")
	}

	dash, _ = dash.update(keyPress("space"))
	if d.machine.Paused() {
		t.Fatal("space should resume a paused timer")
	}
}

func TestDashboardBreakKey(t *testing.T) {
	d, _ := newTestDeps(t)
	dash := newDashboardModel(d)

	dash, _ = dash.update(keyPress("b"))
	if !d.machine.OnBreak() {
		t.Fatal("b should start a break")
	}
	remaining, ok := d.machine.Remaining()
	if !ok || remaining != d.settings.BreakSeconds {
		t.Fatalf("expected %d break seconds, got %d", d.settings.BreakSeconds, remaining)
	}
}

func TestDashboardPomodoroToggle(t *testing.T) {
	d, _ := newTestDeps(t)
	d.st.AddProject("Dev", "#000")

	dash := newDashboardModel(d)
	dash, _ = dash.update(keyPress("p"))
	if !dash.pomodoroOn {
		t.Fatal("p should enable pomodoro mode")
	}

	dash, _ = dash.update(keyPress("s"))
	remaining, ok := d.machine.Remaining()
	if !ok || remaining != d.settings.PomodoroSeconds {
		t.Fatalf("expected pomodoro countdown of %d, got %d", d.settings.PomodoroSeconds, remaining)
	}
}

func TestDashboardViewRenders(t *testing.T) {
	d, _ := newTestDeps(t)
	d.st.AddProject("Dev", "#000")

	dash := newDashboardModel(d)
	dash.setSize(100, 40)

	view := dash.view()
	if !strings.Contains(view, "STOPPED") {
		t.Fatal("idle view should show STOPPED")
	}

	dash, _ = dash.update(keyPress("s"))
	view = dash.view()
	if !strings.Contains(view, "RUNNING") {
		t.Fatal("running view should show RUNNING")
	}
	if !strings.Contains(view, "Dev") {
		t.Fatal("running view should show the project name")
	}
}

func TestDashboardCompletionHold(t *testing.T) {
	d, _ := newTestDeps(t)
	d.st.AddProject("Dev", "#000")
	dash := newDashboardModel(d)
	dash.setSize(100, 40)

	dash.noteCompletion(timer.Completion{Type: model.TypePomodoro, Duration: 1500})
	view := dash.view()
	if !strings.Contains(view, "POMODORO COMPLETE") {
		t.Fatal("finished pomodoro should stay on screen after the reset")
	}

	// Starting a new timer overrides the hold.
	dash, _ = dash.update(keyPress("s"))
	if !strings.Contains(dash.view(), "RUNNING") {
		t.Fatal("a running timer takes precedence over the hold")
	}
	d.machine.Stop(false)

	// An expired hold falls back to the idle display.
	dash.doneAt = time.Now().Add(-2 * completionHold)
	if !strings.Contains(dash.view(), "STOPPED") {
		t.Fatal("expired hold should show the idle panel")
	}
}

func TestDashboardCompletionHoldBreak(t *testing.T) {
	d, _ := newTestDeps(t)
	dash := newDashboardModel(d)
	dash.setSize(100, 40)

	dash.noteCompletion(timer.Completion{Type: model.TypeBreak, Duration: 300})
	if !strings.Contains(dash.view(), "BREAK OVER") {
		t.Fatal("finished break should stay on screen after the reset")
	}
}

// ============================================================
// Projects
// ============================================================

func TestProjectsDeleteConfirm(t *testing.T) {
	d, clock := newTestDeps(t)
	p, _ := d.st.AddProject("Doomed", "#000")
	d.machine.Start(p.ID)
	clock.advance(2 * time.Minute)
	d.machine.Stop(true)

	pm := newProjectsModel(d)
	pm, _ = pm.update(keyPress("d"))
	if !pm.confirming {
		t.Fatal("d should ask for confirmation")
	}

	pm, _ = pm.update(keyPress("y"))
	if len(d.st.ProjectList()) != 0 {
		t.Fatal("project should be deleted")
	}
	if len(d.st.SessionList()) != 0 {
		t.Fatal("delete must cascade to the project's sessions")
	}
}

func TestProjectsDeleteDeclined(t *testing.T) {
	d, _ := newTestDeps(t)
	d.st.AddProject("Kept", "#000")

	pm := newProjectsModel(d)
	pm, _ = pm.update(keyPress("d"))
	pm, _ = pm.update(keyPress("n"))

	if pm.confirming {
		t.Fatal("any other key should cancel confirmation")
	}
	if len(d.st.ProjectList()) != 1 {
		t.Fatal("declining must keep the project")
	}
}

func TestProjectsCursorBounds(t *testing.T) {
	d, _ := newTestDeps(t)
	d.st.AddProject("A", "#000")
	d.st.AddProject("B", "#000")

	pm := newProjectsModel(d)
	pm, _ = pm.update(tea.KeyMsg{Type: tea.KeyUp})
	if pm.cursor != 0 {
		t.Fatal("cursor must not go above the first row")
	}
	pm, _ = pm.update(tea.KeyMsg{Type: tea.KeyDown})
	pm, _ = pm.update(tea.KeyMsg{Type: tea.KeyDown})
	if pm.cursor != 1 {
		t.Fatal("cursor must not go past the last row")
	}
}

func TestProjectsFormOpens(t *testing.T) {
	d, _ := newTestDeps(t)
	pm := newProjectsModel(d)

	pm, cmd := pm.update(keyPress("n"))
	if !pm.formActive || pm.form == nil {
		t.Fatal("n should open the new-project form")
	}
	if cmd == nil {
		t.Fatal("form init command expected")
	}

	pm, _ = pm.update(tea.KeyMsg{Type: tea.KeyEsc})
	if pm.formActive {
		t.Fatal("esc should close the form")
	}
}

// ============================================================
// Sync view
// ============================================================

func TestSyncViewUnconfigured(t *testing.T) {
	d, _ := newTestDeps(t)
	sm := newSyncModel(d)

	sm, cmd := sm.update(keyPress("y"))
	if cmd == nil {
		t.Fatal("expected a status command")
	}
	msg, ok := cmd().(statusMsg)
	if !ok || !msg.isError {
		t.Fatal("sync without a URL should report an error status")
	}
	if sm.busy {
		t.Fatal("no sync should be in flight")
	}
}

func TestSyncViewDoneUpdatesState(t *testing.T) {
	d, _ := newTestDeps(t)
	sm := newSyncModel(d)
	sm.busy = true

	sm, _ = sm.update(syncDoneMsg{date: "2026-03-07"})
	if sm.busy {
		t.Fatal("syncDoneMsg should clear busy")
	}
	if sm.lastSynced != "2026-03-07" || sm.lastErr != nil {
		t.Fatalf("unexpected sync state: %q %v", sm.lastSynced, sm.lastErr)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsSaveAppliesToMachine(t *testing.T) {
	d, clock := newTestDeps(t)
	d.st.AddProject("Dev", "#000")
	sm := newSettingsModel(d)

	sm, _ = sm.showForm()
	*sm.minSession = "120"
	*sm.pomodoroMin = "30"
	*sm.breakMin = "10"
	*sm.syncURL = "http://localhost:8787"
	*sm.syncInterval = "5"
	*sm.aiProvider = "local"

	cmd := sm.save()
	msg, ok := cmd().(settingsSavedMsg)
	if !ok {
		t.Fatal("save should emit settingsSavedMsg")
	}
	if msg.settings.MinSessionSeconds != 120 || msg.settings.PomodoroSeconds != 1800 {
		t.Fatalf("unexpected settings: %+v", msg.settings)
	}

	d.applySettings(msg.settings)
	if d.client == nil {
		t.Fatal("setting a sync URL should construct a client")
	}

	// The new minimum gate must hold for the next stop.
	d.machine.Start(d.st.ProjectList()[0].ID)
	clock.advance(90 * time.Second)
	d.machine.Stop(true)
	if len(d.st.SessionList()) != 0 {
		t.Fatal("90s stop must be discarded under a 120s minimum")
	}
}

func TestSettingsPersistedRoundTrip(t *testing.T) {
	d, _ := newTestDeps(t)
	sm := newSettingsModel(d)

	sm, _ = sm.showForm()
	*sm.minSession = "45"
	*sm.pomodoroMin = "25"
	*sm.breakMin = "5"
	*sm.syncInterval = "15"
	*sm.aiProvider = "anthropic"
	sm.save()()

	var loaded model.Settings
	if !d.store.Load(store.KeySettings, &loaded) {
		t.Fatal("settings should be persisted")
	}
	if loaded.MinSessionSeconds != 45 || loaded.AIProvider != "anthropic" {
		t.Fatalf("unexpected persisted settings: %+v", loaded)
	}
}

func TestSettingsCredentialStored(t *testing.T) {
	d, _ := newTestDeps(t)
	sm := newSettingsModel(d)

	sm, _ = sm.showForm()
	*sm.aiProvider = "openai"
	*sm.aiCredential = "sk-test"
	sm.save()()

	cred, ok := d.store.GetSecret("openai")
	if !ok || cred != "sk-test" {
		t.Fatal("credential should land in the secrets table")
	}

	// Blank credential on the next save keeps the stored one.
	sm, _ = sm.showForm()
	*sm.aiProvider = "openai"
	sm.save()()
	cred, ok = d.store.GetSecret("openai")
	if !ok || cred != "sk-test" {
		t.Fatal("blank credential must not overwrite the stored key")
	}
}

// ============================================================
// App shell
// ============================================================

func newTestApp(t *testing.T) App {
	t.Helper()
	d, _ := newTestDeps(t)
	return NewApp(d.store, d.st, d.machine, d.settings)
}

func TestAppTabSwitching(t *testing.T) {
	a := newTestApp(t)

	m, _ := a.Update(keyPress("3"))
	a = m.(App)
	if a.activeView != viewReports {
		t.Fatalf("expected reports view, got %d", a.activeView)
	}

	m, _ = a.Update(tea.KeyMsg{Type: tea.KeyTab})
	a = m.(App)
	if a.activeView != viewSync {
		t.Fatalf("tab should advance to the next view, got %d", a.activeView)
	}
}

func TestAppQuit(t *testing.T) {
	a := newTestApp(t)
	_, cmd := a.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.Quit")
	}
}

func TestAppExportPicker(t *testing.T) {
	a := newTestApp(t)

	m, _ := a.Update(keyPress("o"))
	a = m.(App)
	if !a.exportPicking {
		t.Fatal("o should open the export picker")
	}

	m, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	a = m.(App)
	if a.exportPicking {
		t.Fatal("esc should close the export picker")
	}
}

func TestAppCompletionStatus(t *testing.T) {
	a := newTestApp(t)

	m, cmd := a.Update(completionMsg{Type: model.TypePomodoro, Duration: 1500})
	a = m.(App)
	if !strings.Contains(a.status, "Pomodoro") {
		t.Fatalf("expected pomodoro status, got %q", a.status)
	}
	if cmd == nil {
		t.Fatal("completion handler should re-arm the listener")
	}
	if a.dashboard.doneType != model.TypePomodoro || a.dashboard.doneAt.IsZero() {
		t.Fatal("completion should arm the dashboard hold")
	}
}

func TestAppViewRenders(t *testing.T) {
	a := newTestApp(t)

	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	a = m.(App)

	view := a.View()
	if !strings.Contains(view, "tempo") {
		t.Fatal("header should carry the app name")
	}
	for _, name := range viewNames {
		if !strings.Contains(view, name) {
			t.Fatalf("header should list the %s tab", name)
		}
	}
}

func TestMaybeSyncSkipsEmptyLog(t *testing.T) {
	d, _ := newTestDeps(t)
	settings := d.settings
	settings.SyncBaseURL = "http://localhost:8787"
	settings.SyncIntervalMin = 1
	d.applySettings(settings)

	a := NewApp(d.store, d.st, d.machine, d.settings)
	a.lastSync = time.Now().Add(-2 * time.Minute)

	if cmd := a.maybeSync(); cmd != nil {
		t.Fatal("empty session log must skip the periodic sync")
	}

	// With a session on the log the next due tick fires.
	a.deps.st.AppendSession(model.Session{ID: "s1", ProjectID: "p1", Duration: 120, Date: "2026-03-07"})
	a.lastSync = time.Now().Add(-2 * time.Minute)
	if cmd := a.maybeSync(); cmd == nil {
		t.Fatal("due interval with sessions should trigger a sync")
	}
}
