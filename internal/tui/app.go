// Package tui is the Bubble Tea front end: one root App model with a child
// model per view. The timer machine drives itself at 1 Hz; the tick here only
// refreshes the display and fires the periodic sync.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tempo/internal/export"
	"github.com/sadopc/tempo/internal/model"
	"github.com/sadopc/tempo/internal/state"
	"github.com/sadopc/tempo/internal/store"
	"github.com/sadopc/tempo/internal/sync"
	"github.com/sadopc/tempo/internal/timer"
)

// deps is the shared dependency set handed to every view model. The client is
// nil while no sync base URL is configured.
type deps struct {
	store    *store.Store
	st       *state.State
	machine  *timer.Machine
	client   *sync.Client
	settings model.Settings
}

func (d *deps) applySettings(s model.Settings) {
	d.settings = s
	d.machine.SetMinSession(s.MinSessionSeconds)
	if s.SyncBaseURL != "" {
		d.client = sync.NewClient(s.SyncBaseURL)
	} else {
		d.client = nil
	}
}

// App is the root Bubble Tea model.
type App struct {
	deps   *deps
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	projects  projectsModel
	reports   reportsModel
	syncview  syncModel
	settings  settingsModel

	help        help.Model
	status      string
	statusErr   bool
	completions chan timer.Completion
	lastSync    time.Time
}

func NewApp(s *store.Store, st *state.State, m *timer.Machine, settings model.Settings) App {
	d := &deps{store: s, st: st, machine: m}
	d.applySettings(settings)

	completions := make(chan timer.Completion, 4)
	m.OnComplete(func(c timer.Completion) {
		select {
		case completions <- c:
		default:
		}
	})

	h := help.New()
	h.ShowAll = false

	return App{
		deps:        d,
		activeView:  viewDashboard,
		dashboard:   newDashboardModel(d),
		projects:    newProjectsModel(d),
		reports:     newReportsModel(d),
		syncview:    newSyncModel(d),
		settings:    newSettingsModel(d),
		help:        h,
		completions: completions,
		lastSync:    time.Now(),
	}
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(), a.waitForCompletion()}
	if a.deps.client != nil {
		// The startup merge runs concurrently with the first frame, so the
		// first paint can show pre-merge data. The merge is additive and the
		// 1 Hz tick redraws once it lands, so nothing stays stale.
		cmds = append(cmds, mergeTodayCmd(a.deps))
	}
	return tea.Batch(cmds...)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForCompletion bridges the machine's callback onto the event loop.
func (a App) waitForCompletion() tea.Cmd {
	return func() tea.Msg {
		return completionMsg(<-a.completions)
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.projects.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.syncview.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewProjects
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSync
			return a, nil
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 5
			return a, nil
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		if cmd := a.maybeSync(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case completionMsg:
		a.dashboard.noteCompletion(timer.Completion(msg))
		switch msg.Type {
		case model.TypePomodoro:
			a.setStatus("Pomodoro complete \a", false)
		default:
			a.setStatus("Break over \a", false)
		}
		return a, a.waitForCompletion()

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case sessionSavedMsg:
		a.setStatus("Session saved", false)
		return a, nil

	case syncDoneMsg:
		var cmd tea.Cmd
		a.syncview, cmd = a.syncview.update(msg)
		if msg.err != nil {
			a.setStatus(fmt.Sprintf("Sync failed: %v", msg.err), true)
		} else {
			a.setStatus("Synced "+msg.date, false)
		}
		return a, cmd

	case settingsSavedMsg:
		a.deps.applySettings(msg.settings)
		a.setStatus("Settings saved", false)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string, isErr bool) {
	a.status = text
	a.statusErr = isErr
}

// maybeSync fires the fixed-interval background sync. The trigger is skipped
// while the session log is empty; there is nothing to upload and nothing the
// merge could add that the startup merge has not.
func (a *App) maybeSync() tea.Cmd {
	if a.deps.client == nil || a.deps.settings.SyncIntervalMin <= 0 {
		return nil
	}
	interval := time.Duration(a.deps.settings.SyncIntervalMin) * time.Minute
	if time.Since(a.lastSync) < interval {
		return nil
	}
	a.lastSync = time.Now()
	if a.deps.st.SessionCount() == 0 {
		return nil
	}
	return syncNowCmd(a.deps)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewProjects:
		a.projects, cmd = a.projects.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSync:
		a.syncview, cmd = a.syncview.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewProjects:
		return a.projects.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewProjects:
		content = a.projects.view()
	case viewReports:
		content = a.reports.view()
	case viewSync:
		content = a.syncview.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("tempo")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	// Timer indicator in footer
	timerInfo := ""
	if a.deps.machine.Running() {
		display := formatSeconds(a.deps.machine.Elapsed())
		if remaining, ok := a.deps.machine.Remaining(); ok {
			display = formatCountdown(remaining)
		}
		timerInfo = successStyle.Render(" ● " + display)
		if a.deps.machine.Paused() {
			timerInfo = warningStyle.Render(" ⏸ " + display)
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	sessions := a.deps.st.SessionList()
	list := a.deps.st.ProjectList()
	projects := make(map[string]model.Project, len(list))
	for _, p := range list {
		projects[p.ID] = p
	}

	return func() tea.Msg {
		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("tempo-export-%s.csv", dateStr))
			if err := export.ToCSV(sessions, projects, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("tempo-export-%s.json", dateStr))
			if err := export.ToJSON(sessions, projects, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
