package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tempo/internal/model"
	"github.com/sadopc/tempo/internal/stats"
	"github.com/sadopc/tempo/internal/timer"
	"github.com/sadopc/tempo/internal/timeutil"
)

var hourlyBlocks = []rune(" ▁▂▃▄▅▆▇█")

// completionHold is how long the finished countdown stays on screen before
// the timer panel falls back to the idle display.
const completionHold = 5 * time.Second

type dashboardModel struct {
	deps   *deps
	width  int
	height int

	pomodoroOn bool

	// Last countdown completion, held on screen for completionHold.
	doneType model.SessionType
	doneAt   time.Time

	// Project picker state
	picking      bool
	pickerCursor int
}

func newDashboardModel(d *deps) dashboardModel {
	return dashboardModel{deps: d}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d *dashboardModel) noteCompletion(c timer.Completion) {
	d.doneType = c.Type
	d.doneAt = time.Now()
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			projects := d.deps.st.ProjectList()
			if len(projects) == 0 {
				return d, func() tea.Msg {
					return statusMsg{text: "No projects yet. Press 2 to go to Projects and create one.", isError: true}
				}
			}
			if len(projects) == 1 {
				return d.startTimer(projects[0].ID)
			}
			d.picking = true
			d.pickerCursor = 0
			return d, nil

		case key.Matches(msg, keys.Stop):
			if !d.deps.machine.Running() {
				return d, nil
			}
			d.deps.machine.Stop(true)
			return d, func() tea.Msg { return sessionSavedMsg{} }

		case key.Matches(msg, keys.Pause):
			if !d.deps.machine.Running() {
				return d, nil
			}
			if d.deps.machine.Paused() {
				d.deps.machine.Resume()
			} else {
				d.deps.machine.Pause()
			}
			return d, nil

		case key.Matches(msg, keys.Break):
			d.deps.machine.StartBreak(d.deps.settings.BreakSeconds)
			return d, func() tea.Msg {
				return statusMsg{text: "Break started"}
			}

		case key.Matches(msg, keys.Pomodoro):
			d.pomodoroOn = !d.pomodoroOn
			d.deps.machine.SetPomodoro(d.pomodoroOn, d.deps.settings.PomodoroSeconds)
			text := "Pomodoro mode off"
			if d.pomodoroOn {
				text = "Pomodoro mode on"
			}
			return d, func() tea.Msg { return statusMsg{text: text} }
		}
	}
	return d, nil
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	projects := d.deps.st.ProjectList()
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(projects)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		if d.pickerCursor < len(projects) {
			p := projects[d.pickerCursor]
			d.picking = false
			return d.startTimer(p.ID)
		}
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) startTimer(projectID string) (dashboardModel, tea.Cmd) {
	d.deps.machine.Start(projectID)
	return d, func() tea.Msg { return statusMsg{text: "Timer started"} }
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	timerPanel := d.renderTimerPanel(contentWidth)
	summaryPanel := d.renderSummaryPanel(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderProjectPicker(contentWidth)
	} else {
		bottomPanel = d.renderHourlyPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, summaryPanel, bottomPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	m := d.deps.machine

	if !m.Running() {
		// A just-finished countdown holds the zeroed display briefly before
		// the panel falls back to STOPPED.
		if !d.doneAt.IsZero() && time.Since(d.doneAt) < completionHold {
			timeDisplay := timerStyle.Width(w - 6).Render(formatCountdown(0))
			indicator := accentStyle.Render("🍅  POMODORO COMPLETE")
			if d.doneType == model.TypeBreak {
				indicator = highlightStyle.Render("☕  BREAK OVER")
			}
			hint := mutedStyle.Render("s: start  b: break  p: pomodoro mode")
			content := lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, hint)
			return activePanelStyle.Width(w).Render(content)
		}

		timeDisplay := timerStyle.Width(w - 6).Render("00:00:00")
		indicator := mutedStyle.Render("■  STOPPED")
		hint := mutedStyle.Render("s: start  b: break  p: pomodoro mode")
		if d.pomodoroOn {
			hint = mutedStyle.Render("s: start pomodoro  b: break  p: pomodoro mode off")
		}
		content := lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, hint)
		return panelStyle.Width(w).Render(content)
	}

	var display string
	var indicator string
	if remaining, ok := m.Remaining(); ok {
		display = formatCountdown(remaining)
		if m.OnBreak() {
			indicator = highlightStyle.Render("☕  BREAK")
		} else {
			indicator = accentStyle.Render("🍅  POMODORO")
		}
	} else {
		display = formatSeconds(m.Elapsed())
		indicator = successStyle.Render("●  RUNNING")
	}

	style := timerRunningStyle
	if m.OnBreak() {
		style = timerBreakStyle
	}
	if m.Paused() {
		style = timerPausedStyle
		indicator = warningStyle.Render("⏸  PAUSED")
	}
	timeDisplay := style.Width(w - 6).Render(display)

	targetLine := ""
	if m.OnBreak() {
		targetLine = mutedStyle.Render("break")
	} else if p, ok := d.deps.st.ProjectByID(m.Target()); ok {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render("●")
		targetLine = dot + " " + highlightStyle.Render(p.Name)
	}

	content := lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, targetLine)
	return activePanelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderSummaryPanel(w int) string {
	now := time.Now()
	sessions := d.deps.st.SessionList()

	title := titleStyle.Render("Today")
	total := highlightStyle.Render(formatSeconds(stats.TodayTotal(sessions, now)))
	week := mutedStyle.Render("week " + formatHours(stats.WeekTotal(sessions, now)))
	header := fmt.Sprintf("%s  %s  %s", title, total, week)

	today := d.deps.st.SessionsOn(timeutil.DateOf(now))
	if len(today) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("No sessions today"),
		)
		return panelStyle.Width(w).Render(content)
	}

	// Per-project totals for today only.
	totals := make(map[string]int)
	counts := make(map[string]int)
	var order []string
	for _, s := range today {
		if _, seen := totals[s.ProjectID]; !seen {
			order = append(order, s.ProjectID)
		}
		totals[s.ProjectID] += s.Duration
		counts[s.ProjectID]++
	}

	var rows []string
	rows = append(rows, header)
	for _, id := range order {
		name, color := id, string(colorMuted)
		if id == model.BreakProject {
			name = "Break"
		} else if p, ok := d.deps.st.ProjectByID(id); ok {
			name, color = p.Name, p.Color
		}
		colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %-20s %s  (%d sessions)",
			colorDot, name, formatSeconds(totals[id]), counts[id]))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// renderHourlyPanel draws the last 8 hour buckets as a mini bar row. Bars
// scale against a full 60-minute hour.
func (d dashboardModel) renderHourlyPanel(w int) string {
	title := titleStyle.Render("Last 8 Hours")
	points := stats.HourlySeries(d.deps.st.SessionList(), time.Now())

	var bars []string
	var labels []string
	for _, p := range points {
		level := int(p.Minutes / 60 * float64(len(hourlyBlocks)-1))
		if p.Minutes > 0 && level == 0 {
			level = 1
		}
		bar := string(hourlyBlocks[level])
		bars = append(bars, successStyle.Render(strings.Repeat(bar, 3)))
		labels = append(labels, p.Hour.Format("15h"))
	}

	barRow := "  " + strings.Join(bars, " ")
	labelRow := mutedStyle.Render("  " + strings.Join(labels, " "))

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", barRow, labelRow),
	)
}

func (d dashboardModel) renderProjectPicker(w int) string {
	title := titleStyle.Render("Select Project")

	var rows []string
	rows = append(rows, title)
	for i, p := range d.deps.st.ProjectList() {
		colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, colorDot, p.Name)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
