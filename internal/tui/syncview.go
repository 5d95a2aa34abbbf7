package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tempo/internal/ai"
	"github.com/sadopc/tempo/internal/stats"
	syncpkg "github.com/sadopc/tempo/internal/sync"
	"github.com/sadopc/tempo/internal/timeutil"
)

type syncModel struct {
	deps   *deps
	width  int
	height int

	busy       bool
	lastSynced string
	lastErr    error

	rangeResult *syncpkg.RangeResult
	rangeErr    error

	summary    string
	summaryErr error
	thinking   bool
}

func newSyncModel(d *deps) syncModel {
	return syncModel{deps: d}
}

func (s *syncModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

// --- Commands ---

// syncNowCmd runs a full upload-then-merge cycle for today.
func syncNowCmd(d *deps) tea.Cmd {
	client, st := d.client, d.st
	return func() tea.Msg {
		date := timeutil.Today()
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		err := client.SyncToday(ctx, st, date)
		return syncDoneMsg{date: date, err: err}
	}
}

// mergeTodayCmd pulls today's remote document into local state without
// uploading first. Used once at startup to pick up sessions recorded on
// other devices.
func mergeTodayCmd(d *deps) tea.Cmd {
	client, st := d.client, d.st
	return func() tea.Msg {
		date := timeutil.Today()
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		doc, err := client.FetchDay(ctx, date)
		if err != nil {
			return syncDoneMsg{date: date, err: err}
		}
		if doc != nil {
			syncpkg.Merge(st, doc)
		}
		return syncDoneMsg{date: date}
	}
}

func fetchRangeCmd(d *deps) tea.Cmd {
	client := d.client
	return func() tea.Msg {
		from, to := timeutil.DaysAgo(6), timeutil.Today()
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		result, err := client.FetchRange(ctx, from, to)
		return rangeFetchedMsg{result: result, err: err}
	}
}

func aiSummaryCmd(d *deps) tea.Cmd {
	settings := d.settings
	credential, _ := d.store.GetSecret(settings.AIProvider)
	sessions := d.st.SessionList()
	daily := stats.DailySeries(sessions, time.Now())
	perProject := stats.ProjectSeries(sessions, d.st.ProjectList(), time.Now())
	weekTotal := stats.WeekTotal(sessions, time.Now())

	return func() tea.Msg {
		provider, err := ai.NewProvider(settings.AIProvider, settings.AIModel, credential)
		if err != nil {
			return aiSummaryMsg{err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		text, err := provider.Complete(ctx, ai.BuildPrompt(daily, perProject, weekTotal))
		return aiSummaryMsg{text: text, err: err}
	}
}

// --- Update / view ---

func (s syncModel) update(msg tea.Msg) (syncModel, tea.Cmd) {
	switch msg := msg.(type) {
	case syncDoneMsg:
		s.busy = false
		s.lastErr = msg.err
		if msg.err == nil {
			s.lastSynced = msg.date
		}
		return s, nil

	case rangeFetchedMsg:
		s.rangeResult = msg.result
		s.rangeErr = msg.err
		return s, nil

	case aiSummaryMsg:
		s.thinking = false
		s.summary = msg.text
		s.summaryErr = msg.err
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Sync):
			if s.deps.client == nil {
				return s, func() tea.Msg {
					return statusMsg{text: "No sync URL configured. Set one in Settings.", isError: true}
				}
			}
			if s.busy {
				return s, nil
			}
			s.busy = true
			return s, syncNowCmd(s.deps)

		case key.Matches(msg, keys.Range):
			if s.deps.client == nil {
				return s, func() tea.Msg {
					return statusMsg{text: "No sync URL configured. Set one in Settings.", isError: true}
				}
			}
			return s, fetchRangeCmd(s.deps)

		case key.Matches(msg, keys.Summary):
			if s.thinking {
				return s, nil
			}
			s.thinking = true
			return s, aiSummaryCmd(s.deps)
		}
	}
	return s, nil
}

func (s syncModel) view() string {
	w := s.width - 4

	syncPanel := s.renderSyncPanel(w)
	rangePanel := s.renderRangePanel(w)
	aiPanel := s.renderAIPanel(w)

	return lipgloss.JoinVertical(lipgloss.Left, syncPanel, rangePanel, aiPanel)
}

func (s syncModel) renderSyncPanel(w int) string {
	title := titleStyle.Render("Sync")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	if s.deps.settings.SyncBaseURL == "" {
		rows = append(rows, mutedStyle.Render("Not configured. Set a sync URL in Settings."))
	} else {
		rows = append(rows, fmt.Sprintf("  %s %s",
			mutedStyle.Render("Server:"), highlightStyle.Render(s.deps.settings.SyncBaseURL)))

		switch {
		case s.busy:
			rows = append(rows, "  "+warningStyle.Render("Syncing..."))
		case s.lastErr != nil:
			rows = append(rows, "  "+errorStyle.Render(fmt.Sprintf("Last sync failed: %v", s.lastErr)))
		case s.lastSynced != "":
			rows = append(rows, "  "+successStyle.Render("Synced "+s.lastSynced))
		default:
			rows = append(rows, "  "+mutedStyle.Render("Not synced yet"))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  y: sync now  r: fetch week  a: AI summary"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (s syncModel) renderRangePanel(w int) string {
	title := titleStyle.Render("Remote Week")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	switch {
	case s.rangeErr != nil:
		rows = append(rows, "  "+errorStyle.Render(fmt.Sprintf("Fetch failed: %v", s.rangeErr)))
	case s.rangeResult == nil:
		rows = append(rows, mutedStyle.Render("  Press r to fetch the remote week."))
	default:
		r := s.rangeResult
		total := 0
		for _, sess := range r.Sessions {
			total += sess.Duration
		}
		rows = append(rows, fmt.Sprintf("  %s — %s", r.From, r.To))
		rows = append(rows, fmt.Sprintf("  %s sessions, %s projects, %s days on server, %s tracked",
			highlightStyle.Render(fmt.Sprintf("%d", len(r.Sessions))),
			highlightStyle.Render(fmt.Sprintf("%d", len(r.Projects))),
			highlightStyle.Render(fmt.Sprintf("%d", r.FilesLoaded)),
			highlightStyle.Render(formatHours(total)),
		))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (s syncModel) renderAIPanel(w int) string {
	title := titleStyle.Render("Weekly Summary")

	var body string
	switch {
	case s.thinking:
		body = warningStyle.Render("  Thinking...")
	case s.summaryErr != nil:
		body = errorStyle.Render(fmt.Sprintf("  %v", s.summaryErr))
	case s.summary != "":
		body = lipgloss.NewStyle().Width(w - 6).Render(s.summary)
	default:
		body = mutedStyle.Render("  Press a for an AI summary of your week.")
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", body),
	)
}
