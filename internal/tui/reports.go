package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tempo/internal/stats"
)

type reportsModel struct {
	deps   *deps
	width  int
	height int
}

func newReportsModel(d *deps) reportsModel {
	return reportsModel{deps: d}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	return r, nil
}

func (r reportsModel) view() string {
	w := r.width - 4
	now := time.Now()
	sessions := r.deps.st.SessionList()

	weekTotal := stats.WeekTotal(sessions, now)
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Last 7 Days"), "  ",
		highlightStyle.Render(formatHours(weekTotal)),
	)

	chartView := r.renderDailyChart(w)
	tableView := r.renderProjectTable()

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", tableView,
		),
	)
}

func (r reportsModel) renderDailyChart(w int) string {
	chartWidth := w - 4
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if r.height > 30 {
		chartHeight = 14
	}

	chart := barchart.New(chartWidth, chartHeight)

	daily := stats.DailySeries(r.deps.st.SessionList(), time.Now())
	barStyle := lipgloss.NewStyle().Foreground(colorPrimary)

	var bars []barchart.BarData
	for _, p := range daily {
		d, _ := time.Parse("2006-01-02", p.Date)
		label := d.Format("Mon 02")

		value := p.Hours
		style := barStyle
		if value == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: []barchart.BarValue{{Name: p.Date, Value: value, Style: style}},
		})
	}

	chart.PushAll(bars)
	chart.Draw()
	return chart.View()
}

func (r reportsModel) renderProjectTable() string {
	points := stats.ProjectSeries(r.deps.st.SessionList(), r.deps.st.ProjectList(), time.Now())
	if len(points) == 0 {
		return mutedStyle.Render("  No tracked time this week")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %10s", "", "Project", "Total")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", 40)))

	for _, p := range points {
		colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render("●")
		rows = append(rows, fmt.Sprintf("  %s  %-24s %9g%s", colorDot, p.Name, p.Value, p.Unit))
	}

	return strings.Join(rows, "\n")
}
