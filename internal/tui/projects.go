package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tempo/internal/stats"
)

var projectColors = []string{"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#E74C3C", "#9B59B6", "#3498DB"}

type projectsModel struct {
	deps   *deps
	width  int
	height int

	cursor     int
	confirming bool // delete confirmation for the project under the cursor

	formActive bool
	form       *huh.Form
	editing    bool

	// Form field pointers (survive value copies)
	formName  *string
	formColor *string

	editingID string
}

func newProjectsModel(d *deps) projectsModel {
	name, color := "", projectColors[0]
	return projectsModel{
		deps:      d,
		formName:  &name,
		formColor: &color,
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	projects := p.deps.st.ProjectList()

	if p.confirming {
		switch keyMsg.String() {
		case "y", "enter":
			p.confirming = false
			if p.cursor < len(projects) {
				proj := projects[p.cursor]
				p.deps.st.DeleteProject(proj.ID)
				if p.cursor >= len(projects)-1 && p.cursor > 0 {
					p.cursor--
				}
				return p, func() tea.Msg {
					return statusMsg{text: "Deleted " + proj.Name + " and its sessions"}
				}
			}
		default:
			p.confirming = false
		}
		return p, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if p.cursor < len(projects)-1 {
			p.cursor++
		}
	case key.Matches(keyMsg, keys.New):
		return p.showForm(false)
	case key.Matches(keyMsg, keys.Edit):
		if len(projects) > 0 {
			return p.showForm(true)
		}
	case key.Matches(keyMsg, keys.Delete):
		if len(projects) > 0 {
			p.confirming = true
		}
	}
	return p, nil
}

func (p projectsModel) showForm(edit bool) (projectsModel, tea.Cmd) {
	p.editing = edit
	if edit {
		proj := p.deps.st.ProjectList()[p.cursor]
		*p.formName = proj.Name
		*p.formColor = proj.Color
		p.editingID = proj.ID
	} else {
		*p.formName = ""
		*p.formColor = projectColors[0]
		p.editingID = ""
	}

	colorOptions := make([]huh.Option[string], len(projectColors))
	for i, c := range projectColors {
		colorOptions[i] = huh.NewOption(fmt.Sprintf("● %s", c), c)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(p.formName),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(p.formColor),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		if p.editing {
			if err := p.deps.st.UpdateProject(p.editingID, *p.formName, *p.formColor); err != nil {
				return p, func() tea.Msg {
					return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
				}
			}
		} else {
			if _, err := p.deps.st.AddProject(*p.formName, *p.formColor); err != nil {
				return p, func() tea.Msg {
					return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
				}
			}
		}
		return p, nil
	}

	return p, cmd
}

func (p projectsModel) view() string {
	w := p.width - 4

	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Project")
		if p.editing {
			title = titleStyle.Render("Edit Project")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Projects")
	projects := p.deps.st.ProjectList()

	if len(projects) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No projects yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	// Trailing-week totals alongside each project.
	totals := make(map[string]stats.ProjectPoint)
	for _, pt := range stats.ProjectSeries(p.deps.st.SessionList(), projects, time.Now()) {
		totals[pt.ProjectID] = pt
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-10s", "", "Name", "This week"))
	rows = append(rows, header)

	for i, proj := range projects {
		colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(proj.Color)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		week := "—"
		if pt, ok := totals[proj.ID]; ok {
			week = fmt.Sprintf("%g%s", pt.Value, pt.Unit)
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-24s %-10s", cursor, colorDot, proj.Name, week)))
	}

	rows = append(rows, "")
	if p.confirming {
		proj := projects[p.cursor]
		rows = append(rows, warningStyle.Render(
			fmt.Sprintf("  Delete %q and all its sessions? y: yes  any other key: no", proj.Name)))
	} else {
		rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete"))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
