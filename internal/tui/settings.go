package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/tempo/internal/ai"
	"github.com/sadopc/tempo/internal/store"
)

type settingsModel struct {
	deps   *deps
	width  int
	height int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	minSession   *string
	pomodoroMin  *string
	breakMin     *string
	syncURL      *string
	syncInterval *string
	aiProvider   *string
	aiModel      *string
	aiCredential *string
}

func newSettingsModel(d *deps) settingsModel {
	ms, pm, bm := "", "", ""
	su, si := "", ""
	ap, am, ac := "", "", ""
	return settingsModel{
		deps:         d,
		minSession:   &ms,
		pomodoroMin:  &pm,
		breakMin:     &bm,
		syncURL:      &su,
		syncInterval: &si,
		aiProvider:   &ap,
		aiModel:      &am,
		aiCredential: &ac,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cur := s.deps.settings
	*s.minSession = strconv.Itoa(cur.MinSessionSeconds)
	*s.pomodoroMin = strconv.Itoa(cur.PomodoroSeconds / 60)
	*s.breakMin = strconv.Itoa(cur.BreakSeconds / 60)
	*s.syncURL = cur.SyncBaseURL
	*s.syncInterval = strconv.Itoa(cur.SyncIntervalMin)
	*s.aiProvider = cur.AIProvider
	*s.aiModel = cur.AIModel
	*s.aiCredential = ""

	numeric := func(name string) func(string) error {
		return func(v string) error {
			if n, err := strconv.Atoi(v); err != nil || n < 0 {
				return fmt.Errorf("%s must be a non-negative number", name)
			}
			return nil
		}
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Minimum session (sec)").Value(s.minSession).Validate(numeric("minimum session")),
			huh.NewInput().Title("Pomodoro (min)").Value(s.pomodoroMin).Validate(numeric("pomodoro")),
			huh.NewInput().Title("Break (min)").Value(s.breakMin).Validate(numeric("break")),
		).Title("Timer"),
		huh.NewGroup(
			huh.NewInput().Title("Sync server URL").Value(s.syncURL).Placeholder("http://localhost:8787"),
			huh.NewInput().Title("Sync interval (min)").Value(s.syncInterval).Validate(numeric("sync interval")),
		).Title("Sync"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("AI provider").
				Options(
					huh.NewOption("Local (Ollama)", ai.ProviderLocal),
					huh.NewOption("OpenAI", ai.ProviderOpenAI),
					huh.NewOption("Anthropic", ai.ProviderAnthropic),
				).Value(s.aiProvider),
			huh.NewInput().Title("Model").Value(s.aiModel).Placeholder("provider default"),
			huh.NewInput().Title("API key").Value(s.aiCredential).
				EchoMode(huh.EchoModePassword).
				Description("Leave blank to keep the stored key"),
		).Title("AI"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.save()
	}

	return s, cmd
}

func (s settingsModel) save() tea.Cmd {
	settings := s.deps.settings
	if n, err := strconv.Atoi(*s.minSession); err == nil {
		settings.MinSessionSeconds = n
	}
	if n, err := strconv.Atoi(*s.pomodoroMin); err == nil {
		settings.PomodoroSeconds = n * 60
	}
	if n, err := strconv.Atoi(*s.breakMin); err == nil {
		settings.BreakSeconds = n * 60
	}
	settings.SyncBaseURL = *s.syncURL
	if n, err := strconv.Atoi(*s.syncInterval); err == nil {
		settings.SyncIntervalMin = n
	}
	settings.AIProvider = *s.aiProvider
	settings.AIModel = *s.aiModel

	s.deps.store.Save(store.KeySettings, settings)

	if *s.aiCredential != "" {
		if err := s.deps.store.SetSecret(settings.AIProvider, *s.aiCredential); err != nil {
			return func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error saving API key: %v", err), isError: true}
			}
		}
	}

	return func() tea.Msg { return settingsSavedMsg{settings: settings} }
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	cur := s.deps.settings
	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit")

	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s",
			lipgloss.NewStyle().Width(24).Render(label),
			highlightStyle.Render(value))
	}

	syncURL := cur.SyncBaseURL
	if syncURL == "" {
		syncURL = "(not set)"
	}
	aiModel := cur.AIModel
	if aiModel == "" {
		aiModel = "(provider default)"
	}
	credential := "(not set)"
	if _, ok := s.deps.store.GetSecret(cur.AIProvider); ok {
		credential = "••••••••"
	}

	rows := []string{
		title,
		"",
		row("Minimum session", fmt.Sprintf("%d sec", cur.MinSessionSeconds)),
		row("Pomodoro", fmt.Sprintf("%d min", cur.PomodoroSeconds/60)),
		row("Break", fmt.Sprintf("%d min", cur.BreakSeconds/60)),
		row("Sync server", syncURL),
		row("Sync interval", fmt.Sprintf("%d min", cur.SyncIntervalMin)),
		row("AI provider", cur.AIProvider),
		row("AI model", aiModel),
		row("API key", credential),
		"",
		hint,
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
