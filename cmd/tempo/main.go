package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/tempo/internal/config"
	"github.com/sadopc/tempo/internal/model"
	"github.com/sadopc/tempo/internal/state"
	"github.com/sadopc/tempo/internal/store"
	"github.com/sadopc/tempo/internal/timer"
	"github.com/sadopc/tempo/internal/tui"
)

var Version = "dev"

func main() {
	var dbPath string

	rootCmd := &cobra.Command{
		Use:     "tempo",
		Short:   "tempo - personal time tracker with cloud sync",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(dbPath)
		},
	}
	rootCmd.Flags().StringVar(&dbPath, "db", "", "database path (default ~/.config/tempo/tempo.db)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(dbPath string) error {
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
	}

	s, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	st := state.Load(s)
	settings := loadSettings(s)

	machine := timer.New(s, st)
	machine.SetMinSession(settings.MinSessionSeconds)
	machine.Recover()

	app := tui.NewApp(s, st, machine, settings)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// loadSettings merges defaults, the optional config file, and the persisted
// settings blob, in that order. The persisted blob wins: it is what the user
// last saved from the settings view.
func loadSettings(s *store.Store) model.Settings {
	settings := model.DefaultSettings()

	if path, err := config.Path(); err == nil {
		if cfg, err := config.Load(path); err == nil {
			settings.SyncBaseURL = cfg.Sync.BaseURL
			settings.SyncIntervalMin = cfg.Sync.IntervalMinutes
			settings.AIProvider = cfg.AI.Provider
			settings.AIModel = cfg.AI.Model
			settings.MinSessionSeconds = cfg.Timer.MinSessionSeconds
			settings.PomodoroSeconds = cfg.Timer.PomodoroSeconds
			settings.BreakSeconds = cfg.Timer.BreakSeconds
		} else {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	s.Load(store.KeySettings, &settings)
	return settings
}
