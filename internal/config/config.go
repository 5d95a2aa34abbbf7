// Package config loads the client configuration file. Everything has a
// default; a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Sync  SyncConfig  `yaml:"sync"`
	AI    AIConfig    `yaml:"ai"`
	Timer TimerConfig `yaml:"timer"`
}

type SyncConfig struct {
	BaseURL         string `yaml:"base_url"`
	IntervalMinutes int    `yaml:"interval_minutes"`
}

type AIConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

type TimerConfig struct {
	MinSessionSeconds int `yaml:"min_session_seconds"`
	PomodoroSeconds   int `yaml:"pomodoro_seconds"`
	BreakSeconds      int `yaml:"break_seconds"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			IntervalMinutes: 10,
		},
		AI: AIConfig{
			Provider: "local",
		},
		Timer: TimerConfig{
			MinSessionSeconds: 60,
			PomodoroSeconds:   1500,
			BreakSeconds:      300,
		},
	}
}

// Path returns ~/.config/tempo/config.yaml.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tempo", "config.yaml"), nil
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist. A file that exists but fails to parse is an error:
// silently ignoring a typo would be worse than refusing to start.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
