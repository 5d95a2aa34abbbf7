package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Sync.IntervalMinutes)
	assert.Equal(t, "local", cfg.AI.Provider)
	assert.Equal(t, 60, cfg.Timer.MinSessionSeconds)
	assert.Equal(t, 1500, cfg.Timer.PomodoroSeconds)
	assert.Equal(t, 300, cfg.Timer.BreakSeconds)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
sync:
  base_url: http://localhost:8090
ai:
  provider: anthropic
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8090", cfg.Sync.BaseURL)
	assert.Equal(t, "anthropic", cfg.AI.Provider)
	// Not mentioned in the file, so defaults survive.
	assert.Equal(t, 10, cfg.Sync.IntervalMinutes)
	assert.Equal(t, 1500, cfg.Timer.PomodoroSeconds)
}

func TestLoadMalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sync: [oops"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
