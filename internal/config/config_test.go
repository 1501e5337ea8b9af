package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sdpower/ccinsights-go/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.General.DefaultDays)
	assert.Empty(t, cfg.General.ClaudeDir)
	assert.False(t, cfg.Appearance.NoColor)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.General.DefaultDays = 14
	cfg.General.ClaudeDir = "/tmp/claude/projects"
	cfg.Appearance.NoColor = true
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadRejectsNegativeDays(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "ccinsights", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[general]\ndefault_days = -3\n"), 0o644))

	cfg, err := Load()
	assert.True(t, errors.Is(err, types.ErrInvalidConfig))
	assert.Equal(t, DefaultConfig(), cfg, "invalid files fall back to defaults")
}

func TestConfigPathUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "ccinsights", "config.toml"), ConfigPath())
}
