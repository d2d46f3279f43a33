package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(home))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := LoadDefault()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".local", "share", "rtopics"), cfg.Global.DataDir)
	require.Equal(t, "file", cfg.Storage.Backend)
	require.Equal(t, filepath.Join(cfg.Global.DataDir, "client.json"), cfg.StoragePath())
	require.Equal(t, filepath.Join(cfg.Global.DataDir, "rtopics.log"), cfg.LogPath())
	require.Equal(t, 2*time.Second, cfg.Feed.PollInterval)
	require.Equal(t, "default", cfg.TUI.Theme)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "rtopics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  backend: sqlite
user:
  id: 42
feed:
  path: ~/events.ndjson
  poll_interval: 250ms
tui:
  theme: high-contrast
`), 0o644))
	t.Setenv("RTOPICS_LOGGING_LEVEL", "debug")
	t.Setenv("RTOPICS_USER_ID", "7")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.Storage.Backend)
	require.Equal(t, filepath.Join(cfg.Global.DataDir, "client.db"), cfg.StoragePath())
	require.Equal(t, int64(7), cfg.User.ID)
	require.Equal(t, filepath.Join(home, "events.ndjson"), cfg.Feed.Path)
	require.Equal(t, 250*time.Millisecond, cfg.Feed.PollInterval)
	require.Equal(t, "high-contrast", cfg.TUI.Theme)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	isolate(t)
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = "redis"
	require.ErrorContains(t, cfg.Validate(), "storage.backend")

	cfg = DefaultConfig()
	cfg.TUI.Theme = "neon"
	require.ErrorContains(t, cfg.Validate(), "tui.theme")

	cfg = DefaultConfig()
	cfg.Feed.PollInterval = time.Millisecond
	require.ErrorContains(t, cfg.Validate(), "feed.poll_interval")

	require.NoError(t, DefaultConfig().Validate())
}

func TestLoaderSetOverridesFile(t *testing.T) {
	isolate(t)
	l := NewLoader()
	l.Set("storage.backend", "memory")
	cfg, err := l.Load()
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.Storage.Backend)
	require.Equal(t, "", cfg.StoragePath())
}
