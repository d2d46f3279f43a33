// Package config handles rtopics configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration structure for rtopics.
type Config struct {
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Storage is where client-side preferences such as the recent topics
	// filters are kept.
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	User UserConfig `yaml:"user" mapstructure:"user"`

	Feed FeedConfig `yaml:"feed" mapstructure:"feed"`

	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`
}

// GlobalConfig contains global rtopics settings.
type GlobalConfig struct {
	// DataDir is where rtopics stores its data (default: ~/.local/share/rtopics).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config files are stored (default: ~/.config/rtopics).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error, disabled).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is the log file path. The TUI owns the terminal, so logs always
	// go to a file while it runs.
	File string `yaml:"file" mapstructure:"file"`

	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// StorageConfig selects the local client storage backend.
type StorageConfig struct {
	// Backend is one of file, sqlite, memory.
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Path defaults to DataDir/client.json or DataDir/client.db.
	Path string `yaml:"path" mapstructure:"path"`
}

// UserConfig identifies the viewing user.
type UserConfig struct {
	// ID is the viewing user's id; messages they send mark a topic as
	// participated.
	ID int64 `yaml:"id" mapstructure:"id"`
}

// FeedConfig contains event feed settings.
type FeedConfig struct {
	// Path is the NDJSON event feed to follow.
	Path string `yaml:"path" mapstructure:"path"`

	// PollInterval is the fallback re-read interval when no filesystem
	// notification arrives.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`

	// ForcePoll disables fsnotify.
	ForcePoll bool `yaml:"force_poll" mapstructure:"force_poll"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// Theme is the color theme (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// RefreshInterval is how often relative times are redrawn.
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`
}

var (
	storageBackends = []string{"file", "sqlite", "memory"}
	themes          = []string{"default", "high-contrast"}
	logFormats      = []string{"json", "console"}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir:   filepath.Join(homeDir, ".local", "share", "rtopics"),
			ConfigDir: filepath.Join(homeDir, ".config", "rtopics"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: StorageConfig{
			Backend: "file",
		},
		Feed: FeedConfig{
			PollInterval: 2 * time.Second,
		},
		TUI: TUIConfig{
			Theme:           "default",
			RefreshInterval: 30 * time.Second,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !oneOf(c.Storage.Backend, storageBackends) {
		return fmt.Errorf("storage.backend must be one of file, sqlite, memory (got %q)", c.Storage.Backend)
	}
	if !oneOf(c.TUI.Theme, themes) {
		return fmt.Errorf("tui.theme must be one of default, high-contrast (got %q)", c.TUI.Theme)
	}
	if !oneOf(c.Logging.Format, logFormats) {
		return fmt.Errorf("logging.format must be json or console (got %q)", c.Logging.Format)
	}
	if c.Feed.PollInterval < 10*time.Millisecond {
		return fmt.Errorf("feed.poll_interval must be at least 10ms")
	}
	if c.TUI.RefreshInterval < time.Second {
		return fmt.Errorf("tui.refresh_interval must be at least 1s")
	}
	if c.User.ID < 0 {
		return fmt.Errorf("user.id must not be negative")
	}
	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Global.DataDir,
		c.Global.ConfigDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// StoragePath returns the full local storage path for the configured backend.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch c.Storage.Backend {
	case "sqlite":
		return filepath.Join(c.Global.DataDir, "client.db")
	case "memory":
		return ""
	default:
		return filepath.Join(c.Global.DataDir, "client.json")
	}
}

// LogPath returns the log file path.
func (c *Config) LogPath() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(c.Global.DataDir, "rtopics.log")
}

// ContextPath returns where the last view and narrow are remembered.
func (c *Config) ContextPath() string {
	return filepath.Join(c.Global.ConfigDir, "context.yaml")
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
