package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LibraryDir string `toml:"library_dir"`
	LogDir     string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Workflow contains worker loop timing and retry windows.
type Workflow struct {
	IdlePollSeconds    int `toml:"idle_poll_seconds"`
	PausePollSeconds   int `toml:"pause_poll_seconds"`
	StopTimeoutSeconds int `toml:"stop_timeout_seconds"`
	RetryDays          int `toml:"retry_days"`
	ErrorRetryDays     int `toml:"error_retry_days"`
}

// Provider contains per-provider client configuration.
type Provider struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	UserAgent      string `toml:"user_agent"`
	PacingMS       int    `toml:"pacing_ms"`
	LookupPacingMS int    `toml:"lookup_pacing_ms"`
}

// Providers groups the supported metadata sources.
type Providers struct {
	MusicBrainz Provider `toml:"musicbrainz"`
	Deezer      Provider `toml:"deezer"`
	AudioDB     Provider `toml:"audiodb"`
	ITunes      Provider `toml:"itunes"`
}

// Config is the root configuration document.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Logging   Logging   `toml:"logging"`
	Workflow  Workflow  `toml:"workflow"`
	Providers Providers `toml:"providers"`
}

// DefaultConfigPath returns the standard location of the config file.
func DefaultConfigPath() string {
	return "~/.config/fermata/config.toml"
}

// Load reads configuration from the provided path, falling back to the
// default location. A missing file yields defaults. The resolved path is
// returned alongside the config.
func Load(path string) (*Config, string, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		resolved = DefaultConfigPath()
	}
	expanded, err := expandPath(resolved)
	if err != nil {
		return nil, "", fmt.Errorf("config path: %w", err)
	}

	cfg := Default()
	data, readErr := os.ReadFile(expanded)
	switch {
	case readErr == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, "", fmt.Errorf("parse %s: %w", expanded, err)
		}
	case errors.Is(readErr, fs.ErrNotExist):
		// Defaults apply when no config file exists.
	default:
		return nil, "", fmt.Errorf("read %s: %w", expanded, readErr)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, expanded, nil
}

// WriteSample writes the annotated sample config to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("config path: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", expanded, err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the configured directories when missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LibraryDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite library database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.LibraryDir, "library.db")
}

// SocketPath returns the daemon IPC socket location.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.LogDir, "fermata.sock")
}

// LockPath returns the daemon single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "fermatad.lock")
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", trimmed, err)
	}
	return abs, nil
}
