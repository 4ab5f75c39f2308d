package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fermata/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected resolved path %s, got %s", path, resolved)
	}
	if !cfg.Providers.MusicBrainz.Enabled {
		t.Fatal("expected musicbrainz enabled by default")
	}
	if cfg.Workflow.RetryDays != 30 {
		t.Fatalf("expected retry_days 30, got %d", cfg.Workflow.RetryDays)
	}
	if cfg.Workflow.ErrorRetryDays != 7 {
		t.Fatalf("expected error_retry_days 7, got %d", cfg.Workflow.ErrorRetryDays)
	}
	if cfg.Providers.ITunes.LookupPacingMS != 100 {
		t.Fatalf("expected itunes lookup pacing 100ms, got %d", cfg.Providers.ITunes.LookupPacingMS)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`library_dir = "` + filepath.Join(dir, "lib") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"[workflow]",
		"retry_days = 14",
		"[providers.deezer]",
		"enabled = false",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Workflow.RetryDays != 14 {
		t.Fatalf("expected retry_days 14, got %d", cfg.Workflow.RetryDays)
	}
	if cfg.Providers.Deezer.Enabled {
		t.Fatal("expected deezer disabled")
	}
	if cfg.DatabasePath() != filepath.Join(dir, "lib", "library.db") {
		t.Fatalf("unexpected database path %s", cfg.DatabasePath())
	}
}

func TestLoadRejectsInvalidLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for invalid logging format")
	}
}

func TestLoadRejectsRetryWindowInversion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[workflow]\nretry_days = 5\nerror_retry_days = 10\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error when error_retry_days exceeds retry_days")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error when config already exists")
	}
}
