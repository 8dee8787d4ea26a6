package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mselway/triage/internal/config"
	"github.com/mselway/triage/internal/testsupport"
	"github.com/mselway/triage/task"
)

func TestLoad_NotFound(t *testing.T) {
	home := testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}

	if cfg.Storage.DataDir != filepath.Join(home, ".local", "share", "triage") {
		t.Errorf("DataDir = %q, expected home default", cfg.Storage.DataDir)
	}

	if cfg.Scoring.Endpoint != "" {
		t.Error("expected empty Endpoint")
	}

	if cfg.Scoring.Listen == "" {
		t.Error("expected a default Listen address")
	}
}

func TestLoad_Full(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	configContent := `
[storage]
data-dir = "/var/lib/triage"

[scoring]
endpoint = "https://scores.example.com"
listen = "localhost:9000"

[[tags]]
name = "deep-work"
color = "#0ea5e9"
`

	if err := os.WriteFile(filepath.Join(tmpDir, "triage.toml"), []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Storage.DataDir != "/var/lib/triage" {
		t.Errorf("DataDir = %q, expected %q", cfg.Storage.DataDir, "/var/lib/triage")
	}

	if cfg.Scoring.Endpoint != "https://scores.example.com" {
		t.Errorf("Endpoint = %q, expected %q", cfg.Scoring.Endpoint, "https://scores.example.com")
	}

	if cfg.Scoring.Listen != "localhost:9000" {
		t.Errorf("Listen = %q, expected %q", cfg.Scoring.Listen, "localhost:9000")
	}

	tags := cfg.DefaultTags()
	if len(tags) != 1 || tags[0].Name != "deep-work" {
		t.Errorf("DefaultTags = %v, expected the configured tag", tags)
	}
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	home := testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	globalContent := `
[scoring]
endpoint = "https://global.example.com"
listen = "localhost:7000"
`
	globalPath := filepath.Join(home, ".config", "triage", "config.toml")
	if err := os.WriteFile(globalPath, []byte(globalContent), 0644); err != nil {
		t.Fatalf("failed to write global config: %v", err)
	}

	projectContent := `
[scoring]
endpoint = "https://project.example.com"
`
	if err := os.WriteFile(filepath.Join(tmpDir, "triage.toml"), []byte(projectContent), 0644); err != nil {
		t.Fatalf("failed to write project config: %v", err)
	}

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Scoring.Endpoint != "https://project.example.com" {
		t.Errorf("Endpoint = %q, expected project value", cfg.Scoring.Endpoint)
	}

	// Keys the project file leaves out fall through to the global file.
	if cfg.Scoring.Listen != "localhost:7000" {
		t.Errorf("Listen = %q, expected global value", cfg.Scoring.Listen)
	}
}

func TestDefaultTags_BuiltInFallback(t *testing.T) {
	testsupport.SetupTestHome(t)

	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	tags := cfg.DefaultTags()
	if len(tags) != len(task.DefaultTags()) {
		t.Errorf("expected built-in tag set, got %d tags", len(tags))
	}
}
