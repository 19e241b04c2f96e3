package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	def := GetDefaultSettings()
	if cfg.ProjectRoot != def.ProjectRoot {
		t.Errorf("ProjectRoot = %q, want %q", cfg.ProjectRoot, def.ProjectRoot)
	}
	if cfg.Readiness.MaxAttempts != def.Readiness.MaxAttempts {
		t.Errorf("MaxAttempts = %d, want %d", cfg.Readiness.MaxAttempts, def.Readiness.MaxAttempts)
	}
	if cfg.Dataset.Marker == "" {
		t.Error("default dataset marker is empty")
	}
}

func TestLoad_EnvOverridesWithoutFile(t *testing.T) {
	dir := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })

	t.Setenv("DATALAB_READINESS_MAX_ATTEMPTS", "60")
	t.Setenv("DATALAB_READINESS_INTERVAL", "5s")
	t.Setenv("DATALAB_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Readiness.MaxAttempts != 60 {
		t.Errorf("MaxAttempts = %d, want 60", cfg.Readiness.MaxAttempts)
	}
	if cfg.Readiness.Interval != 5*time.Second {
		t.Errorf("Interval = %s, want 5s", cfg.Readiness.Interval)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Level = %q, want DEBUG", cfg.Logging.Level)
	}

	// Untouched keys keep their defaults.
	def := GetDefaultSettings()
	if cfg.Compose.Project != def.Compose.Project {
		t.Errorf("Project = %q, want %q", cfg.Compose.Project, def.Compose.Project)
	}
}

func TestLoad_EnvOverridesFileValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "datalab.yaml")
	content := `
readiness:
  max_attempts: 5
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("DATALAB_READINESS_MAX_ATTEMPTS", "12")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Readiness.MaxAttempts != 12 {
		t.Errorf("MaxAttempts = %d, want env override 12 over file value 5", cfg.Readiness.MaxAttempts)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "datalab.yaml")
	content := `
project_root: /srv/stack
readiness:
  max_attempts: 5
  interval: 45s
logging:
  level: DEBUG
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ProjectRoot != "/srv/stack" {
		t.Errorf("ProjectRoot = %q, want /srv/stack", cfg.ProjectRoot)
	}
	if cfg.Readiness.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.Readiness.MaxAttempts)
	}
	if cfg.Readiness.Interval != 45*time.Second {
		t.Errorf("Interval = %s, want 45s", cfg.Readiness.Interval)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Level = %q, want DEBUG", cfg.Logging.Level)
	}

	// Unset sections fall back to defaults.
	if cfg.Compose.File == "" || cfg.Dataset.URL == "" {
		t.Error("defaults were not applied to unset sections")
	}
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "datalab.yaml")
	content := `
readiness:
  max_attempts: -1
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for negative max_attempts")
	}
}

func TestComposeFilePath(t *testing.T) {
	cfg := GetDefaultSettings()
	cfg.ProjectRoot = "/srv/stack"
	cfg.Compose.File = "docker-compose.yml"
	if got := cfg.ComposeFilePath(); got != "/srv/stack/docker-compose.yml" {
		t.Errorf("ComposeFilePath = %q", got)
	}

	cfg.Compose.File = "/etc/stack/compose.yml"
	if got := cfg.ComposeFilePath(); got != "/etc/stack/compose.yml" {
		t.Errorf("absolute ComposeFilePath = %q", got)
	}
}
