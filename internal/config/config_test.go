package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: 127.0.0.1
  port: 9000
database:
  url: postgres://localhost/orchestrator
engine:
  max_signal_depth: 4
  observation_window: 30s
  redrive_interval: 10s
  workflow_dir: ./workflows
notify:
  slack_webhook_url: https://hooks.example.test/abc
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Database.URL != "postgres://localhost/orchestrator" {
		t.Errorf("database url = %q", cfg.Database.URL)
	}
	if cfg.Engine.MaxSignalDepth != 4 {
		t.Errorf("max depth = %d", cfg.Engine.MaxSignalDepth)
	}
	if cfg.Engine.ObservationWindow != 30*time.Second {
		t.Errorf("observation window = %s", cfg.Engine.ObservationWindow)
	}
	if cfg.Engine.WorkflowDir != "./workflows" {
		t.Errorf("workflow dir = %q", cfg.Engine.WorkflowDir)
	}
	if cfg.Notify.SlackWebhookURL == "" {
		t.Error("slack webhook lost")
	}
}

func TestLoadDefaultsFillGaps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 3000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host default lost: %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Engine.MaxSignalDepth != 8 {
		t.Errorf("max depth default = %d", cfg.Engine.MaxSignalDepth)
	}
	if cfg.Engine.RedriveInterval != time.Minute {
		t.Errorf("redrive interval default = %s", cfg.Engine.RedriveInterval)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("server: ["), 0o644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestAddr(t *testing.T) {
	s := ServerConfig{Host: "localhost", Port: 8080}
	if s.Addr() != "localhost:8080" {
		t.Errorf("addr = %q", s.Addr())
	}
}

func TestEnvOverridesDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/override")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("database:\n  url: postgres://file/value\n"), 0o644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.URL != "postgres://env/override" {
		t.Errorf("env should win, got %q", cfg.Database.URL)
	}
}
