package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exporter.yaml")
	data := []byte(`
host: https://spaces.example.org
files_host: https://files.example.org
browser:
  width: 800
  navigation_timeout: 30s
queue:
  subject: export-jobs
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Host != "https://spaces.example.org" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if cfg.Browser.Width != 800 {
		t.Errorf("Browser.Width = %d, want 800", cfg.Browser.Width)
	}
	if cfg.Browser.NavigationTimeout != 30*time.Second {
		t.Errorf("NavigationTimeout = %v", cfg.Browser.NavigationTimeout)
	}
	if cfg.Queue.Subject != "export-jobs" {
		t.Errorf("Queue.Subject = %q", cfg.Queue.Subject)
	}
	// Defaults fill the rest.
	if cfg.Browser.Height != 1200 {
		t.Errorf("Browser.Height default = %d, want 1200", cfg.Browser.Height)
	}
	if cfg.Browser.SettleDelay != 5*time.Second {
		t.Errorf("SettleDelay default = %v", cfg.Browser.SettleDelay)
	}
}

func TestDefaultAppliesEnv(t *testing.T) {
	t.Setenv("GRAASP_HOST", "https://env.example.org")
	t.Setenv("EXPORT_TOPIC", "export-env")

	cfg := Default()
	if cfg.Host != "https://env.example.org" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if cfg.Queue.Subject != "export-env" {
		t.Errorf("Queue.Subject = %q", cfg.Queue.Subject)
	}
	if cfg.AuthTypeHost != "https://env.example.org/login-type" {
		t.Errorf("AuthTypeHost = %q", cfg.AuthTypeHost)
	}
}
