package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Listen != "127.0.0.1:7467" {
		t.Errorf("Listen = %s, want default", cfg.Listen)
	}
	if cfg.Profile != "local" {
		t.Errorf("Profile = %s, want local", cfg.Profile)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "listen: 0.0.0.0:9000\nreminder:\n  interval: 30s\n  window: 2h\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Listen != "0.0.0.0:9000" {
		t.Errorf("Listen = %s, want 0.0.0.0:9000", cfg.Listen)
	}
	if cfg.Reminder.Interval != 30*time.Second {
		t.Errorf("Interval = %v, want 30s", cfg.Reminder.Interval)
	}
	if cfg.Reminder.Window != 2*time.Hour {
		t.Errorf("Window = %v, want 2h", cfg.Reminder.Window)
	}
	// Untouched fields keep defaults.
	if cfg.Profile != "local" {
		t.Errorf("Profile = %s, want local", cfg.Profile)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen: \"\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for empty listen address")
	}
}
