package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.SendWindow != DefaultConfig().Session.SendWindow {
		t.Fatalf("expected default send window, got %d", cfg.Session.SendWindow)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	yamlBody := "Session:\n  SendWindow: 64\n  TickInterval: 500ms\nLog:\n  Level: debug\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.SendWindow != 64 {
		t.Errorf("SendWindow = %d, want 64", cfg.Session.SendWindow)
	}
	if cfg.Session.TickInterval != 500*time.Millisecond {
		t.Errorf("TickInterval = %v, want 500ms", cfg.Session.TickInterval)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	// Fields the file didn't mention keep their defaults.
	if cfg.Session.RecvWindow != DefaultConfig().Session.RecvWindow {
		t.Errorf("RecvWindow = %d, want default %d", cfg.Session.RecvWindow, DefaultConfig().Session.RecvWindow)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("Session: [this is not a mapping"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
