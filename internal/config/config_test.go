package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func isolateConfig(t *testing.T) string {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("config paths are derived from XDG variables on linux only")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	return dir
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	isolateConfig(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerURL != "http://localhost:8743" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.DataDir == "" || cfg.TranscriptsDir == "" || cfg.LogPath == "" {
		t.Errorf("default paths not derived: %+v", cfg)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	isolateConfig(t)

	cfg := DefaultConfig()
	cfg.ServerURL = "http://deck.internal:9000"
	cfg.Offline = true
	cfg.DisableAnimations = true
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.ServerURL != "http://deck.internal:9000" {
		t.Errorf("ServerURL = %q", loaded.ServerURL)
	}
	if !loaded.Offline || !loaded.DisableAnimations {
		t.Errorf("booleans not preserved: %+v", loaded)
	}
}

func TestLoadFillsEmptyFields(t *testing.T) {
	isolateConfig(t)

	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"server_url":""}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerURL == "" || cfg.DataDir == "" || cfg.LogLevel == "" {
		t.Errorf("empty fields not re-derived: %+v", cfg)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	isolateConfig(t)

	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for malformed config")
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := &Config{DataDir: "/var/lib/taskdeck"}
	want := filepath.Join("/var/lib/taskdeck", "taskdeck.db")
	if got := cfg.DatabasePath(); got != want {
		t.Errorf("DatabasePath() = %q, want %q", got, want)
	}
}
