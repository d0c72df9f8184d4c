// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() should validate, got %v", err)
	}
	if cfg.CacheTTL() != 5*time.Minute {
		t.Errorf("CacheTTL() = %v, want 5m", cfg.CacheTTL())
	}
	if cfg.DebounceInterval() != 100*time.Millisecond {
		t.Errorf("DebounceInterval() = %v, want 100ms", cfg.DebounceInterval())
	}
}

func TestLoadFromPathMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Backend.BaseURL != Default().Backend.BaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.Backend.BaseURL)
	}
}

func TestLoadFromPathTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[backend]
base_url = "https://api.example.com/api/v1"
timeout_secs = 12

[cache]
ttl_minutes = 10

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Backend.BaseURL != "https://api.example.com/api/v1" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.TimeoutSecs != 12 {
		t.Errorf("TimeoutSecs = %d, want 12", cfg.Backend.TimeoutSecs)
	}
	if cfg.Cache.TTLMinutes != 10 {
		t.Errorf("TTLMinutes = %d, want 10", cfg.Cache.TTLMinutes)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q, want light", cfg.UI.Theme)
	}
	// Unset sections fall back to defaults.
	if cfg.Stream.DebounceMs != 100 {
		t.Errorf("DebounceMs = %d, want default 100", cfg.Stream.DebounceMs)
	}
}

func TestLoadFromPathKeepsZeroDebounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[stream]
debounce_ms = 0
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	// Zero disables debouncing; it must survive defaulting.
	if cfg.Stream.DebounceMs != 0 {
		t.Errorf("DebounceMs = %d, want explicit 0 kept", cfg.Stream.DebounceMs)
	}
	if cfg.DebounceInterval() != 0 {
		t.Errorf("DebounceInterval() = %v, want 0", cfg.DebounceInterval())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty base url", func(c *Config) { c.Backend.BaseURL = "" }, "backend.base_url"},
		{"relative base url", func(c *Config) { c.Backend.BaseURL = "/just/a/path" }, "backend.base_url"},
		{"zero timeout", func(c *Config) { c.Backend.TimeoutSecs = 0 }, "backend.timeout_secs"},
		{"negative retries", func(c *Config) { c.Backend.MaxRetries = -1 }, "backend.max_retries"},
		{"zero ttl", func(c *Config) { c.Cache.TTLMinutes = 0 }, "cache.ttl_minutes"},
		{"huge debounce", func(c *Config) { c.Stream.DebounceMs = 5000 }, "stream.debounce_ms"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace2" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q should name field %s", err, tt.field)
			}
		})
	}
}

func TestSetDefaultsClamps(t *testing.T) {
	cfg := Default()
	cfg.Backend.TimeoutSecs = 9999
	cfg.Cache.TTLMinutes = 500
	cfg.Stream.DebounceMs = 100000
	cfg.SetDefaults()

	if cfg.Backend.TimeoutSecs != 300 {
		t.Errorf("TimeoutSecs = %d, want clamped to 300", cfg.Backend.TimeoutSecs)
	}
	if cfg.Cache.TTLMinutes != 120 {
		t.Errorf("TTLMinutes = %d, want clamped to 120", cfg.Cache.TTLMinutes)
	}
	if cfg.Stream.DebounceMs != 1000 {
		t.Errorf("DebounceMs = %d, want clamped to 1000", cfg.Stream.DebounceMs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("clamped config should validate, got %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("ARTUI_BACKEND_URL", "https://env.example.com")
	t.Setenv("ARTUI_THEME", "auto")
	t.Setenv("ARTUI_CACHE_TTL_MINUTES", "15")
	t.Setenv("ARTUI_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Backend.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
	if cfg.Cache.TTLMinutes != 15 {
		t.Errorf("TTLMinutes = %d", cfg.Cache.TTLMinutes)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q", cfg.Log.Level)
	}
}

func TestEnvOverrideIgnoresGarbageTTL(t *testing.T) {
	t.Setenv("ARTUI_CACHE_TTL_MINUTES", "not-a-number")
	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Cache.TTLMinutes != 5 {
		t.Errorf("TTLMinutes = %d, want default kept", cfg.Cache.TTLMinutes)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Backend.BaseURL = "https://saved.example.com"
	cfg.UI.CompactMode = true
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.Backend.BaseURL != cfg.Backend.BaseURL {
		t.Errorf("BaseURL = %q, want %q", loaded.Backend.BaseURL, cfg.Backend.BaseURL)
	}
	if !loaded.UI.CompactMode {
		t.Error("CompactMode should survive the round trip")
	}
}

func TestLoadFixesInsecurePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[ui]\ntheme = \"dark\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want tightened to 0600", perm)
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[ui]\ntheme = \"dark\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("[ui]\ntheme = \"light\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.UI.Theme != "light" {
			t.Errorf("Theme = %q, want light", cfg.UI.Theme)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never fired")
	}
}
