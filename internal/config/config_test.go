package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad URL", func(c *Config) { c.Server.BaseURL = "not a url" }},
		{"bad timeout", func(c *Config) { c.Server.RequestTimeout = "ten seconds" }},
		{"negative rate", func(c *Config) { c.Server.RequestsPerSecond = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	c := DefaultConfig()
	c.Server.BaseURL = "https://ygo.example.com"
	c.Decks.WatchDir = "/tmp/decks"
	c.App.DebugMode = true
	if err := c.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Server.BaseURL != "https://ygo.example.com" {
		t.Errorf("expected saved base URL, got %s", loaded.Server.BaseURL)
	}
	if loaded.Decks.WatchDir != "/tmp/decks" {
		t.Errorf("expected saved watch dir, got %s", loaded.Decks.WatchDir)
	}
	if !loaded.App.DebugMode {
		t.Error("expected debug mode saved")
	}
}

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Server.BaseURL != DefaultConfig().Server.BaseURL {
		t.Errorf("expected defaults, got %s", loaded.Server.BaseURL)
	}
}

func TestCachePathDefaultsToConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c := DefaultConfig()
	path, err := c.CachePath()
	if err != nil {
		t.Fatalf("cache path failed: %v", err)
	}
	if !strings.HasPrefix(path, home) {
		t.Errorf("expected path under home, got %s", path)
	}
	if filepath.Base(path) != "snapshot.db" {
		t.Errorf("expected snapshot.db, got %s", path)
	}

	c.Cache.Path = "/custom/cache.db"
	path, err = c.CachePath()
	if err != nil {
		t.Fatalf("cache path failed: %v", err)
	}
	if path != "/custom/cache.db" {
		t.Errorf("expected explicit path honored, got %s", path)
	}

	if _, err := os.Stat(filepath.Join(home, ".ygo-companion")); err != nil {
		t.Errorf("expected config dir created: %v", err)
	}
}
