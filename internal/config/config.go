// Package config loads and saves the companion's TOML configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Server connection settings
	Server ServerConfig `toml:"server"`

	// Offline snapshot cache settings
	Cache CacheConfig `toml:"cache"`

	// Deck import/export settings
	Decks DeckConfig `toml:"decks"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// ServerConfig contains backend connection settings.
type ServerConfig struct {
	BaseURL           string  `toml:"base_url"`            // Backend base URL
	RequestTimeout    string  `toml:"request_timeout"`     // HTTP timeout (e.g., "10s")
	RequestsPerSecond float64 `toml:"requests_per_second"` // Rate limit (0 = unlimited)
}

// CacheConfig contains offline snapshot settings.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"` // Snapshot the collection after each fetch
	Path    string `toml:"path"`    // SQLite database path ("" = default location)
}

// DeckConfig contains deck list import/export settings.
type DeckConfig struct {
	WatchDir  string `toml:"watch_dir"`  // Drop directory for deck list imports
	ExportDir string `toml:"export_dir"` // Where exported deck lists are written
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:           "http://localhost:8080",
			RequestTimeout:    "10s",
			RequestsPerSecond: 10,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    "",
		},
		Decks: DeckConfig{
			WatchDir:  "",
			ExportDir: ".",
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// Dir returns the companion's configuration directory, creating it if needed.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".ygo-companion")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return configDir, nil
}

func configPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from disk. Returns default config if the file
// doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server base URL %q", c.Server.BaseURL)
	}

	if _, err := time.ParseDuration(c.Server.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request timeout %q: %w", c.Server.RequestTimeout, err)
	}

	if c.Server.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second cannot be negative: %f", c.Server.RequestsPerSecond)
	}

	return nil
}

// GetRequestTimeout returns the request timeout as a duration.
func (c *Config) GetRequestTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.RequestTimeout)
}

// CachePath resolves the snapshot database path, defaulting to the config
// directory.
func (c *Config) CachePath() (string, error) {
	if c.Cache.Path != "" {
		return c.Cache.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "snapshot.db"), nil
}
