// ABOUTME: Configuration for the notes client.
// ABOUTME: YAML file under XDG config home, .env loading, and NOTES_* env overrides.

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	AppName        = "notes"
	configFileName = "config.yaml"

	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Config holds client settings.
type Config struct {
	// APIURL is the base URL of the notes API (e.g. https://notes.example.com).
	APIURL string `yaml:"api_url"`

	// PathPrefix is prepended to every API path (default: /api).
	PathPrefix string `yaml:"path_prefix"`

	// Timeout bounds each HTTP round trip.
	Timeout time.Duration `yaml:"timeout"`

	TokenStore TokenStoreConfig `yaml:"token_store"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// TokenStoreConfig selects the durable storage backing the bearer token.
type TokenStoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIURL:     "http://localhost:5000",
		PathPrefix: "/api",
		Timeout:    10 * time.Second,
		TokenStore: TokenStoreConfig{
			Backend: BackendBadger,
		},
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// ConfigDir returns the configuration directory path.
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppName)
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), configFileName)
}

// DataDir returns the data directory holding the token store.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, AppName)
}

// TokenStorePath returns the configured store path, or a backend-specific default.
func (c *Config) TokenStorePath() string {
	if c.TokenStore.Path != "" {
		return expandPath(c.TokenStore.Path)
	}
	if c.TokenStore.Backend == BackendSQLite {
		return filepath.Join(DataDir(), "session.db")
	}
	return filepath.Join(DataDir(), "session")
}

// LoadConfig loads configuration from disk, returns defaults if not found.
// A .env file in the working directory is loaded first so its values act
// as environment overrides.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Debug("ignoring unreadable .env file", "error", err)
	}

	cfg, err := LoadFile()
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile returns defaults overlaid with the config file only, without
// environment overrides. Use it before SaveConfig.
func LoadFile() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	return cfg, nil
}

// SaveConfig writes configuration to disk.
func SaveConfig(cfg *Config) error {
	if err := os.MkdirAll(ConfigDir(), 0750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0600)
}

// ConfigExists returns true if a config file exists.
func ConfigExists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Validate checks the settings that would otherwise fail on first use.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("api_url is required (set NOTES_API_URL or run 'notes config set-url')")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api_url %q", c.APIURL)
	}

	switch c.TokenStore.Backend {
	case BackendBadger, BackendSQLite:
	default:
		return fmt.Errorf("unknown token store backend %q", c.TokenStore.Backend)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// applyEnvOverrides applies NOTES_* environment variables on top of the file.
// VITE_API_URL is honoured for parity with the web client's .env files.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VITE_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("NOTES_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v, ok := os.LookupEnv("NOTES_API_PREFIX"); ok {
		cfg.PathPrefix = v
	}
	if v := os.Getenv("NOTES_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		} else {
			slog.Warn("ignoring invalid NOTES_TIMEOUT", "value", v)
		}
	}
	if v := os.Getenv("NOTES_TOKEN_STORE"); v != "" {
		cfg.TokenStore.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("NOTES_TOKEN_STORE_PATH"); v != "" {
		cfg.TokenStore.Path = v
	}
	if v := os.Getenv("NOTES_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("NOTES_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
