// ABOUTME: Tests for client configuration management
// ABOUTME: Verifies config loading, saving, validation, and environment overrides

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config and data homes at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, k := range []string{
		"VITE_API_URL", "NOTES_API_URL", "NOTES_TIMEOUT", "NOTES_TOKEN_STORE",
		"NOTES_TOKEN_STORE_PATH", "NOTES_LOG_LEVEL", "NOTES_LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
	// An empty prefix is meaningful, so this one must be truly unset.
	t.Setenv("NOTES_API_PREFIX", "")
	require.NoError(t, os.Unsetenv("NOTES_API_PREFIX"))
	return dir
}

func TestConfigPath(t *testing.T) {
	dir := isolate(t)

	assert.Equal(t, filepath.Join(dir, "config", "notes", "config.yaml"), ConfigPath())
	assert.Equal(t, filepath.Dir(ConfigPath()), ConfigDir())
	assert.Equal(t, filepath.Join(dir, "data", "notes"), DataDir())
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoadConfig(t *testing.T) {
	isolate(t)

	cfg := DefaultConfig()
	cfg.APIURL = "https://notes.example.com"
	cfg.PathPrefix = ""
	cfg.Timeout = 3 * time.Second
	cfg.TokenStore.Backend = BackendSQLite

	require.NoError(t, SaveConfig(cfg))
	assert.True(t, ConfigExists())

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://notes.example.com", loaded.APIURL)
	assert.Equal(t, "", loaded.PathPrefix)
	assert.Equal(t, 3*time.Second, loaded.Timeout)
	assert.Equal(t, BackendSQLite, loaded.TokenStore.Backend)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	isolate(t)

	require.NoError(t, os.MkdirAll(ConfigDir(), 0750))
	require.NoError(t, os.WriteFile(ConfigPath(), []byte("api_url: [unclosed"), 0600))

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)

	t.Run("notes vars", func(t *testing.T) {
		t.Setenv("NOTES_API_URL", "https://env.example.com")
		t.Setenv("NOTES_API_PREFIX", "")
		t.Setenv("NOTES_TIMEOUT", "2s")
		t.Setenv("NOTES_TOKEN_STORE", "SQLite")
		t.Setenv("NOTES_LOG_LEVEL", "debug")

		cfg := DefaultConfig()
		applyEnvOverrides(cfg)

		assert.Equal(t, "https://env.example.com", cfg.APIURL)
		assert.Equal(t, "", cfg.PathPrefix)
		assert.Equal(t, 2*time.Second, cfg.Timeout)
		assert.Equal(t, BackendSQLite, cfg.TokenStore.Backend)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("vite url is lower priority", func(t *testing.T) {
		t.Setenv("VITE_API_URL", "https://vite.example.com")
		t.Setenv("NOTES_API_URL", "")

		cfg := DefaultConfig()
		applyEnvOverrides(cfg)
		assert.Equal(t, "https://vite.example.com", cfg.APIURL)

		t.Setenv("NOTES_API_URL", "https://env.example.com")
		cfg = DefaultConfig()
		applyEnvOverrides(cfg)
		assert.Equal(t, "https://env.example.com", cfg.APIURL)
	})

	t.Run("invalid timeout ignored", func(t *testing.T) {
		t.Setenv("NOTES_TIMEOUT", "soon")

		cfg := DefaultConfig()
		applyEnvOverrides(cfg)
		assert.Equal(t, 10*time.Second, cfg.Timeout)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "missing url", mutate: func(c *Config) { c.APIURL = "" }, wantErr: "api_url is required"},
		{name: "relative url", mutate: func(c *Config) { c.APIURL = "notes.example.com" }, wantErr: "invalid api_url"},
		{name: "bad backend", mutate: func(c *Config) { c.TokenStore.Backend = "redis" }, wantErr: "unknown token store backend"},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: "timeout must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTokenStorePath(t *testing.T) {
	dir := isolate(t)

	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join(dir, "data", "notes", "session"), cfg.TokenStorePath())

	cfg.TokenStore.Backend = BackendSQLite
	assert.Equal(t, filepath.Join(dir, "data", "notes", "session.db"), cfg.TokenStorePath())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	cfg.TokenStore.Path = "~/tokens"
	assert.Equal(t, filepath.Join(home, "tokens"), cfg.TokenStorePath())
}

func TestLoadFileIgnoresEnvironment(t *testing.T) {
	isolate(t)

	cfg := DefaultConfig()
	cfg.APIURL = "https://file.example.com"
	require.NoError(t, SaveConfig(cfg))
	t.Setenv("NOTES_API_URL", "https://env.example.com")

	fromFile, err := LoadFile()
	require.NoError(t, err)
	assert.Equal(t, "https://file.example.com", fromFile.APIURL)

	effective, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", effective.APIURL)
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.Unsetenv("NOTES_LOG_LEVEL"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NOTES_LOG_LEVEL=debug\n"), 0600))
	t.Chdir(dir)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}
