package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.WriteTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.GitHub.Token)
	assert.Equal(t, 15*time.Second, cfg.GitHub.HTTPTimeout)
	assert.False(t, cfg.GitHub.IncludeStarred)
	assert.Equal(t, 8, cfg.Readme.Concurrency)
	assert.Equal(t, 10*time.Second, cfg.Readme.Timeout)
	assert.Equal(t, 256, cfg.Cache.Size)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DEVPROFILE_PORT", "9090")
	t.Setenv("DEVPROFILE_README_CONCURRENCY", "4")
	t.Setenv("DEVPROFILE_README_TIMEOUT", "3s")
	t.Setenv("DEVPROFILE_GITHUB_INCLUDE_STARRED", "true")
	t.Setenv("GITHUB_TOKEN", "ghp_example")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 4, cfg.Readme.Concurrency)
	assert.Equal(t, 3*time.Second, cfg.Readme.Timeout)
	assert.True(t, cfg.GitHub.IncludeStarred)
	assert.Equal(t, "ghp_example", cfg.GitHub.Token)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_PrefixedBeatsConventional(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("DEVPROFILE_PORT", "7001")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Port)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devprofile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 8181
cache:
  size: 10
  ttl: 30s
cors:
  origins: ["https://example.com"]
`), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Port)
	assert.Equal(t, 10, cfg.Cache.Size)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, []string{"https://example.com"}, cfg.CORS.Origins)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "port out of range", env: map[string]string{"DEVPROFILE_PORT": "70000"}},
		{name: "unknown log level", env: map[string]string{"DEVPROFILE_LOG_LEVEL": "loud"}},
		{name: "zero concurrency", env: map[string]string{"DEVPROFILE_README_CONCURRENCY": "0"}},
		{name: "negative readme timeout", env: map[string]string{"DEVPROFILE_README_TIMEOUT": "-1s"}},
		{name: "bad base URL", env: map[string]string{"DEVPROFILE_GITHUB_BASE_URL": "not a url"}},
		{name: "zero write timeout", env: map[string]string{"DEVPROFILE_WRITE_TIMEOUT": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(New(), "")
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("values reach viper", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("DEVPROFILE_CACHE_SIZE=42\n"), 0o600))
		t.Setenv("DEVPROFILE_CACHE_SIZE", "")
		require.NoError(t, os.Unsetenv("DEVPROFILE_CACHE_SIZE"))

		require.NoError(t, LoadDotEnv(path))
		cfg, err := Load(New(), "")
		require.NoError(t, err)
		assert.Equal(t, 42, cfg.Cache.Size)
	})

	t.Run("existing environment wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("DEVPROFILE_CACHE_SIZE=42\n"), 0o600))
		t.Setenv("DEVPROFILE_CACHE_SIZE", "7")

		require.NoError(t, LoadDotEnv(path))
		cfg, err := Load(New(), "")
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.Cache.Size)
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Log: LogConfig{Level: "warn", Format: "json"}}

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
