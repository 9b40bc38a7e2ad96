package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.Migrate)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TOURNEY_PORT", "9090")
	t.Setenv("TOURNEY_DATABASE_DRIVER", "sqlite")
	t.Setenv("TOURNEY_DATABASE_URL", "file:test.db")
	t.Setenv("TOURNEY_QUERY_TIMEOUT", "250ms")
	t.Setenv("TOURNEY_MIGRATE", "true")
	t.Setenv("TOURNEY_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "file:test.db", cfg.DatabaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.QueryTimeout)
	assert.True(t, cfg.Migrate)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "port: \"7000\"\nlog_level: DEBUG\nlog_format: text\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("driver", func(t *testing.T) {
		t.Setenv("TOURNEY_DATABASE_DRIVER", "mysql")
		_, err := Load(t.TempDir())
		assert.ErrorContains(t, err, "database_driver")
	})
	t.Run("timeout", func(t *testing.T) {
		t.Setenv("TOURNEY_QUERY_TIMEOUT", "0s")
		_, err := Load(t.TempDir())
		assert.ErrorContains(t, err, "query_timeout")
	})
}
