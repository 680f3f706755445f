package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazelview/studyloop/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STUDYLOOP_DATABASE_URL", "postgres://localhost:5432/studyloop")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "postgres://localhost:5432/studyloop", cfg.Database.URL)
	assert.Equal(t, 0.9, cfg.Scheduler.TargetRetention)
	assert.True(t, cfg.Session.ShuffleNew)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("STUDYLOOP_DATABASE_URL", "")

	_, err := config.Load("")
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STUDYLOOP_DATABASE_URL", "postgres://localhost:5432/studyloop")
	t.Setenv("STUDYLOOP_LOGGER_LEVEL", "debug")
	t.Setenv("STUDYLOOP_SCHEDULER_TARGET_RETENTION", "0.85")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 0.85, cfg.Scheduler.TargetRetention)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("STUDYLOOP_DATABASE_URL", "postgres://localhost:5432/studyloop")

	t.Run("retention above one", func(t *testing.T) {
		t.Setenv("STUDYLOOP_SCHEDULER_TARGET_RETENTION", "1.5")
		_, err := config.Load("")
		assert.Error(t, err)
	})

	t.Run("unknown log level", func(t *testing.T) {
		t.Setenv("STUDYLOOP_LOGGER_LEVEL", "verbose")
		_, err := config.Load("")
		assert.Error(t, err)
	})
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := []byte(`
logger:
  level: warn
database:
  url: postgres://db.internal:5432/studyloop
scheduler:
  target_retention: 0.8
session:
  shuffle_new: false
`)
	require.NoError(t, os.WriteFile(path, contents, 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "postgres://db.internal:5432/studyloop", cfg.Database.URL)
	assert.Equal(t, 0.8, cfg.Scheduler.TargetRetention)
	assert.False(t, cfg.Session.ShuffleNew)
}
