package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "http://hr.internal:8000/")
	t.Setenv("DEPARTMENTS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "http://hr.internal:8000", cfg.Upstream.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 12*time.Hour, cfg.Batch.DraftTTL)
	assert.Equal(t, 2, cfg.Batch.JournalWorkers)
	assert.Equal(t, DefaultDepartments, cfg.Departments)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DEPARTMENTS", "Ops, Legal ,")
	t.Setenv("BATCH_SUBMIT_TIMEOUT", "not-a-duration")
	t.Setenv("ENABLE_BATCH_JOURNAL", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Ops", "Legal"}, cfg.Departments)
	assert.Equal(t, time.Minute, cfg.Batch.SubmitTimeout)
	assert.True(t, cfg.Batch.JournalEnabled)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.Local, (&Config{Timezone: "Local"}).Location())
	assert.Equal(t, time.Local, (&Config{Timezone: "Mars/Olympus"}).Location())

	loc := (&Config{Timezone: "UTC"}).Location()
	assert.Equal(t, "UTC", loc.String())
}
