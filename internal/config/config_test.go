package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"medcore/m/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"CACHE_BACKEND", "REMOTE_URL", "REMOTE_TIMEOUT", "OUTBOX_ENABLED", "HTTP_PORT"} {
		t.Setenv(key, "")
	}
	cfg := config.Load()

	assert.Equal(t, "sqlite", cfg.CacheBackend)
	assert.Equal(t, 5*time.Second, cfg.RemoteTimeout)
	assert.True(t, cfg.OutboxEnabled)
	assert.False(t, cfg.RemoteEnabled())
	assert.Equal(t, "8080", cfg.HTTPPort)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REMOTE_URL", "http://records.local/")
	t.Setenv("REMOTE_TIMEOUT", "2s")
	t.Setenv("OUTBOX_ENABLED", "false")
	t.Setenv("CACHE_BACKEND", "FILE")
	cfg := config.Load()

	assert.Equal(t, "http://records.local", cfg.RemoteURL)
	assert.Equal(t, 2*time.Second, cfg.RemoteTimeout)
	assert.False(t, cfg.OutboxEnabled)
	assert.Equal(t, "file", cfg.CacheBackend)
	assert.True(t, cfg.RemoteEnabled())
}

func TestLoadFallsBackOnInvalidValues(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")
	t.Setenv("REMOTE_TIMEOUT", "soon")
	t.Setenv("SYNC_CONCURRENCY", "0")
	cfg := config.Load()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 1, cfg.SyncConcurrency)
}
