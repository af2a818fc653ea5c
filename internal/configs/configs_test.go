package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)

	cfg := Load()

	assert.Equal(t, "127.0.0.1:8000", cfg.AppURL)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.BackendURL)
	assert.Equal(t, filepath.Join(dir, "planner.db"), cfg.DatabaseDSN)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, SyncPolicyLocalWins, cfg.SyncPolicy)
	assert.Equal(t, CacheBackendMemory, cfg.CacheBackend)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)

	content := "app_port: \"9100\"\nplanner_sync_policy: revert-on-failure\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	t.Setenv("APP_PORT", "9200")

	cfg := Load()

	assert.Equal(t, "127.0.0.1:9200", cfg.AppURL)
	assert.Equal(t, SyncPolicyRevertOnFailure, cfg.SyncPolicy)
}

func TestValidate(t *testing.T) {
	valid := Config{
		AppURL:       "127.0.0.1:8000",
		DatabaseDSN:  "planner.db",
		Workers:      1,
		QueueSize:    1,
		RateLimit:    1,
		PollInterval: time.Minute,
		HTTPTimeout:  time.Second,
		CacheBackend: CacheBackendMemory,
		SyncPolicy:   SyncPolicyLocalWins,
	}
	require.NoError(t, valid.Validate())

	broken := valid
	broken.Workers = 0
	assert.Error(t, broken.Validate())

	broken = valid
	broken.SyncPolicy = "remote-wins"
	assert.Error(t, broken.Validate())

	broken = valid
	broken.CacheBackend = "memcached"
	assert.Error(t, broken.Validate())
}
