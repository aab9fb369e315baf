package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 2*time.Hour, cfg.Workspace.SessionTTL)
	assert.False(t, cfg.Workspace.KeepModalOpenOnFailure)
	assert.Equal(t, 3, cfg.Exports.WorkerRetries)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", " Mongo ")
	t.Setenv("DASHBOARD_CACHE_TTL", "30s")
	t.Setenv("WORKSPACE_KEEP_MODAL_OPEN", "true")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMongo, cfg.StoreDriver)
	assert.Equal(t, 30*time.Second, cfg.Dashboard.CacheTTL)
	assert.True(t, cfg.Workspace.KeepModalOpenOnFailure)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestUnknownStoreDriverFallsBackToPostgres(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
}

func TestDashboardLocation(t *testing.T) {
	assert.Equal(t, time.UTC, DashboardConfig{}.Location())
	assert.Equal(t, time.UTC, DashboardConfig{Timezone: "Nowhere/City"}.Location())
	assert.Equal(t, "Asia/Jakarta", DashboardConfig{Timezone: "Asia/Jakarta"}.Location().String())
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}
