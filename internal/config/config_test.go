package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrleolava/job-search-command-center/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobsearch")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 5, cfg.FetchWorkers)
	assert.Equal(t, time.Duration(0), cfg.ScrapeInterval)
	assert.Empty(t, cfg.ClickHouseDSN)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobsearch")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("FETCH_WORKERS", "10")
	t.Setenv("SCRAPE_INTERVAL", "30m")
	t.Setenv("PROVIDER_TIMEOUT", "2s")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 10, cfg.FetchWorkers)
	assert.Equal(t, 30*time.Minute, cfg.ScrapeInterval)
	assert.Equal(t, 2*time.Second, cfg.ProviderTimeout)
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := config.LoadConfig()
	require.Error(t, err)
}
