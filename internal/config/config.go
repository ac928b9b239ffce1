package config

import (
	"os"
	"strconv"
	"time"

	"github.com/mrleolava/job-search-command-center/internal/errors"
)

type Config struct {
	HTTPPort string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	NATSURL         string
	NATSConnTimeout time.Duration

	// ClickHouse is the analytics sink for run reports; leaving the DSN
	// empty disables it.
	ClickHouseDSN      string
	ClickHouseUsername string
	ClickHousePassword string
	ClickHouseDatabase string

	GreenhouseAPIBaseURL string
	AshbyAPIBaseURL      string
	LeverAPIBaseURL      string

	ProviderTimeout time.Duration
	DetectTimeout   time.Duration
	FetchWorkers    int

	// ScrapeInterval of zero disables the cron scheduler; runs are then
	// only triggered through the HTTP API.
	ScrapeInterval time.Duration

	OTLPCollectorURL string
}

func LoadConfig() (*Config, error) {
	config := &Config{
		HTTPPort: getEnvString("HTTP_PORT", "8080"),

		DatabaseURL: getEnvString("DATABASE_URL", ""),

		RedisAddr:     getEnvString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 15*time.Minute),

		NATSURL:         getEnvString("NATS_URL", "nats://localhost:4222"),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),

		ClickHouseDSN:      getEnvString("CLICKHOUSE_DSN", ""),
		ClickHouseUsername: getEnvString("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnvString("CLICKHOUSE_PASSWORD", ""),
		ClickHouseDatabase: getEnvString("CLICKHOUSE_DATABASE", "jobsearch"),

		GreenhouseAPIBaseURL: getEnvString("GREENHOUSE_API_BASE_URL", "https://boards-api.greenhouse.io/v1"),
		AshbyAPIBaseURL:      getEnvString("ASHBY_API_BASE_URL", "https://api.ashbyhq.com"),
		LeverAPIBaseURL:      getEnvString("LEVER_API_BASE_URL", "https://api.lever.co/v0"),

		ProviderTimeout: getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second),
		DetectTimeout:   getEnvDuration("DETECT_TIMEOUT", 5*time.Second),
		FetchWorkers:    getEnvInt("FETCH_WORKERS", 5),

		ScrapeInterval: getEnvDuration("SCRAPE_INTERVAL", 0),

		OTLPCollectorURL: getEnvString("OTLP_COLLECTOR_URL", ""),
	}

	if config.DatabaseURL == "" {
		return nil, errors.InvalidInput("DATABASE_URL is required", nil)
	}

	return config, nil
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
