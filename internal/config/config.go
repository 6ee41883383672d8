// Package config loads service configuration from the environment with
// explicit defaults and validation.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/Homoney/watch-collection-tracker/internal/errors"
)

const (
	defaultHTTPHost     = "0.0.0.0"
	defaultHTTPPort     = 8000
	defaultMetricsPort  = 9090
	defaultPprofPort    = 6060
	defaultLogLevel     = "info"
	defaultTimeAPIURL   = "https://worldtimeapi.org/api/timezone"
	defaultAnalyticsTTL = time.Minute
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrInvalidPort        = errors.New("ports must be between 1 and 65535")
)

// Config holds the full service configuration.
type Config struct {
	HTTPHost    string
	HTTPPort    int
	MetricsPort int

	PprofEnabled bool
	PprofPort    int

	LogLevel string

	DatabaseURL string

	RedisAddr     string // empty disables the analytics cache
	RedisPassword string
	RedisDB       int
	AnalyticsTTL  time.Duration

	TimeAPIURL string
}

// FromEnv builds a Config from environment variables, applying defaults for
// everything optional.
func FromEnv() *Config {
	return &Config{
		HTTPHost:      envString("HTTP_HOST", defaultHTTPHost),
		HTTPPort:      envInt("HTTP_PORT", defaultHTTPPort),
		MetricsPort:   envInt("METRICS_PORT", defaultMetricsPort),
		PprofEnabled:  envBool("PPROF_ENABLED", false),
		PprofPort:     envInt("PPROF_PORT", defaultPprofPort),
		LogLevel:      envString("LOG_LEVEL", defaultLogLevel),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		AnalyticsTTL:  envDuration("ANALYTICS_CACHE_TTL", defaultAnalyticsTTL),
		TimeAPIURL:    envString("TIME_API_URL", defaultTimeAPIURL),
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	for _, port := range []int{c.HTTPPort, c.MetricsPort, c.PprofPort} {
		if port <= 0 || port > 65535 {
			return ErrInvalidPort
		}
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
