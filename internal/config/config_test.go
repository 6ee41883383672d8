package config

import (
	"errors"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.HTTPHost != "0.0.0.0" || cfg.HTTPPort != 8000 {
		t.Errorf("HTTP bind = %s:%d, want 0.0.0.0:8000", cfg.HTTPHost, cfg.HTTPPort)
	}
	if cfg.MetricsPort != 9090 {
		t.Errorf("MetricsPort = %d, want 9090", cfg.MetricsPort)
	}
	if cfg.PprofEnabled {
		t.Error("PprofEnabled = true, want false by default")
	}
	if cfg.AnalyticsTTL != time.Minute {
		t.Errorf("AnalyticsTTL = %v, want 1m", cfg.AnalyticsTTL)
	}
	if cfg.TimeAPIURL == "" {
		t.Error("TimeAPIURL default missing")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("ANALYTICS_CACHE_TTL", "30s")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg := FromEnv()

	if cfg.HTTPPort != 9000 {
		t.Errorf("HTTPPort = %d, want 9000", cfg.HTTPPort)
	}
	if !cfg.PprofEnabled {
		t.Error("PprofEnabled = false, want true")
	}
	if cfg.AnalyticsTTL != 30*time.Second {
		t.Errorf("AnalyticsTTL = %v, want 30s", cfg.AnalyticsTTL)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-number")
	t.Setenv("PPROF_ENABLED", "maybe")

	cfg := FromEnv()

	if cfg.HTTPPort != 8000 {
		t.Errorf("HTTPPort = %d, want default 8000", cfg.HTTPPort)
	}
	if cfg.PprofEnabled {
		t.Error("PprofEnabled = true, want default false")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "Valid",
			mutate:  func(c *Config) { c.DatabaseURL = "postgres://localhost/app" },
			wantErr: nil,
		},
		{
			name:    "MissingDatabaseURL",
			mutate:  func(c *Config) {},
			wantErr: ErrMissingDatabaseURL,
		},
		{
			name: "BadPort",
			mutate: func(c *Config) {
				c.DatabaseURL = "postgres://localhost/app"
				c.HTTPPort = 70000
			},
			wantErr: ErrInvalidPort,
		},
	}

	t.Setenv("DATABASE_URL", "")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromEnv()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
