// Package postgres persists accuracy readings and answers the watch
// ownership question against the shared relational database.
package postgres

import (
	"context"
	_ "embed"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Homoney/watch-collection-tracker/internal/errors"
)

const (
	defaultConnectTimeout = 30 * time.Second
	defaultMaxConns       = 10
)

//go:embed schema.sql
var schemaSQL string

// Config holds connection parameters for the database pool.
type Config struct {
	dsn            string
	maxConns       int32
	connectTimeout time.Duration
}

// Option configures the Config.
type Option func(*Config)

// WithMaxConns sets the pool's maximum connection count (default: 10).
func WithMaxConns(n int32) Option {
	return func(c *Config) {
		c.maxConns = n
	}
}

// WithConnectTimeout bounds the startup connect retries (default: 30s).
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.connectTimeout = d
	}
}

// NewConfig creates a Config for the given DSN and applies options.
func NewConfig(dsn string, opts ...Option) *Config {
	cfg := &Config{
		dsn:            dsn,
		maxConns:       defaultMaxConns,
		connectTimeout: defaultConnectTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// NewPool opens a pgx pool and pings it with exponential backoff until the
// database answers or the connect timeout elapses.
func NewPool(ctx context.Context, cfg *Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse postgres dsn")
	}
	poolCfg.MaxConns = cfg.maxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, "create postgres pool")
	}

	backoffConfig := backoff.NewExponentialBackOff()
	backoffConfig.MaxElapsedTime = cfg.connectTimeout

	err = backoff.Retry(func() error {
		return pool.Ping(ctx)
	}, backoff.WithContext(backoffConfig, ctx))
	if err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	return pool, nil
}

// EnsureSchema creates the accuracy-reading table and its indexes if they do
// not exist. Schemas for the other entities belong to their own services.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "ensure schema")
	}
	return nil
}
