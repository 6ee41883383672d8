// Package cache wraps Redis for read-through caching of analytics responses.
// Cache failures never surface to callers; a broken cache behaves like an
// empty one.
package cache

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/Homoney/watch-collection-tracker/internal/errors"
)

const (
	defaultName         = "cache"
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second
	defaultConnectWait  = 15 * time.Second
)

// Config holds Redis connection parameters.
type Config struct {
	address       string
	password      string
	db            int
	dialTimeout   time.Duration
	readTimeout   time.Duration
	writeTimeout  time.Duration
	connectWait   time.Duration
	breakerConfig gobreaker.Settings
}

// Option configures the Config.
type Option func(*Config)

// WithTimeouts sets connection timeouts.
func WithTimeouts(dial, read, write time.Duration) Option {
	return func(cfg *Config) {
		cfg.dialTimeout = dial
		cfg.readTimeout = read
		cfg.writeTimeout = write
	}
}

// WithCircuitBreaker configures the circuit breaker.
func WithCircuitBreaker(settings gobreaker.Settings) Option {
	return func(cfg *Config) {
		cfg.breakerConfig = settings
	}
}

// WithConnectWait bounds the startup connect retries (default: 15s).
func WithConnectWait(d time.Duration) Option {
	return func(cfg *Config) {
		cfg.connectWait = d
	}
}

// NewConfig creates a Config for the given address and applies options.
func NewConfig(address, password string, db int, opts ...Option) *Config {
	cfg := &Config{
		address:      address,
		password:     password,
		db:           db,
		dialTimeout:  defaultDialTimeout,
		readTimeout:  defaultReadTimeout,
		writeTimeout: defaultWriteTimeout,
		connectWait:  defaultConnectWait,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Client wraps redis.Client with a circuit breaker so a failing Redis cannot
// slow down the read path.
type Client struct {
	*redis.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient connects to Redis, retrying the initial ping with exponential
// backoff.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	baseClient := redis.NewClient(&redis.Options{
		Addr:         cfg.address,
		Password:     cfg.password,
		DB:           cfg.db,
		DialTimeout:  cfg.dialTimeout,
		ReadTimeout:  cfg.readTimeout,
		WriteTimeout: cfg.writeTimeout,
	})

	if cfg.breakerConfig.Name == "" {
		cfg.breakerConfig.Name = defaultName
	}

	client := &Client{
		Client:  baseClient,
		breaker: gobreaker.NewCircuitBreaker(cfg.breakerConfig),
	}

	backoffConfig := backoff.NewExponentialBackOff()
	backoffConfig.MaxElapsedTime = cfg.connectWait

	err := backoff.Retry(func() error {
		_, err := client.breaker.Execute(func() (any, error) {
			return nil, baseClient.Ping(ctx).Err()
		})
		return err
	}, backoff.WithContext(backoffConfig, ctx))
	if err != nil {
		_ = baseClient.Close()
		return nil, errors.Wrap(err, "connect to redis")
	}

	return client, nil
}

// get fetches a key through the breaker.
func (c *Client) get(ctx context.Context, key string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		return c.Client.Get(ctx, key).Bytes()
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// set stores a key through the breaker.
func (c *Client) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.Client.Set(ctx, key, value, ttl).Err()
	})
	return err
}

// del removes a key through the breaker.
func (c *Client) del(ctx context.Context, key string) error {
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.Client.Del(ctx, key).Err()
	})
	return err
}
