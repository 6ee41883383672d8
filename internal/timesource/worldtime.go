// Package timesource obtains the reference timestamps readings are measured
// against: a remote world-time HTTP service when it is reachable, the local
// system clock in UTC when it is not.
package timesource

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Homoney/watch-collection-tracker/internal/errors"
)

const (
	defaultBaseURL = "https://worldtimeapi.org/api/timezone"
	defaultTimeout = 3 * time.Second
)

// Source yields the current time for a timezone identifier.
type Source interface {
	Now(ctx context.Context, tz string) (time.Time, error)
}

// WorldTimeClient fetches the current time from a world-time HTTP API. The
// endpoint returns a JSON body with an ISO-8601 "datetime" field scoped to
// the requested timezone. A circuit breaker short-circuits calls while the
// service is failing, so degraded periods cost nothing per request.
type WorldTimeClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// WorldTimeOption configures a WorldTimeClient.
type WorldTimeOption func(*WorldTimeClient)

// WithBaseURL overrides the world-time API base URL.
func WithBaseURL(url string) WorldTimeOption {
	return func(c *WorldTimeClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) WorldTimeOption {
	return func(c *WorldTimeClient) {
		c.httpClient = hc
	}
}

// WithBreakerSettings overrides the circuit breaker configuration.
func WithBreakerSettings(settings gobreaker.Settings) WorldTimeOption {
	return func(c *WorldTimeClient) {
		c.breaker = gobreaker.NewCircuitBreaker(settings)
	}
}

// NewWorldTimeClient creates a client with a 3-second timeout and a default
// circuit breaker.
func NewWorldTimeClient(opts ...WorldTimeOption) *WorldTimeClient {
	c := &WorldTimeClient{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "worldtime"})
	}
	return c
}

// worldTimeResponse is the subset of the API body we consume.
type worldTimeResponse struct {
	Datetime string `json:"datetime"`
}

// Now fetches the current time for tz. A single attempt per call; retries are
// the caller's business (the provider falls back to the local clock instead).
func (c *WorldTimeClient) Now(ctx context.Context, tz string) (time.Time, error) {
	if tz == "" {
		tz = "UTC"
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx, tz)
	})
	if err != nil {
		return time.Time{}, err
	}
	return result.(time.Time), nil
}

func (c *WorldTimeClient) fetch(ctx context.Context, tz string) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+tz, nil)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "build world-time request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "fetch world time")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, errors.Errorf("world-time API returned status %d", resp.StatusCode)
	}

	var body worldTimeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return time.Time{}, errors.Wrap(err, "decode world-time response")
	}

	t, err := time.Parse(time.RFC3339Nano, body.Datetime)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "parse world-time datetime")
	}
	return t, nil
}
