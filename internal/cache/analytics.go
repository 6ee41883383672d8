package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Homoney/watch-collection-tracker/internal/accuracy"
	"github.com/Homoney/watch-collection-tracker/internal/errors"
	"github.com/Homoney/watch-collection-tracker/internal/logging"
	"github.com/Homoney/watch-collection-tracker/internal/metrics"
)

const (
	analyticsKeyPrefix  = "accuracy:analytics:"
	defaultAnalyticsTTL = time.Minute
)

var (
	analyticsHits = metrics.NewCounter(metrics.CounterOpts{
		Name: "analytics_cache_hits_total",
		Help: "Analytics responses served from cache",
	})
	analyticsMisses = metrics.NewCounter(metrics.CounterOpts{
		Name: "analytics_cache_misses_total",
		Help: "Analytics requests that recomputed from storage",
	})
)

// AnalyticsCache caches serialized analytics per watch, invalidated whenever
// that watch's readings change. Implements accuracy.AnalyticsCache.
type AnalyticsCache struct {
	client *Client
	ttl    time.Duration
}

// NewAnalyticsCache creates an analytics cache with the given TTL; ttl <= 0
// uses the one-minute default.
func NewAnalyticsCache(client *Client, ttl time.Duration) *AnalyticsCache {
	if ttl <= 0 {
		ttl = defaultAnalyticsTTL
	}
	return &AnalyticsCache{client: client, ttl: ttl}
}

// Get returns the cached analytics for a watch. Any failure is a miss.
func (c *AnalyticsCache) Get(ctx context.Context, watchID uuid.UUID) (*accuracy.Analytics, bool) {
	payload, err := c.client.get(ctx, analyticsKey(watchID))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.L(ctx).Warn("analytics cache read failed", logging.ErrAttr(err))
		}
		analyticsMisses.Inc()
		return nil, false
	}

	var analytics accuracy.Analytics
	if err := json.Unmarshal(payload, &analytics); err != nil {
		logging.L(ctx).Warn("analytics cache entry corrupt", logging.ErrAttr(err))
		analyticsMisses.Inc()
		return nil, false
	}

	analyticsHits.Inc()
	return &analytics, true
}

// Set stores analytics for a watch. Failures are logged and swallowed.
func (c *AnalyticsCache) Set(ctx context.Context, watchID uuid.UUID, a *accuracy.Analytics) {
	payload, err := json.Marshal(a)
	if err != nil {
		logging.L(ctx).Warn("analytics cache encode failed", logging.ErrAttr(err))
		return
	}
	if err := c.client.set(ctx, analyticsKey(watchID), payload, c.ttl); err != nil {
		logging.L(ctx).Warn("analytics cache write failed", logging.ErrAttr(err))
	}
}

// Invalidate drops the cached analytics for a watch.
func (c *AnalyticsCache) Invalidate(ctx context.Context, watchID uuid.UUID) {
	if err := c.client.del(ctx, analyticsKey(watchID)); err != nil {
		logging.L(ctx).Warn("analytics cache invalidation failed", logging.ErrAttr(err))
	}
}

func analyticsKey(watchID uuid.UUID) string {
	return analyticsKeyPrefix + watchID.String()
}
