package timesource

import (
	"context"
	"time"

	"github.com/Homoney/watch-collection-tracker/internal/clock"
	"github.com/Homoney/watch-collection-tracker/internal/logging"
	"github.com/Homoney/watch-collection-tracker/internal/metrics"
)

var fallbackTotal = metrics.NewCounter(metrics.CounterOpts{
	Name: "timesource_fallback_total",
	Help: "Times the remote time source failed and the local clock was used",
})

// Provider implements the reference-time contract: ask the remote source,
// fall back to the local system clock in UTC on any failure. It never returns
// an error; the boolean reports whether the timestamp is from the external
// service.
type Provider struct {
	remote Source
	clk    clock.Clock
}

// NewProvider wires a Provider from a remote source and a local clock.
func NewProvider(remote Source, clk clock.Clock) *Provider {
	return &Provider{remote: remote, clk: clk}
}

// Now returns the current reference time for tz and its provenance.
func (p *Provider) Now(ctx context.Context, tz string) (time.Time, bool) {
	t, err := p.remote.Now(ctx, tz)
	if err != nil {
		fallbackTotal.Inc()
		fallback := p.clk.Now().UTC()
		logging.L(ctx).Warn(
			"remote time source unavailable, using local clock",
			logging.StringAttr("timezone", tz),
			logging.TimeAttr("fallback_time", fallback),
			logging.ErrAttr(err),
		)
		return fallback, false
	}

	logging.L(ctx).Debug(
		"fetched reference time",
		logging.StringAttr("timezone", tz),
		logging.TimeAttr("reference_time", t),
	)
	return t, true
}
