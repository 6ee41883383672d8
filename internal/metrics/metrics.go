// Package metrics exposes Prometheus instrumentation: alias constructors for
// the metric types the service uses, a standalone metrics server, and HTTP
// middleware measuring request durations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registerer allows custom metric registration.
	Registerer = prometheus.DefaultRegisterer
)

// Metric types (aliases from Prometheus).
type (
	CounterOpts   = prometheus.CounterOpts
	HistogramOpts = prometheus.HistogramOpts
	Counter       = prometheus.Counter
	CounterVec    = prometheus.CounterVec
	Histogram     = prometheus.Histogram
	HistogramVec  = prometheus.HistogramVec
)

// NewCounter creates a Counter metric.
func NewCounter(opts CounterOpts) Counter {
	return promauto.With(Registerer).NewCounter(opts)
}

// NewCounterVec creates a CounterVec metric.
func NewCounterVec(opts CounterOpts, labels []string) *CounterVec {
	return promauto.With(Registerer).NewCounterVec(opts, labels)
}

// NewHistogram creates a Histogram metric.
func NewHistogram(opts HistogramOpts) Histogram {
	return promauto.With(Registerer).NewHistogram(opts)
}

// NewHistogramVec creates a HistogramVec metric.
func NewHistogramVec(opts HistogramOpts, labels []string) *HistogramVec {
	return promauto.With(Registerer).NewHistogramVec(opts, labels)
}
