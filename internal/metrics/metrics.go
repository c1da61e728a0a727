// Package metrics holds the Prometheus collectors shared by the store, the
// view engine endpoints, and the HTTP layer. Collectors register with the
// default registry and are exposed through promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Replace transaction outcomes.
const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
	OutcomeRejected   = "rejected"
)

var (
	// HTTPRequests counts served requests by route pattern, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvas_http_requests_total",
		Help: "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status"})

	// HTTPDuration tracks request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "canvas_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// ProjectionDuration tracks how long projecting a view takes.
	ProjectionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "canvas_projection_duration_seconds",
		Help:    "View projection duration in seconds by source",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
	}, []string{"source"})

	// ProjectedRecords tracks the size of the collection fed to a projection.
	ProjectedRecords = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "canvas_projection_input_records",
		Help:    "Number of records fed into a view projection",
		Buckets: []float64{10, 100, 1000, 10000, 50000},
	})

	// ReplaceTransactions counts nested-collection replace transactions.
	ReplaceTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvas_replace_transactions_total",
		Help: "Value proposition child replace transactions by outcome",
	}, []string{"outcome"})

	// DefaultViewSwaps counts successful default view changes, including
	// lazy seeding of the built-in default.
	DefaultViewSwaps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvas_default_view_swaps_total",
		Help: "Default view changes by cause",
	}, []string{"cause"})
)
