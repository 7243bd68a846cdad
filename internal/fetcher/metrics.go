package fetcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolvesTotal tracks liquidity resolutions by outcome.
	ResolvesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solver_liquidity_resolves_total",
			Help: "Total number of liquidity resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// FetchDurationSeconds tracks liquidity-service round-trip latency.
	FetchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "solver_liquidity_fetch_duration_seconds",
		Help:    "Duration of liquidity service requests",
		Buckets: prometheus.DefBuckets,
	})

	// SourcesFetched tracks the size of fetched liquidity sets.
	SourcesFetched = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "solver_liquidity_sources_fetched",
		Help:    "Number of liquidity sources returned per fetch",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
)
