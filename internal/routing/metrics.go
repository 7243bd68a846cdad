package routing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QuotesTotal tracks per-source quote queries by kind and result.
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solver_routing_quotes_total",
			Help: "Total number of per-source quote queries",
		},
		[]string{"kind", "result"},
	)

	// RoutesFoundTotal tracks orders for which a complete route was found.
	RoutesFoundTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solver_routing_routes_found_total",
		Help: "Total number of best routes found",
	})

	// RouteHops tracks the hop count of selected routes.
	RouteHops = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "solver_routing_route_hops",
		Help:    "Number of hops in selected routes",
		Buckets: []float64{1, 2, 3, 4},
	})
)
