package solver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SolveDurationSeconds tracks end-to-end solve latency.
	SolveDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "solver_solve_duration_seconds",
		Help:    "Duration of one solve request",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
	})

	// OrdersRoutedTotal tracks orders that produced a solution.
	OrdersRoutedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solver_orders_routed_total",
		Help: "Total number of orders routed into a solution",
	})

	// OrdersSkippedTotal tracks omitted orders by reason.
	OrdersSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solver_orders_skipped_total",
			Help: "Total number of orders omitted from solutions",
		},
		[]string{"reason"},
	)

	// DeadlinesExceededTotal tracks solves cut short by the auction deadline.
	DeadlinesExceededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solver_deadlines_exceeded_total",
		Help: "Total number of solves that hit the auction deadline",
	})

	// SolutionsPerAuction tracks how many solutions each solve returned.
	SolutionsPerAuction = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "solver_solutions_per_auction",
		Help:    "Number of solutions returned per auction",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
	})
)
