package liquidity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DecodedTotal tracks decoded liquidity records by kind.
	DecodedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solver_liquidity_decoded_total",
			Help: "Total number of liquidity records decoded",
		},
		[]string{"kind"},
	)

	// DecodeFailuresTotal tracks liquidity records dropped during decoding.
	DecodeFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solver_liquidity_decode_failures_total",
		Help: "Total number of liquidity records dropped because they failed to decode",
	})
)
