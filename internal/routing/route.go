// Package routing turns path candidates into executable routes: for every
// hop it queries all serving liquidity sources concurrently and keeps the
// best quote, then picks the best complete route per order.
package routing

import (
	"math/big"

	"github.com/balancer/solver-scripts/internal/liquidity"
	"github.com/ethereum/go-ethereum/common"
)

// Segment is one executed hop of a route.
type Segment struct {
	TokenIn   common.Address
	TokenOut  common.Address
	AmountIn  *big.Int
	AmountOut *big.Int
	Source    liquidity.Source
}

// Route is an ordered, token-chained sequence of segments: segment i's
// output token is segment i+1's input token.
type Route struct {
	Segments []Segment
}

// Input returns the route's total input amount.
func (r *Route) Input() *big.Int {
	if len(r.Segments) == 0 {
		return new(big.Int)
	}
	return r.Segments[0].AmountIn
}

// Output returns the route's final output amount.
func (r *Route) Output() *big.Int {
	if len(r.Segments) == 0 {
		return new(big.Int)
	}
	return r.Segments[len(r.Segments)-1].AmountOut
}

// Gas returns the summed gas estimate of all segments.
func (r *Route) Gas() uint64 {
	var gas uint64
	for _, seg := range r.Segments {
		gas += seg.Source.Gas()
	}
	return gas
}
