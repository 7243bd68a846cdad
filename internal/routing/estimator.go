package routing

import (
	"context"
	"math/big"
	"sync"

	"github.com/balancer/solver-scripts/internal/auction"
	"github.com/balancer/solver-scripts/internal/graph"
	"github.com/balancer/solver-scripts/internal/liquidity"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Estimator evaluates path candidates against a liquidity index.
type Estimator struct {
	logger *zap.Logger
}

// NewEstimator creates a new Estimator.
func NewEstimator(logger *zap.Logger) *Estimator {
	return &Estimator{logger: logger}
}

// BestRoute walks every candidate at the given target amount and returns
// the route with the greatest output (sell orders) or the least input
// (buy orders). Ties keep the first-discovered route; candidates arrive
// in the path generator's deterministic order, which makes re-solves
// reproducible. Returns nil when no candidate completes.
func (e *Estimator) BestRoute(
	ctx context.Context,
	order *auction.Order,
	target *big.Int,
	candidates []graph.Path,
	index *liquidity.Index,
) *Route {
	var best *Route

	for _, path := range candidates {
		if ctx.Err() != nil {
			return best
		}

		var route *Route
		if order.Side == auction.SideBuy {
			route = e.walkBuy(ctx, path, target, index)
		} else {
			route = e.walkSell(ctx, path, target, index)
		}
		if route == nil {
			continue
		}

		if best == nil || betterRoute(order.Side, route, best) {
			best = route
		}
	}

	if best != nil {
		RoutesFoundTotal.Inc()
		RouteHops.Observe(float64(len(best.Segments)))
	}
	return best
}

func betterRoute(side auction.Side, candidate, current *Route) bool {
	if side == auction.SideBuy {
		return candidate.Input().Cmp(current.Input()) < 0
	}
	return candidate.Output().Cmp(current.Output()) > 0
}

// walkSell chains fixed-input hops forward along the path. A hop with no
// serving source, or whose every quote errors, kills the candidate.
func (e *Estimator) walkSell(ctx context.Context, path graph.Path, amountIn *big.Int, index *liquidity.Index) *Route {
	segments := make([]Segment, 0, len(path)-1)
	amount := amountIn

	for i := 0; i+1 < len(path); i++ {
		tokenIn, tokenOut := path[i], path[i+1]

		source, out := e.bestQuote(ctx, index.ForPair(tokenIn, tokenOut), func(src liquidity.Source) (*big.Int, error) {
			return src.SwapOut(tokenIn, amount, tokenOut)
		}, false)
		if source == nil {
			return nil
		}

		segments = append(segments, Segment{
			TokenIn:   tokenIn,
			TokenOut:  tokenOut,
			AmountIn:  amount,
			AmountOut: out,
			Source:    source,
		})
		amount = out
	}

	return &Route{Segments: segments}
}

// walkBuy chains fixed-output hops backward from the requested buy
// amount, picking the source demanding the least input at every hop.
func (e *Estimator) walkBuy(ctx context.Context, path graph.Path, amountOut *big.Int, index *liquidity.Index) *Route {
	segments := make([]Segment, len(path)-1)
	amount := amountOut

	for i := len(path) - 2; i >= 0; i-- {
		tokenIn, tokenOut := path[i], path[i+1]
		wanted := amount

		source, in := e.bestQuote(ctx, index.ForPair(tokenIn, tokenOut), func(src liquidity.Source) (*big.Int, error) {
			return src.SwapIn(tokenOut, wanted, tokenIn)
		}, true)
		if source == nil {
			return nil
		}

		segments[i] = Segment{
			TokenIn:   tokenIn,
			TokenOut:  tokenOut,
			AmountIn:  in,
			AmountOut: wanted,
			Source:    source,
		}
		amount = in
	}

	return &Route{Segments: segments}
}

// bestQuote fans one query out to every serving source, waits for all of
// them, and reduces to the best answer. Failed quotes shrink the
// candidate set instead of aborting the reduction; on equal amounts the
// source listed first wins.
func (e *Estimator) bestQuote(
	ctx context.Context,
	sources []liquidity.Source,
	quote func(liquidity.Source) (*big.Int, error),
	wantMin bool,
) (liquidity.Source, *big.Int) {
	if len(sources) == 0 || ctx.Err() != nil {
		return nil, nil
	}

	amounts := make([]*big.Int, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src liquidity.Source) {
			defer wg.Done()
			out, err := quote(src)
			if err != nil {
				QuotesTotal.WithLabelValues(string(src.Kind()), "error").Inc()
				return
			}
			QuotesTotal.WithLabelValues(string(src.Kind()), "ok").Inc()
			amounts[i] = out
		}(i, src)
	}
	wg.Wait()

	bestIdx := -1
	for i, amount := range amounts {
		if amount == nil || amount.Sign() <= 0 {
			continue
		}
		if bestIdx < 0 {
			bestIdx = i
			continue
		}
		cmp := amount.Cmp(amounts[bestIdx])
		if (wantMin && cmp < 0) || (!wantMin && cmp > 0) {
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return nil, nil
	}
	return sources[bestIdx], amounts[bestIdx]
}

// refPrice returns the native reference price for a token, or nil.
func refPrice(tokens map[common.Address]auction.Token, token common.Address) *big.Int {
	meta, ok := tokens[token]
	if !ok || meta.ReferencePrice == nil {
		return nil
	}
	return meta.ReferencePrice.Int()
}
