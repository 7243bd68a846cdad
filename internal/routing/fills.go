package routing

import (
	"context"
	"math/big"

	"github.com/balancer/solver-scripts/internal/auction"
	"github.com/balancer/solver-scripts/internal/graph"
	"github.com/balancer/solver-scripts/internal/liquidity"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// amountScale converts reference prices (native wei per 1e18 base units)
// into values.
var amountScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// FillSizes returns the candidate fill amounts for an order: the target
// amount halved successively, attempts times, stopping below minRatio of
// the target. Orders that are not partially fillable get exactly one
// candidate, the full amount.
func FillSizes(order *auction.Order, attempts int, minRatio float64) []*big.Int {
	target := new(big.Int).Set(order.TargetAmount())

	if !order.PartiallyFillable || attempts <= 1 {
		return []*big.Int{target}
	}

	threshold := scaleByRatio(target, minRatio)
	sizes := make([]*big.Int, 0, attempts)
	size := target

	for i := 0; i < attempts; i++ {
		if size.Sign() <= 0 || (i > 0 && size.Cmp(threshold) < 0) {
			break
		}
		sizes = append(sizes, size)
		size = new(big.Int).Rsh(size, 1)
	}

	return sizes
}

// BestFill evaluates every fill size and keeps the size/route combination
// with the best realized value net of gas. Returns the route and the fill
// size it was estimated at; nil when no size routes.
func (e *Estimator) BestFill(
	ctx context.Context,
	order *auction.Order,
	candidates []graph.Path,
	index *liquidity.Index,
	attempts int,
	minRatio float64,
	gasPrice *big.Int,
	tokens map[common.Address]auction.Token,
) *Route {
	var (
		best      *Route
		bestScore *big.Int
	)

	for _, size := range FillSizes(order, attempts, minRatio) {
		if ctx.Err() != nil {
			break
		}

		route := e.BestRoute(ctx, order, size, candidates, index)
		if route == nil {
			continue
		}
		if !respectsLimit(order, size, route) {
			e.logger.Debug("route-violates-limit-price",
				zap.String("order-uid", order.UID),
				zap.String("fill-size", size.String()))
			continue
		}

		score := e.score(order, route, gasPrice, tokens)
		if best == nil || score.Cmp(bestScore) > 0 {
			best = route
			bestScore = score
		}
	}

	return best
}

// respectsLimit checks the route against the order's limit price, scaled
// to the evaluated fill size.
func respectsLimit(order *auction.Order, size *big.Int, route *Route) bool {
	if order.Side == auction.SideBuy {
		// Required input for `size` output must not exceed the scaled
		// maximum sell amount: in * buyAmount <= sellAmount * size.
		lhs := new(big.Int).Mul(route.Input(), order.BuyAmount.Int())
		rhs := new(big.Int).Mul(order.SellAmount.Int(), size)
		return lhs.Cmp(rhs) <= 0
	}

	// Output for `size` input must cover the scaled minimum buy amount:
	// out * sellAmount >= buyAmount * size.
	lhs := new(big.Int).Mul(route.Output(), order.SellAmount.Int())
	rhs := new(big.Int).Mul(order.BuyAmount.Int(), size)
	return lhs.Cmp(rhs) >= 0
}

// score ranks a route by its surplus over the order's limit price scaled
// to the evaluated fill: output beyond the scaled minimum for sells,
// input saved under the scaled maximum for buys. The surplus accrues in
// the order's non-fixed token, so larger in-limit fills always outrank
// smaller ones. With a reference price for that token the surplus is
// converted to native wei and netted against route gas.
func (e *Estimator) score(order *auction.Order, route *Route, gasPrice *big.Int, tokens map[common.Address]auction.Token) *big.Int {
	var (
		surplus      *big.Int
		surplusToken common.Address
	)

	if order.Side == auction.SideBuy {
		// Scaled maximum input: out * sellAmount / buyAmount.
		limit := new(big.Int).Mul(route.Output(), order.SellAmount.Int())
		limit.Div(limit, order.BuyAmount.Int())
		surplus = limit.Sub(limit, route.Input())
		surplusToken = order.SellToken
	} else {
		// Scaled minimum output: in * buyAmount / sellAmount.
		limit := new(big.Int).Mul(route.Input(), order.BuyAmount.Int())
		limit.Div(limit, order.SellAmount.Int())
		surplus = new(big.Int).Sub(route.Output(), limit)
		surplusToken = order.BuyToken
	}

	price := refPrice(tokens, surplusToken)
	if price == nil {
		return surplus
	}

	value := new(big.Int).Mul(surplus, price)
	value.Div(value, amountScale)
	gasCost := new(big.Int).Mul(new(big.Int).SetUint64(route.Gas()), gasPrice)
	return value.Sub(value, gasCost)
}

func scaleByRatio(amount *big.Int, ratio float64) *big.Int {
	if ratio <= 0 {
		return new(big.Int)
	}
	r := new(big.Rat).SetFloat64(ratio)
	threshold := new(big.Int).Mul(amount, r.Num())
	return threshold.Div(threshold, r.Denom())
}
