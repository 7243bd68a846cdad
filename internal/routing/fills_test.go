package routing

import (
	"context"
	"math/big"
	"testing"

	"github.com/balancer/solver-scripts/internal/auction"
	"github.com/balancer/solver-scripts/internal/graph"
	"github.com/balancer/solver-scripts/internal/liquidity"
	"github.com/balancer/solver-scripts/internal/testutil"
	"go.uber.org/zap"
)

func TestFillSizes(t *testing.T) {
	tests := []struct {
		name     string
		partial  bool
		target   int64
		attempts int
		minRatio float64
		want     []int64
	}{
		{
			name:     "fill-or-kill-single-size",
			partial:  false,
			target:   1000,
			attempts: 3,
			minRatio: 0.1,
			want:     []int64{1000},
		},
		{
			name:     "halving-ladder",
			partial:  true,
			target:   1000,
			attempts: 3,
			minRatio: 0.1,
			want:     []int64{1000, 500, 250},
		},
		{
			name:     "ladder-stops-at-min-ratio",
			partial:  true,
			target:   1000,
			attempts: 5,
			minRatio: 0.3,
			// 250 < 300 cuts the ladder short.
			want: []int64{1000, 500},
		},
		{
			name:     "single-attempt",
			partial:  true,
			target:   1000,
			attempts: 1,
			minRatio: 0.1,
			want:     []int64{1000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := testutil.SellOrder("o", testutil.WETH, testutil.USDC, "1000", "1")
			order.SellAmount = auction.NewAmountFromUint64(uint64(tt.target))
			order.PartiallyFillable = tt.partial

			sizes := FillSizes(&order, tt.attempts, tt.minRatio)

			if len(sizes) != len(tt.want) {
				t.Fatalf("expected %d sizes, got %d", len(tt.want), len(sizes))
			}
			for i, want := range tt.want {
				if sizes[i].Cmp(big.NewInt(want)) != 0 {
					t.Errorf("size %d: expected %d, got %s", i, want, sizes[i])
				}
			}
		})
	}
}

func TestBestFill_FullSizeWinsWhenLiquid(t *testing.T) {
	// Deep pool: the full fill routes fine and realizes the most value.
	pool := testutil.FeelessPool("deep", testutil.WETH, "1000000000000", testutil.USDC, "1000000000000")
	index := liquidity.NewIndex([]liquidity.Source{pool})

	order := testutil.SellOrder("o", testutil.WETH, testutil.USDC, "1000000", "900000")
	order.PartiallyFillable = true

	estimator := NewEstimator(zap.NewNop())
	candidates := graph.Candidates(testutil.WETH, testutil.USDC, nil, 0)

	route := estimator.BestFill(context.Background(), &order, candidates, index, 3, 0.1, big.NewInt(0), nil)
	if route == nil {
		t.Fatal("expected a route")
	}
	if route.Input().Cmp(testutil.Big("1000000")) != 0 {
		t.Errorf("expected the full fill, got input %s", route.Input())
	}
}

func TestBestFill_FallsBackToSmallerFill(t *testing.T) {
	// A shallow pool: the full fill violates the limit price, half does not.
	pool := testutil.FeelessPool("shallow", testutil.WETH, "4000000", testutil.USDC, "4000000")
	index := liquidity.NewIndex([]liquidity.Source{pool})

	// Limit allows up to ~12% slippage against the 1:1 spot price.
	order := testutil.SellOrder("o", testutil.WETH, testutil.USDC, "1000000", "880000")
	order.PartiallyFillable = true

	estimator := NewEstimator(zap.NewNop())
	candidates := graph.Candidates(testutil.WETH, testutil.USDC, nil, 0)

	route := estimator.BestFill(context.Background(), &order, candidates, index, 3, 0.1, big.NewInt(0), nil)
	if route == nil {
		t.Fatal("expected a partial fill to route")
	}
	// Full fill: out = 4e6*1e6/5e6 = 800000 < 880000 scaled, rejected.
	// Half fill: out = 4e6*5e5/4.5e6 ≈ 444444 >= 440000, accepted.
	if route.Input().Cmp(testutil.Big("500000")) != 0 {
		t.Errorf("expected the half fill, got input %s", route.Input())
	}
}

func TestBestFill_FillOrKillRejected(t *testing.T) {
	pool := testutil.FeelessPool("shallow", testutil.WETH, "4000000", testutil.USDC, "4000000")
	index := liquidity.NewIndex([]liquidity.Source{pool})

	// Same limit but not partially fillable: no fill is acceptable.
	order := testutil.SellOrder("o", testutil.WETH, testutil.USDC, "1000000", "880000")

	estimator := NewEstimator(zap.NewNop())
	candidates := graph.Candidates(testutil.WETH, testutil.USDC, nil, 0)

	route := estimator.BestFill(context.Background(), &order, candidates, index, 3, 0.1, big.NewInt(0), nil)
	if route != nil {
		t.Errorf("expected no route, got input %s", route.Input())
	}
}

func TestBestFill_BuyOrderLimit(t *testing.T) {
	pool := testutil.FeelessPool("p", testutil.WETH, "1000000000000", testutil.USDC, "1000000000000")
	index := liquidity.NewIndex([]liquidity.Source{pool})

	// Willing to sell up to 950000 for exactly 900000: the ~1:1 pool needs
	// only ~900000 in, well within the limit.
	order := testutil.BuyOrder("o", testutil.WETH, testutil.USDC, "950000", "900000")

	estimator := NewEstimator(zap.NewNop())
	candidates := graph.Candidates(testutil.WETH, testutil.USDC, nil, 0)

	route := estimator.BestFill(context.Background(), &order, candidates, index, 3, 0.1, big.NewInt(0), nil)
	if route == nil {
		t.Fatal("expected a route")
	}
	if route.Input().Cmp(order.SellAmount.Int()) > 0 {
		t.Errorf("input %s exceeds the sell limit %s", route.Input(), order.SellAmount)
	}
}

func TestBestFill_PartialBuyOrderPrefersFullFill(t *testing.T) {
	// Deep pool and a generous 2:1 limit: every ladder size routes within
	// the limit, so the full fill must win, not the smallest one.
	pool := testutil.FeelessPool("deep", testutil.WETH, "1000000000000", testutil.USDC, "1000000000000")
	index := liquidity.NewIndex([]liquidity.Source{pool})

	order := testutil.BuyOrder("o", testutil.WETH, testutil.USDC, "2000000", "1000000")
	order.PartiallyFillable = true

	estimator := NewEstimator(zap.NewNop())
	candidates := graph.Candidates(testutil.WETH, testutil.USDC, nil, 0)

	route := estimator.BestFill(context.Background(), &order, candidates, index, 3, 0.1, big.NewInt(0), nil)
	if route == nil {
		t.Fatal("expected a route")
	}
	if route.Output().Cmp(order.BuyAmount.Int()) != 0 {
		t.Errorf("expected the full buy fill %s, got output %s", order.BuyAmount, route.Output())
	}
}

func TestBestFill_PartialBuyOrderLadder(t *testing.T) {
	// Shallow pool: the full buy needs ~1333334 in, over the 1250000 limit.
	// The half fill needs ~571429 against a scaled limit of 625000 and
	// carries more surplus than the quarter fill.
	pool := testutil.FeelessPool("shallow", testutil.WETH, "4000000", testutil.USDC, "4000000")
	index := liquidity.NewIndex([]liquidity.Source{pool})

	order := testutil.BuyOrder("o", testutil.WETH, testutil.USDC, "1250000", "1000000")
	order.PartiallyFillable = true

	estimator := NewEstimator(zap.NewNop())
	candidates := graph.Candidates(testutil.WETH, testutil.USDC, nil, 0)

	route := estimator.BestFill(context.Background(), &order, candidates, index, 3, 0.1, big.NewInt(0), nil)
	if route == nil {
		t.Fatal("expected a partial fill to route")
	}
	if route.Output().Cmp(testutil.Big("500000")) != 0 {
		t.Errorf("expected the half fill, got output %s", route.Output())
	}
	// in * buyAmount <= sellAmount * size
	lhs := new(big.Int).Mul(route.Input(), order.BuyAmount.Int())
	rhs := new(big.Int).Mul(order.SellAmount.Int(), route.Output())
	if lhs.Cmp(rhs) > 0 {
		t.Errorf("half fill input %s exceeds the scaled sell limit", route.Input())
	}
}

func TestRespectsLimit(t *testing.T) {
	order := testutil.SellOrder("o", testutil.WETH, testutil.USDC, "1000", "900")

	tests := []struct {
		name   string
		in     int64
		out    int64
		size   int64
		within bool
	}{
		{name: "exactly-at-limit", in: 1000, out: 900, size: 1000, within: true},
		{name: "above-limit", in: 1000, out: 901, size: 1000, within: true},
		{name: "below-limit", in: 1000, out: 899, size: 1000, within: false},
		{name: "scaled-half-fill", in: 500, out: 450, size: 500, within: true},
		{name: "scaled-half-fill-below", in: 500, out: 449, size: 500, within: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := &Route{Segments: []Segment{{
				TokenIn:   testutil.WETH,
				TokenOut:  testutil.USDC,
				AmountIn:  big.NewInt(tt.in),
				AmountOut: big.NewInt(tt.out),
			}}}

			got := respectsLimit(&order, big.NewInt(tt.size), route)
			if got != tt.within {
				t.Errorf("expected %v, got %v", tt.within, got)
			}
		})
	}
}
