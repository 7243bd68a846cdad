package solver

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/balancer/solver-scripts/internal/auction"
	"github.com/balancer/solver-scripts/internal/fetcher"
	"github.com/balancer/solver-scripts/internal/testutil"
	"github.com/balancer/solver-scripts/internal/testutil/mocks"
	"github.com/ethereum/go-ethereum/common"
	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"
)

func newTestSolver(storage Storage, baseTokens ...common.Address) *Solver {
	return New(
		Config{
			BaseTokens:   baseTokens,
			MaxHops:      2,
			FillAttempts: 3,
			MinFillRatio: 0.1,
			Logger:       zap.NewNop(),
		},
		fetcher.New(&fetcher.Config{Logger: zap.NewNop()}),
		storage,
	)
}

// embedPools marshals liquidity fixtures into the auction as the
// coordinator would send them.
func embedPools(auc *auction.Auction, pools ...interface{}) {
	for _, pool := range pools {
		data, err := gojson.Marshal(pool)
		if err != nil {
			panic(err)
		}
		// Re-tag with the kind the decoder expects.
		var m map[string]interface{}
		_ = gojson.Unmarshal(data, &m)
		m["kind"] = "constantProduct"
		tagged, _ := gojson.Marshal(m)
		auc.Liquidity = append(auc.Liquidity, json.RawMessage(tagged))
	}
}

func TestSolve_DirectRoute(t *testing.T) {
	s := newTestSolver(nil)

	auc := testutil.Auction("a-1",
		testutil.SellOrder("order-1", testutil.WETH, testutil.USDC, "1000000", "900000"))
	embedPools(auc, testutil.FeelessPool("cp-1", testutil.WETH, "1000000000000", testutil.USDC, "1000000000000"))

	resp, err := s.Solve(context.Background(), auc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Solutions) != 1 {
		t.Fatalf("expected 1 solution, got %d", len(resp.Solutions))
	}
	sol := resp.Solutions[0]
	if sol.Trades[0].OrderUID != "order-1" {
		t.Errorf("unexpected order uid %s", sol.Trades[0].OrderUID)
	}
	if len(sol.Interactions) != 1 {
		t.Errorf("expected a direct route, got %d interactions", len(sol.Interactions))
	}
}

func TestSolve_PicksBestOfDirectAndTwoHop(t *testing.T) {
	s := newTestSolver(nil, testutil.DAI)

	auc := testutil.Auction("a-1",
		testutil.SellOrder("order-1", testutil.WETH, testutil.USDC, "1000000", "900000"))
	auc.Tokens[testutil.DAI] = auction.Token{Decimals: 18, Trusted: true}

	// Direct pool at a 1.05 rate; the DAI legs compound to ~0.98.
	embedPools(auc,
		testutil.FeelessPool("direct", testutil.WETH, "1000000000000", testutil.USDC, "1050000000000"),
		testutil.FeelessPool("leg-a", testutil.WETH, "1000000000000", testutil.DAI, "990000000000"),
		testutil.FeelessPool("leg-b", testutil.DAI, "1000000000000", testutil.USDC, "990000000000"),
	)

	resp, err := s.Solve(context.Background(), auc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Solutions) != 1 {
		t.Fatalf("expected 1 solution, got %d", len(resp.Solutions))
	}

	sol := resp.Solutions[0]
	if len(sol.Interactions) != 1 || sol.Interactions[0].SourceID != "direct" {
		t.Errorf("expected the direct pool to win, got %d interactions via %s",
			len(sol.Interactions), sol.Interactions[0].SourceID)
	}
	if sol.Trades[0].ExecutedBuy.Int().Cmp(testutil.Big("1000000")) <= 0 {
		t.Errorf("expected above-parity output, got %s", sol.Trades[0].ExecutedBuy)
	}
}

func TestSolve_TwoHopWhenNoDirectPool(t *testing.T) {
	s := newTestSolver(nil, testutil.DAI)

	auc := testutil.Auction("a-1",
		testutil.SellOrder("order-1", testutil.WETH, testutil.USDC, "1000000", "900000"))
	auc.Tokens[testutil.DAI] = auction.Token{Decimals: 18, Trusted: true}

	embedPools(auc,
		testutil.FeelessPool("leg-a", testutil.WETH, "1000000000000", testutil.DAI, "1000000000000"),
		testutil.FeelessPool("leg-b", testutil.DAI, "1000000000000", testutil.USDC, "1000000000000"),
	)

	resp, err := s.Solve(context.Background(), auc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Solutions) != 1 {
		t.Fatalf("expected 1 solution, got %d", len(resp.Solutions))
	}
	if len(resp.Solutions[0].Interactions) != 2 {
		t.Errorf("expected a two-hop route, got %d interactions", len(resp.Solutions[0].Interactions))
	}
}

func TestSolve_UntrustedBaseTokenExcluded(t *testing.T) {
	s := newTestSolver(nil, testutil.DAI)

	auc := testutil.Auction("a-1",
		testutil.SellOrder("order-1", testutil.WETH, testutil.USDC, "1000000", "900000"))
	// The auction explicitly distrusts DAI: the only possible route is
	// through it, so the order must go unrouted.
	auc.Tokens[testutil.DAI] = auction.Token{Decimals: 18, Trusted: false}

	embedPools(auc,
		testutil.FeelessPool("leg-a", testutil.WETH, "1000000000000", testutil.DAI, "1000000000000"),
		testutil.FeelessPool("leg-b", testutil.DAI, "1000000000000", testutil.USDC, "1000000000000"),
	)

	resp, err := s.Solve(context.Background(), auc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Solutions) != 0 {
		t.Errorf("expected no solutions via an untrusted base token, got %d", len(resp.Solutions))
	}
}

func TestSolve_NoLiquidityEmptySolutions(t *testing.T) {
	s := newTestSolver(nil)

	auc := testutil.Auction("a-1",
		testutil.SellOrder("order-1", testutil.WETH, testutil.USDC, "1000000", "900000"))

	resp, err := s.Solve(context.Background(), auc)
	if err != nil {
		t.Fatalf("no liquidity must not error, got %v", err)
	}
	if resp.Solutions == nil || len(resp.Solutions) != 0 {
		t.Errorf("expected an empty solution list, got %v", resp.Solutions)
	}
}

func TestSolve_InvalidAuction(t *testing.T) {
	s := newTestSolver(nil)

	auc := testutil.Auction("",
		testutil.SellOrder("order-1", testutil.WETH, testutil.USDC, "1000000", "900000"))
	auc.ID = ""

	_, err := s.Solve(context.Background(), auc)
	if err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestSolve_MultipleOrders(t *testing.T) {
	s := newTestSolver(nil)

	orders := make([]auction.Order, 0, 8)
	for i := 0; i < 8; i++ {
		orders = append(orders,
			testutil.SellOrder(fmt.Sprintf("order-%d", i), testutil.WETH, testutil.USDC, "1000000", "900000"))
	}
	auc := testutil.Auction("a-1", orders...)
	embedPools(auc, testutil.FeelessPool("cp-1", testutil.WETH, "1000000000000", testutil.USDC, "1000000000000"))

	resp, err := s.Solve(context.Background(), auc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Solutions) != 8 {
		t.Fatalf("expected 8 solutions, got %d", len(resp.Solutions))
	}

	// Solution ids are sequential and unique.
	for i, sol := range resp.Solutions {
		if sol.ID != uint64(i) {
			t.Errorf("solution %d has id %d", i, sol.ID)
		}
	}
}

func TestSolve_DeadlineReturnsPartialResults(t *testing.T) {
	s := newTestSolver(nil)

	auc := testutil.Auction("a-1",
		testutil.SellOrder("order-1", testutil.WETH, testutil.USDC, "1000000", "900000"))
	embedPools(auc, testutil.FeelessPool("cp-1", testutil.WETH, "1000000000000", testutil.USDC, "1000000000000"))
	auc.Deadline = time.Now().Add(-time.Second)

	start := time.Now()
	resp, err := s.Solve(context.Background(), auc)
	if err != nil {
		t.Fatalf("an expired deadline must not error, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("solve did not respect the expired deadline, took %s", time.Since(start))
	}
	if resp == nil {
		t.Fatal("expected a response with whatever was assembled")
	}
}

func TestSolve_RecordsToStorage(t *testing.T) {
	storage := mocks.NewMockStorage()
	s := newTestSolver(storage)

	auc := testutil.Auction("a-7",
		testutil.SellOrder("order-1", testutil.WETH, testutil.USDC, "1000000", "900000"))
	embedPools(auc, testutil.FeelessPool("cp-1", testutil.WETH, "1000000000000", testutil.USDC, "1000000000000"))

	resp, err := s.Solve(context.Background(), auc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recorded, ok := storage.Recorded["a-7"]
	if !ok {
		t.Fatal("expected the solve to be archived")
	}
	if len(recorded.Solutions) != len(resp.Solutions) {
		t.Errorf("archived %d solutions, returned %d", len(recorded.Solutions), len(resp.Solutions))
	}
}

func TestSolve_StorageFailureDoesNotFailSolve(t *testing.T) {
	storage := mocks.NewMockStorage()
	storage.Err = fmt.Errorf("database unavailable")
	s := newTestSolver(storage)

	auc := testutil.Auction("a-1",
		testutil.SellOrder("order-1", testutil.WETH, testutil.USDC, "1000000", "900000"))
	embedPools(auc, testutil.FeelessPool("cp-1", testutil.WETH, "1000000000000", testutil.USDC, "1000000000000"))

	resp, err := s.Solve(context.Background(), auc)
	if err != nil {
		t.Fatalf("storage failure must not fail the solve, got %v", err)
	}
	if len(resp.Solutions) != 1 {
		t.Errorf("expected 1 solution, got %d", len(resp.Solutions))
	}
}
