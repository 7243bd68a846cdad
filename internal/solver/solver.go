// Package solver orchestrates one solve request: pair expansion,
// liquidity resolution, per-order route search and solution assembly,
// all bounded by the auction deadline.
package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/balancer/solver-scripts/internal/auction"
	"github.com/balancer/solver-scripts/internal/fetcher"
	"github.com/balancer/solver-scripts/internal/graph"
	"github.com/balancer/solver-scripts/internal/liquidity"
	"github.com/balancer/solver-scripts/internal/routing"
	"github.com/balancer/solver-scripts/internal/solution"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Storage archives solved auctions for offline analysis.
type Storage interface {
	RecordSolve(ctx context.Context, auctionID string, resp *solution.Response) error
	Close() error
}

// Config holds solver configuration. It is read once at construction and
// never mutated, keeping Solve a pure function of (auction, liquidity,
// config).
type Config struct {
	BaseTokens   []common.Address
	MaxHops      int
	FillAttempts int
	MinFillRatio float64
	Logger       *zap.Logger
}

// Solver computes best-execution routes for auction orders.
type Solver struct {
	cfg       Config
	resolver  *fetcher.Resolver
	estimator *routing.Estimator
	storage   Storage
	logger    *zap.Logger
}

// New creates a new Solver. storage may be nil to disable archiving.
func New(cfg Config, resolver *fetcher.Resolver, storage Storage) *Solver {
	return &Solver{
		cfg:       cfg,
		resolver:  resolver,
		estimator: routing.NewEstimator(cfg.Logger),
		storage:   storage,
		logger:    cfg.Logger,
	}
}

type orderResult struct {
	index int
	route *routing.Route
}

// Solve computes a solution set for the auction. The only error it
// returns classifies the request as malformed; every downstream failure
// degrades to fewer (or zero) solutions. When the auction deadline
// elapses mid-search, the solutions assembled so far are returned.
func (s *Solver) Solve(ctx context.Context, auc *auction.Auction) (*solution.Response, error) {
	start := time.Now()

	err := auc.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate auction: %w", err)
	}

	if !auc.Deadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, auc.Deadline)
		defer cancel()
	}

	pairs := graph.ExpandPairs(auc.Orders, s.cfg.BaseTokens)
	sources := s.resolver.Resolve(ctx, auc, pairs)
	index := liquidity.NewIndex(sources)
	base := s.trustedBaseTokens(auc)

	s.logger.Info("solve-starting",
		zap.String("auction-id", auc.ID),
		zap.Int("order-count", len(auc.Orders)),
		zap.Int("pair-count", len(pairs)),
		zap.Int("source-count", len(sources)),
		zap.Uint64("block", auc.Block))

	// One goroutine per order; results are joined below. The channel is
	// buffered to the order count so stragglers never block after a
	// deadline abort.
	results := make(chan orderResult, len(auc.Orders))
	for i := range auc.Orders {
		go func(i int) {
			results <- orderResult{index: i, route: s.solveOrder(ctx, auc, &auc.Orders[i], base, index)}
		}(i)
	}

	routes := make([]*routing.Route, len(auc.Orders))
	pending := len(auc.Orders)

collect:
	for pending > 0 {
		select {
		case res := <-results:
			routes[res.index] = res.route
			pending--
		case <-ctx.Done():
			s.logger.Warn("solve-deadline-exceeded",
				zap.String("auction-id", auc.ID),
				zap.Int("orders-pending", pending))
			DeadlinesExceededTotal.Inc()
			break collect
		}
	}

	resp := s.assemble(auc, routes)
	s.record(ctx, auc.ID, resp)

	SolveDurationSeconds.Observe(time.Since(start).Seconds())
	SolutionsPerAuction.Observe(float64(len(resp.Solutions)))

	s.logger.Info("solve-finished",
		zap.String("auction-id", auc.ID),
		zap.Int("solution-count", len(resp.Solutions)),
		zap.Duration("elapsed", time.Since(start)))

	return resp, nil
}

// solveOrder runs the search pipeline for a single order: candidate
// paths, then the best fill/route combination. Nil means the order is
// simply omitted from the response.
func (s *Solver) solveOrder(ctx context.Context, auc *auction.Auction, order *auction.Order, base []common.Address, index *liquidity.Index) *routing.Route {
	candidates := graph.Candidates(order.SellToken, order.BuyToken, base, s.cfg.MaxHops)
	if len(candidates) == 0 {
		return nil
	}

	return s.estimator.BestFill(
		ctx,
		order,
		candidates,
		index,
		s.cfg.FillAttempts,
		s.cfg.MinFillRatio,
		auc.GasPrice(),
		auc.Tokens,
	)
}

// assemble converts the routes found into sequentially numbered
// solutions, preserving order position. Routeless orders are omitted.
func (s *Solver) assemble(auc *auction.Auction, routes []*routing.Route) *solution.Response {
	assembler := solution.NewAssembler(auc, s.logger)
	resp := &solution.Response{Solutions: []solution.Solution{}}

	var id uint64
	for i, route := range routes {
		if route == nil {
			OrdersSkippedTotal.WithLabelValues("no_route").Inc()
			s.logger.Debug("order-skipped-no-route",
				zap.String("auction-id", auc.ID),
				zap.String("order-uid", auc.Orders[i].UID))
			continue
		}

		resp.Solutions = append(resp.Solutions, assembler.Assemble(id, &auc.Orders[i], route))
		OrdersRoutedTotal.Inc()
		id++
	}

	return resp
}

// trustedBaseTokens drops configured base tokens the auction explicitly
// marks untrusted; tokens absent from the auction metadata stay usable.
func (s *Solver) trustedBaseTokens(auc *auction.Auction) []common.Address {
	base := make([]common.Address, 0, len(s.cfg.BaseTokens))
	for _, token := range s.cfg.BaseTokens {
		if meta, ok := auc.Tokens[token]; ok && !meta.Trusted {
			continue
		}
		base = append(base, token)
	}
	return base
}

// record archives the response; archiving is decoupled from the solve
// deadline so late answers still land in storage.
func (s *Solver) record(ctx context.Context, auctionID string, resp *solution.Response) {
	if s.storage == nil {
		return
	}

	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := s.storage.RecordSolve(storeCtx, auctionID, resp)
	if err != nil {
		s.logger.Error("failed-to-record-solve",
			zap.String("auction-id", auctionID),
			zap.Error(err))
	}
}
