package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/balancer/solver-scripts/internal/auction"
	"github.com/balancer/solver-scripts/internal/graph"
	"github.com/balancer/solver-scripts/internal/liquidity"
	"github.com/balancer/solver-scripts/pkg/cache"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Fetcher is the client-side contract of the liquidity service, extracted
// for tests.
type Fetcher interface {
	Fetch(ctx context.Context, req *Request) (*Response, error)
}

// Resolver produces the liquidity set for one solve. Embedded liquidity
// wins; otherwise one fetch is issued against the external service. Any
// upstream failure degrades to an empty set rather than aborting the
// solve: an auction with zero found routes beats a crashed solver.
type Resolver struct {
	client    Fetcher
	cache     cache.Cache
	cacheTTL  time.Duration
	protocols []string
	logger    *zap.Logger
}

// Config holds resolver configuration.
type Config struct {
	// Client may be nil, in which case only embedded liquidity is used.
	Client Fetcher
	// Cache may be nil to disable fetch caching.
	Cache     cache.Cache
	CacheTTL  time.Duration
	Protocols []string
	Logger    *zap.Logger
}

// New creates a new Resolver.
func New(cfg *Config) *Resolver {
	return &Resolver{
		client:    cfg.Client,
		cache:     cfg.Cache,
		cacheTTL:  cfg.CacheTTL,
		protocols: cfg.Protocols,
		logger:    cfg.Logger,
	}
}

// Resolve returns the liquidity sources for the auction and expanded pair
// set. It never returns an error; degradation is logged and counted.
func (r *Resolver) Resolve(ctx context.Context, auc *auction.Auction, pairs []graph.Pair) liquidity.Sources {
	if len(auc.Liquidity) > 0 {
		sources, skipped := liquidity.DecodeAll(auc.Liquidity)
		if skipped > 0 {
			r.logger.Warn("embedded-liquidity-partially-decoded",
				zap.String("auction-id", auc.ID),
				zap.Int("decoded", len(sources)),
				zap.Int("skipped", skipped))
		}
		ResolvesTotal.WithLabelValues("embedded").Inc()
		return sources
	}

	if r.client == nil {
		r.logger.Debug("no-liquidity-client-configured",
			zap.String("auction-id", auc.ID))
		ResolvesTotal.WithLabelValues("none").Inc()
		return nil
	}

	key := r.cacheKey(auc.Block, pairs)
	if r.cache != nil {
		if cached, ok := r.cache.Get(key); ok {
			if sources, ok := cached.(liquidity.Sources); ok {
				ResolvesTotal.WithLabelValues("cached").Inc()
				return sources
			}
		}
	}

	resp, err := r.client.Fetch(ctx, &Request{
		AuctionID: auc.ID,
		Tokens:    auc.TokenList(),
		Pairs:     pairs,
		Block:     auc.Block,
		Protocols: r.protocols,
	})
	if err != nil {
		r.logger.Warn("liquidity-fetch-failed",
			zap.String("auction-id", auc.ID),
			zap.Uint64("block", auc.Block),
			zap.Int("pair-count", len(pairs)),
			zap.Error(err))
		ResolvesTotal.WithLabelValues("failed").Inc()
		return nil
	}

	r.logger.Info("liquidity-fetched",
		zap.String("auction-id", auc.ID),
		zap.Uint64("block", resp.Block),
		zap.Int("source-count", len(resp.Liquidity)))
	ResolvesTotal.WithLabelValues("fetched").Inc()
	SourcesFetched.Observe(float64(len(resp.Liquidity)))

	if r.cache != nil {
		r.cache.Set(key, resp.Liquidity, r.cacheTTL)
	}

	return resp.Liquidity
}

// cacheKey pins cached liquidity to both the block and the exact pair
// set, so two auctions over different pairs never share an entry.
func (r *Resolver) cacheKey(block uint64, pairs []graph.Pair) string {
	data := make([]byte, 0, len(pairs)*40)
	for _, pair := range pairs {
		data = append(data, pair.A.Bytes()...)
		data = append(data, pair.B.Bytes()...)
	}
	return fmt.Sprintf("liquidity:%d:%x", block, crypto.Keccak256(data)[:8])
}
