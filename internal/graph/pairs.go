// Package graph builds the token routing graph for one auction: the
// expanded pair set worth fetching liquidity for, and the bounded-hop path
// candidates between an order's sell and buy token.
package graph

import (
	"bytes"
	"sort"

	"github.com/balancer/solver-scripts/internal/auction"
	"github.com/ethereum/go-ethereum/common"
)

// Pair is an unordered token pair, canonically ordered so that A < B.
type Pair struct {
	A common.Address `json:"a"`
	B common.Address `json:"b"`
}

// NewPair canonicalizes a token pair.
func NewPair(x, y common.Address) Pair {
	if bytes.Compare(x.Bytes(), y.Bytes()) > 0 {
		x, y = y, x
	}
	return Pair{A: x, B: y}
}

// ExpandPairs computes the pair set worth querying liquidity for:
// every direct order pair, every pairing of an order token with a base
// token, and every pairing among the base tokens themselves. The result
// is deduplicated and deterministically ordered. Pure function of its
// inputs.
func ExpandPairs(orders []auction.Order, baseTokens []common.Address) []Pair {
	seen := make(map[Pair]struct{})

	add := func(x, y common.Address) {
		if x == y {
			return
		}
		seen[NewPair(x, y)] = struct{}{}
	}

	orderTokens := make(map[common.Address]struct{})
	for _, order := range orders {
		add(order.SellToken, order.BuyToken)
		orderTokens[order.SellToken] = struct{}{}
		orderTokens[order.BuyToken] = struct{}{}
	}

	for token := range orderTokens {
		for _, base := range baseTokens {
			add(token, base)
		}
	}

	for i := 0; i < len(baseTokens); i++ {
		for j := i + 1; j < len(baseTokens); j++ {
			add(baseTokens[i], baseTokens[j])
		}
	}

	pairs := make([]Pair, 0, len(seen))
	for pair := range seen {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		c := bytes.Compare(pairs[i].A.Bytes(), pairs[j].A.Bytes())
		if c != 0 {
			return c < 0
		}
		return bytes.Compare(pairs[i].B.Bytes(), pairs[j].B.Bytes()) < 0
	})

	return pairs
}
