package liquidity

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
)

// pairKey identifies an unordered token pair.
type pairKey struct {
	a, b common.Address
}

func newPairKey(x, y common.Address) pairKey {
	if bytes.Compare(x.Bytes(), y.Bytes()) > 0 {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// Index answers "which sources serve this pair" lookups during route
// estimation. Built once per solve from resolver output; read-only after.
type Index struct {
	byPair map[pairKey][]Source
}

// NewIndex builds an index over the given sources. A source appears under
// every unordered pair of the tokens it serves, so a three-token stable
// pool is reachable through all three of its pairs. Insertion order is
// preserved per pair, which fixes the estimator's first-seen tie-break.
func NewIndex(sources []Source) *Index {
	ix := &Index{byPair: make(map[pairKey][]Source)}
	for _, src := range sources {
		tokens := src.Tokens()
		for i := 0; i < len(tokens); i++ {
			for j := i + 1; j < len(tokens); j++ {
				key := newPairKey(tokens[i], tokens[j])
				ix.byPair[key] = append(ix.byPair[key], src)
			}
		}
	}
	return ix
}

// ForPair returns the sources able to exchange tokenIn for tokenOut.
// The returned slice must not be mutated.
func (ix *Index) ForPair(tokenIn, tokenOut common.Address) []Source {
	if tokenIn == tokenOut {
		return nil
	}
	return ix.byPair[newPairKey(tokenIn, tokenOut)]
}

// Len returns the number of distinct pairs served.
func (ix *Index) Len() int {
	return len(ix.byPair)
}
