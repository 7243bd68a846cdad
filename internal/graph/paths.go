package graph

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Path is a candidate token sequence from an order's sell token to its
// buy token. Purely a search artifact.
type Path []common.Address

// Candidates enumerates every path [sell, b1, .., bk, buy] with 0 <= k <=
// maxHops intermediates drawn from baseTokens. Intermediates equal to an
// endpoint are skipped and duplicate sequences collapse, so the result is
// a set. Order is deterministic: the direct path first, then increasing
// hop count with intermediates in baseTokens order. The size is bounded
// by |baseTokens|^maxHops, which keeps maxHops <= 2 in practice.
func Candidates(sell, buy common.Address, baseTokens []common.Address, maxHops int) []Path {
	if sell == buy {
		return nil
	}

	seen := make(map[string]struct{})
	var paths []Path

	var extend func(prefix Path, hopsLeft int)
	extend = func(prefix Path, hopsLeft int) {
		full := make(Path, len(prefix), len(prefix)+1)
		copy(full, prefix)
		full = append(full, buy)

		if valid(full) {
			key := pathKey(full)
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				paths = append(paths, full)
			}
		}

		if hopsLeft == 0 {
			return
		}
		for _, base := range baseTokens {
			if base == sell || base == buy {
				continue
			}
			next := make(Path, len(prefix)+1)
			copy(next, prefix)
			next[len(prefix)] = base
			extend(next, hopsLeft-1)
		}
	}

	extend(Path{sell}, maxHops)
	return paths
}

// valid rejects paths with a degenerate hop (two equal adjacent tokens).
func valid(path Path) bool {
	for i := 1; i < len(path); i++ {
		if path[i] == path[i-1] {
			return false
		}
	}
	return true
}

func pathKey(path Path) string {
	var b strings.Builder
	for _, token := range path {
		b.Write(token.Bytes())
	}
	return b.String()
}
