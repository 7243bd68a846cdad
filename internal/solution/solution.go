// Package solution converts best routes into the scored solutions
// returned to the coordinator. A solution's payload is self-sufficient:
// the execution layer encodes the settlement from it without calling back
// into the solver.
package solution

import (
	"github.com/balancer/solver-scripts/internal/auction"
	"github.com/balancer/solver-scripts/internal/liquidity"
	"github.com/ethereum/go-ethereum/common"
)

// Interaction is one on-chain swap the settlement must perform, in
// execution order.
type Interaction struct {
	SourceID    string          `json:"id"`
	Kind        liquidity.Kind  `json:"kind"`
	Target      common.Address  `json:"target"`
	TokenIn     common.Address  `json:"inputToken"`
	TokenOut    common.Address  `json:"outputToken"`
	AmountIn    *auction.Amount `json:"inputAmount"`
	AmountOut   *auction.Amount `json:"outputAmount"`
	GasEstimate uint64          `json:"gasEstimate"`
}

// Trade reports the executed amounts for one order.
type Trade struct {
	OrderUID     string          `json:"orderUid"`
	ExecutedSell *auction.Amount `json:"executedSellAmount"`
	ExecutedBuy  *auction.Amount `json:"executedBuyAmount"`
}

// Solution is the solver's proposed execution for one routed order.
// Solutions carry sequential ids local to the response; there is no
// cross-request identity.
type Solution struct {
	ID           uint64                             `json:"id"`
	Prices       map[common.Address]*auction.Amount `json:"prices"`
	Trades       []Trade                            `json:"trades"`
	Interactions []Interaction                      `json:"interactions"`
	Gas          uint64                             `json:"gas"`

	// Fee is the solution's settlement cost in native wei.
	Fee *auction.Amount `json:"fee"`

	// FeeInSellToken restates the fee in the traded sell token when a
	// reference price is available, for score comparison.
	FeeInSellToken *auction.Amount `json:"feeInSellToken,omitempty"`
}

// Response is the solve endpoint's payload: one solution per routed
// order, empty when nothing routed. Never an error for "no route".
type Response struct {
	Solutions []Solution `json:"solutions"`
}
