package auction

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Side determines which amount of an order is fixed.
type Side string

const (
	// SideSell fixes the input amount; the solver maximizes the output.
	SideSell Side = "sell"
	// SideBuy fixes the output amount; the solver minimizes the input.
	SideBuy Side = "buy"
)

// Class determines whether skipping an order carries a scoring penalty.
type Class string

const (
	// ClassMarket orders are expected to be filled when possible.
	ClassMarket Class = "market"
	// ClassLimit orders may be skipped without penalty.
	ClassLimit Class = "limit"
)

// Token holds the coordinator-supplied metadata for one token in the auction.
type Token struct {
	Decimals uint8 `json:"decimals"`

	// ReferencePrice is the price of one base unit of the token expressed
	// in native-token wei, used for fee conversion and fill scoring.
	ReferencePrice *Amount `json:"referencePrice,omitempty"`

	// AvailableBalance hints at the settlement contract's buffer for this
	// token. Informational only; the solver does not validate balances.
	AvailableBalance *Amount `json:"availableBalance,omitempty"`

	// Trusted marks tokens that may be used as intermediate hops.
	Trusted bool `json:"trusted"`
}

// Order is one pending trade inside an auction. Orders are read-only for
// the whole solve.
type Order struct {
	UID               string         `json:"uid"`
	SellToken         common.Address `json:"sellToken"`
	BuyToken          common.Address `json:"buyToken"`
	SellAmount        *Amount        `json:"sellAmount"`
	BuyAmount         *Amount        `json:"buyAmount"`
	Side              Side           `json:"kind"`
	Class             Class          `json:"class"`
	PartiallyFillable bool           `json:"partiallyFillable"`
}

// TargetAmount returns the amount fixed by the order's side: the sell
// amount for sell orders and the buy amount for buy orders.
func (o *Order) TargetAmount() *big.Int {
	if o.Side == SideBuy {
		return o.BuyAmount.Int()
	}
	return o.SellAmount.Int()
}

// Auction is one batch of orders plus routing context. It is immutable
// once decoded and lives for exactly one solve request.
type Auction struct {
	ID     string                   `json:"id"`
	Orders []Order                  `json:"orders"`
	Tokens map[common.Address]Token `json:"tokens"`

	// Liquidity is the optionally embedded liquidity set. Records stay raw
	// here; the liquidity package owns the tagged-union decoding.
	Liquidity []json.RawMessage `json:"liquidity,omitempty"`

	// EffectiveGasPrice is the wei-per-gas estimate used for fee accounting.
	EffectiveGasPrice *Amount `json:"effectiveGasPrice"`

	// Block is the chain block all liquidity queries are pinned to.
	Block uint64 `json:"block"`

	// Deadline bounds the solve; past it the coordinator ignores answers.
	Deadline time.Time `json:"deadline"`
}

// GasPrice returns the effective gas price, or zero when absent.
func (a *Auction) GasPrice() *big.Int {
	if a.EffectiveGasPrice == nil {
		return new(big.Int)
	}
	return a.EffectiveGasPrice.Int()
}

// TokenList returns the auction's token addresses in deterministic order.
func (a *Auction) TokenList() []common.Address {
	tokens := make([]common.Address, 0, len(a.Tokens))
	for addr := range a.Tokens {
		tokens = append(tokens, addr)
	}
	sortAddresses(tokens)
	return tokens
}
