// Package testutil provides shared fixtures for solver tests.
package testutil

import (
	"math/big"

	"github.com/balancer/solver-scripts/internal/auction"
	"github.com/balancer/solver-scripts/internal/liquidity"
	"github.com/ethereum/go-ethereum/common"
)

// Well-known token addresses used across tests.
var (
	WETH = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	USDC = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	DAI  = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	WBTC = common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599")
)

// Amount builds an auction amount from a decimal string. Panics on bad
// input; fixtures are hand-written.
func Amount(s string) *auction.Amount {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("testutil: bad amount " + s)
	}
	return auction.NewAmount(v)
}

// Big builds a big integer from a decimal string.
func Big(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("testutil: bad amount " + s)
	}
	return v
}

// SellOrder creates a fill-or-kill sell order.
func SellOrder(uid string, sell, buy common.Address, sellAmount, buyAmount string) auction.Order {
	return auction.Order{
		UID:        uid,
		SellToken:  sell,
		BuyToken:   buy,
		SellAmount: Amount(sellAmount),
		BuyAmount:  Amount(buyAmount),
		Side:       auction.SideSell,
		Class:      auction.ClassMarket,
	}
}

// BuyOrder creates a fill-or-kill buy order.
func BuyOrder(uid string, sell, buy common.Address, sellAmount, buyAmount string) auction.Order {
	return auction.Order{
		UID:        uid,
		SellToken:  sell,
		BuyToken:   buy,
		SellAmount: Amount(sellAmount),
		BuyAmount:  Amount(buyAmount),
		Side:       auction.SideBuy,
		Class:      auction.ClassMarket,
	}
}

// Auction creates a minimal valid auction over the given orders. Every
// order token gets trusted metadata with no reference price.
func Auction(id string, orders ...auction.Order) *auction.Auction {
	tokens := make(map[common.Address]auction.Token)
	for _, o := range orders {
		tokens[o.SellToken] = auction.Token{Decimals: 18, Trusted: true}
		tokens[o.BuyToken] = auction.Token{Decimals: 18, Trusted: true}
	}

	return &auction.Auction{
		ID:                id,
		Orders:            orders,
		Tokens:            tokens,
		EffectiveGasPrice: Amount("1000000000"),
		Block:             19000000,
	}
}

// Pool creates a constant-product pool with a 0.3% fee.
func Pool(id string, tokenA common.Address, reserveA string, tokenB common.Address, reserveB string) *liquidity.ConstantProduct {
	return &liquidity.ConstantProduct{
		SourceID: id,
		Pool:     common.BytesToAddress([]byte(id)),
		Balances: map[common.Address]*auction.Amount{
			tokenA: Amount(reserveA),
			tokenB: Amount(reserveB),
		},
		Fee:     liquidity.NewFraction(3, 1000),
		GasCost: 90000,
	}
}

// FeelessPool creates a constant-product pool with no swap fee, which
// makes expected outputs easy to compute by hand.
func FeelessPool(id string, tokenA common.Address, reserveA string, tokenB common.Address, reserveB string) *liquidity.ConstantProduct {
	p := Pool(id, tokenA, reserveA, tokenB, reserveB)
	p.Fee = liquidity.NewFraction(0, 1)
	return p
}
