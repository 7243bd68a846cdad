package liquidity

import (
	"math/big"

	"github.com/balancer/solver-scripts/internal/auction"
	"github.com/ethereum/go-ethereum/common"
)

// rateScale is the fixed-point base of a vault's exchange rate.
var rateScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Vault is an ERC-4626 wrapper: it exchanges an underlying asset for the
// vault's share token at the current rate, with no fee and no slippage.
type Vault struct {
	SourceID string `json:"id"`
	// Pool doubles as the share token address.
	Pool  common.Address `json:"address"`
	Asset common.Address `json:"asset"`
	// Rate is the amount of assets backing 1e18 shares.
	Rate    *auction.Amount `json:"rate"`
	GasCost uint64          `json:"gasEstimate"`
}

func (v *Vault) ID() string              { return v.SourceID }
func (v *Vault) Kind() Kind              { return KindVault }
func (v *Vault) Address() common.Address { return v.Pool }
func (v *Vault) Gas() uint64             { return v.GasCost }

func (v *Vault) Tokens() []common.Address {
	return []common.Address{v.Asset, v.Pool}
}

// SwapOut converts assets to shares (deposit) or shares to assets
// (redeem), rounding down as the vault does.
func (v *Vault) SwapOut(tokenIn common.Address, amountIn *big.Int, tokenOut common.Address) (*big.Int, error) {
	err := v.check(tokenIn, tokenOut, amountIn)
	if err != nil {
		return nil, err
	}

	out := new(big.Int)
	if tokenIn == v.Asset {
		out.Mul(amountIn, rateScale)
		out.Div(out, v.Rate.Int())
	} else {
		out.Mul(amountIn, v.Rate.Int())
		out.Div(out, rateScale)
	}

	if out.Sign() <= 0 {
		return nil, ErrInsufficientLiquidity
	}
	return out, nil
}

// SwapIn inverts SwapOut, rounding the required input up.
func (v *Vault) SwapIn(tokenOut common.Address, amountOut *big.Int, tokenIn common.Address) (*big.Int, error) {
	err := v.check(tokenIn, tokenOut, amountOut)
	if err != nil {
		return nil, err
	}

	in := new(big.Int)
	if tokenOut == v.Asset {
		in.Mul(amountOut, rateScale)
		in.Div(in, v.Rate.Int())
	} else {
		in.Mul(amountOut, v.Rate.Int())
		in.Div(in, rateScale)
	}

	return in.Add(in, big.NewInt(1)), nil
}

func (v *Vault) check(a, b common.Address, amount *big.Int) error {
	err := checkPair(v.Tokens(), a, b)
	if err != nil {
		return err
	}
	err = checkAmount(amount)
	if err != nil {
		return err
	}
	if v.Rate.Int().Sign() <= 0 {
		return ErrInsufficientLiquidity
	}
	return nil
}
