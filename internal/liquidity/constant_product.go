package liquidity

import (
	"math/big"

	"github.com/balancer/solver-scripts/internal/auction"
	"github.com/ethereum/go-ethereum/common"
)

// ConstantProduct is a two-token x*y=k pair (Uniswap-v2 style). The fee is
// charged on the input amount.
type ConstantProduct struct {
	SourceID string                             `json:"id"`
	Pool     common.Address                     `json:"address"`
	Balances map[common.Address]*auction.Amount `json:"tokens"`
	Fee      *Fraction                          `json:"fee"`
	GasCost  uint64                             `json:"gasEstimate"`
}

func (p *ConstantProduct) ID() string              { return p.SourceID }
func (p *ConstantProduct) Kind() Kind              { return KindConstantProduct }
func (p *ConstantProduct) Address() common.Address { return p.Pool }
func (p *ConstantProduct) Gas() uint64             { return p.GasCost }

func (p *ConstantProduct) Tokens() []common.Address {
	tokens := make([]common.Address, 0, len(p.Balances))
	for token := range p.Balances {
		tokens = append(tokens, token)
	}
	return tokens
}

// SwapOut implements out = reserveOut * in' / (reserveIn + in') with
// in' = in * (1 - fee).
func (p *ConstantProduct) SwapOut(tokenIn common.Address, amountIn *big.Int, tokenOut common.Address) (*big.Int, error) {
	reserveIn, reserveOut, err := p.reserves(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	err = checkAmount(amountIn)
	if err != nil {
		return nil, err
	}

	feeNum, feeDen := p.Fee.Complement()

	inWithFee := new(big.Int).Mul(amountIn, feeNum)
	numerator := new(big.Int).Mul(reserveOut, inWithFee)
	denominator := new(big.Int).Mul(reserveIn, feeDen)
	denominator.Add(denominator, inWithFee)

	return numerator.Div(numerator, denominator), nil
}

// SwapIn inverts SwapOut, rounding the required input up.
func (p *ConstantProduct) SwapIn(tokenOut common.Address, amountOut *big.Int, tokenIn common.Address) (*big.Int, error) {
	reserveIn, reserveOut, err := p.reserves(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	err = checkAmount(amountOut)
	if err != nil {
		return nil, err
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, ErrInsufficientLiquidity
	}

	feeNum, feeDen := p.Fee.Complement()

	numerator := new(big.Int).Mul(reserveIn, amountOut)
	numerator.Mul(numerator, feeDen)
	denominator := new(big.Int).Sub(reserveOut, amountOut)
	denominator.Mul(denominator, feeNum)

	amountIn := numerator.Div(numerator, denominator)
	return amountIn.Add(amountIn, big.NewInt(1)), nil
}

func (p *ConstantProduct) reserves(tokenIn, tokenOut common.Address) (*big.Int, *big.Int, error) {
	in, okIn := p.Balances[tokenIn]
	out, okOut := p.Balances[tokenOut]
	if !okIn || !okOut || tokenIn == tokenOut {
		return nil, nil, ErrTokenNotServed
	}
	if in.Int().Sign() <= 0 || out.Int().Sign() <= 0 {
		return nil, nil, ErrInsufficientLiquidity
	}
	return in.Int(), out.Int(), nil
}
