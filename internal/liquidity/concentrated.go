package liquidity

import (
	"math/big"

	"github.com/balancer/solver-scripts/internal/auction"
	"github.com/ethereum/go-ethereum/common"
)

// q96 is the Uniswap-v3 fixed-point scale for sqrt prices.
var q96 = new(big.Int).Lsh(big.NewInt(1), 96)

// Concentrated is a concentrated-liquidity pool quoted against its current
// in-range liquidity. Tick crossings are not modeled: a swap that would
// exhaust the active range fails with ErrInsufficientLiquidity instead of
// walking ticks, which keeps per-quote cost flat under the solve deadline.
type Concentrated struct {
	SourceID string         `json:"id"`
	Pool     common.Address `json:"address"`
	// Token0 sorts below Token1, matching the on-chain pair ordering.
	Token0 common.Address `json:"token0"`
	Token1 common.Address `json:"token1"`
	// SqrtPrice is sqrt(price of token0 in token1) in Q64.96.
	SqrtPrice *auction.Amount `json:"sqrtPrice"`
	// InRangeLiquidity is the pool's liquidity at the current tick.
	InRangeLiquidity *auction.Amount `json:"liquidity"`
	Fee              *Fraction       `json:"fee"`
	GasCost          uint64          `json:"gasEstimate"`
}

func (p *Concentrated) ID() string              { return p.SourceID }
func (p *Concentrated) Kind() Kind              { return KindConcentrated }
func (p *Concentrated) Address() common.Address { return p.Pool }
func (p *Concentrated) Gas() uint64             { return p.GasCost }

func (p *Concentrated) Tokens() []common.Address {
	return []common.Address{p.Token0, p.Token1}
}

// SwapOut quotes a fixed-input swap within the active range.
func (p *Concentrated) SwapOut(tokenIn common.Address, amountIn *big.Int, tokenOut common.Address) (*big.Int, error) {
	err := p.check(tokenIn, tokenOut, amountIn)
	if err != nil {
		return nil, err
	}

	liquidity := p.InRangeLiquidity.Int()
	sqrtP := p.SqrtPrice.Int()
	feeNum, feeDen := p.Fee.Complement()

	inAfterFee := new(big.Int).Mul(amountIn, feeNum)
	inAfterFee.Div(inAfterFee, feeDen)
	if inAfterFee.Sign() <= 0 {
		return nil, ErrZeroSwap
	}

	if tokenIn == p.Token0 {
		// Price moves down: sqrtP' = L*sqrtP*Q96 / (L*Q96 + in*sqrtP),
		// out1 = L * (sqrtP - sqrtP') / Q96.
		num := new(big.Int).Mul(liquidity, sqrtP)
		num.Mul(num, q96)
		den := new(big.Int).Mul(liquidity, q96)
		den.Add(den, new(big.Int).Mul(inAfterFee, sqrtP))
		sqrtPNew := num.Div(num, den)

		out := new(big.Int).Sub(sqrtP, sqrtPNew)
		out.Mul(out, liquidity)
		out.Div(out, q96)
		if out.Sign() <= 0 {
			return nil, ErrInsufficientLiquidity
		}
		return out, nil
	}

	// Price moves up: sqrtP' = sqrtP + in*Q96/L,
	// out0 = L * Q96 * (sqrtP' - sqrtP) / (sqrtP * sqrtP').
	step := new(big.Int).Mul(inAfterFee, q96)
	step.Div(step, liquidity)
	sqrtPNew := new(big.Int).Add(sqrtP, step)

	out := new(big.Int).Sub(sqrtPNew, sqrtP)
	out.Mul(out, liquidity)
	out.Mul(out, q96)
	out.Div(out, new(big.Int).Mul(sqrtP, sqrtPNew))
	if out.Sign() <= 0 {
		return nil, ErrInsufficientLiquidity
	}
	return out, nil
}

// SwapIn quotes the input required for a fixed output within the active
// range, grossed up by the fee and rounded in the pool's favor.
func (p *Concentrated) SwapIn(tokenOut common.Address, amountOut *big.Int, tokenIn common.Address) (*big.Int, error) {
	err := p.check(tokenIn, tokenOut, amountOut)
	if err != nil {
		return nil, err
	}

	liquidity := p.InRangeLiquidity.Int()
	sqrtP := p.SqrtPrice.Int()
	feeNum, feeDen := p.Fee.Complement()

	var in *big.Int
	if tokenOut == p.Token1 {
		// Selling token0 for token1: sqrtP' = sqrtP - out*Q96/L.
		step := new(big.Int).Mul(amountOut, q96)
		step.Div(step, liquidity)
		sqrtPNew := new(big.Int).Sub(sqrtP, step)
		if sqrtPNew.Sign() <= 0 {
			return nil, ErrInsufficientLiquidity
		}

		in = new(big.Int).Sub(sqrtP, sqrtPNew)
		in.Mul(in, liquidity)
		in.Mul(in, q96)
		in.Div(in, new(big.Int).Mul(sqrtP, sqrtPNew))
	} else {
		// Selling token1 for token0: sqrtP' = L*sqrtP*Q96 / (L*Q96 - out*sqrtP).
		den := new(big.Int).Mul(liquidity, q96)
		den.Sub(den, new(big.Int).Mul(amountOut, sqrtP))
		if den.Sign() <= 0 {
			return nil, ErrInsufficientLiquidity
		}
		num := new(big.Int).Mul(liquidity, sqrtP)
		num.Mul(num, q96)
		sqrtPNew := num.Div(num, den)

		in = new(big.Int).Sub(sqrtPNew, sqrtP)
		in.Mul(in, liquidity)
		in.Div(in, q96)
	}

	in.Mul(in, feeDen)
	in.Div(in, feeNum)
	return in.Add(in, big.NewInt(1)), nil
}

func (p *Concentrated) check(a, b common.Address, amount *big.Int) error {
	err := checkPair(p.Tokens(), a, b)
	if err != nil {
		return err
	}
	err = checkAmount(amount)
	if err != nil {
		return err
	}
	if p.InRangeLiquidity.Int().Sign() <= 0 || p.SqrtPrice.Int().Sign() <= 0 {
		return ErrInsufficientLiquidity
	}
	return nil
}
