package liquidity

import (
	"math"
	"math/big"

	"github.com/balancer/solver-scripts/internal/auction"
	"github.com/ethereum/go-ethereum/common"
)

// WeightedReserve is one token slot of a weighted pool.
type WeightedReserve struct {
	Balance *auction.Amount `json:"balance"`
	Weight  *Fraction       `json:"weight"`
}

// Weighted is a Balancer-style weighted pool. Quoting uses the weighted
// constant-mean invariant; the fractional exponent is evaluated in float64,
// which is precise enough for ranking candidate routes.
type Weighted struct {
	SourceID string                             `json:"id"`
	Pool     common.Address                     `json:"address"`
	Reserves map[common.Address]WeightedReserve `json:"tokens"`
	Fee      *Fraction                          `json:"fee"`
	GasCost  uint64                             `json:"gasEstimate"`
}

func (p *Weighted) ID() string              { return p.SourceID }
func (p *Weighted) Kind() Kind              { return KindWeighted }
func (p *Weighted) Address() common.Address { return p.Pool }
func (p *Weighted) Gas() uint64             { return p.GasCost }

func (p *Weighted) Tokens() []common.Address {
	tokens := make([]common.Address, 0, len(p.Reserves))
	for token := range p.Reserves {
		tokens = append(tokens, token)
	}
	return tokens
}

// SwapOut implements out = bO * (1 - (bI / (bI + in'))^(wI/wO)).
func (p *Weighted) SwapOut(tokenIn common.Address, amountIn *big.Int, tokenOut common.Address) (*big.Int, error) {
	in, out, err := p.slots(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	err = checkAmount(amountIn)
	if err != nil {
		return nil, err
	}

	balanceIn := toFloat(in.Balance.Int())
	balanceOut := toFloat(out.Balance.Int())
	afterFee := toFloat(amountIn) * (1 - p.Fee.Float64())
	exponent := in.Weight.Float64() / out.Weight.Float64()

	ratio := math.Pow(balanceIn/(balanceIn+afterFee), exponent)
	result := balanceOut * (1 - ratio)
	if !isFinitePositive(result) {
		return nil, ErrInsufficientLiquidity
	}

	return fromFloat(result), nil
}

// SwapIn implements in = bI * ((bO / (bO - out))^(wO/wI) - 1) / (1 - fee).
func (p *Weighted) SwapIn(tokenOut common.Address, amountOut *big.Int, tokenIn common.Address) (*big.Int, error) {
	in, out, err := p.slots(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	err = checkAmount(amountOut)
	if err != nil {
		return nil, err
	}
	if amountOut.Cmp(out.Balance.Int()) >= 0 {
		return nil, ErrInsufficientLiquidity
	}

	balanceIn := toFloat(in.Balance.Int())
	balanceOut := toFloat(out.Balance.Int())
	wanted := toFloat(amountOut)
	exponent := out.Weight.Float64() / in.Weight.Float64()

	ratio := math.Pow(balanceOut/(balanceOut-wanted), exponent)
	result := balanceIn * (ratio - 1) / (1 - p.Fee.Float64())
	if !isFinitePositive(result) {
		return nil, ErrInsufficientLiquidity
	}

	// Round up so the quote always covers the requested output.
	return fromFloat(math.Ceil(result) + 1), nil
}

func (p *Weighted) slots(tokenIn, tokenOut common.Address) (WeightedReserve, WeightedReserve, error) {
	in, okIn := p.Reserves[tokenIn]
	out, okOut := p.Reserves[tokenOut]
	if !okIn || !okOut || tokenIn == tokenOut {
		return WeightedReserve{}, WeightedReserve{}, ErrTokenNotServed
	}
	if in.Balance.Int().Sign() <= 0 || out.Balance.Int().Sign() <= 0 {
		return WeightedReserve{}, WeightedReserve{}, ErrInsufficientLiquidity
	}
	return in, out, nil
}

func toFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}

func fromFloat(v float64) *big.Int {
	result, _ := big.NewFloat(v).Int(nil)
	return result
}

func isFinitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
