package liquidity

import (
	"bytes"
	"math/big"
	"sort"

	"github.com/balancer/solver-scripts/internal/auction"
	"github.com/ethereum/go-ethereum/common"
)

// Stable is a StableSwap pool (Curve style) of two or more pegged tokens.
// Balances are expected pre-normalized to a common precision by the
// liquidity service. The fee is charged on the output amount.
type Stable struct {
	SourceID      string                             `json:"id"`
	Pool          common.Address                     `json:"address"`
	Balances      map[common.Address]*auction.Amount `json:"tokens"`
	Amplification uint64                             `json:"amplificationParameter,string"`
	Fee           *Fraction                          `json:"fee"`
	GasCost       uint64                             `json:"gasEstimate"`
}

func (p *Stable) ID() string              { return p.SourceID }
func (p *Stable) Kind() Kind              { return KindStable }
func (p *Stable) Address() common.Address { return p.Pool }
func (p *Stable) Gas() uint64             { return p.GasCost }

func (p *Stable) Tokens() []common.Address {
	tokens := make([]common.Address, 0, len(p.Balances))
	for token := range p.Balances {
		tokens = append(tokens, token)
	}
	return tokens
}

// SwapOut solves the StableSwap invariant for the output balance after
// adding amountIn, then charges the fee on the resulting output.
func (p *Stable) SwapOut(tokenIn common.Address, amountIn *big.Int, tokenOut common.Address) (*big.Int, error) {
	err := checkAmount(amountIn)
	if err != nil {
		return nil, err
	}

	tokens, balances := p.sortedBalances()
	i, j, err := p.indexes(tokens, tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}

	newIn := new(big.Int).Add(balances[i], amountIn)
	newOut := p.solveBalance(i, j, newIn, balances)
	if newOut == nil {
		return nil, ErrInsufficientLiquidity
	}

	// dy = old_out - new_out - 1 (rounding margin), minus the output fee.
	out := new(big.Int).Sub(balances[j], newOut)
	out.Sub(out, big.NewInt(1))
	if out.Sign() <= 0 {
		return nil, ErrInsufficientLiquidity
	}

	feeNum, feeDen := p.Fee.Complement()
	out.Mul(out, feeNum)
	return out.Div(out, feeDen), nil
}

// SwapIn grosses the requested output up by the fee, then solves the
// invariant backward for the required input.
func (p *Stable) SwapIn(tokenOut common.Address, amountOut *big.Int, tokenIn common.Address) (*big.Int, error) {
	err := checkAmount(amountOut)
	if err != nil {
		return nil, err
	}

	tokens, balances := p.sortedBalances()
	i, j, err := p.indexes(tokens, tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}

	feeNum, feeDen := p.Fee.Complement()
	gross := new(big.Int).Mul(amountOut, feeDen)
	gross.Div(gross, feeNum)
	gross.Add(gross, big.NewInt(1))

	if gross.Cmp(balances[j]) >= 0 {
		return nil, ErrInsufficientLiquidity
	}

	newOut := new(big.Int).Sub(balances[j], gross)
	newIn := p.solveBalance(j, i, newOut, balances)
	if newIn == nil || newIn.Cmp(balances[i]) <= 0 {
		return nil, ErrInsufficientLiquidity
	}

	in := new(big.Int).Sub(newIn, balances[i])
	return in.Add(in, big.NewInt(1)), nil
}

func (p *Stable) sortedBalances() ([]common.Address, []*big.Int) {
	tokens := p.Tokens()
	sort.Slice(tokens, func(a, b int) bool {
		return bytes.Compare(tokens[a].Bytes(), tokens[b].Bytes()) < 0
	})

	balances := make([]*big.Int, len(tokens))
	for idx, token := range tokens {
		balances[idx] = p.Balances[token].Int()
	}
	return tokens, balances
}

func (p *Stable) indexes(tokens []common.Address, tokenIn, tokenOut common.Address) (int, int, error) {
	in, out := -1, -1
	for idx, token := range tokens {
		if token == tokenIn {
			in = idx
		}
		if token == tokenOut {
			out = idx
		}
	}
	if in < 0 || out < 0 || in == out {
		return 0, 0, ErrTokenNotServed
	}
	for _, balance := range p.Balances {
		if balance.Int().Sign() <= 0 {
			return 0, 0, ErrInsufficientLiquidity
		}
	}
	return in, out, nil
}

// invariantD computes the StableSwap invariant by Newton iteration.
func (p *Stable) invariantD(balances []*big.Int) *big.Int {
	n := int64(len(balances))
	nBig := big.NewInt(n)
	ann := new(big.Int).SetUint64(p.Amplification)
	ann.Mul(ann, nBig)

	sum := new(big.Int)
	for _, b := range balances {
		sum.Add(sum, b)
	}
	if sum.Sign() == 0 {
		return new(big.Int)
	}

	d := new(big.Int).Set(sum)
	one := big.NewInt(1)

	for iter := 0; iter < 255; iter++ {
		dp := new(big.Int).Set(d)
		for _, b := range balances {
			dp.Mul(dp, d)
			dp.Div(dp, new(big.Int).Mul(b, nBig))
		}

		prev := new(big.Int).Set(d)

		// d = (ann*sum + dp*n) * d / ((ann-1)*d + (n+1)*dp)
		num := new(big.Int).Mul(ann, sum)
		num.Add(num, new(big.Int).Mul(dp, nBig))
		num.Mul(num, d)

		den := new(big.Int).Sub(ann, one)
		den.Mul(den, d)
		den.Add(den, new(big.Int).Mul(new(big.Int).Add(nBig, one), dp))

		d.Div(num, den)

		if delta(d, prev).Cmp(one) <= 0 {
			return d
		}
	}
	return d
}

// solveBalance returns the post-trade balance of token j when token i's
// balance becomes newI, holding the invariant fixed. Nil when the
// iteration cannot produce a sane balance.
func (p *Stable) solveBalance(i, j int, newI *big.Int, balances []*big.Int) *big.Int {
	n := int64(len(balances))
	nBig := big.NewInt(n)
	ann := new(big.Int).SetUint64(p.Amplification)
	ann.Mul(ann, nBig)

	d := p.invariantD(balances)
	if d.Sign() == 0 {
		return nil
	}

	c := new(big.Int).Set(d)
	s := new(big.Int)

	for k := range balances {
		var x *big.Int
		switch {
		case k == i:
			x = newI
		case k == j:
			continue
		default:
			x = balances[k]
		}
		if x.Sign() <= 0 {
			return nil
		}
		s.Add(s, x)
		c.Mul(c, d)
		c.Div(c, new(big.Int).Mul(x, nBig))
	}

	c.Mul(c, d)
	c.Div(c, new(big.Int).Mul(ann, nBig))

	b := new(big.Int).Add(s, new(big.Int).Div(d, ann))
	y := new(big.Int).Set(d)
	one := big.NewInt(1)
	two := big.NewInt(2)

	for iter := 0; iter < 255; iter++ {
		prev := new(big.Int).Set(y)

		// y = (y*y + c) / (2*y + b - d)
		num := new(big.Int).Mul(y, y)
		num.Add(num, c)
		den := new(big.Int).Mul(y, two)
		den.Add(den, b)
		den.Sub(den, d)
		if den.Sign() <= 0 {
			return nil
		}
		y.Div(num, den)

		if delta(y, prev).Cmp(one) <= 0 {
			return y
		}
	}
	return y
}

func delta(a, b *big.Int) *big.Int {
	d := new(big.Int).Sub(a, b)
	return d.Abs(d)
}
