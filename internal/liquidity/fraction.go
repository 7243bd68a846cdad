package liquidity

import (
	"fmt"
	"math/big"
	"strings"
)

// Fraction is a ratio serialized as a decimal string, e.g. a swap fee of
// "0.003". Stored exactly; pool math extracts numerator and denominator.
type Fraction big.Rat

// NewFraction builds a fraction from an integer numerator and denominator.
func NewFraction(num, den int64) *Fraction {
	return (*Fraction)(big.NewRat(num, den))
}

// Rat returns the underlying rational. The caller must not mutate it.
func (f *Fraction) Rat() *big.Rat {
	if f == nil {
		return new(big.Rat)
	}
	return (*big.Rat)(f)
}

// Float64 returns the nearest float64 value.
func (f *Fraction) Float64() float64 {
	v, _ := f.Rat().Float64()
	return v
}

// Complement returns 1 - f as numerator and denominator, used for
// fee-on-input math. A nil fraction means no fee.
func (f *Fraction) Complement() (num, den *big.Int) {
	r := f.Rat()
	den = new(big.Int).Set(r.Denom())
	num = new(big.Int).Sub(den, r.Num())
	return num, den
}

// MarshalJSON encodes the fraction as a quoted decimal string.
func (f *Fraction) MarshalJSON() ([]byte, error) {
	s := f.Rat().FloatString(18)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" {
		s = "0"
	}
	return []byte(`"` + s + `"`), nil
}

// UnmarshalJSON decodes a quoted decimal string.
func (f *Fraction) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return fmt.Errorf("invalid fraction %q", s)
	}
	if r.Sign() < 0 || r.Cmp(big.NewRat(1, 1)) >= 0 {
		return fmt.Errorf("fraction %q outside [0, 1)", s)
	}
	*f = Fraction(*r)
	return nil
}
