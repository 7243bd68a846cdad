package auction

import (
	"fmt"
	"math/big"
	"strings"
)

// Amount is a token amount in base units, serialized as a decimal string.
// The coordinator encodes all amounts this way because uint256 values do
// not fit in JSON numbers.
type Amount big.Int

// NewAmount wraps a big.Int as an Amount. The value is copied.
func NewAmount(v *big.Int) *Amount {
	if v == nil {
		return nil
	}
	return (*Amount)(new(big.Int).Set(v))
}

// NewAmountFromUint64 creates an Amount from a uint64.
func NewAmountFromUint64(v uint64) *Amount {
	return (*Amount)(new(big.Int).SetUint64(v))
}

// Int returns the underlying big.Int. The caller must not mutate it.
func (a *Amount) Int() *big.Int {
	if a == nil {
		return nil
	}
	return (*big.Int)(a)
}

// String returns the decimal representation.
func (a *Amount) String() string {
	if a == nil {
		return "0"
	}
	return (*big.Int)(a).String()
}

// MarshalJSON encodes the amount as a quoted decimal string.
func (a *Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON decodes a quoted decimal string into the amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return fmt.Errorf("amount is empty")
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid amount %q", s)
	}

	*a = Amount(*v)
	return nil
}
