package auction

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// Validation errors. These classify a request as malformed; they are the
// only failures a solve surfaces to the coordinator.
var (
	ErrNoID         = errors.New("auction has no id")
	ErrUnknownToken = errors.New("order references token missing from auction")
	ErrZeroAmount   = errors.New("order amount must be positive")
	ErrSameToken    = errors.New("order sell and buy token are identical")
	ErrBadSide      = errors.New("order side must be sell or buy")
	ErrDuplicateUID = errors.New("duplicate order uid")
)

// Validate performs structural validation of a decoded auction. A failure
// here is fatal for the request; anything past this point degrades
// gracefully instead of erroring.
func (a *Auction) Validate() error {
	if a.ID == "" {
		return ErrNoID
	}

	seen := make(map[string]struct{}, len(a.Orders))

	for i := range a.Orders {
		order := &a.Orders[i]

		if _, dup := seen[order.UID]; dup {
			return fmt.Errorf("order %s: %w", order.UID, ErrDuplicateUID)
		}
		seen[order.UID] = struct{}{}

		if order.Side != SideSell && order.Side != SideBuy {
			return fmt.Errorf("order %s: %w (got %q)", order.UID, ErrBadSide, order.Side)
		}

		if order.SellToken == order.BuyToken {
			return fmt.Errorf("order %s: %w", order.UID, ErrSameToken)
		}

		for _, token := range []common.Address{order.SellToken, order.BuyToken} {
			if _, ok := a.Tokens[token]; !ok {
				return fmt.Errorf("order %s: %w (%s)", order.UID, ErrUnknownToken, token.Hex())
			}
		}

		for _, amount := range []*Amount{order.SellAmount, order.BuyAmount} {
			if amount == nil || amount.Int().Sign() <= 0 {
				return fmt.Errorf("order %s: %w", order.UID, ErrZeroAmount)
			}
		}
	}

	return nil
}

func sortAddresses(addrs []common.Address) {
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i].Bytes(), addrs[j].Bytes()) < 0
	})
}
