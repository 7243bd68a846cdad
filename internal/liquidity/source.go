package liquidity

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	gojson "github.com/goccy/go-json"
)

// Kind tags the protocol shape of a liquidity source on the wire.
type Kind string

const (
	KindConstantProduct Kind = "constantProduct"
	KindWeighted        Kind = "weightedProduct"
	KindStable          Kind = "stable"
	KindConcentrated    Kind = "concentratedLiquidity"
	KindVault           Kind = "erc4626"
)

// Quoting errors shared by all source kinds. A quote error discards the
// path candidate being evaluated; it never aborts the solve.
var (
	ErrTokenNotServed        = errors.New("token pair not served by source")
	ErrZeroSwap              = errors.New("swap amount must be positive")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity for requested amount")
)

// Source is one on-chain pool or market capable of quoting an exchange
// between the tokens it serves. Sources are rebuilt every solve from
// resolver output and are never mutated afterwards, so quoting is safe to
// call from concurrent goroutines.
type Source interface {
	// ID is the resolver-assigned identifier, unique within one solve.
	ID() string
	Kind() Kind
	// Address is the on-chain contract the settlement interacts with.
	Address() common.Address
	// Tokens lists the tokens the source can exchange.
	Tokens() []common.Address
	// SwapOut quotes the output of swapping amountIn of tokenIn for tokenOut.
	SwapOut(tokenIn common.Address, amountIn *big.Int, tokenOut common.Address) (*big.Int, error)
	// SwapIn quotes the tokenIn input required to obtain amountOut of tokenOut.
	SwapIn(tokenOut common.Address, amountOut *big.Int, tokenIn common.Address) (*big.Int, error)
	// Gas estimates the settlement gas for routing one hop through the source.
	Gas() uint64
}

// Decode turns one tagged JSON record into its concrete source.
func Decode(raw json.RawMessage) (Source, error) {
	var envelope struct {
		Kind Kind `json:"kind"`
	}
	err := gojson.Unmarshal(raw, &envelope)
	if err != nil {
		return nil, fmt.Errorf("decode liquidity envelope: %w", err)
	}

	var src Source
	switch envelope.Kind {
	case KindConstantProduct:
		src = &ConstantProduct{}
	case KindWeighted:
		src = &Weighted{}
	case KindStable:
		src = &Stable{}
	case KindConcentrated:
		src = &Concentrated{}
	case KindVault:
		src = &Vault{}
	default:
		return nil, fmt.Errorf("unknown liquidity kind %q", envelope.Kind)
	}

	err = gojson.Unmarshal(raw, src)
	if err != nil {
		return nil, fmt.Errorf("decode %s liquidity: %w", envelope.Kind, err)
	}

	DecodedTotal.WithLabelValues(string(envelope.Kind)).Inc()
	return src, nil
}

// Sources is a decoded liquidity set.
type Sources []Source

// UnmarshalJSON decodes a JSON array of tagged liquidity records.
func (s *Sources) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	err := gojson.Unmarshal(data, &raws)
	if err != nil {
		return fmt.Errorf("decode liquidity list: %w", err)
	}

	out := make(Sources, 0, len(raws))
	for i, raw := range raws {
		src, err := Decode(raw)
		if err != nil {
			return fmt.Errorf("liquidity record %d: %w", i, err)
		}
		out = append(out, src)
	}

	*s = out
	return nil
}

// DecodeAll decodes a raw record set, dropping records that fail to
// decode. The skipped count lets the caller log the degradation once.
func DecodeAll(raws []json.RawMessage) (sources Sources, skipped int) {
	sources = make(Sources, 0, len(raws))
	for _, raw := range raws {
		src, err := Decode(raw)
		if err != nil {
			DecodeFailuresTotal.Inc()
			skipped++
			continue
		}
		sources = append(sources, src)
	}
	return sources, skipped
}

func containsToken(tokens []common.Address, token common.Address) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}

func checkPair(tokens []common.Address, in, out common.Address) error {
	if !containsToken(tokens, in) || !containsToken(tokens, out) || in == out {
		return ErrTokenNotServed
	}
	return nil
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroSwap
	}
	return nil
}
