package solution

import (
	"math/big"

	"github.com/balancer/solver-scripts/internal/auction"
	"github.com/balancer/solver-scripts/internal/routing"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// SettlementGasOverhead is the fixed per-solution settlement cost added
// on top of the summed segment gas.
const SettlementGasOverhead = 106_391

var priceScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Assembler builds solutions for one auction.
type Assembler struct {
	gasPrice *big.Int
	tokens   map[common.Address]auction.Token
	logger   *zap.Logger
}

// NewAssembler creates an assembler bound to the auction's gas price and
// token metadata.
func NewAssembler(auc *auction.Auction, logger *zap.Logger) *Assembler {
	return &Assembler{
		gasPrice: auc.GasPrice(),
		tokens:   auc.Tokens,
		logger:   logger,
	}
}

// Assemble converts an order's best route into a solution with the given
// sequential id.
func (a *Assembler) Assemble(id uint64, order *auction.Order, route *routing.Route) Solution {
	executedSell := new(big.Int).Set(route.Input())
	executedBuy := new(big.Int).Set(route.Output())

	// A buy order's executed output never exceeds what it asked for, even
	// when the route naturally yields more; the excess stays in the
	// settlement buffer.
	if order.Side == auction.SideBuy && executedBuy.Cmp(order.BuyAmount.Int()) > 0 {
		executedBuy.Set(order.BuyAmount.Int())
	}

	interactions := make([]Interaction, len(route.Segments))
	for i, seg := range route.Segments {
		interactions[i] = Interaction{
			SourceID:    seg.Source.ID(),
			Kind:        seg.Source.Kind(),
			Target:      seg.Source.Address(),
			TokenIn:     seg.TokenIn,
			TokenOut:    seg.TokenOut,
			AmountIn:    auction.NewAmount(seg.AmountIn),
			AmountOut:   auction.NewAmount(seg.AmountOut),
			GasEstimate: seg.Source.Gas(),
		}
	}

	gas := route.Gas() + SettlementGasOverhead
	fee := new(big.Int).Mul(new(big.Int).SetUint64(gas), a.gasPrice)

	sol := Solution{
		ID: id,
		// Uniform clearing prices: the sell token is priced in units of
		// executed buy amount and vice versa, so executedSell * p(sell)
		// equals executedBuy * p(buy).
		Prices: map[common.Address]*auction.Amount{
			order.SellToken: auction.NewAmount(executedBuy),
			order.BuyToken:  auction.NewAmount(executedSell),
		},
		Trades: []Trade{{
			OrderUID:     order.UID,
			ExecutedSell: auction.NewAmount(executedSell),
			ExecutedBuy:  auction.NewAmount(executedBuy),
		}},
		Interactions: interactions,
		Gas:          gas,
		Fee:          auction.NewAmount(fee),
	}

	if meta, ok := a.tokens[order.SellToken]; ok && meta.ReferencePrice != nil && meta.ReferencePrice.Int().Sign() > 0 {
		feeInSell := new(big.Int).Mul(fee, priceScale)
		feeInSell.Div(feeInSell, meta.ReferencePrice.Int())
		sol.FeeInSellToken = auction.NewAmount(feeInSell)
	}

	a.logger.Debug("solution-assembled",
		zap.Uint64("solution-id", id),
		zap.String("order-uid", order.UID),
		zap.Int("hop-count", len(interactions)),
		zap.String("executed-sell", executedSell.String()),
		zap.String("executed-buy", executedBuy.String()),
		zap.Uint64("gas", gas))

	return sol
}
