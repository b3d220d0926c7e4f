package engine

import (
	"math"

	"github.com/vportella/tradeyard/internal/domain"
)

// Fill pricing tunables.
const (
	slippageLiquidityFloor = 100.0
	slippageCoefficient    = 0.02
)

// FillQuote is the execution price and fee for a prospective order.
type FillQuote struct {
	FillPrice float64 `json:"fill_price"`
	Fee       float64 `json:"fee"`
}

// Quote derives the execution price and proportional fee for an order
// against the given market snapshot. Spread and size-dependent slippage
// always work against the trader: buys fill above mid, sells below.
//
// This is the single fill-pricing formula in the system; the quote endpoint
// and the execution path both call it, so an estimate can only differ from
// the executed price by the market moving in between.
func Quote(snap Snapshot, side domain.Side, qty float64) (FillQuote, error) {
	if qty <= 0 {
		return FillQuote{}, domain.ErrInvalidQuantity
	}

	slippage := (qty / math.Max(slippageLiquidityFloor, snap.Liquidity)) * slippageCoefficient
	spreadCost := snap.Spread/2 + slippage

	var fill float64
	if side == domain.SideBuy {
		fill = snap.Price * (1 + spreadCost)
	} else {
		fill = snap.Price * (1 - spreadCost)
	}

	fee := fill * qty * (snap.FeeBps / 10000)
	return FillQuote{FillPrice: fill, Fee: fee}, nil
}
