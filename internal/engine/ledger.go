package engine

import (
	"github.com/vportella/tradeyard/internal/domain"
)

// FillResult is the computed effect of applying one fill to an account and
// position. It is produced without mutating either, so the caller can make
// the durable write first and only then commit the values; a failed write
// leaves the ledger untouched.
type FillResult struct {
	Cash        float64 // account cash after the fill
	Qty         float64 // position quantity after the fill
	AvgEntry    float64 // cost basis after the fill
	RealizedPnl float64 // realized P&L of this fill (0 for buys)
}

// PreviewFill validates a fill against the account's cash and the position's
// holding and computes the resulting ledger values. Each precondition is a
// distinct failure; on any error the inputs are left meaningful and no
// partial effect exists anywhere.
//
// BUY: cash decreases by gross+fee and the cost basis becomes the
// quantity-weighted average of the old basis and this fill.
// SELL: realized P&L is (fill − basis) × qty, cash increases by gross−fee,
// and the basis resets to 0 when the position returns to flat.
func PreviewFill(acct *domain.Account, pos *domain.Position, side domain.Side, qty, fillPrice, fee float64) (FillResult, error) {
	if qty <= 0 {
		return FillResult{}, domain.ErrInvalidQuantity
	}

	gross := fillPrice * qty

	switch side {
	case domain.SideBuy:
		total := gross + fee
		if acct.Cash < total {
			return FillResult{}, domain.ErrInsufficientCash
		}
		newQty := pos.Qty + qty
		newAvg := (pos.Qty*pos.AvgEntry + gross) / newQty
		return FillResult{
			Cash:     acct.Cash - total,
			Qty:      newQty,
			AvgEntry: newAvg,
		}, nil

	case domain.SideSell:
		if pos.Qty < qty {
			return FillResult{}, domain.ErrInsufficientPosition
		}
		pnl := (fillPrice - pos.AvgEntry) * qty
		newQty := pos.Qty - qty
		newAvg := pos.AvgEntry
		if newQty == 0 {
			newAvg = 0 // cost basis is meaningless with no position
		}
		return FillResult{
			Cash:        acct.Cash + gross - fee,
			Qty:         newQty,
			AvgEntry:    newAvg,
			RealizedPnl: pnl,
		}, nil

	default:
		return FillResult{}, &domain.ValidationError{Message: "side must be BUY or SELL"}
	}
}

// CommitFill applies a previewed result to the account and position. Caller
// holds the account lock and has already made the durable write.
func CommitFill(acct *domain.Account, pos *domain.Position, side domain.Side, res FillResult) {
	acct.Cash = res.Cash
	pos.Qty = res.Qty
	pos.AvgEntry = res.AvgEntry
	if side == domain.SideSell {
		acct.RealizedPnl += res.RealizedPnl
		pos.RealizedPnl += res.RealizedPnl
	}
}
