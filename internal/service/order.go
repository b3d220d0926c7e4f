package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vportella/tradeyard/internal/domain"
	"github.com/vportella/tradeyard/internal/engine"
	"github.com/vportella/tradeyard/internal/store"
)

// SubmitOrderRequest represents the input for an order submission.
type SubmitOrderRequest struct {
	AccountID string
	Symbol    string
	Side      domain.Side
	Qty       float64
}

// OrderResult is the outcome of a filled order.
type OrderResult struct {
	TradeID     string    `json:"trade_id"`
	Symbol      string    `json:"symbol"`
	Side        string    `json:"side"`
	Qty         float64   `json:"qty"`
	FillPrice   float64   `json:"fill_price"`
	FeePaid     float64   `json:"fee_paid"`
	Cash        float64   `json:"cash"`
	PositionQty float64   `json:"position_qty"`
	AvgEntry    float64   `json:"avg_entry"`
	RealizedPnl float64   `json:"realized_pnl"`
	ExecutedAt  time.Time `json:"executed_at"`
}

// QuoteResponse is an indicative fill for a hypothetical order.
type QuoteResponse struct {
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Qty       float64 `json:"qty"`
	MidPrice  float64 `json:"mid_price"`
	FillPrice float64 `json:"fill_price"`
	Fee       float64 `json:"fee"`
	Halted    bool    `json:"halted"`
}

// OrderService runs the order pipeline: validation, rate limiting, fill
// pricing, the ledger mutation, and persistence.
type OrderService struct {
	accounts    *store.AccountStore
	positions   *store.PositionStore
	trades      *store.TradeStore
	board       *engine.Board
	db          *store.SQLiteStore
	limiter     *RateLimiter
	leaderboard *LeaderboardService
}

// NewOrderService creates a new OrderService. leaderboard may be nil,
// in which case standings are only refreshed on the periodic tick.
func NewOrderService(accounts *store.AccountStore, positions *store.PositionStore, trades *store.TradeStore, board *engine.Board, db *store.SQLiteStore, limiter *RateLimiter, leaderboard *LeaderboardService) *OrderService {
	return &OrderService{
		accounts:    accounts,
		positions:   positions,
		trades:      trades,
		board:       board,
		db:          db,
		limiter:     limiter,
		leaderboard: leaderboard,
	}
}

// Quote prices a hypothetical order against the current market without
// touching the ledger or the rate limit.
func (s *OrderService) Quote(symbol string, side domain.Side, qty float64) (*QuoteResponse, error) {
	if !side.Valid() {
		return nil, &domain.ValidationError{Message: "side must be BUY or SELL"}
	}
	m, ok := s.board.Get(symbol)
	if !ok {
		return nil, domain.ErrUnknownSymbol
	}
	snap := m.Snapshot()
	fq, err := engine.Quote(snap, side, qty)
	if err != nil {
		return nil, err
	}
	return &QuoteResponse{
		Symbol:    symbol,
		Side:      string(side),
		Qty:       qty,
		MidPrice:  snap.Price,
		FillPrice: fq.FillPrice,
		Fee:       fq.Fee,
		Halted:    snap.Halted,
	}, nil
}

// Submit executes an order at the simulated market maker's price. The
// whole read-modify-write runs under the account lock, and nothing is
// committed in memory unless the database transaction succeeded.
func (s *OrderService) Submit(ctx context.Context, req SubmitOrderRequest) (*OrderResult, error) {
	// The rate limiter sees every attempt, valid or not, so spamming
	// malformed orders still burns the submission budget.
	if !s.limiter.Allow(req.AccountID, time.Now()) {
		return nil, domain.ErrRateLimited
	}

	if !req.Side.Valid() {
		return nil, &domain.ValidationError{Message: "side must be BUY or SELL"}
	}
	if req.Qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	acct, err := s.accounts.Get(req.AccountID)
	if err != nil {
		return nil, err
	}

	m, ok := s.board.Get(req.Symbol)
	if !ok {
		return nil, domain.ErrUnknownSymbol
	}
	snap := m.Snapshot()
	if snap.Halted {
		return nil, domain.ErrMarketHalted
	}

	fq, err := engine.Quote(snap, req.Side, req.Qty)
	if err != nil {
		return nil, err
	}

	// The locked section ends before the leaderboard recompute, which
	// takes the same account lock.
	var trade *domain.Trade
	result, err := func() (*OrderResult, error) {
		acct.Mu.Lock()
		defer acct.Mu.Unlock()

		pos, ok := s.positions.Get(acct.ID, req.Symbol)
		if !ok {
			// Accounts restored from an older catalog may lack a
			// position for a symbol added since.
			pos = &domain.Position{AccountID: acct.ID, Symbol: req.Symbol}
			s.positions.Put(pos)
		}

		res, err := engine.PreviewFill(acct, pos, req.Side, req.Qty, fq.FillPrice, fq.Fee)
		if err != nil {
			return nil, err
		}

		trade = &domain.Trade{
			TradeID:    uuid.NewString(),
			AccountID:  acct.ID,
			Room:       acct.Room,
			Symbol:     req.Symbol,
			Side:       req.Side,
			Qty:        req.Qty,
			FillPrice:  fq.FillPrice,
			FeePaid:    fq.Fee,
			ExecutedAt: time.Now().UTC(),
		}
		post := &domain.Position{
			AccountID:   pos.AccountID,
			Symbol:      pos.Symbol,
			Qty:         res.Qty,
			AvgEntry:    res.AvgEntry,
			RealizedPnl: pos.RealizedPnl,
		}
		postRealized := acct.RealizedPnl
		if req.Side == domain.SideSell {
			post.RealizedPnl += res.RealizedPnl
			postRealized += res.RealizedPnl
		}
		if err := s.db.ApplyFillTx(ctx, trade, res.Cash, postRealized, post); err != nil {
			return nil, fmt.Errorf("persist fill: %w", err)
		}
		engine.CommitFill(acct, pos, req.Side, res)

		return &OrderResult{
			TradeID:     trade.TradeID,
			Symbol:      trade.Symbol,
			Side:        string(trade.Side),
			Qty:         trade.Qty,
			FillPrice:   trade.FillPrice,
			FeePaid:     trade.FeePaid,
			Cash:        acct.Cash,
			PositionQty: pos.Qty,
			AvgEntry:    pos.AvgEntry,
			RealizedPnl: acct.RealizedPnl,
			ExecutedAt:  trade.ExecutedAt,
		}, nil
	}()
	if err != nil {
		return nil, err
	}

	s.trades.Append(trade)
	if s.leaderboard != nil {
		s.leaderboard.Publish(ctx, acct.Room)
	}
	return result, nil
}

// TradesSince returns an account's trades executed at or after since,
// oldest first, capped at limit.
func (s *OrderService) TradesSince(accountID string, since time.Time, limit int) ([]*domain.Trade, error) {
	if _, err := s.accounts.Get(accountID); err != nil {
		return nil, err
	}
	return s.trades.ListByAccountSince(accountID, since, limit), nil
}
