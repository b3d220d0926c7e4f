package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vportella/tradeyard/internal/domain"
	"github.com/vportella/tradeyard/internal/engine"
	"github.com/vportella/tradeyard/internal/store"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_ .-]{1,24}$`)
	roomRegex     = regexp.MustCompile(`^[A-Z0-9_-]{1,32}$`)
)

// JoinRequest represents the input for joining the market.
type JoinRequest struct {
	Username string
	Room     string
}

// PortfolioResponse is the full view of one account: balances plus
// per-symbol positions marked to the current price.
type PortfolioResponse struct {
	AccountID   string         `json:"account_id"`
	Username    string         `json:"username"`
	Room        string         `json:"room"`
	Cash        float64        `json:"cash"`
	RealizedPnl float64        `json:"realized_pnl"`
	Positions   []PositionView `json:"positions"`
	Equity      float64        `json:"equity"`
	Unrealized  float64        `json:"unrealized_pnl"`
	MarkedAt    time.Time      `json:"marked_at"`
}

// PositionView is a position annotated with its mark-to-market value.
type PositionView struct {
	Symbol      string  `json:"symbol"`
	Qty         float64 `json:"qty"`
	AvgEntry    float64 `json:"avg_entry"`
	MarkPrice   float64 `json:"mark_price"`
	MarketValue float64 `json:"market_value"`
	Unrealized  float64 `json:"unrealized_pnl"`
	RealizedPnl float64 `json:"realized_pnl"`
}

// AccountService handles joins and portfolio queries.
type AccountService struct {
	accounts     *store.AccountStore
	positions    *store.PositionStore
	board        *engine.Board
	db           *store.SQLiteStore
	startingCash float64
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts *store.AccountStore, positions *store.PositionStore, board *engine.Board, db *store.SQLiteStore, startingCash float64) *AccountService {
	return &AccountService{
		accounts:     accounts,
		positions:    positions,
		board:        board,
		db:           db,
		startingCash: startingCash,
	}
}

// Join returns the account for (room, username), creating it with the
// starting cash balance if it does not exist. Joining twice with the
// same name returns the same account, so a student who refreshes the
// page keeps their money.
func (s *AccountService) Join(ctx context.Context, req JoinRequest) (*domain.Account, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, domain.ErrUsernameRequired
	}
	if !usernameRegex.MatchString(username) {
		return nil, &domain.ValidationError{
			Message: "username must match ^[a-zA-Z0-9_ .-]{1,24}$",
		}
	}

	room := strings.ToUpper(strings.TrimSpace(req.Room))
	if room == "" {
		room = domain.DefaultRoom
	}
	if !roomRegex.MatchString(room) {
		return nil, &domain.ValidationError{
			Message: "room must match ^[A-Z0-9_-]{1,32}$",
		}
	}

	if existing, ok := s.accounts.GetByName(room, username); ok {
		return existing, nil
	}

	acct := &domain.Account{
		ID:        uuid.NewString(),
		Room:      room,
		Username:  username,
		Cash:      s.startingCash,
		CreatedAt: time.Now().UTC(),
	}
	positions := make([]*domain.Position, 0, len(s.board.Symbols()))
	for _, sym := range s.board.Symbols() {
		positions = append(positions, &domain.Position{AccountID: acct.ID, Symbol: sym})
	}

	// Persist first so a crash between here and the in-memory insert
	// loses nothing the student has seen.
	if err := s.db.SaveAccount(ctx, acct); err != nil {
		return nil, fmt.Errorf("persist account: %w", err)
	}
	for _, p := range positions {
		if err := s.db.SavePosition(ctx, p); err != nil {
			return nil, fmt.Errorf("persist position: %w", err)
		}
	}

	s.accounts.Create(acct)
	for _, p := range positions {
		s.positions.Put(p)
	}
	return acct, nil
}

// Portfolio returns the account with its positions marked to the current
// per-symbol prices.
func (s *AccountService) Portfolio(accountID string) (*PortfolioResponse, error) {
	acct, err := s.accounts.Get(accountID)
	if err != nil {
		return nil, err
	}

	marks := make(map[string]float64)
	for _, snap := range s.board.Snapshots() {
		marks[snap.Symbol] = snap.Price
	}

	acct.Mu.Lock()
	defer acct.Mu.Unlock()

	resp := &PortfolioResponse{
		AccountID:   acct.ID,
		Username:    acct.Username,
		Room:        acct.Room,
		Cash:        acct.Cash,
		RealizedPnl: acct.RealizedPnl,
		Positions:   []PositionView{},
		MarkedAt:    time.Now().UTC(),
	}
	for _, sym := range s.board.Symbols() {
		pos, ok := s.positions.Get(accountID, sym)
		if !ok {
			continue
		}
		mark := marks[sym]
		value := pos.Qty * mark
		unreal := (mark - pos.AvgEntry) * pos.Qty
		resp.Positions = append(resp.Positions, PositionView{
			Symbol:      sym,
			Qty:         pos.Qty,
			AvgEntry:    pos.AvgEntry,
			MarkPrice:   mark,
			MarketValue: value,
			Unrealized:  unreal,
			RealizedPnl: pos.RealizedPnl,
		})
		resp.Unrealized += unreal
	}
	// Equity is cash plus unrealized, not cash plus market value.
	resp.Equity = resp.Cash + resp.Unrealized
	return resp, nil
}
