package service

import (
	"testing"
	"time"

	"github.com/vportella/tradeyard/internal/engine"
	"github.com/vportella/tradeyard/internal/store"
)

// fixture wires the full service stack against an in-memory database.
type fixture struct {
	accounts  *store.AccountStore
	positions *store.PositionStore
	trades    *store.TradeStore
	events    *store.EventStore
	db        *store.SQLiteStore
	board     *engine.Board

	accountSvc *AccountService
	orderSvc   *OrderService
	lbSvc      *LeaderboardService
	adminSvc   *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	seeds := []engine.SymbolSeed{
		{Code: "BTC", Name: "Bitcoin", Price: 60000, Volatility: 0.002, Liquidity: 12000, Spread: 0.002, FeeBps: 12, Supply: 1_000_000},
		{Code: "ETH", Name: "Ethereum", Price: 3000, Volatility: 0.002, Liquidity: 12000, Spread: 0.002, FeeBps: 12, Supply: 1_000_000},
	}
	f := &fixture{
		accounts:  store.NewAccountStore(),
		positions: store.NewPositionStore(),
		trades:    store.NewTradeStore(),
		events:    store.NewEventStore(100),
		db:        db,
		board:     engine.NewBoard(seeds, 5*time.Second, 200),
	}

	f.accountSvc = NewAccountService(f.accounts, f.positions, f.board, f.db, 10_000)
	f.lbSvc = NewLeaderboardService(f.accounts, f.positions, f.board, f.db, nil, 20, 10*time.Second)
	limiter := NewRateLimiter(1000, time.Second) // effectively off unless a test swaps it
	f.orderSvc = NewOrderService(f.accounts, f.positions, f.trades, f.board, f.db, limiter, f.lbSvc)
	f.adminSvc = NewAdminService("1234", f.board, nil, f.events, f.db, nil)
	return f
}
