package store

import (
	"context"
	"testing"
	"time"

	"github.com/vportella/tradeyard/internal/domain"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_AccountRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a := &domain.Account{
		ID:        "a1",
		Room:      "PUBLIC",
		Username:  "alice",
		Cash:      10_000,
		CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := s.SaveAccount(ctx, a); err != nil {
		t.Fatalf("save account: %v", err)
	}

	// Upsert updates the balance, not a second row.
	a.Cash = 9000
	a.RealizedPnl = -50
	if err := s.SaveAccount(ctx, a); err != nil {
		t.Fatalf("save account again: %v", err)
	}

	state, err := s.LoadState(ctx)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if len(state.Accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(state.Accounts))
	}
	got := state.Accounts[0]
	if got.Cash != 9000 || got.RealizedPnl != -50 {
		t.Fatalf("expected cash 9000 pnl -50, got %v %v", got.Cash, got.RealizedPnl)
	}
}

func TestSQLiteStore_ApplyFillTx(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a := &domain.Account{ID: "a1", Room: "PUBLIC", Username: "alice", Cash: 10_000, CreatedAt: time.Now()}
	if err := s.SaveAccount(ctx, a); err != nil {
		t.Fatalf("save account: %v", err)
	}

	trade := &domain.Trade{
		TradeID:    "t1",
		AccountID:  "a1",
		Room:       "PUBLIC",
		Symbol:     "BTC",
		Side:       domain.SideBuy,
		Qty:        0.1,
		FillPrice:  60060,
		FeePaid:    7.2,
		ExecutedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	pos := &domain.Position{AccountID: "a1", Symbol: "BTC", Qty: 0.1, AvgEntry: 60060}
	if err := s.ApplyFillTx(ctx, trade, 3986.8, 0, pos); err != nil {
		t.Fatalf("apply fill: %v", err)
	}

	state, err := s.LoadState(ctx)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Accounts[0].Cash != 3986.8 {
		t.Fatalf("expected cash 3986.8, got %v", state.Accounts[0].Cash)
	}
	if len(state.Positions) != 1 || state.Positions[0].Qty != 0.1 {
		t.Fatalf("unexpected positions: %+v", state.Positions)
	}
	if len(state.Trades) != 1 || state.Trades[0].Side != domain.SideBuy {
		t.Fatalf("unexpected trades: %+v", state.Trades)
	}
}

func TestSQLiteStore_ApplyFillTxAtomic(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a := &domain.Account{ID: "a1", Room: "PUBLIC", Username: "alice", Cash: 10_000, CreatedAt: time.Now()}
	if err := s.SaveAccount(ctx, a); err != nil {
		t.Fatalf("save account: %v", err)
	}

	trade := &domain.Trade{TradeID: "t1", AccountID: "a1", Room: "PUBLIC", Symbol: "BTC", Side: domain.SideBuy, Qty: 1, ExecutedAt: time.Now()}
	pos := &domain.Position{AccountID: "a1", Symbol: "BTC", Qty: 1}
	if err := s.ApplyFillTx(ctx, trade, 9000, 0, pos); err != nil {
		t.Fatalf("apply fill: %v", err)
	}

	// A duplicate trade ID fails the insert; the account update in the
	// same transaction must roll back with it.
	if err := s.ApplyFillTx(ctx, trade, 8000, 0, pos); err == nil {
		t.Fatal("expected duplicate trade ID to fail")
	}

	state, err := s.LoadState(ctx)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.Accounts[0].Cash != 9000 {
		t.Fatalf("expected cash 9000 after rollback, got %v", state.Accounts[0].Cash)
	}
	if len(state.Trades) != 1 {
		t.Fatalf("expected 1 trade after rollback, got %d", len(state.Trades))
	}
}

func TestSQLiteStore_EventsAndLeaderboard(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	err := s.InsertEvent(ctx, domain.EventRecord{
		ID:        "e1",
		Room:      "PUBLIC",
		EventType: "PUMP",
		Symbol:    "BTC",
		Message:   "PUMP on BTC",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}

	rows := []domain.LeaderboardRow{
		{AccountID: "a1", Username: "alice", Equity: 12_000},
		{AccountID: "a2", Username: "bob", Equity: 11_000},
	}
	if err := s.InsertLeaderboard(ctx, "PUBLIC", rows, time.Now()); err != nil {
		t.Fatalf("insert leaderboard: %v", err)
	}
}
