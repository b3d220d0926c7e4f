package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/vportella/tradeyard/internal/domain"
)

func newTestTrade(id, accountID string, at time.Time) *domain.Trade {
	return &domain.Trade{
		TradeID:    id,
		AccountID:  accountID,
		Room:       "PUBLIC",
		Symbol:     "BTC",
		Side:       domain.SideBuy,
		Qty:        1,
		FillPrice:  60000,
		ExecutedAt: at,
	}
}

func TestTradeStore_ChronologicalOrder(t *testing.T) {
	s := NewTradeStore()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	// Append out of order; reads must come back chronological.
	s.Append(newTestTrade("t3", "a1", base.Add(2*time.Second)))
	s.Append(newTestTrade("t1", "a1", base))
	s.Append(newTestTrade("t2", "a1", base.Add(time.Second)))

	got := s.ListSince(time.Time{}, 0)
	if len(got) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(got))
	}
	for i, want := range []string{"t1", "t2", "t3"} {
		if got[i].TradeID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got[i].TradeID)
		}
	}
}

func TestTradeStore_ListSince(t *testing.T) {
	s := NewTradeStore()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.Append(newTestTrade(fmt.Sprintf("t%d", i), "a1", base.Add(time.Duration(i)*time.Second)))
	}

	// Since is inclusive.
	got := s.ListSince(base.Add(2*time.Second), 0)
	if len(got) != 3 {
		t.Fatalf("expected 3 trades since +2s, got %d", len(got))
	}
	if got[0].TradeID != "t2" {
		t.Fatalf("expected first trade t2, got %s", got[0].TradeID)
	}

	// Limit caps the result.
	got = s.ListSince(time.Time{}, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 trades with limit, got %d", len(got))
	}
}

func TestTradeStore_ListByAccountSince(t *testing.T) {
	s := NewTradeStore()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.Append(newTestTrade("t1", "a1", base))
	s.Append(newTestTrade("t2", "a2", base.Add(time.Second)))
	s.Append(newTestTrade("t3", "a1", base.Add(2*time.Second)))

	got := s.ListByAccountSince("a1", time.Time{}, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 trades for a1, got %d", len(got))
	}
	if got[0].TradeID != "t1" || got[1].TradeID != "t3" {
		t.Fatalf("unexpected trades: %s, %s", got[0].TradeID, got[1].TradeID)
	}

	if got := s.ListByAccountSince("no-such-account", time.Time{}, 0); len(got) != 0 {
		t.Fatalf("expected empty slice, got %d trades", len(got))
	}
}

func TestTradeStore_SameInstantOrderedByID(t *testing.T) {
	s := NewTradeStore()
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.Append(newTestTrade("t-b", "a1", at))
	s.Append(newTestTrade("t-a", "a1", at))

	got := s.ListSince(time.Time{}, 0)
	if got[0].TradeID != "t-a" || got[1].TradeID != "t-b" {
		t.Fatalf("expected t-a then t-b, got %s then %s", got[0].TradeID, got[1].TradeID)
	}
}

func TestEventStore_CapEviction(t *testing.T) {
	s := NewEventStore(3)
	for i := 0; i < 5; i++ {
		s.Append(domain.EventRecord{ID: fmt.Sprintf("e%d", i), Room: "PUBLIC"})
	}

	got := s.Recent("PUBLIC")
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].ID != "e2" || got[2].ID != "e4" {
		t.Fatalf("expected e2..e4, got %s..%s", got[0].ID, got[2].ID)
	}

	// Rooms are independent.
	if got := s.Recent("ROOM2"); len(got) != 0 {
		t.Fatalf("expected no events in ROOM2, got %d", len(got))
	}
}
