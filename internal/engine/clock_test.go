package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/vportella/tradeyard/internal/domain"
)

// fakeBroadcaster records clock notifications.
type fakeBroadcaster struct {
	markets [][]Snapshot
	candles map[string][]domain.Candle
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{candles: make(map[string][]domain.Candle)}
}

func (f *fakeBroadcaster) BroadcastMarket(snaps []Snapshot) {
	f.markets = append(f.markets, snaps)
}

func (f *fakeBroadcaster) BroadcastCandle(symbol string, c domain.Candle) {
	f.candles[symbol] = append(f.candles[symbol], c)
}

func TestClock_TickBroadcastsSnapshots(t *testing.T) {
	board := newTestBoard()
	fb := newFakeBroadcaster()
	c := NewClock(time.Second, board, rand.New(rand.NewSource(7)), fb)

	now := time.Date(2025, 6, 1, 10, 0, 1, 0, time.UTC)
	c.Tick(now)

	if len(fb.markets) != 1 {
		t.Fatalf("expected 1 market broadcast, got %d", len(fb.markets))
	}
	snaps := fb.markets[0]
	if len(snaps) != 2 || snaps[0].Symbol != "BTC" || snaps[1].Symbol != "ETH" {
		t.Fatalf("unexpected snapshots: %+v", snaps)
	}
	// The tick moved the price off the seed.
	if snaps[0].Price == 60000 {
		t.Fatal("expected price to move on tick")
	}
}

func TestClock_SealsCandlesAcrossBuckets(t *testing.T) {
	board := newTestBoard()
	fb := newFakeBroadcaster()
	c := NewClock(time.Second, board, rand.New(rand.NewSource(7)), fb)

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	// Six 1s ticks cross one 5s bucket boundary.
	for i := 1; i <= 6; i++ {
		c.Tick(start.Add(time.Duration(i) * time.Second))
	}

	for _, sym := range []string{"BTC", "ETH"} {
		sealed := fb.candles[sym]
		if len(sealed) != 1 {
			t.Fatalf("%s: expected 1 sealed candle, got %d", sym, len(sealed))
		}
		candle := sealed[0]
		if candle.Low > candle.Open || candle.High < candle.Close {
			t.Fatalf("%s: inconsistent candle %+v", sym, candle)
		}
	}
	if len(fb.markets) != 6 {
		t.Fatalf("expected 6 market broadcasts, got %d", len(fb.markets))
	}
}

func TestClock_NilBroadcaster(t *testing.T) {
	board := newTestBoard()
	c := NewClock(time.Second, board, rand.New(rand.NewSource(7)), nil)

	// Must not panic without a broadcaster.
	c.Tick(time.Date(2025, 6, 1, 10, 0, 6, 0, time.UTC))
}
