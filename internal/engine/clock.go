package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/vportella/tradeyard/internal/domain"
)

// Broadcaster receives the clock's outbound notifications. The websocket hub
// implements it; the engine never imports transport.
type Broadcaster interface {
	BroadcastMarket(snapshots []Snapshot)
	BroadcastCandle(symbol string, candle domain.Candle)
}

// Clock is the periodic driver: each tick it advances every symbol's price
// process, feeds the candle aggregators, and broadcasts the market snapshot
// plus any candles sealed by a bucket rollover.
type Clock struct {
	interval    time.Duration
	board       *Board
	rng         *rand.Rand // used only by the clock goroutine
	broadcaster Broadcaster
}

// NewClock creates a clock over the board. The rng is the single source of
// randomness for price moves, injectable for reproducible simulations.
func NewClock(interval time.Duration, board *Board, rng *rand.Rand, broadcaster Broadcaster) *Clock {
	return &Clock{
		interval:    interval,
		board:       board,
		rng:         rng,
		broadcaster: broadcaster,
	}
}

// Start launches the tick loop. It stops when ctx is cancelled.
func (c *Clock) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				c.Tick(now)
			}
		}
	}()
}

// Tick advances every symbol once. Each symbol is locked independently for
// its advance+aggregate step; broadcasts happen after all locks are released.
func (c *Clock) Tick(now time.Time) {
	type sealed struct {
		symbol string
		candle domain.Candle
	}

	var sealedCandles []sealed
	snapshots := make([]Snapshot, 0, len(c.board.order))

	for _, code := range c.board.Symbols() {
		m, _ := c.board.Get(code)
		draw := Normal(c.rng)

		m.Mu.Lock()
		m.advance(draw)
		if candle := m.Candles.OnTick(m.Price, now); candle != nil {
			sealedCandles = append(sealedCandles, sealed{symbol: code, candle: *candle})
		}
		snapshots = append(snapshots, m.snapshot())
		m.Mu.Unlock()
	}

	if c.broadcaster == nil {
		return
	}
	for _, s := range sealedCandles {
		c.broadcaster.BroadcastCandle(s.symbol, s.candle)
	}
	c.broadcaster.BroadcastMarket(snapshots)
}
