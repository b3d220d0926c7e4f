package engine

import (
	"time"

	"github.com/vportella/tradeyard/internal/domain"
)

// Aggregator buckets price ticks into fixed-duration OHLC candles for one
// symbol and retains a bounded, oldest-first history of sealed candles.
// It is not self-locking: it lives inside a MarketState and shares its Mu.
type Aggregator struct {
	bucket  time.Duration
	cap     int
	open    *domain.Candle
	history []domain.Candle
}

// NewAggregator creates an aggregator with the given bucket duration and
// history cap.
func NewAggregator(bucket time.Duration, historyCap int) *Aggregator {
	return &Aggregator{bucket: bucket, cap: historyCap}
}

// bucketStart aligns now to the bucket grid.
func (a *Aggregator) bucketStart(now time.Time) time.Time {
	return now.Truncate(a.bucket)
}

// OnTick records one price observation. When now has crossed into a new
// bucket, the open candle is sealed, appended to history (evicting the
// oldest past the cap), and returned so the caller can broadcast it.
// Otherwise the open candle's high/low/close are updated in place and nil
// is returned.
func (a *Aggregator) OnTick(price float64, now time.Time) *domain.Candle {
	start := a.bucketStart(now)

	if a.open != nil && a.open.BucketStart.Equal(start) {
		if price > a.open.High {
			a.open.High = price
		}
		if price < a.open.Low {
			a.open.Low = price
		}
		a.open.Close = price
		return nil
	}

	var sealed *domain.Candle
	if a.open != nil {
		c := *a.open
		a.history = append(a.history, c)
		if len(a.history) > a.cap {
			a.history = a.history[len(a.history)-a.cap:]
		}
		sealed = &c
	}
	a.open = &domain.Candle{
		BucketStart: start,
		Open:        price,
		High:        price,
		Low:         price,
		Close:       price,
	}
	return sealed
}

// History returns the sealed candles, oldest first.
func (a *Aggregator) History() []domain.Candle {
	out := make([]domain.Candle, len(a.history))
	copy(out, a.history)
	return out
}

// Open returns a copy of the currently open candle, if any.
func (a *Aggregator) Open() (domain.Candle, bool) {
	if a.open == nil {
		return domain.Candle{}, false
	}
	return *a.open, true
}
