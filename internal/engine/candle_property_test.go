package engine

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

// Property: every sealed candle satisfies low <= open, close <= high, and
// open equals the first price observed in its bucket.
func TestProperty_CandleBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		agg := NewAggregator(5*time.Second, 50)
		base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

		n := rapid.IntRange(2, 300).Draw(t, "ticks")
		now := base
		for i := 0; i < n; i++ {
			price := rapid.Float64Range(0.0001, 1_000_000).Draw(t, "price")
			step := time.Duration(rapid.IntRange(100, 8000).Draw(t, "stepMs")) * time.Millisecond
			now = now.Add(step)
			agg.OnTick(price, now)
		}

		for _, c := range agg.History() {
			if c.Low > c.Open || c.Low > c.Close {
				t.Fatalf("low above open/close: %+v", c)
			}
			if c.High < c.Open || c.High < c.Close {
				t.Fatalf("high below open/close: %+v", c)
			}
			if !c.BucketStart.Equal(c.BucketStart.Truncate(5 * time.Second)) {
				t.Fatalf("bucket start not aligned: %v", c.BucketStart)
			}
		}
		if open, ok := agg.Open(); ok {
			if open.Low > open.High {
				t.Fatalf("open candle inverted: %+v", open)
			}
		}
	})
}
