package domain

import "time"

// Candle is an OHLC summary of price activity within one fixed time bucket.
// BucketStart is aligned to the bucket duration, so candles line up with the
// wall clock regardless of when ticks actually arrived.
type Candle struct {
	BucketStart time.Time `json:"bucket_start"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
}
