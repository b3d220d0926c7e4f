package domain

import "time"

// Trade represents one executed fill against the simulated market maker.
// Trades are append-only and never mutated: they are the audit trail.
type Trade struct {
	TradeID    string
	AccountID  string
	Room       string
	Symbol     string
	Side       Side
	Qty        float64
	FillPrice  float64
	FeePaid    float64
	ExecutedAt time.Time
}
