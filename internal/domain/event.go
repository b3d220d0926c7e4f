package domain

import "time"

// EventRecord is one entry of the room's append-only event log: a teaching
// event, an admin parameter change, or an instructor broadcast.
type EventRecord struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	EventType string    `json:"event_type"`
	Symbol    string    `json:"symbol,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaderboardRow is one account's mark-to-market standing.
type LeaderboardRow struct {
	AccountID  string  `json:"account_id"`
	Username   string  `json:"username"`
	Cash       float64 `json:"cash"`
	Unrealized float64 `json:"unrealized"`
	Equity     float64 `json:"equity"`
}
