package domain

import (
	"sync"
	"time"
)

// DefaultRoom is the room accounts join when none is given.
const DefaultRoom = "PUBLIC"

// Account represents a participant in one classroom room.
// Cash and RealizedPnl are mutated only by the order pipeline,
// which holds Mu across the whole read-modify-write.
type Account struct {
	ID          string
	Room        string // room code, uppercased
	Username    string // unique within the room
	Cash        float64
	RealizedPnl float64
	CreatedAt   time.Time
	Mu          sync.Mutex // per-account lock for ledger mutations
}
