package store

import (
	"sync"

	"github.com/vportella/tradeyard/internal/domain"
)

// EventStore is a thread-safe per-room log of market events and admin
// actions. Each room keeps the most recent cap entries.
type EventStore struct {
	mu     sync.RWMutex
	cap    int
	events map[string][]domain.EventRecord // room → chronological
}

// NewEventStore creates an empty EventStore keeping at most cap entries
// per room.
func NewEventStore(cap int) *EventStore {
	return &EventStore{
		cap:    cap,
		events: make(map[string][]domain.EventRecord),
	}
}

// Append adds an event to its room's log, evicting the oldest entry when
// the room is at capacity.
func (s *EventStore) Append(e domain.EventRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := append(s.events[e.Room], e)
	if len(log) > s.cap {
		log = log[len(log)-s.cap:]
	}
	s.events[e.Room] = log
}

// Recent returns a room's events, oldest first.
func (s *EventStore) Recent(room string) []domain.EventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.events[room]
	out := make([]domain.EventRecord, len(log))
	copy(out, log)
	return out
}
