package store

import (
	"sync"

	"github.com/vportella/tradeyard/internal/domain"
)

// PositionStore is a thread-safe in-memory store for positions, keyed by
// (account_id, symbol). Positions are created eagerly at join time, so
// lookups during order flow never allocate.
type PositionStore struct {
	mu        sync.RWMutex
	positions map[string]map[string]*domain.Position // account_id → symbol → position
}

// NewPositionStore creates an empty PositionStore.
func NewPositionStore() *PositionStore {
	return &PositionStore{
		positions: make(map[string]map[string]*domain.Position),
	}
}

// Put stores a position, creating the account's map if needed.
func (s *PositionStore) Put(p *domain.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.positions[p.AccountID]
	if !ok {
		m = make(map[string]*domain.Position)
		s.positions[p.AccountID] = m
	}
	m[p.Symbol] = p
}

// Get retrieves the position for an account and symbol.
func (s *PositionStore) Get(accountID, symbol string) (*domain.Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.positions[accountID][symbol]
	return p, ok
}

// ByAccount returns all positions for an account, keyed by symbol. The
// returned map is a copy; the positions are shared and mutated only
// under the owning account's Mu.
func (s *PositionStore) ByAccount(accountID string) map[string]*domain.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*domain.Position, len(s.positions[accountID]))
	for sym, p := range s.positions[accountID] {
		out[sym] = p
	}
	return out
}
