package store

import (
	"strings"
	"sync"

	"github.com/vportella/tradeyard/internal/domain"
)

// AccountStore is a thread-safe in-memory store for accounts, with a
// primary index by account_id and a secondary index by (room, username)
// so joins are idempotent per classroom.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	byName   map[string]*domain.Account // room + "\x00" + lowercase username
}

// NewAccountStore creates an empty AccountStore.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]*domain.Account),
		byName:   make(map[string]*domain.Account),
	}
}

func nameKey(room, username string) string {
	return room + "\x00" + strings.ToLower(username)
}

// Create adds an account to both indexes.
func (s *AccountStore) Create(a *domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[a.ID] = a
	s.byName[nameKey(a.Room, a.Username)] = a
}

// Get retrieves an account by ID. It returns domain.ErrAccountNotFound
// if the account does not exist.
func (s *AccountStore) Get(id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return a, nil
}

// GetByName retrieves an account by room and username. Username matching
// is case-insensitive.
func (s *AccountStore) GetByName(room, username string) (*domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byName[nameKey(room, username)]
	return a, ok
}

// All returns every account. The returned slice is a copy; the accounts
// themselves are shared and guarded by their own Mu.
func (s *AccountStore) All() []*domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	return out
}

// ByRoom returns every account in a room.
func (s *AccountStore) ByRoom(room string) []*domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Account, 0)
	for _, a := range s.accounts {
		if a.Room == room {
			out = append(out, a)
		}
	}
	return out
}
