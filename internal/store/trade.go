package store

import (
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/vportella/tradeyard/internal/domain"
)

// journalEntry keys a trade by (executed_at, trade_id) so iteration is
// chronological and "since" queries are range scans.
type journalEntry struct {
	ExecutedAt time.Time
	TradeID    string
	Trade      *domain.Trade
}

func journalLess(a, b journalEntry) bool {
	if !a.ExecutedAt.Equal(b.ExecutedAt) {
		return a.ExecutedAt.Before(b.ExecutedAt)
	}
	return a.TradeID < b.TradeID
}

// TradeStore is a thread-safe trade journal. The global journal is a
// B-tree ordered by execution time; a per-account index serves portfolio
// history without scanning other students' trades.
type TradeStore struct {
	mu        sync.RWMutex
	journal   *btree.BTreeG[journalEntry]
	byAccount map[string]*btree.BTreeG[journalEntry]
}

// NewTradeStore creates an empty TradeStore.
func NewTradeStore() *TradeStore {
	const degree = 32
	return &TradeStore{
		journal:   btree.NewG[journalEntry](degree, journalLess),
		byAccount: make(map[string]*btree.BTreeG[journalEntry]),
	}
}

// Append adds a trade to the journal and the account index.
func (s *TradeStore) Append(t *domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := journalEntry{ExecutedAt: t.ExecutedAt, TradeID: t.TradeID, Trade: t}
	s.journal.ReplaceOrInsert(e)

	idx, ok := s.byAccount[t.AccountID]
	if !ok {
		idx = btree.NewG[journalEntry](32, journalLess)
		s.byAccount[t.AccountID] = idx
	}
	idx.ReplaceOrInsert(e)
}

// ListSince returns trades executed at or after since, oldest first,
// up to limit. A limit of 0 means no limit.
func (s *TradeStore) ListSince(since time.Time, limit int) []*domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collectSince(s.journal, since, limit)
}

// ListByAccountSince returns an account's trades executed at or after
// since, oldest first, up to limit. A limit of 0 means no limit.
func (s *TradeStore) ListByAccountSince(accountID string, since time.Time, limit int) []*domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byAccount[accountID]
	if !ok {
		return []*domain.Trade{}
	}
	return collectSince(idx, since, limit)
}

func collectSince(tree *btree.BTreeG[journalEntry], since time.Time, limit int) []*domain.Trade {
	out := []*domain.Trade{}
	pivot := journalEntry{ExecutedAt: since}
	tree.AscendGreaterOrEqual(pivot, func(e journalEntry) bool {
		out = append(out, e.Trade)
		return limit == 0 || len(out) < limit
	})
	return out
}

// Len returns the number of trades in the journal.
func (s *TradeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.journal.Len()
}
