package service

import (
	"context"
	"sort"
	"time"

	"github.com/vportella/tradeyard/internal/domain"
	"github.com/vportella/tradeyard/internal/engine"
	"github.com/vportella/tradeyard/internal/store"
)

// Pusher delivers server-initiated updates to connected clients. The hub
// implements it; services stay free of transport imports.
type Pusher interface {
	PushLeaderboard(room string, rows []domain.LeaderboardRow)
	PushEvent(room string, e domain.EventRecord)
	PushBroadcast(room string, message string)
}

// LeaderboardService computes mark-to-market standings per room, both on
// a periodic tick and immediately after each fill.
type LeaderboardService struct {
	accounts  *store.AccountStore
	positions *store.PositionStore
	board     *engine.Board
	db        *store.SQLiteStore
	pusher    Pusher
	size      int
	interval  time.Duration
}

// NewLeaderboardService creates a new LeaderboardService keeping the top
// size rows per room. pusher may be nil.
func NewLeaderboardService(accounts *store.AccountStore, positions *store.PositionStore, board *engine.Board, db *store.SQLiteStore, pusher Pusher, size int, interval time.Duration) *LeaderboardService {
	return &LeaderboardService{
		accounts:  accounts,
		positions: positions,
		board:     board,
		db:        db,
		pusher:    pusher,
		size:      size,
		interval:  interval,
	}
}

// Compute returns the room's standings, highest equity first, capped at
// the configured size. Ties break by username so the board is stable
// between refreshes.
func (s *LeaderboardService) Compute(room string) []domain.LeaderboardRow {
	marks := make(map[string]float64)
	for _, snap := range s.board.Snapshots() {
		marks[snap.Symbol] = snap.Price
	}

	accounts := s.accounts.ByRoom(room)
	rows := make([]domain.LeaderboardRow, 0, len(accounts))
	for _, acct := range accounts {
		acct.Mu.Lock()
		row := domain.LeaderboardRow{
			AccountID: acct.ID,
			Username:  acct.Username,
			Cash:      acct.Cash,
		}
		for sym, pos := range s.positions.ByAccount(acct.ID) {
			mark := marks[sym]
			row.Unrealized += (mark - pos.AvgEntry) * pos.Qty
		}
		// Equity is cash plus unrealized, not cash plus market value:
		// the cost basis of an open position is already out of cash.
		row.Equity = row.Cash + row.Unrealized
		acct.Mu.Unlock()
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Equity != rows[j].Equity {
			return rows[i].Equity > rows[j].Equity
		}
		return rows[i].Username < rows[j].Username
	})
	if len(rows) > s.size {
		rows = rows[:s.size]
	}
	return rows
}

// Publish computes a room's standings, persists the snapshot, and pushes
// it to the room. Persistence failures do not block the push: standings
// are derived data and the next tick recomputes them.
func (s *LeaderboardService) Publish(ctx context.Context, room string) []domain.LeaderboardRow {
	rows := s.Compute(room)
	if s.db != nil {
		_ = s.db.InsertLeaderboard(ctx, room, rows, time.Now().UTC())
	}
	if s.pusher != nil {
		s.pusher.PushLeaderboard(room, rows)
	}
	return rows
}

// rooms returns every room with at least one account.
func (s *LeaderboardService) rooms() []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, acct := range s.accounts.All() {
		if !seen[acct.Room] {
			seen[acct.Room] = true
			out = append(out, acct.Room)
		}
	}
	return out
}

// Start launches the periodic recompute loop. It stops when ctx is
// cancelled.
func (s *LeaderboardService) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, room := range s.rooms() {
					s.Publish(ctx, room)
				}
			}
		}
	}()
}
