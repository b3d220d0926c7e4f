package service

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/vportella/tradeyard/internal/domain"
)

// recordingPusher captures pushes for assertions.
type recordingPusher struct {
	mu           sync.Mutex
	leaderboards map[string][][]domain.LeaderboardRow
	events       map[string][]domain.EventRecord
	broadcasts   map[string][]string
}

func newRecordingPusher() *recordingPusher {
	return &recordingPusher{
		leaderboards: make(map[string][][]domain.LeaderboardRow),
		events:       make(map[string][]domain.EventRecord),
		broadcasts:   make(map[string][]string),
	}
}

func (p *recordingPusher) PushLeaderboard(room string, rows []domain.LeaderboardRow) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.leaderboards[room] = append(p.leaderboards[room], rows)
}

func (p *recordingPusher) PushEvent(room string, e domain.EventRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[room] = append(p.events[room], e)
}

func (p *recordingPusher) PushBroadcast(room, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broadcasts[room] = append(p.broadcasts[room], message)
}

func TestLeaderboard_RankedByEquity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice, _ := f.accountSvc.Join(ctx, JoinRequest{Username: "alice"})
	bob, _ := f.accountSvc.Join(ctx, JoinRequest{Username: "bob"})

	// Bob pays a round trip's worth of friction; Alice stands pat.
	if _, err := f.orderSvc.Submit(ctx, SubmitOrderRequest{
		AccountID: bob.ID, Symbol: "BTC", Side: domain.SideBuy, Qty: 0.1,
	}); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := f.orderSvc.Submit(ctx, SubmitOrderRequest{
		AccountID: bob.ID, Symbol: "BTC", Side: domain.SideSell, Qty: 0.1,
	}); err != nil {
		t.Fatalf("sell: %v", err)
	}

	rows := f.lbSvc.Compute(domain.DefaultRoom)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].AccountID != alice.ID {
		t.Fatalf("expected alice first, got %s", rows[0].Username)
	}
	if rows[1].Equity >= rows[0].Equity {
		t.Fatalf("expected bob below alice: %v vs %v", rows[1].Equity, rows[0].Equity)
	}
}

func TestLeaderboard_EquityIsCashPlusUnrealized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice, _ := f.accountSvc.Join(ctx, JoinRequest{Username: "alice"})
	if _, err := f.orderSvc.Submit(ctx, SubmitOrderRequest{
		AccountID: alice.ID, Symbol: "BTC", Side: domain.SideBuy, Qty: 0.1,
	}); err != nil {
		t.Fatalf("buy: %v", err)
	}

	rows := f.lbSvc.Compute(domain.DefaultRoom)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if got, want := row.Equity, row.Cash+row.Unrealized; math.Abs(got-want) > 1e-9 {
		t.Fatalf("equity %v, want cash+unrealized %v (cash=%v unrealized=%v)",
			got, want, row.Cash, row.Unrealized)
	}
	// The cost basis of the open position has already left cash, so equity
	// stays near starting cash minus friction. Cash plus market value would
	// sit thousands higher here.
	if row.Equity >= 10_000 {
		t.Fatalf("expected equity below starting cash, got %v", row.Equity)
	}
	if row.Cash >= 5_000 {
		t.Fatalf("expected buy to spend most of the cash, got %v", row.Cash)
	}
}

func TestLeaderboard_TiesStableByUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.accountSvc.Join(ctx, JoinRequest{Username: "zoe"})
	f.accountSvc.Join(ctx, JoinRequest{Username: "amy"})

	rows := f.lbSvc.Compute(domain.DefaultRoom)
	if rows[0].Username != "amy" || rows[1].Username != "zoe" {
		t.Fatalf("expected amy then zoe, got %s then %s", rows[0].Username, rows[1].Username)
	}
}

func TestLeaderboard_SizeCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.lbSvc.size = 3

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		if _, err := f.accountSvc.Join(ctx, JoinRequest{Username: name}); err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
	}
	if rows := f.lbSvc.Compute(domain.DefaultRoom); len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
}

func TestLeaderboard_RoomsIsolated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.accountSvc.Join(ctx, JoinRequest{Username: "alice", Room: "ROOM1"})
	f.accountSvc.Join(ctx, JoinRequest{Username: "bob", Room: "ROOM2"})

	rows := f.lbSvc.Compute("ROOM1")
	if len(rows) != 1 || rows[0].Username != "alice" {
		t.Fatalf("expected only alice in ROOM1, got %+v", rows)
	}
}

func TestLeaderboard_PublishPushes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pusher := newRecordingPusher()
	f.lbSvc.pusher = pusher
	f.accountSvc.Join(ctx, JoinRequest{Username: "alice"})

	f.lbSvc.Publish(ctx, domain.DefaultRoom)
	if got := len(pusher.leaderboards[domain.DefaultRoom]); got != 1 {
		t.Fatalf("expected 1 push, got %d", got)
	}
}
