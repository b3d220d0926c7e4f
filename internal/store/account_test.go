package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vportella/tradeyard/internal/domain"
)

func newTestAccount(id, room, username string) *domain.Account {
	return &domain.Account{
		ID:        id,
		Room:      room,
		Username:  username,
		Cash:      10_000,
		CreatedAt: time.Now(),
	}
}

func TestAccountStore_Get(t *testing.T) {
	s := NewAccountStore()
	s.Create(newTestAccount("a1", "PUBLIC", "alice"))

	got, err := s.Get("a1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("expected alice, got %s", got.Username)
	}

	if _, err := s.Get("no-such-account"); err != domain.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountStore_GetByName(t *testing.T) {
	s := NewAccountStore()
	s.Create(newTestAccount("a1", "PUBLIC", "Alice"))

	// Case-insensitive within the room.
	got, ok := s.GetByName("PUBLIC", "alice")
	if !ok || got.ID != "a1" {
		t.Fatalf("expected a1, got %v ok=%v", got, ok)
	}

	// Same username in another room is a different account.
	if _, ok := s.GetByName("ROOM2", "alice"); ok {
		t.Fatal("expected no match in ROOM2")
	}
}

func TestAccountStore_ByRoom(t *testing.T) {
	s := NewAccountStore()
	s.Create(newTestAccount("a1", "PUBLIC", "alice"))
	s.Create(newTestAccount("a2", "PUBLIC", "bob"))
	s.Create(newTestAccount("a3", "ROOM2", "carol"))

	if got := len(s.ByRoom("PUBLIC")); got != 2 {
		t.Fatalf("expected 2 accounts in PUBLIC, got %d", got)
	}
	if got := len(s.ByRoom("ROOM2")); got != 1 {
		t.Fatalf("expected 1 account in ROOM2, got %d", got)
	}
	if got := len(s.All()); got != 3 {
		t.Fatalf("expected 3 accounts total, got %d", got)
	}
}

func TestAccountStore_ConcurrentAccess(t *testing.T) {
	s := NewAccountStore()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("a%d", n)
			s.Create(newTestAccount(id, "PUBLIC", id))
			_, _ = s.Get(id)
			_ = s.ByRoom("PUBLIC")
		}(i)
	}
	wg.Wait()

	if got := len(s.All()); got != 100 {
		t.Fatalf("expected 100 accounts, got %d", got)
	}
}

func TestPositionStore_PutGet(t *testing.T) {
	s := NewPositionStore()
	s.Put(&domain.Position{AccountID: "a1", Symbol: "BTC", Qty: 2})
	s.Put(&domain.Position{AccountID: "a1", Symbol: "ETH"})

	p, ok := s.Get("a1", "BTC")
	if !ok || p.Qty != 2 {
		t.Fatalf("expected BTC qty 2, got %v ok=%v", p, ok)
	}
	if _, ok := s.Get("a1", "DOGE"); ok {
		t.Fatal("expected no DOGE position")
	}
	if got := len(s.ByAccount("a1")); got != 2 {
		t.Fatalf("expected 2 positions, got %d", got)
	}
	if got := len(s.ByAccount("a2")); got != 0 {
		t.Fatalf("expected 0 positions, got %d", got)
	}
}
