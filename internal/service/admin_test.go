package service

import (
	"context"
	"math/rand"
	"testing"

	"github.com/vportella/tradeyard/internal/domain"
	"github.com/vportella/tradeyard/internal/engine"
)

func newAdminFixture(t *testing.T) (*fixture, *recordingPusher) {
	t.Helper()
	f := newFixture(t)
	pusher := newRecordingPusher()
	events := engine.NewEvents(f.board, rand.New(rand.NewSource(1)))
	t.Cleanup(events.Stop)
	f.adminSvc = NewAdminService("1234", f.board, events, f.events, f.db, pusher)
	return f, pusher
}

func TestAdminService_Auth(t *testing.T) {
	f, _ := newAdminFixture(t)

	if err := f.adminSvc.Auth("1234"); err != nil {
		t.Fatalf("expected valid PIN, got %v", err)
	}
	if err := f.adminSvc.Auth("0000"); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAdminService_ApplyControls(t *testing.T) {
	f, pusher := newAdminFixture(t)
	ctx := context.Background()

	vol := 0.01
	snap, err := f.adminSvc.ApplyControls(ctx, ControlsRequest{
		Pin: "1234", Symbol: "BTC", Volatility: &vol,
	})
	if err != nil {
		t.Fatalf("apply controls: %v", err)
	}
	if snap.Volatility != 0.01 {
		t.Fatalf("expected volatility 0.01, got %v", snap.Volatility)
	}

	// The change lands in the feed and is pushed.
	feed := f.adminSvc.RecentEvents(domain.DefaultRoom)
	if len(feed) != 1 || feed[0].EventType != "ADMIN_CONTROLS" {
		t.Fatalf("unexpected feed: %+v", feed)
	}
	if len(pusher.events[domain.DefaultRoom]) != 1 {
		t.Fatal("expected event push")
	}

	if _, err := f.adminSvc.ApplyControls(ctx, ControlsRequest{
		Pin: "0000", Symbol: "BTC", Volatility: &vol,
	}); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.adminSvc.ApplyControls(ctx, ControlsRequest{
		Pin: "1234", Symbol: "DOGE", Volatility: &vol,
	}); err != domain.ErrUnknownSymbol {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
}

func TestAdminService_TriggerEvent(t *testing.T) {
	f, pusher := newAdminFixture(t)
	ctx := context.Background()

	m, _ := f.board.Get("BTC")
	before := m.Snapshot()

	snap, err := f.adminSvc.TriggerEvent(ctx, EventRequest{
		Pin: "1234", Symbol: "BTC", Event: engine.EventFeeHike, Room: "room1",
	})
	if err != nil {
		t.Fatalf("trigger event: %v", err)
	}
	if snap.FeeBps != before.FeeBps+25 {
		t.Fatalf("expected fee bump, got %v", snap.FeeBps)
	}

	feed := f.adminSvc.RecentEvents("ROOM1")
	if len(feed) != 1 || feed[0].EventType != string(engine.EventFeeHike) {
		t.Fatalf("unexpected feed: %+v", feed)
	}
	if len(pusher.events["ROOM1"]) != 1 {
		t.Fatal("expected event push to ROOM1")
	}

	if _, err := f.adminSvc.TriggerEvent(ctx, EventRequest{
		Pin: "1234", Symbol: "BTC", Event: engine.EventType("MOON"),
	}); err != domain.ErrUnknownEvent {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
}

func TestAdminService_Broadcast(t *testing.T) {
	f, pusher := newAdminFixture(t)
	ctx := context.Background()

	e, err := f.adminSvc.Broadcast(ctx, "1234", "", "five minutes left")
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if e.Room != domain.DefaultRoom {
		t.Fatalf("expected default room, got %s", e.Room)
	}
	if got := pusher.broadcasts[domain.DefaultRoom]; len(got) != 1 || got[0] != "five minutes left" {
		t.Fatalf("unexpected broadcasts: %v", got)
	}

	if _, err := f.adminSvc.Broadcast(ctx, "1234", "", "   "); err == nil {
		t.Fatal("expected validation error for empty message")
	}
}
