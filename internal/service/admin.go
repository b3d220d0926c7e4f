package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vportella/tradeyard/internal/domain"
	"github.com/vportella/tradeyard/internal/engine"
	"github.com/vportella/tradeyard/internal/store"
)

// ControlsRequest represents an admin parameter override for one symbol.
// Nil fields are left unchanged.
type ControlsRequest struct {
	Pin         string
	Symbol      string
	Volatility  *float64
	Liquidity   *float64
	Spread      *float64
	FeeBps      *float64
	Halted      *bool
	SupplyDelta *float64
}

// EventRequest represents an admin request to fire a teaching event.
type EventRequest struct {
	Pin    string
	Symbol string
	Event  engine.EventType
	Room   string
}

// AdminService gates instructor actions behind the shared PIN and logs
// every action to the room's event feed.
type AdminService struct {
	pin    string
	board  *engine.Board
	events *engine.Events
	log    *store.EventStore
	db     *store.SQLiteStore
	pusher Pusher
}

// NewAdminService creates a new AdminService. pusher may be nil.
func NewAdminService(pin string, board *engine.Board, events *engine.Events, log *store.EventStore, db *store.SQLiteStore, pusher Pusher) *AdminService {
	return &AdminService{
		pin:    pin,
		board:  board,
		events: events,
		log:    log,
		db:     db,
		pusher: pusher,
	}
}

// Auth checks the shared instructor PIN.
func (s *AdminService) Auth(pin string) error {
	if subtle.ConstantTimeCompare([]byte(pin), []byte(s.pin)) != 1 {
		return domain.ErrUnauthorized
	}
	return nil
}

// record appends an action to the room's event feed, persists it, and
// pushes it. Persistence is best effort; the in-memory feed is the one
// students see.
func (s *AdminService) record(ctx context.Context, room, eventType, symbol, message string) domain.EventRecord {
	e := domain.EventRecord{
		ID:        uuid.NewString(),
		Room:      room,
		EventType: eventType,
		Symbol:    symbol,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	s.log.Append(e)
	if s.db != nil {
		_ = s.db.InsertEvent(ctx, e)
	}
	if s.pusher != nil {
		s.pusher.PushEvent(room, e)
	}
	return e
}

// ApplyControls applies clamped parameter overrides to a symbol and logs
// the change.
func (s *AdminService) ApplyControls(ctx context.Context, req ControlsRequest) (engine.Snapshot, error) {
	if err := s.Auth(req.Pin); err != nil {
		return engine.Snapshot{}, err
	}
	m, ok := s.board.Get(req.Symbol)
	if !ok {
		return engine.Snapshot{}, domain.ErrUnknownSymbol
	}

	snap := m.ApplyControls(engine.Controls{
		Volatility:  req.Volatility,
		Liquidity:   req.Liquidity,
		Spread:      req.Spread,
		FeeBps:      req.FeeBps,
		Halted:      req.Halted,
		SupplyDelta: req.SupplyDelta,
	})

	changed := controlsSummary(req)
	s.record(ctx, domain.DefaultRoom, "ADMIN_CONTROLS", req.Symbol,
		fmt.Sprintf("parameters updated on %s: %s", req.Symbol, changed))
	return snap, nil
}

func controlsSummary(req ControlsRequest) string {
	parts := []string{}
	if req.Volatility != nil {
		parts = append(parts, fmt.Sprintf("volatility=%g", *req.Volatility))
	}
	if req.Liquidity != nil {
		parts = append(parts, fmt.Sprintf("liquidity=%g", *req.Liquidity))
	}
	if req.Spread != nil {
		parts = append(parts, fmt.Sprintf("spread=%g", *req.Spread))
	}
	if req.FeeBps != nil {
		parts = append(parts, fmt.Sprintf("fee_bps=%g", *req.FeeBps))
	}
	if req.Halted != nil {
		parts = append(parts, fmt.Sprintf("halted=%t", *req.Halted))
	}
	if req.SupplyDelta != nil {
		parts = append(parts, fmt.Sprintf("supply_delta=%g", *req.SupplyDelta))
	}
	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, ", ")
}

// TriggerEvent fires a teaching event on a symbol and logs it to the
// room's feed.
func (s *AdminService) TriggerEvent(ctx context.Context, req EventRequest) (engine.Snapshot, error) {
	if err := s.Auth(req.Pin); err != nil {
		return engine.Snapshot{}, err
	}
	snap, err := s.events.Apply(req.Symbol, req.Event)
	if err != nil {
		return engine.Snapshot{}, err
	}

	room := strings.ToUpper(strings.TrimSpace(req.Room))
	if room == "" {
		room = domain.DefaultRoom
	}
	s.record(ctx, room, string(req.Event), req.Symbol,
		fmt.Sprintf("%s on %s", req.Event, req.Symbol))
	return snap, nil
}

// Broadcast sends an instructor message to every client in a room and
// logs it.
func (s *AdminService) Broadcast(ctx context.Context, pin, room, message string) (domain.EventRecord, error) {
	if err := s.Auth(pin); err != nil {
		return domain.EventRecord{}, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.EventRecord{}, &domain.ValidationError{Message: "message must not be empty"}
	}

	room = strings.ToUpper(strings.TrimSpace(room))
	if room == "" {
		room = domain.DefaultRoom
	}
	e := s.record(ctx, room, "BROADCAST", "", message)
	if s.pusher != nil {
		s.pusher.PushBroadcast(room, message)
	}
	return e, nil
}

// RecentEvents returns a room's event feed, oldest first.
func (s *AdminService) RecentEvents(room string) []domain.EventRecord {
	room = strings.ToUpper(strings.TrimSpace(room))
	if room == "" {
		room = domain.DefaultRoom
	}
	return s.log.Recent(room)
}
