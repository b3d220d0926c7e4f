package handler

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/vportella/tradeyard/internal/domain"
	"github.com/vportella/tradeyard/internal/engine"
)

// envelope is the wire format for every push: a type tag and a payload.
type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// message is one marshalled push with its delivery scope. An empty room
// means every connected client.
type message struct {
	room string
	data []byte
}

// Hub manages the set of WebSocket clients and fans pushes out to them.
// It implements engine.Broadcaster and service.Pusher, so the engine and
// service layers never import the transport.
type Hub struct {
	logger *slog.Logger

	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan message
}

// NewHub creates a new Hub with initialised channels and client map.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan message, 64),
	}
}

// Run starts the Hub's event loop. It should be launched as a goroutine
// and stops when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				if msg.room != "" && c.room != msg.room {
					continue
				}
				select {
				case c.send <- msg.data:
				default:
					// Slow consumer; drop the connection rather
					// than block the room.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// push marshals an envelope and queues it for delivery. If the hub's
// queue is full the push is dropped; every push type is refreshed on the
// next tick anyway.
func (h *Hub) push(room, msgType string, data any) {
	b, err := json.Marshal(envelope{Type: msgType, Data: data})
	if err != nil {
		h.logger.Error("marshal push", slog.String("type", msgType), slog.Any("error", err))
		return
	}
	select {
	case h.broadcast <- message{room: room, data: b}:
	default:
		h.logger.Warn("push queue full, dropping", slog.String("type", msgType))
	}
}

// BroadcastMarket pushes the per-symbol snapshots to every client.
func (h *Hub) BroadcastMarket(snaps []engine.Snapshot) {
	h.push("", "market_update", snaps)
}

// candleUpdate is the payload for a sealed candle push.
type candleUpdate struct {
	Symbol string        `json:"symbol"`
	Candle domain.Candle `json:"candle"`
}

// BroadcastCandle pushes a sealed candle to every client.
func (h *Hub) BroadcastCandle(symbol string, c domain.Candle) {
	h.push("", "candle_update", candleUpdate{Symbol: symbol, Candle: c})
}

// PushLeaderboard pushes a room's standings to that room.
func (h *Hub) PushLeaderboard(room string, rows []domain.LeaderboardRow) {
	h.push(room, "leaderboard_update", rows)
}

// PushEvent pushes an event feed entry to its room.
func (h *Hub) PushEvent(room string, e domain.EventRecord) {
	h.push(room, "event_log", e)
}

// broadcastMessage is the payload for an instructor announcement.
type broadcastMessage struct {
	Room    string `json:"room"`
	Message string `json:"message"`
}

// PushBroadcast pushes an instructor announcement to its room.
func (h *Hub) PushBroadcast(room string, msg string) {
	h.push(room, "broadcast_message", broadcastMessage{Room: room, Message: msg})
}

var _ engine.Broadcaster = (*Hub)(nil)
