package handler

import (
	"net/http"
	"strings"

	"github.com/vportella/tradeyard/internal/domain"
	"github.com/vportella/tradeyard/internal/engine"
	"github.com/vportella/tradeyard/internal/service"
)

// AdminHandler handles the instructor endpoints and the room feeds they
// produce.
type AdminHandler struct {
	adminSvc *service.AdminService
	lbSvc    *service.LeaderboardService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminSvc *service.AdminService, lbSvc *service.LeaderboardService) *AdminHandler {
	return &AdminHandler{
		adminSvc: adminSvc,
		lbSvc:    lbSvc,
	}
}

// authRequest is the JSON request body for POST /admin/auth.
type authRequest struct {
	Pin string `json:"pin"`
}

// Auth handles POST /admin/auth. It lets the UI validate the PIN once
// up front instead of failing on the first real action.
func (h *AdminHandler) Auth(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := h.adminSvc.Auth(req.Pin); err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// controlsRequest is the JSON request body for POST /admin/controls.
// Omitted fields are left unchanged.
type controlsRequest struct {
	Pin         string   `json:"pin"`
	Symbol      string   `json:"symbol"`
	Volatility  *float64 `json:"volatility"`
	Liquidity   *float64 `json:"liquidity"`
	Spread      *float64 `json:"spread"`
	FeeBps      *float64 `json:"fee_bps"`
	Halted      *bool    `json:"halted"`
	SupplyDelta *float64 `json:"supply_delta"`
}

// Controls handles POST /admin/controls.
func (h *AdminHandler) Controls(w http.ResponseWriter, r *http.Request) {
	var req controlsRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	snap, err := h.adminSvc.ApplyControls(r.Context(), service.ControlsRequest{
		Pin:         req.Pin,
		Symbol:      req.Symbol,
		Volatility:  req.Volatility,
		Liquidity:   req.Liquidity,
		Spread:      req.Spread,
		FeeBps:      req.FeeBps,
		Halted:      req.Halted,
		SupplyDelta: req.SupplyDelta,
	})
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

// eventRequest is the JSON request body for POST /admin/events.
type eventRequest struct {
	Pin    string `json:"pin"`
	Symbol string `json:"symbol"`
	Event  string `json:"event"`
	Room   string `json:"room"`
}

// TriggerEvent handles POST /admin/events.
func (h *AdminHandler) TriggerEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	snap, err := h.adminSvc.TriggerEvent(r.Context(), service.EventRequest{
		Pin:    req.Pin,
		Symbol: req.Symbol,
		Event:  engine.EventType(strings.ToUpper(req.Event)),
		Room:   req.Room,
	})
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

// broadcastRequest is the JSON request body for POST /admin/broadcast.
type broadcastRequest struct {
	Pin     string `json:"pin"`
	Room    string `json:"room"`
	Message string `json:"message"`
}

// Broadcast handles POST /admin/broadcast.
func (h *AdminHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	e, err := h.adminSvc.Broadcast(r.Context(), req.Pin, req.Room, req.Message)
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, e)
}

// leaderboardResponse is the JSON response for GET /leaderboard.
type leaderboardResponse struct {
	Room string                  `json:"room"`
	Rows []domain.LeaderboardRow `json:"rows"`
}

// Leaderboard handles GET /leaderboard?room=.
func (h *AdminHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	room := normalizeRoom(r.URL.Query().Get("room"))
	WriteJSON(w, http.StatusOK, leaderboardResponse{
		Room: room,
		Rows: h.lbSvc.Compute(room),
	})
}

// eventsResponse is the JSON response for GET /events.
type eventsResponse struct {
	Room   string               `json:"room"`
	Events []domain.EventRecord `json:"events"`
}

// Events handles GET /events?room=.
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	room := normalizeRoom(r.URL.Query().Get("room"))
	WriteJSON(w, http.StatusOK, eventsResponse{
		Room:   room,
		Events: h.adminSvc.RecentEvents(room),
	})
}

func normalizeRoom(room string) string {
	room = strings.ToUpper(strings.TrimSpace(room))
	if room == "" {
		return domain.DefaultRoom
	}
	return room
}
