package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vportella/tradeyard/internal/domain"
	"github.com/vportella/tradeyard/internal/engine"
	"github.com/vportella/tradeyard/internal/service"
)

// AccountHandler handles HTTP requests for account endpoints.
type AccountHandler struct {
	accountSvc *service.AccountService
	orderSvc   *service.OrderService
	board      *engine.Board
	lbSvc      *service.LeaderboardService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc *service.AccountService, orderSvc *service.OrderService, board *engine.Board, lbSvc *service.LeaderboardService) *AccountHandler {
	return &AccountHandler{
		accountSvc: accountSvc,
		orderSvc:   orderSvc,
		board:      board,
		lbSvc:      lbSvc,
	}
}

// joinRequest is the JSON request body for POST /join.
type joinRequest struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// joinResponse is the JSON response for POST /join. Besides the account
// itself it carries everything a freshly joined client needs to render:
// the marked portfolio, the current market board, and the room standings.
type joinResponse struct {
	AccountID   string                     `json:"account_id"`
	Username    string                     `json:"username"`
	Room        string                     `json:"room"`
	Cash        float64                    `json:"cash"`
	CreatedAt   string                     `json:"created_at"`
	Portfolio   *service.PortfolioResponse `json:"portfolio"`
	Market      []engine.Snapshot          `json:"market"`
	Leaderboard []domain.LeaderboardRow    `json:"leaderboard"`
}

// Join handles POST /join.
func (h *AccountHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	acct, err := h.accountSvc.Join(r.Context(), service.JoinRequest{
		Username: req.Username,
		Room:     req.Room,
	})
	if err != nil {
		mapDomainError(w, err)
		return
	}

	portfolio, err := h.accountSvc.Portfolio(acct.ID)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, joinResponse{
		AccountID:   acct.ID,
		Username:    acct.Username,
		Room:        acct.Room,
		Cash:        acct.Cash,
		CreatedAt:   acct.CreatedAt.UTC().Format(time.RFC3339),
		Portfolio:   portfolio,
		Market:      h.board.Snapshots(),
		Leaderboard: h.lbSvc.Compute(acct.Room),
	})
}

// Portfolio handles GET /accounts/{account_id}/portfolio.
func (h *AccountHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "account_id")

	p, err := h.accountSvc.Portfolio(accountID)
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// tradeResponse is a single trade in the history listing.
type tradeResponse struct {
	TradeID    string  `json:"trade_id"`
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Qty        float64 `json:"qty"`
	FillPrice  float64 `json:"fill_price"`
	FeePaid    float64 `json:"fee_paid"`
	ExecutedAt string  `json:"executed_at"`
}

// tradeListResponse is the JSON response for the trade history endpoint.
type tradeListResponse struct {
	Trades []tradeResponse `json:"trades"`
	Total  int             `json:"total"`
}

// Trades handles GET /accounts/{account_id}/trades?since=&limit=.
func (h *AccountHandler) Trades(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "account_id")

	var since time.Time
	if s := r.URL.Query().Get("since"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "since must be an RFC 3339 timestamp")
			return
		}
		since = parsed
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 0 {
			WriteError(w, http.StatusBadRequest, "validation_error", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	trades, err := h.orderSvc.TradesSince(accountID, since, limit)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	resp := tradeListResponse{Trades: make([]tradeResponse, len(trades)), Total: len(trades)}
	for i, t := range trades {
		resp.Trades[i] = tradeResponse{
			TradeID:    t.TradeID,
			Symbol:     t.Symbol,
			Side:       string(t.Side),
			Qty:        t.Qty,
			FillPrice:  t.FillPrice,
			FeePaid:    t.FeePaid,
			ExecutedAt: t.ExecutedAt.UTC().Format(time.RFC3339Nano),
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}
