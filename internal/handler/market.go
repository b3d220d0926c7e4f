package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vportella/tradeyard/internal/domain"
	"github.com/vportella/tradeyard/internal/engine"
	"github.com/vportella/tradeyard/internal/service"
)

// MarketHandler handles HTTP requests for market data endpoints.
type MarketHandler struct {
	board    *engine.Board
	orderSvc *service.OrderService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(board *engine.Board, orderSvc *service.OrderService) *MarketHandler {
	return &MarketHandler{
		board:    board,
		orderSvc: orderSvc,
	}
}

// marketResponse is the JSON response for GET /market.
type marketResponse struct {
	Symbols []engine.Snapshot `json:"symbols"`
}

// List handles GET /market.
func (h *MarketHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, marketResponse{Symbols: h.board.Snapshots()})
}

// candlesResponse is the JSON response for the candle history endpoint.
type candlesResponse struct {
	Symbol  string          `json:"symbol"`
	Candles []domain.Candle `json:"candles"`
	Open    *domain.Candle  `json:"open,omitempty"`
}

// Candles handles GET /market/{symbol}/candles. The response carries the
// sealed history plus the still-forming candle, if any.
func (h *MarketHandler) Candles(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	m, ok := h.board.Get(symbol)
	if !ok {
		mapDomainError(w, domain.ErrUnknownSymbol)
		return
	}

	m.Mu.Lock()
	history := m.Candles.History()
	open, hasOpen := m.Candles.Open()
	m.Mu.Unlock()

	resp := candlesResponse{Symbol: symbol, Candles: history}
	if hasOpen {
		resp.Open = &open
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Quote handles GET /market/{symbol}/quote?side=&qty=.
func (h *MarketHandler) Quote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	side := domain.Side(r.URL.Query().Get("side"))
	qty, err := strconv.ParseFloat(r.URL.Query().Get("qty"), 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "qty must be a number")
		return
	}

	q, err := h.orderSvc.Quote(symbol, side, qty)
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, q)
}
