package handler

import (
	"net/http"

	"github.com/vportella/tradeyard/internal/domain"
	"github.com/vportella/tradeyard/internal/service"
)

// OrderHandler handles HTTP requests for order submission.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// submitOrderRequest is the JSON request body for POST /orders.
type submitOrderRequest struct {
	AccountID string  `json:"account_id"`
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Qty       float64 `json:"qty"`
}

// Submit handles POST /orders.
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.orderSvc.Submit(r.Context(), service.SubmitOrderRequest{
		AccountID: req.AccountID,
		Symbol:    req.Symbol,
		Side:      domain.Side(req.Side),
		Qty:       req.Qty,
	})
	if err != nil {
		mapDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, result)
}
