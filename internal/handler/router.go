package handler

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vportella/tradeyard/internal/engine"
	"github.com/vportella/tradeyard/internal/service"
)

// NewRouter creates a chi router with all routes registered, request
// logging, and Content-Type validation middleware.
func NewRouter(
	accountSvc *service.AccountService,
	orderSvc *service.OrderService,
	adminSvc *service.AdminService,
	lbSvc *service.LeaderboardService,
	board *engine.Board,
	hub *Hub,
	logger *slog.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(requestLogging(logger))
	r.Use(contentTypeJSON)

	// Create handlers.
	accountH := NewAccountHandler(accountSvc, orderSvc, board, lbSvc)
	orderH := NewOrderHandler(orderSvc)
	marketH := NewMarketHandler(board, orderSvc)
	adminH := NewAdminHandler(adminSvc, lbSvc)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Account routes.
	r.Post("/join", accountH.Join)
	r.Get("/accounts/{account_id}/portfolio", accountH.Portfolio)
	r.Get("/accounts/{account_id}/trades", accountH.Trades)

	// Order routes.
	r.Post("/orders", orderH.Submit)

	// Market data routes.
	r.Get("/market", marketH.List)
	r.Get("/market/{symbol}/candles", marketH.Candles)
	r.Get("/market/{symbol}/quote", marketH.Quote)

	// Room feeds.
	r.Get("/leaderboard", adminH.Leaderboard)
	r.Get("/events", adminH.Events)

	// Instructor routes.
	r.Post("/admin/auth", adminH.Auth)
	r.Post("/admin/controls", adminH.Controls)
	r.Post("/admin/events", adminH.TriggerEvent)
	r.Post("/admin/broadcast", adminH.Broadcast)

	// Push channel.
	r.Get("/ws", hub.ServeWS)

	return r
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Hijack passes through to the underlying writer so the WebSocket
// upgrade works behind the logging middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// contentTypeJSON is middleware that validates Content-Type for POST, PUT,
// and PATCH requests. If the Content-Type header doesn't start with
// "application/json", it returns 400 Bad Request before the handler runs.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(ct, "application/json") {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
