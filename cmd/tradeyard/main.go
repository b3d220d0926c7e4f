package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vportella/tradeyard/internal/config"
	"github.com/vportella/tradeyard/internal/domain"
	"github.com/vportella/tradeyard/internal/engine"
	"github.com/vportella/tradeyard/internal/handler"
	"github.com/vportella/tradeyard/internal/service"
	"github.com/vportella/tradeyard/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Symbol catalog.
	seeds, err := config.LoadSymbols(cfg.SymbolsPath)
	if err != nil {
		logger.Error("failed to load symbols", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Durable store, opened before anything else so a bad path fails fast.
	db, err := store.NewSQLiteStore(cfg.SQLitePath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	// In-memory stores.
	accounts := store.NewAccountStore()
	positions := store.NewPositionStore()
	trades := store.NewTradeStore()
	eventLog := store.NewEventStore(200)

	// Warm-start the ledger from the previous session.
	state, err := db.LoadState(context.Background())
	if err != nil {
		logger.Error("failed to load persisted state", slog.String("error", err.Error()))
		os.Exit(1)
	}
	for _, a := range state.Accounts {
		accounts.Create(a)
	}
	for _, p := range state.Positions {
		positions.Put(p)
	}
	for _, t := range state.Trades {
		trades.Append(t)
	}
	if len(state.Accounts) > 0 {
		logger.Info("restored ledger",
			slog.Int("accounts", len(state.Accounts)),
			slog.Int("trades", len(state.Trades)),
		)
	}

	// Engine.
	board := engine.NewBoard(seeds, cfg.CandleInterval, cfg.CandleHistory)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	events := engine.NewEvents(board, rand.New(rand.NewSource(time.Now().UnixNano()+1)))
	defer events.Stop()

	// Push hub.
	hub := handler.NewHub(logger)

	// Services.
	accountSvc := service.NewAccountService(accounts, positions, board, db, cfg.StartingCash)
	lbSvc := service.NewLeaderboardService(accounts, positions, board, db, hub, cfg.LeaderboardSize, cfg.LeaderboardInterval)
	limiter := service.NewRateLimiter(cfg.OrderRateLimit, cfg.OrderRateWindow)
	orderSvc := service.NewOrderService(accounts, positions, trades, board, db, limiter, lbSvc)
	adminSvc := service.NewAdminService(cfg.AdminPin, board, events, eventLog, db, hub)

	// Router.
	router := handler.NewRouter(accountSvc, orderSvc, adminSvc, lbSvc, board, hub, logger)

	// Start background loops with a cancellable context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	engine.NewClock(cfg.TickInterval, board, rng, hub).Start(ctx)
	lbSvc.Start(ctx)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.Int("symbols", len(seeds)),
			slog.String("default_room", domain.DefaultRoom),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, then the background loops.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
}
