// Package config loads runtime configuration from environment variables
// and the symbol catalog file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the market simulator.
type Config struct {
	Port                int
	LogLevel            string
	AdminPin            string
	TickInterval        time.Duration
	CandleInterval      time.Duration
	CandleHistory       int
	LeaderboardInterval time.Duration
	LeaderboardSize     int
	OrderRateLimit      int
	OrderRateWindow     time.Duration
	StartingCash        float64
	SQLitePath          string
	SymbolsPath         string
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	IdleTimeout         time.Duration
	ShutdownTimeout     time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	adminPin := getStr("ADMIN_PIN", "0000")

	tickInterval, err := getDuration("TICK_INTERVAL", 1*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid TICK_INTERVAL: %w", err)
	}

	candleInterval, err := getDuration("CANDLE_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid CANDLE_INTERVAL: %w", err)
	}

	candleHistory, err := getInt("CANDLE_HISTORY", 200)
	if err != nil {
		return nil, fmt.Errorf("invalid CANDLE_HISTORY: %w", err)
	}
	if candleHistory < 1 {
		return nil, fmt.Errorf("invalid CANDLE_HISTORY: must be >= 1")
	}

	leaderboardInterval, err := getDuration("LEADERBOARD_INTERVAL", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid LEADERBOARD_INTERVAL: %w", err)
	}

	leaderboardSize, err := getInt("LEADERBOARD_SIZE", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid LEADERBOARD_SIZE: %w", err)
	}
	if leaderboardSize < 1 {
		return nil, fmt.Errorf("invalid LEADERBOARD_SIZE: must be >= 1")
	}

	orderRateLimit, err := getInt("ORDER_RATE_LIMIT", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid ORDER_RATE_LIMIT: %w", err)
	}
	if orderRateLimit < 1 {
		return nil, fmt.Errorf("invalid ORDER_RATE_LIMIT: must be >= 1")
	}

	orderRateWindow, err := getDuration("ORDER_RATE_WINDOW", 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid ORDER_RATE_WINDOW: %w", err)
	}

	startingCash, err := getFloat("STARTING_CASH", 10_000)
	if err != nil {
		return nil, fmt.Errorf("invalid STARTING_CASH: %w", err)
	}
	if startingCash <= 0 {
		return nil, fmt.Errorf("invalid STARTING_CASH: must be > 0")
	}

	sqlitePath := getStr("SQLITE_PATH", "tradeyard.db")
	symbolsPath := getStr("SYMBOLS_PATH", "")

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:                port,
		LogLevel:            logLevel,
		AdminPin:            adminPin,
		TickInterval:        tickInterval,
		CandleInterval:      candleInterval,
		CandleHistory:       candleHistory,
		LeaderboardInterval: leaderboardInterval,
		LeaderboardSize:     leaderboardSize,
		OrderRateLimit:      orderRateLimit,
		OrderRateWindow:     orderRateWindow,
		StartingCash:        startingCash,
		SQLitePath:          sqlitePath,
		SymbolsPath:         symbolsPath,
		ReadTimeout:         readTimeout,
		WriteTimeout:        writeTimeout,
		IdleTimeout:         idleTimeout,
		ShutdownTimeout:     shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
