package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrMarketHalted         = errors.New("market_halted")
	ErrUnknownSymbol        = errors.New("unknown_symbol")
	ErrInsufficientCash     = errors.New("insufficient_cash")
	ErrInsufficientPosition = errors.New("insufficient_position")
	ErrRateLimited          = errors.New("rate_limited")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrAccountNotFound      = errors.New("account_not_found")
	ErrUsernameRequired     = errors.New("username_required")
	ErrUnknownEvent         = errors.New("unknown_event")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
