package domain

// Side indicates whether an order buys into or sells out of a position.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid returns true for the two recognised sides.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}
