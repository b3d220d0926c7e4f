package domain

// Position tracks an account's holding in a single symbol. One position is
// created per tradable symbol when the account joins. Qty never goes
// negative: shorting is not supported, sells beyond the holding reject.
type Position struct {
	AccountID   string
	Symbol      string
	Qty         float64
	AvgEntry    float64 // weighted-average cost basis, 0 while flat
	RealizedPnl float64
}
