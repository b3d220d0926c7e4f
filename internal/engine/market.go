// Package engine implements the market simulation core: the per-symbol
// stochastic price process, candle aggregation, fill pricing, the ledger
// arithmetic, and the teaching-event state machine.
package engine

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Tunables of the price process. Fixed constants, not derived state.
const (
	referenceSupply    = 1_000_000.0
	supplyPressureK    = 0.0005
	meanReversionK     = 0.0002
	liquidityReference = 15000.0
	liquidityFloor     = 500.0
	minLiquidityScaler = 0.4
	priceFloor         = 0.0001
	trendDecay         = 0.985
	driftDecay         = 0.98
)

// Floors applied to admin parameter overrides.
const (
	minVolatility = 0.0002
	minLiquidity  = 50.0
	minSpread     = 0.0005
	minSupply     = 1.0
)

// MarketState holds the simulated market for one symbol. All fields form a
// single mutation domain: the tick loop, teaching events (including their
// deferred reversals), and admin overrides must hold Mu while touching them.
type MarketState struct {
	Mu sync.Mutex

	Symbol      string
	Name        string
	Price       float64
	SessionOpen float64 // fixed at session start; change% and reversion anchor
	Volatility  float64
	Liquidity   float64
	Spread      float64
	FeeBps      float64
	Halted      bool
	Supply      float64
	TrendBias   float64
	Drift       float64

	Candles *Aggregator
}

// Snapshot is a consistent read-only view of a MarketState, taken under Mu.
type Snapshot struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	SessionOpen float64 `json:"session_open"`
	ChangePct   float64 `json:"change_pct"`
	Halted      bool    `json:"halted"`
	Spread      float64 `json:"spread"`
	FeeBps      float64 `json:"fee_bps"`
	Liquidity   float64 `json:"liquidity"`
	Volatility  float64 `json:"volatility"`
	Supply      float64 `json:"supply"`
}

// Normal produces one standard-normal draw from two uniform draws
// (Box–Muller). The rng is injectable so price evolution is reproducible
// in tests.
func Normal(rng *rand.Rand) float64 {
	u := 1 - rng.Float64() // avoid log(0)
	v := rng.Float64()
	return math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v)
}

// advance moves the price one tick using the given standard-normal draw.
// Caller must hold Mu.
func (m *MarketState) advance(draw float64) {
	supplyPressure := (referenceSupply - m.Supply) / referenceSupply * supplyPressureK
	meanReversion := (m.SessionOpen - m.Price) / m.SessionOpen * meanReversionK
	baseMove := draw * m.Volatility
	liquidityScaler := math.Max(minLiquidityScaler, liquidityReference/math.Max(liquidityFloor, m.Liquidity))
	delta := (baseMove + m.TrendBias + supplyPressure + meanReversion + m.Drift) * liquidityScaler

	m.Price = math.Max(priceFloor, m.Price*(1+delta))
	m.TrendBias *= trendDecay
	m.Drift *= driftDecay
}

// snapshot copies the state into a Snapshot. Caller must hold Mu.
func (m *MarketState) snapshot() Snapshot {
	return Snapshot{
		Symbol:      m.Symbol,
		Name:        m.Name,
		Price:       m.Price,
		SessionOpen: m.SessionOpen,
		ChangePct:   (m.Price - m.SessionOpen) / m.SessionOpen * 100,
		Halted:      m.Halted,
		Spread:      m.Spread,
		FeeBps:      m.FeeBps,
		Liquidity:   m.Liquidity,
		Volatility:  m.Volatility,
		Supply:      m.Supply,
	}
}

// Snapshot returns a consistent view of the market.
func (m *MarketState) Snapshot() Snapshot {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.snapshot()
}

// Controls carries optional admin parameter overrides. Present fields are
// clamped to their floors and applied; absent fields are untouched.
type Controls struct {
	Volatility  *float64
	Liquidity   *float64
	Spread      *float64
	FeeBps      *float64
	Halted      *bool
	SupplyDelta *float64
}

// ApplyControls applies clamped overrides and returns the resulting snapshot.
func (m *MarketState) ApplyControls(c Controls) Snapshot {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if c.Volatility != nil {
		m.Volatility = math.Max(minVolatility, *c.Volatility)
	}
	if c.Liquidity != nil {
		m.Liquidity = math.Max(minLiquidity, *c.Liquidity)
	}
	if c.Spread != nil {
		m.Spread = math.Max(minSpread, *c.Spread)
	}
	if c.FeeBps != nil {
		m.FeeBps = math.Max(0, *c.FeeBps)
	}
	if c.Halted != nil {
		m.Halted = *c.Halted
	}
	if c.SupplyDelta != nil {
		m.Supply = math.Max(minSupply, m.Supply+*c.SupplyDelta)
	}
	return m.snapshot()
}

// SymbolSeed describes the initial market for one symbol.
type SymbolSeed struct {
	Code       string
	Name       string
	Price      float64
	Volatility float64
	Liquidity  float64
	Spread     float64
	FeeBps     float64
	Supply     float64
}

// Board owns one MarketState per symbol. The map itself is immutable after
// construction; individual markets are self-locking, and symbols are
// independent mutation domains.
type Board struct {
	markets map[string]*MarketState
	order   []string // seed order, for stable snapshot output
}

// NewBoard seeds a market per symbol. The candle bucket duration and history
// cap apply to every symbol.
func NewBoard(seeds []SymbolSeed, bucket time.Duration, historyCap int) *Board {
	b := &Board{markets: make(map[string]*MarketState, len(seeds))}
	for _, s := range seeds {
		b.markets[s.Code] = &MarketState{
			Symbol:      s.Code,
			Name:        s.Name,
			Price:       s.Price,
			SessionOpen: s.Price,
			Volatility:  s.Volatility,
			Liquidity:   s.Liquidity,
			Spread:      s.Spread,
			FeeBps:      s.FeeBps,
			Supply:      s.Supply,
			Candles:     NewAggregator(bucket, historyCap),
		}
		b.order = append(b.order, s.Code)
	}
	return b
}

// Get returns the market for a symbol.
func (b *Board) Get(symbol string) (*MarketState, bool) {
	m, ok := b.markets[symbol]
	return m, ok
}

// Symbols returns the symbol codes in seed order.
func (b *Board) Symbols() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Snapshots returns a consistent per-symbol view of every market, in seed
// order. Each symbol is locked independently; there is no cross-symbol
// consistency requirement.
func (b *Board) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(b.order))
	for _, code := range b.order {
		out = append(out, b.markets[code].Snapshot())
	}
	return out
}
