package engine

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/vportella/tradeyard/internal/domain"
)

// EventType names an instructor-triggered market perturbation.
type EventType string

const (
	EventPump         EventType = "PUMP"
	EventDump         EventType = "DUMP"
	EventRugPull      EventType = "RUG_PULL"
	EventFakeBreakout EventType = "FAKE_BREAKOUT"
	EventDilution     EventType = "DILUTION"
	EventWhaleCandle  EventType = "WHALE_CANDLE"
	EventFeeHike      EventType = "FEE_HIKE"
	EventSpreadWiden  EventType = "SPREAD_WIDEN"
	EventTradingHalt  EventType = "TRADING_HALT"
	EventWashTrading  EventType = "WASH_TRADING"
)

// Teaching-event constants.
const (
	pumpBias          = 0.003
	rugLiquidityMult  = 0.05
	rugSpreadAdd      = 0.03
	rugSpreadCap      = 0.2
	rugBias           = 0.005
	breakoutBias      = 0.004
	breakoutReversal  = 0.007
	breakoutDelay     = 15 * time.Second
	dilutionMult      = 1.4
	dilutionDrift     = 0.002
	whaleJump         = 0.08
	feeHikeBps        = 25.0
	feeBpsCap         = 200.0
	spreadWidenAdd    = 0.01
	spreadWidenCap    = 0.1
	washVolatility    = 0.0015
	washBiasNudge     = 0.001
	washDelay         = 20 * time.Second
	washVolatilityMin = 0.001
)

// Events applies teaching events to the board. Delayed reversals are
// scheduled as deferred mutations against the live market; when they fire
// they take the symbol's lock like any other writer. Pending reversals are
// best-effort: Stop drops whatever has not fired yet.
type Events struct {
	board *Board

	mu  sync.Mutex // guards rng and timers
	rng *rand.Rand
	// after is time.AfterFunc in production; tests swap it to run
	// reversals synchronously.
	after  func(d time.Duration, f func()) *time.Timer
	nextID uint64
	timers map[uint64]*time.Timer
}

// NewEvents creates the teaching-event engine over the board.
func NewEvents(board *Board, rng *rand.Rand) *Events {
	return &Events{
		board:  board,
		rng:    rng,
		after:  time.AfterFunc,
		timers: make(map[uint64]*time.Timer),
	}
}

// Apply runs the named event against the symbol's market and returns the
// resulting snapshot. Unknown symbols and unknown event types are distinct
// request-local failures.
func (e *Events) Apply(symbol string, event EventType) (Snapshot, error) {
	m, ok := e.board.Get(symbol)
	if !ok {
		return Snapshot{}, domain.ErrUnknownSymbol
	}

	m.Mu.Lock()
	defer m.Mu.Unlock()

	switch event {
	case EventPump:
		m.TrendBias += pumpBias
	case EventDump:
		m.TrendBias -= pumpBias
	case EventRugPull:
		m.Liquidity = math.Max(minLiquidity, m.Liquidity*rugLiquidityMult)
		m.Spread = math.Min(rugSpreadCap, m.Spread+rugSpreadAdd)
		m.TrendBias -= rugBias
	case EventFakeBreakout:
		m.TrendBias += breakoutBias
		e.schedule(breakoutDelay, func() {
			m.Mu.Lock()
			m.TrendBias -= breakoutReversal
			m.Mu.Unlock()
		})
	case EventDilution:
		m.Supply *= dilutionMult
		m.Drift -= dilutionDrift
	case EventWhaleCandle:
		if e.coinFlip() {
			m.Price *= 1 + whaleJump
		} else {
			m.Price = math.Max(priceFloor, m.Price*(1-whaleJump))
		}
	case EventFeeHike:
		m.FeeBps = math.Min(feeBpsCap, m.FeeBps+feeHikeBps)
	case EventSpreadWiden:
		m.Spread = math.Min(spreadWidenCap, m.Spread+spreadWidenAdd)
	case EventTradingHalt:
		m.Halted = !m.Halted
	case EventWashTrading:
		m.Volatility += washVolatility
		if e.coinFlip() {
			m.TrendBias += washBiasNudge
		} else {
			m.TrendBias -= washBiasNudge
		}
		e.schedule(washDelay, func() {
			m.Mu.Lock()
			m.Volatility = math.Max(washVolatilityMin, m.Volatility-washVolatility)
			m.Mu.Unlock()
		})
	default:
		return Snapshot{}, domain.ErrUnknownEvent
	}

	return m.snapshot(), nil
}

// Stop cancels pending reversals. Reversals are best effort across
// shutdown; a lost one leaves parameters where the admin can see them.
func (e *Events) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.timers {
		if t != nil {
			t.Stop()
		}
	}
	e.timers = make(map[uint64]*time.Timer)
}

// schedule arms a reversal and tracks it until it fires, so the tracked
// set stays bounded by the number of pending reversals.
func (e *Events) schedule(d time.Duration, f func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.timers[id] = e.after(d, func() {
		f()
		e.mu.Lock()
		delete(e.timers, id)
		e.mu.Unlock()
	})
}

func (e *Events) coinFlip() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64() > 0.5
}
