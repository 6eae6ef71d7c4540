// Package position manages portfolio holdings: the protective-stop
// lifecycle for scalp positions, the holdings and sell-signal store,
// and the refresh/decision orchestration.
package position

import (
	"time"

	"github.com/quantfarer/vigil/internal/core"
)

// LifecycleConfig holds the scalp protection thresholds, expressed in
// percent.
type LifecycleConfig struct {
	BreakevenTriggerPct float64 // lock breakeven at this gain
	TrailTriggerPct     float64 // activate trailing at this gain
	TrailPct            float64 // trail distance below the peak
}

// DefaultLifecycleConfig returns the standard scalp ladder:
// breakeven at +1.5%, trailing at +2% tracking 1% below the peak.
func DefaultLifecycleConfig() LifecycleConfig {
	return LifecycleConfig{BreakevenTriggerPct: 1.5, TrailTriggerPct: 2.0, TrailPct: 1.0}
}

// Tick is one observed price for a holding.
type Tick struct {
	Price      float64
	At         time.Time
	MarketOpen bool
}

// Lifecycle advances per-holding protective state. Transitions are
// monotonic: once breakeven locks or trailing activates they stay set
// until the position is closed, and the trailing stop only ratchets up.
type Lifecycle struct {
	cfg LifecycleConfig
	loc *time.Location
}

// NewLifecycle builds a lifecycle using loc to delimit calendar days
// for the trading-day counter.
func NewLifecycle(cfg LifecycleConfig, loc *time.Location) *Lifecycle {
	return &Lifecycle{cfg: cfg, loc: loc}
}

// Advance applies one tick to a holding and returns the new state. The
// transition order is fixed: price and P&L update, peak update,
// breakeven lock, trailing activation and ratchet, trading-day counter.
// Swing holdings only get the price update and timestamp.
func (l *Lifecycle) Advance(h core.Holding, tick Tick) core.Holding {
	h.ApplyPrice(tick.Price)

	if !h.IsScalpTrade {
		h.LastPriceUpdate = tick.At
		return h
	}

	peak := h.PeakPrice
	if peak == 0 {
		peak = h.AvgBuyPrice
	}
	if tick.Price > peak {
		peak = tick.Price
	}
	h.PeakPrice = peak

	if h.UnrealizedPnLPct >= l.cfg.BreakevenTriggerPct && !h.BreakevenLocked {
		h.BreakevenLocked = true
		h.TrailingStopPrice = h.AvgBuyPrice
	}

	if h.UnrealizedPnLPct >= l.cfg.TrailTriggerPct {
		h.TrailingStopActive = true
		candidate := peak * (1 - l.cfg.TrailPct/100)
		if candidate > h.TrailingStopPrice {
			h.TrailingStopPrice = candidate
		}
	}

	if tick.MarketOpen && l.newTradingDay(h.LastPriceUpdate, tick.At) {
		h.TradingDaysHeld++
	}
	h.LastPriceUpdate = tick.At

	return h
}

// newTradingDay reports whether at falls on a later calendar day than
// last, in the lifecycle's timezone. A zero last counts as a new day.
func (l *Lifecycle) newTradingDay(last, at time.Time) bool {
	if last.IsZero() {
		return true
	}
	ly, lm, ld := last.In(l.loc).Date()
	ay, am, ad := at.In(l.loc).Date()
	if ay != ly {
		return ay > ly
	}
	if am != lm {
		return am > lm
	}
	return ad > ld
}
