// Package decision turns a holding's state, bearish signals, and news
// scores into an explicit sell-or-hold decision. Both outcomes carry
// reasons: a fired signal explains what tripped it, a hold explains why
// nothing did.
package decision

import (
	"fmt"
	"strings"

	"github.com/quantfarer/vigil/internal/core"
	"github.com/quantfarer/vigil/internal/scoring"
)

// maxReasons caps the reasoning behind a fired signal, most specific
// first.
const maxReasons = 4

// Config holds the sell-rule thresholds. Percentages are absolute
// values of unrealized P&L percent.
type Config struct {
	ScalpStopLossPct    float64
	ScalpTakeProfitPct  float64
	ScalpMaxHoldingDays int

	SwingStopLossPct   float64
	SwingTakeProfitPct float64

	// News sell-score needed alongside one HIGH signal, and alone.
	NewsCombinedThreshold float64
	NewsAloneThreshold    float64

	// Combined score below this is a sell on its own.
	SellThreshold float64
}

// DefaultConfig returns the standard ladder thresholds.
func DefaultConfig() Config {
	return Config{
		ScalpStopLossPct:      -2.0,
		ScalpTakeProfitPct:    3.0,
		ScalpMaxHoldingDays:   5,
		SwingStopLossPct:      -5.0,
		SwingTakeProfitPct:    15.0,
		NewsCombinedThreshold: 60.0,
		NewsAloneThreshold:    70.0,
		SellThreshold:         40.0,
	}
}

// Input is everything a decision consumes for one holding.
type Input struct {
	Holding core.Holding
	Bearish scoring.BearishReport

	// News sell view; SellScore neutral default is 25.
	SellScore   float64
	SellAction  string
	RiskFactors []string

	TechScore     float64
	CombinedScore float64
}

// Decision is the outcome for one holding. Sell=false is still an
// explicit, auditable decision with supporting evidence.
type Decision struct {
	Sell     bool
	Kind     core.SellKind
	Strategy core.Strategy

	Reasons     []string
	HoldReasons []string

	// Reasoning joins Reasons for persistence and alerts.
	Reasoning string
}

// Engine evaluates the scalp and swing sell ladders.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given thresholds.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Decide runs the ladder for the holding's strategy. Rules are ordered
// and the first match wins: loss protection over profit taking, profit
// taking over protective exits, time stop last.
func (e *Engine) Decide(in Input) Decision {
	if in.Holding.IsScalpTrade {
		return e.decideScalp(in)
	}
	return e.decideSwing(in)
}

func (e *Engine) decideScalp(in Input) Decision {
	h := in.Holding
	pnl := h.UnrealizedPnLPct
	high := in.Bearish.High()

	var kind core.SellKind
	var reasons []string

	switch {
	case pnl <= e.cfg.ScalpStopLossPct:
		kind = core.SellStopLoss
		reasons = append(reasons,
			fmt.Sprintf("scalp stop loss: %.2f%% (limit %.1f%%)", pnl, e.cfg.ScalpStopLossPct))
		if len(high) > 0 {
			reasons = append(reasons, high[0].Description)
		}

	case pnl >= e.cfg.ScalpTakeProfitPct:
		kind = core.SellTakeProfit
		reasons = append(reasons,
			fmt.Sprintf("scalp take profit: +%.2f%% (target +%.1f%%)", pnl, e.cfg.ScalpTakeProfitPct))

	case h.TrailingStopActive && h.TrailingStopPrice > 0 && h.CurrentPrice > 0 &&
		h.CurrentPrice <= h.TrailingStopPrice:
		kind = core.SellTrailingStop
		reasons = append(reasons,
			fmt.Sprintf("trailing stop: price $%.2f at or below stop $%.2f (peak $%.2f), locking in the gain",
				h.CurrentPrice, h.TrailingStopPrice, h.PeakPrice))

	case h.BreakevenLocked && !h.TrailingStopActive && h.TrailingStopPrice > 0 &&
		h.CurrentPrice > 0 && h.CurrentPrice <= h.TrailingStopPrice:
		kind = core.SellBreakevenStop
		reasons = append(reasons,
			fmt.Sprintf("breakeven stop: price $%.2f back at entry $%.2f after the breakeven lock",
				h.CurrentPrice, h.AvgBuyPrice))

	case h.TradingDaysHeld >= e.cfg.ScalpMaxHoldingDays:
		kind = core.SellTimeStop
		reasons = append(reasons,
			fmt.Sprintf("time stop: held %d trading days (max %d), current P&L %+.2f%%",
				h.TradingDaysHeld, e.cfg.ScalpMaxHoldingDays, pnl))
	}

	if kind == "" {
		return Decision{
			Strategy:    core.StrategyScalp,
			HoldReasons: e.scalpHoldReasons(in),
		}
	}
	return sellDecision(core.StrategyScalp, kind, reasons)
}

func (e *Engine) scalpHoldReasons(in Input) []string {
	h := in.Holding
	reasons := []string{
		fmt.Sprintf("P&L %+.2f%% within the %.1f%%/+%.1f%% band",
			h.UnrealizedPnLPct, e.cfg.ScalpStopLossPct, e.cfg.ScalpTakeProfitPct),
	}
	if h.BreakevenLocked {
		reasons = append(reasons, "breakeven protection active, downside capped at entry")
	}
	if h.TrailingStopActive && h.TrailingStopPrice > 0 {
		reasons = append(reasons,
			fmt.Sprintf("trailing stop $%.2f tracking the peak", h.TrailingStopPrice))
	}
	remaining := e.cfg.ScalpMaxHoldingDays - h.TradingDaysHeld
	reasons = append(reasons,
		fmt.Sprintf("%d trading days until the time stop", remaining))
	if high := in.Bearish.High(); len(high) > 0 {
		reasons = append(reasons, "technical warning: "+high[0].Description)
	}
	return reasons
}

func (e *Engine) decideSwing(in Input) Decision {
	h := in.Holding
	pnl := h.UnrealizedPnLPct
	high := in.Bearish.High()

	var kind core.SellKind
	var reasons []string

	switch {
	case pnl <= e.cfg.SwingStopLossPct:
		kind = core.SellStopLoss
		reasons = append(reasons,
			fmt.Sprintf("loss %.1f%% reached the stop loss (%.1f%%)", pnl, e.cfg.SwingStopLossPct))

	case pnl >= e.cfg.SwingTakeProfitPct:
		kind = core.SellTakeProfit
		reasons = append(reasons,
			fmt.Sprintf("gain %.1f%% reached the take profit (+%.1f%%)", pnl, e.cfg.SwingTakeProfitPct))

	case len(high) >= 2:
		kind = core.SellComposite
		reasons = append(reasons, high[0].Description, high[1].Description)

	case len(high) >= 1 && in.SellScore >= e.cfg.NewsCombinedThreshold:
		kind = core.SellComposite
		reasons = append(reasons, high[0].Description,
			fmt.Sprintf("news sell signal: %s (sell score %.0f)", in.SellAction, in.SellScore))

	case in.SellScore >= e.cfg.NewsAloneThreshold:
		kind = core.SellComposite
		reasons = append(reasons,
			fmt.Sprintf("news analysis: %s (sell score %.0f)", in.SellAction, in.SellScore))
		for i, rf := range in.RiskFactors {
			if i >= 2 {
				break
			}
			reasons = append(reasons, rf)
		}

	case in.CombinedScore < e.cfg.SellThreshold:
		kind = core.SellComposite
		reasons = append(reasons,
			fmt.Sprintf("combined score %.1f below the sell floor (%.0f)",
				in.CombinedScore, e.cfg.SellThreshold))
	}

	if kind == "" {
		return Decision{
			Strategy:    core.StrategySwing,
			HoldReasons: e.swingHoldReasons(in),
		}
	}

	// Supplementary context when there is room left.
	if med := in.Bearish.Medium(); len(med) > 0 && len(reasons) < maxReasons {
		reasons = append(reasons, med[0].Description)
	}
	return sellDecision(core.StrategySwing, kind, reasons)
}

func (e *Engine) swingHoldReasons(in Input) []string {
	h := in.Holding
	reasons := []string{
		fmt.Sprintf("P&L %+.2f%% within the %.1f%%/+%.1f%% band",
			h.UnrealizedPnLPct, e.cfg.SwingStopLossPct, e.cfg.SwingTakeProfitPct),
	}
	if in.TechScore >= 60 {
		reasons = append(reasons, fmt.Sprintf("technical score healthy at %.1f", in.TechScore))
	}
	if in.SellScore < 40 {
		reasons = append(reasons, fmt.Sprintf("news sell pressure low (sell score %.0f)", in.SellScore))
	}
	if in.CombinedScore >= e.cfg.SellThreshold {
		reasons = append(reasons,
			fmt.Sprintf("combined score %.1f above the sell floor (%.0f)", in.CombinedScore, e.cfg.SellThreshold))
	}
	if len(in.Bearish.Signals) > 0 {
		reasons = append(reasons, "watching: "+in.Bearish.Signals[0].Description)
	}
	return reasons
}

func sellDecision(strategy core.Strategy, kind core.SellKind, reasons []string) Decision {
	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}
	return Decision{
		Sell:      true,
		Kind:      kind,
		Strategy:  strategy,
		Reasons:   reasons,
		Reasoning: strings.Join(reasons, " | "),
	}
}
