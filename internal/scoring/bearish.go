package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/quantfarer/vigil/internal/core"
	"github.com/quantfarer/vigil/internal/indicator"
)

// BearishReport carries the warning signals detected for a held symbol.
type BearishReport struct {
	Signals           []core.BearishSignal
	HighSeverityCount int
}

// High returns the HIGH-severity signals in order.
func (r BearishReport) High() []core.BearishSignal {
	out := make([]core.BearishSignal, 0, r.HighSeverityCount)
	for _, s := range r.Signals {
		if s.Severity == core.SeverityHigh {
			out = append(out, s)
		}
	}
	return out
}

// Medium returns the MEDIUM-severity signals in order.
func (r BearishReport) Medium() []core.BearishSignal {
	var out []core.BearishSignal
	for _, s := range r.Signals {
		if s.Severity == core.SeverityMedium {
			out = append(out, s)
		}
	}
	return out
}

// DetectBearish flags discrete warning conditions on a held symbol. The
// checks are independent: one symbol can carry several signals at once.
// Insufficient history yields an empty report, never an error. Output is
// ordered HIGH before MEDIUM, detection order within a severity.
func DetectBearish(bars []core.PriceBar) BearishReport {
	if len(bars) < indicator.MinBarsShort {
		return BearishReport{}
	}

	snap := indicator.Compute(bars)
	price := snap.Close

	var signals []core.BearishSignal
	add := func(kind core.BearishKind, sev core.Severity, desc string) {
		signals = append(signals, core.BearishSignal{Kind: kind, Severity: sev, Description: desc})
	}

	// 1. MACD death cross, or sustained bearish histogram beyond a
	// signal-relative threshold so the check stays price-independent.
	if m := snap.MACD; m != nil {
		if m.BearishCross() {
			add(core.BearishMACDDeathCross, core.SeverityHigh,
				fmt.Sprintf("MACD death cross (MACD %.3f below signal %.3f): short-term trend turning down", m.Line, m.Signal))
		} else if m.Line < m.Signal {
			sigAbs := math.Abs(m.Signal)
			if sigAbs == 0 {
				sigAbs = 0.1
			}
			relThreshold := math.Max(0.05, sigAbs*0.05)
			if m.Hist < -relThreshold {
				add(core.BearishMACDBearish, core.SeverityMedium,
					fmt.Sprintf("sustained MACD weakness (histogram %.3f): selling pressure dominant", m.Hist))
			}
		}
	}

	// 2. Overbought RSI, pullback risk.
	if snap.RSI != nil && *snap.RSI >= 72 {
		add(core.BearishRSIOverbought, core.SeverityMedium,
			fmt.Sprintf("RSI %.1f in overbought territory (72+): short-term pullback likely", *snap.RSI))
	}

	// 3. Below MA20, 1% buffer to filter noise.
	if snap.MA20 != nil && price < *snap.MA20*0.99 {
		pct := (*snap.MA20 - price) / *snap.MA20 * 100
		add(core.BearishBelowMA20, core.SeverityMedium,
			fmt.Sprintf("price broke below MA20 (-%.1f%% vs MA20): short-term trend weakening", pct))
	}

	// 4. Below MA50: medium-term trend reversal, more serious.
	if snap.MA50 != nil && price < *snap.MA50*0.99 {
		pct := (*snap.MA50 - price) / *snap.MA50 * 100
		add(core.BearishBelowMA50, core.SeverityHigh,
			fmt.Sprintf("price broke below MA50 (-%.1f%% vs MA50): medium-term reversal confirmed", pct))
	}

	// 5. MA50/MA200 death cross.
	if snap.MA50 != nil && snap.MA200 != nil && *snap.MA50 < *snap.MA200 {
		pct := (*snap.MA200 - *snap.MA50) / *snap.MA200 * 100
		add(core.BearishDeathCross50200, core.SeverityHigh,
			fmt.Sprintf("MA50/MA200 death cross (MA50 -%.1f%% vs MA200): long-term downtrend", pct))
	}

	// 6. Lower Bollinger band break.
	if snap.Bollinger != nil && snap.Bollinger.Position < 0.05 {
		add(core.BearishBBLowerBreak, core.SeverityMedium,
			fmt.Sprintf("lower Bollinger band break (band position %.2f): strong selling pressure", snap.Bollinger.Position))
	}

	// 7. High-volume decline, a distribution tell.
	if snap.Volume.Ratio > 1.5 && len(bars) >= 2 && bars[len(bars)-1].Close < bars[len(bars)-2].Close {
		add(core.BearishHighVolumeDecline, core.SeverityMedium,
			fmt.Sprintf("decline on %.1fx average volume: possible institutional distribution", snap.Volume.Ratio))
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return severityRank(signals[i].Severity) < severityRank(signals[j].Severity)
	})

	high := 0
	for _, s := range signals {
		if s.Severity == core.SeverityHigh {
			high++
		}
	}

	return BearishReport{Signals: signals, HighSeverityCount: high}
}

func severityRank(s core.Severity) int {
	switch s {
	case core.SeverityHigh:
		return 0
	case core.SeverityMedium:
		return 1
	default:
		return 2
	}
}
