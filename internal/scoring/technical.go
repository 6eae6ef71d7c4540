// Package scoring maps indicator snapshots to continuous 0-100 scores,
// discrete bearish warning signals, and scalp entry validations.
package scoring

import (
	"math"

	"github.com/quantfarer/vigil/internal/core"
	"github.com/quantfarer/vigil/internal/indicator"
)

// Neutral is returned by Technical when history is too short for any
// meaningful read.
const Neutral = 50.0

// Breakdown is the per-indicator decomposition of a technical score.
// Sub-scores are continuous; penalties are applied to the aggregate,
// not to individual components.
type Breakdown struct {
	RSI       float64 // 0-25
	MACD      float64 // 0-25
	Bollinger float64 // 0-20
	MA        float64 // 0-20
	Volume    float64 // 0-10
}

// Sum returns the pre-penalty aggregate.
func (b Breakdown) Sum() float64 {
	return b.RSI + b.MACD + b.Bollinger + b.MA + b.Volume
}

// Technical scores a daily bar series on a continuous 0-100 scale.
// Fewer than 20 bars yields exactly the neutral score; indicators with
// unmet lookbacks contribute their neutral defaults instead of failing.
func Technical(bars []core.PriceBar) float64 {
	if len(bars) < indicator.MinBarsShort {
		return Neutral
	}

	snap := indicator.Compute(bars)
	score := TechnicalBreakdown(snap).Sum() - penalties(snap)
	return round2(clamp(score, 0, 100))
}

// TechnicalBreakdown computes the five sub-scores for a snapshot.
func TechnicalBreakdown(snap indicator.Snapshot) Breakdown {
	return Breakdown{
		RSI:       rsiScore(snap.RSI),
		MACD:      macdScore(snap.MACD),
		Bollinger: bollingerScore(snap.Bollinger),
		MA:        maScore(snap),
		Volume:    volumeScore(snap.Volume),
	}
}

// rsiScore favors mean-reversion entries: it peaks just below the
// oversold boundary and decays through the overbought range, with no
// hard cliff at either end.
func rsiScore(rsi *float64) float64 {
	if rsi == nil {
		return 12.5
	}
	v := *rsi
	switch {
	case v < 30:
		return 18.0 + math.Min(10.0, v*0.4)
	case v < 40:
		return 18.0 + (v-30)*0.5
	case v < 50:
		return 23.0 - (v-40)*0.3
	case v < 60:
		return 20.0 - (v-50)*0.3
	case v < 70:
		return 17.0 - (v-60)*0.4
	default:
		return math.Max(3.0, 13.0-(v-70)*0.5)
	}
}

func macdScore(m *indicator.MACDValues) float64 {
	if m == nil {
		return 12.5
	}

	if m.BullishCross() {
		return 25.0
	}
	if m.BearishCross() {
		return 3.0
	}

	// Both in positive territory: reward histogram strength.
	if m.Line > 0 && m.Signal > 0 {
		maxVal := math.Max(math.Max(math.Abs(m.Line), math.Abs(m.Signal)), 0.0001)
		norm := math.Min(1.0, math.Abs(m.Hist)/maxVal)
		return 17.0 + norm*8.0
	}

	// Line above signal but not fully bullish.
	if m.Line > m.Signal {
		diffRatio := math.Min(1.0, math.Abs(m.Hist)/(math.Abs(m.Signal)+0.0001))
		return 10.0 + diffRatio*4.0
	}

	return math.Max(3.0, 8.0-math.Abs(m.Hist)/(math.Abs(m.Signal)+0.0001)*5.0)
}

// bollingerScore is parabolic in band position: 20 at the lower band,
// 0 at the upper band.
func bollingerScore(b *indicator.BollingerValues) float64 {
	if b == nil {
		return 10.0
	}
	score := 20.0 * (1.0 - b.Position*b.Position)
	return clamp(score, 0, 20)
}

func maScore(snap indicator.Snapshot) float64 {
	if snap.MA20 == nil || snap.Close <= 0 {
		return 10.0
	}

	price := snap.Close
	ma20 := *snap.MA20
	base := 2.0

	if price > ma20 {
		strength := math.Min(1.0, (price-ma20)/(ma20*0.05))
		base += 8.0 * strength
	}

	if snap.MA50 != nil && ma20 > *snap.MA50 {
		ma50 := *snap.MA50
		strength := math.Min(1.0, (ma20-ma50)/(ma50*0.03))
		base += 5.0 * strength
	}

	if snap.MA200 != nil && snap.MA50 != nil && *snap.MA50 > *snap.MA200 {
		ma50, ma200 := *snap.MA50, *snap.MA200
		strength := math.Min(1.0, (ma50-ma200)/(ma200*0.05))
		base += 7.0 * strength
	}

	return math.Min(20.0, base)
}

// volumeScore is log-scaled: a doubling of volume over its 20-day
// average is required to reach the cap.
func volumeScore(v indicator.VolumeValues) float64 {
	if v.Ratio <= 1.0 {
		return 2.0
	}
	score := 2.0 + 8.0*math.Min(1.0, math.Log2(v.Ratio))
	return math.Min(10.0, score)
}

// penalties applies the bearish-condition adjustments that tie the
// aggregate score to the warning signals. Overlap with the MACD and MA
// sub-scores is a preserved heuristic, not an accident to rebalance.
func penalties(snap indicator.Snapshot) float64 {
	var total float64

	if m := snap.MACD; m != nil {
		if m.BearishCross() {
			total += 8.0
		} else if m.Line < m.Signal {
			sigAbs := math.Abs(m.Signal) + 0.001
			histRatio := math.Abs(m.Hist) / sigAbs
			total += math.Min(6.0, histRatio*8.0)
		}
	}

	price := snap.Close
	if price > 0 {
		if snap.MA20 != nil && price < *snap.MA20*0.99 {
			pctBelow := (*snap.MA20 - price) / *snap.MA20
			total += math.Min(6.0, pctBelow*120.0)
		}
		if snap.MA50 != nil && price < *snap.MA50*0.99 {
			pctBelow := (*snap.MA50 - price) / *snap.MA50
			total += math.Min(10.0, pctBelow*150.0)
		}
	}

	return total
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
