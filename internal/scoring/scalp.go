package scoring

import (
	"math"

	"github.com/quantfarer/vigil/internal/core"
	"github.com/quantfarer/vigil/internal/indicator"
)

// MinScalpBars is the minimum history for scalp entry validation.
const MinScalpBars = 55

// ScalpGates are the six boolean conditions a scalp entry must all pass.
// A high technical score alone does not prove the short-horizon setup is
// intact; these are the momentum confirmation on top of it.
type ScalpGates struct {
	RSIOK         bool
	MACDPositive  bool
	MACDImproving bool
	AboveMA20     bool
	AboveMA50     bool
	VolumeOK      bool
}

// All reports whether every gate passed.
func (g ScalpGates) All() bool {
	return g.RSIOK && g.MACDPositive && g.MACDImproving &&
		g.AboveMA20 && g.AboveMA50 && g.VolumeOK
}

// ScalpValidation is the result of a scalp entry check.
type ScalpValidation struct {
	EntryScore  float64
	RSIScore    float64
	MACDScore   float64
	MAScore     float64
	VolumeScore float64

	Gates             ScalpGates
	AllConditionsPass bool

	RSI           *float64
	HistToday     *float64
	HistYesterday *float64
	VolumeRatio   float64
	Price         float64
	MA20          *float64
	MA50          *float64
}

// ScalpValidator scores and gates short-horizon entries. Zero value is
// not usable; construct with NewScalpValidator.
type ScalpValidator struct {
	rsiMin     float64
	rsiMax     float64
	volumeMult float64
}

// NewScalpValidator creates a validator with the given RSI band and
// volume confirmation multiplier.
func NewScalpValidator(rsiMin, rsiMax, volumeMult float64) *ScalpValidator {
	return &ScalpValidator{rsiMin: rsiMin, rsiMax: rsiMax, volumeMult: volumeMult}
}

// DefaultScalpValidator returns a validator with the standard band
// (RSI 45-68, volume 1.3x).
func DefaultScalpValidator() *ScalpValidator {
	return NewScalpValidator(45.0, 68.0, 1.3)
}

// Validate checks the six scalp gates and computes the entry score.
// Fewer than MinScalpBars bars yields a zeroed, failing result.
func (v *ScalpValidator) Validate(bars []core.PriceBar) ScalpValidation {
	if len(bars) < MinScalpBars {
		return ScalpValidation{}
	}

	snap := indicator.Compute(bars)
	price := snap.Close

	result := ScalpValidation{
		RSI:         snap.RSI,
		VolumeRatio: snap.Volume.Ratio,
		Price:       price,
		MA20:        snap.MA20,
		MA50:        snap.MA50,
	}

	var histToday, histYesterday float64
	if m := snap.MACD; m != nil {
		histToday = m.Hist
		histYesterday = m.PrevHist
		result.HistToday = &histToday
		result.HistYesterday = &histYesterday
	}

	g := ScalpGates{
		RSIOK:         snap.RSI != nil && *snap.RSI >= v.rsiMin && *snap.RSI <= v.rsiMax,
		MACDPositive:  snap.MACD != nil && histToday > 0,
		MACDImproving: snap.MACD != nil && histToday > histYesterday,
		AboveMA20:     snap.MA20 != nil && price > *snap.MA20,
		AboveMA50:     snap.MA50 != nil && price > *snap.MA50,
		VolumeOK:      snap.Volume.Ratio >= v.volumeMult,
	}
	result.Gates = g
	result.AllConditionsPass = g.All()

	// RSI momentum (15-30): linear in position within the band.
	if g.RSIOK {
		result.RSIScore = 15.0 + (*snap.RSI-v.rsiMin)/(v.rsiMax-v.rsiMin)*15.0
	}

	// MACD acceleration (0-35): positive histogram required; a flat
	// positive reading earns the floor, improvement scales with
	// magnitude relative to 0.2% of price, two straight days of
	// acceleration earn a bonus.
	if g.MACDPositive {
		if !g.MACDImproving {
			result.MACDScore = 10.0
		} else {
			norm := math.Min(1.0, math.Abs(histToday)/(math.Abs(price)*0.002+0.0001))
			score := 20.0 + norm*10.0
			if m := snap.MACD; m.PrevHist2 != nil && m.PrevHist > *m.PrevHist2 {
				score += 5.0
			}
			result.MACDScore = math.Min(35.0, score)
		}
	}

	// MA alignment (12-25): both MAs must be below price.
	if g.AboveMA20 && g.AboveMA50 {
		dist20 := (price - *snap.MA20) / *snap.MA20
		dist50 := (price - *snap.MA50) / *snap.MA50
		score := 12.0 + math.Min(8.0, dist20/0.02*8.0) + math.Min(5.0, dist50/0.03*5.0)
		result.MAScore = math.Min(25.0, score)
	}

	// Volume confirmation (5-10): linear between the multiplier and 2x.
	if g.VolumeOK {
		span := 2.0 - v.volumeMult
		result.VolumeScore = math.Min(10.0, 5.0+(snap.Volume.Ratio-v.volumeMult)/span*5.0)
	}

	result.EntryScore = round2(result.RSIScore + result.MACDScore + result.MAScore + result.VolumeScore)
	result.RSIScore = round2(result.RSIScore)
	result.MACDScore = round2(result.MACDScore)
	result.MAScore = round2(result.MAScore)
	result.VolumeScore = round2(result.VolumeScore)

	return result
}
