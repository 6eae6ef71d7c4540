// Package indicator computes technical indicators over daily price series.
// All functions are pure; indicators whose minimum lookback is not met are
// reported as nil rather than an error, and callers substitute documented
// neutral defaults.
package indicator

import (
	"math"

	"github.com/quantfarer/vigil/internal/core"
)

// Minimum bars required per indicator family.
const (
	MinBarsShort = 20 // RSI, Bollinger, MA20, volume MA20
	MinBarsMA50  = 50
	MinBarsMA200 = 200
	MinBarsMACD  = 35 // 26-bar slow EMA + 9-bar signal + prior bar
)

// SMA calculates Simple Moving Average
// Returns slice of length: len(prices) - period + 1
func SMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-period+1)

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	result = append(result, sum/float64(period))

	// Rolling calculation
	for i := period; i < len(prices); i++ {
		sum = sum - prices[i-period] + prices[i]
		result = append(result, sum/float64(period))
	}

	return result
}

// EMA calculates Exponential Moving Average, seeded with the SMA of the
// first period values.
func EMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-period+1)
	multiplier := 2.0 / float64(period+1)

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	ema := sum / float64(period)
	result = append(result, ema)

	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
		result = append(result, ema)
	}

	return result
}

// RSI calculates the Relative Strength Index with Wilder smoothing.
// Returns nil when fewer than period+1 prices are available.
func RSI(prices []float64, period int) *float64 {
	if period <= 0 || len(prices) < period+1 {
		return nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder smoothing over the remainder of the series
	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		v := 100.0
		if avgGain == 0 {
			v = 50.0
		}
		return &v
	}

	rs := avgGain / avgLoss
	v := 100.0 - 100.0/(1.0+rs)
	return &v
}

// MACDValues holds the current and prior-bar MACD state.
type MACDValues struct {
	Line       float64
	Signal     float64
	Hist       float64
	PrevLine   float64
	PrevSignal float64
	PrevHist   float64
	// PrevHist2 is the histogram two bars back, nil when history is one
	// bar short of it. Used for the two-day acceleration check.
	PrevHist2 *float64
}

// BullishCross reports a fresh bullish crossover on the latest bar.
func (m MACDValues) BullishCross() bool {
	return m.PrevLine <= m.PrevSignal && m.Line > m.Signal
}

// BearishCross reports a fresh bearish crossover on the latest bar.
func (m MACDValues) BearishCross() bool {
	return m.PrevLine >= m.PrevSignal && m.Line < m.Signal
}

// MACD calculates the 12/26/9 MACD. Returns nil when fewer than
// MinBarsMACD prices are available.
func MACD(prices []float64) *MACDValues {
	if len(prices) < MinBarsMACD {
		return nil
	}

	fast := EMA(prices, 12)
	slow := EMA(prices, 26)

	// Align the fast EMA to the slow EMA's start.
	offset := len(fast) - len(slow)
	line := make([]float64, len(slow))
	for i := range slow {
		line[i] = fast[i+offset] - slow[i]
	}

	signal := EMA(line, 9)
	if len(signal) < 2 {
		return nil
	}

	sigOffset := len(line) - len(signal)
	curr := len(signal) - 1
	prev := curr - 1

	v := &MACDValues{
		Line:       line[curr+sigOffset],
		Signal:     signal[curr],
		PrevLine:   line[prev+sigOffset],
		PrevSignal: signal[prev],
	}
	v.Hist = v.Line - v.Signal
	v.PrevHist = v.PrevLine - v.PrevSignal

	if prev >= 1 {
		h2 := line[prev-1+sigOffset] - signal[prev-1]
		v.PrevHist2 = &h2
	}

	return v
}

// BollingerValues holds the 20-day Bollinger band state.
type BollingerValues struct {
	Upper    float64
	Middle   float64
	Lower    float64
	Position float64 // 0 at the lower band, 1 at the upper band
}

// Bollinger calculates 20-day Bollinger bands at two standard deviations.
// Returns nil when fewer than period prices are available.
func Bollinger(prices []float64, period int) *BollingerValues {
	if period <= 0 || len(prices) < period {
		return nil
	}

	window := prices[len(prices)-period:]
	var sum float64
	for _, p := range window {
		sum += p
	}
	mean := sum / float64(period)

	var variance float64
	for _, p := range window {
		d := p - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(period))

	v := &BollingerValues{
		Upper:  mean + 2*std,
		Middle: mean,
		Lower:  mean - 2*std,
	}

	width := v.Upper - v.Lower
	if width > 0 {
		v.Position = (prices[len(prices)-1] - v.Lower) / width
	} else {
		v.Position = 0.5
	}

	return v
}

// VolumeValues holds the volume ratio state.
type VolumeValues struct {
	Current float64
	MA20    float64
	Ratio   float64
}

// VolumeRatio relates the latest volume to its 20-day average.
// Ratio defaults to 1.0 when the average is non-positive.
func VolumeRatio(volumes []float64) VolumeValues {
	if len(volumes) == 0 {
		return VolumeValues{Ratio: 1.0}
	}

	v := VolumeValues{Current: volumes[len(volumes)-1], Ratio: 1.0}

	ma := SMA(volumes, 20)
	if len(ma) == 0 {
		return v
	}
	v.MA20 = ma[len(ma)-1]
	if v.MA20 > 0 {
		v.Ratio = v.Current / v.MA20
	}
	return v
}

// Snapshot is the full derived indicator state for one symbol, recomputed
// per request from the supplied bars.
type Snapshot struct {
	Close     float64
	RSI       *float64
	MACD      *MACDValues
	Bollinger *BollingerValues
	MA20      *float64
	MA50      *float64
	MA200     *float64
	Volume    VolumeValues
}

// Compute derives a Snapshot from a daily bar sequence.
func Compute(bars []core.PriceBar) Snapshot {
	closes := core.Closes(bars)
	volumes := core.Volumes(bars)

	snap := Snapshot{
		RSI:       RSI(closes, 14),
		MACD:      MACD(closes),
		Bollinger: Bollinger(closes, 20),
		MA20:      lastSMA(closes, 20),
		MA50:      lastSMA(closes, MinBarsMA50),
		MA200:     lastSMA(closes, MinBarsMA200),
		Volume:    VolumeRatio(volumes),
	}
	if len(closes) > 0 {
		snap.Close = closes[len(closes)-1]
	}
	return snap
}

func lastSMA(prices []float64, period int) *float64 {
	ma := SMA(prices, period)
	if len(ma) == 0 {
		return nil
	}
	v := ma[len(ma)-1]
	return &v
}
