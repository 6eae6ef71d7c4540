package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/quantfarer/vigil/internal/core"
	"github.com/quantfarer/vigil/internal/indicator"
)

func mkBars(closes []float64, volumes []int64) []core.PriceBar {
	bars := make([]core.PriceBar, len(closes))
	day := time.Date(2025, 1, 2, 21, 0, 0, 0, time.UTC)
	for i, c := range closes {
		var vol int64 = 1_000_000
		if volumes != nil {
			vol = volumes[i]
		}
		bars[i] = core.PriceBar{
			Time:   day.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: vol,
		}
	}
	return bars
}

func flatCloses(n int, price float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return closes
}

// decliningCloses holds 50 flat bars then ten -2% days.
func decliningCloses() []float64 {
	closes := flatCloses(50, 100.0)
	p := 100.0
	for i := 0; i < 10; i++ {
		p *= 0.98
		closes = append(closes, p)
	}
	return closes
}

func TestTechnicalShortHistoryNeutral(t *testing.T) {
	bars := mkBars(flatCloses(19, 100.0), nil)
	if got := Technical(bars); got != Neutral {
		t.Errorf("Technical with 19 bars = %v, want %v", got, Neutral)
	}
	if got := Technical(nil); got != Neutral {
		t.Errorf("Technical with no bars = %v, want %v", got, Neutral)
	}
}

func TestTechnicalBounds(t *testing.T) {
	rising := make([]float64, 60)
	falling := make([]float64, 60)
	up, down := 100.0, 100.0
	for i := 0; i < 60; i++ {
		rising[i] = up
		falling[i] = down
		up *= 1.005
		down *= 0.995
	}

	for name, closes := range map[string][]float64{
		"rising":    rising,
		"falling":   falling,
		"flat":      flatCloses(60, 100.0),
		"declining": decliningCloses(),
	} {
		got := Technical(mkBars(closes, nil))
		if got < 0 || got > 100 {
			t.Errorf("%s: Technical = %v, outside [0,100]", name, got)
		}
	}
}

func TestTechnicalFlatSeries(t *testing.T) {
	// Flat series: RSI 50 (20) + MACD all-zero fallback (8) +
	// band midpoint (15) + MA base (2) + quiet volume (2), no penalties.
	got := Technical(mkBars(flatCloses(60, 100.0), nil))
	if got != 47.0 {
		t.Errorf("Technical flat = %v, want 47.0", got)
	}
}

func TestTechnicalDecliningSeriesPenalized(t *testing.T) {
	flat := Technical(mkBars(flatCloses(60, 100.0), nil))
	decl := Technical(mkBars(decliningCloses(), nil))

	if decl >= flat {
		t.Errorf("declining score %v not below flat score %v", decl, flat)
	}
	if math.Abs(decl-33.49) > 0.01 {
		t.Errorf("declining score = %v, want 33.49", decl)
	}
}

func TestRSISubScore(t *testing.T) {
	cases := []struct {
		rsi  float64
		want float64
	}{
		{25, 28.0},
		{35, 20.5},
		{45, 21.5},
		{55, 18.5},
		{65, 15.0},
		{75, 10.5},
		{95, 3.0}, // floor
	}
	for _, tc := range cases {
		if got := rsiScore(&tc.rsi); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("rsiScore(%v) = %v, want %v", tc.rsi, got, tc.want)
		}
	}
	if got := rsiScore(nil); got != 12.5 {
		t.Errorf("rsiScore(nil) = %v, want 12.5", got)
	}
}

func TestBollingerSubScore(t *testing.T) {
	if got := bollingerScore(nil); got != 10.0 {
		t.Errorf("bollingerScore(nil) = %v, want 10.0", got)
	}

	score := func(pos float64) float64 {
		return bollingerScore(&indicator.BollingerValues{Position: pos})
	}
	if got := score(0); got != 20.0 {
		t.Errorf("score at lower band = %v, want 20.0", got)
	}
	if got := score(1); got != 0.0 {
		t.Errorf("score at upper band = %v, want 0.0", got)
	}
	if got := score(0.5); got != 15.0 {
		t.Errorf("score at midpoint = %v, want 15.0", got)
	}

	// Non-increasing across the band.
	prev := score(0)
	for p := 0.1; p <= 1.0; p += 0.1 {
		cur := score(p)
		if cur > prev {
			t.Errorf("score(%v) = %v exceeds score at lower position %v", p, cur, prev)
		}
		prev = cur
	}
}

func TestVolumeSubScore(t *testing.T) {
	cases := []struct {
		ratio float64
		want  float64
	}{
		{0.5, 2.0},
		{1.0, 2.0},
		{2.0, 10.0},
		{4.0, 10.0}, // capped
	}
	for _, tc := range cases {
		got := volumeScore(indicator.VolumeValues{Ratio: tc.ratio})
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("volumeScore(ratio=%v) = %v, want %v", tc.ratio, got, tc.want)
		}
	}

	// Log scaling: 1.5x sits well under the cap.
	got := volumeScore(indicator.VolumeValues{Ratio: 1.5})
	if got <= 2.0 || got >= 10.0 {
		t.Errorf("volumeScore(ratio=1.5) = %v, want between 2 and 10", got)
	}
}
