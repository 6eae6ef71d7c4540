package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/quantfarer/vigil/internal/api/response"
	"github.com/quantfarer/vigil/internal/core"
	"github.com/quantfarer/vigil/internal/indicator"
	"github.com/quantfarer/vigil/internal/scoring"
)

type scalpSummary struct {
	EntryScore        float64 `json:"entry_score"`
	AllConditionsPass bool    `json:"all_conditions_pass"`
	RSIOK             bool    `json:"rsi_ok"`
	MACDPositive      bool    `json:"macd_positive"`
	MACDImproving     bool    `json:"macd_improving"`
	AboveMA20         bool    `json:"above_ma20"`
	AboveMA50         bool    `json:"above_ma50"`
	VolumeOK          bool    `json:"volume_ok"`
}

type breakdownView struct {
	RSI       float64 `json:"rsi"`
	MACD      float64 `json:"macd"`
	Bollinger float64 `json:"bollinger"`
	MA        float64 `json:"moving_averages"`
	Volume    float64 `json:"volume"`
}

type symbolReport struct {
	Symbol      string               `json:"symbol"`
	Price       float64              `json:"price"`
	TechScore   float64              `json:"tech_score"`
	Breakdown   breakdownView        `json:"breakdown"`
	Bearish     []core.BearishSignal `json:"bearish_signals"`
	HighCount   int                  `json:"high_severity_count"`
	Scalp       scalpSummary         `json:"scalp"`
	GeneratedAt time.Time            `json:"generated_at"`
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	bars, err := s.deps.Market.Bars(r.Context(), symbol, s.lookback)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, core.ErrSymbolNotFound) || errors.Is(err, core.ErrNoData) {
			status = http.StatusNotFound
		}
		response.Error(w, status, err)
		return
	}
	if len(bars) == 0 {
		response.Error(w, http.StatusNotFound, core.ErrNoData)
		return
	}

	snap := indicator.Compute(bars)
	breakdown := scoring.TechnicalBreakdown(snap)
	bearish := scoring.DetectBearish(bars)
	validation := s.deps.Validator.Validate(bars)

	report := symbolReport{
		Symbol:    symbol,
		Price:     bars[len(bars)-1].Close,
		TechScore: scoring.Technical(bars),
		Breakdown: breakdownView{
			RSI:       breakdown.RSI,
			MACD:      breakdown.MACD,
			Bollinger: breakdown.Bollinger,
			MA:        breakdown.MA,
			Volume:    breakdown.Volume,
		},
		Bearish:   bearish.Signals,
		HighCount: bearish.HighSeverityCount,
		Scalp: scalpSummary{
			EntryScore:        validation.EntryScore,
			AllConditionsPass: validation.AllConditionsPass,
			RSIOK:             validation.Gates.RSIOK,
			MACDPositive:      validation.Gates.MACDPositive,
			MACDImproving:     validation.Gates.MACDImproving,
			AboveMA20:         validation.Gates.AboveMA20,
			AboveMA50:         validation.Gates.AboveMA50,
			VolumeOK:          validation.Gates.VolumeOK,
		},
		GeneratedAt: time.Now().UTC(),
	}

	response.JSON(w, http.StatusOK, report)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if s.deps.Recommendations == nil {
		response.Error(w, http.StatusNotFound, core.ErrNoData)
		return
	}

	picks, at, ok := s.deps.Recommendations.LatestRecommendations()
	if !ok {
		response.Error(w, http.StatusNotFound, core.ErrNoData)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"generated_at":    at,
		"recommendations": picks,
	})
}
