package core

import "time"

// PriceBar represents one daily OHLCV bar.
type PriceBar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// IsValid checks if the bar has required fields.
func (b PriceBar) IsValid() bool {
	return !b.Time.IsZero() && b.Close > 0
}

// Closes extracts the close series from a bar sequence.
func Closes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volume series from a bar sequence.
func Volumes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = float64(b.Volume)
	}
	return out
}

// Strategy classifies how a position is managed.
type Strategy string

const (
	StrategyScalp Strategy = "SCALP"
	StrategySwing Strategy = "SWING"
)

// Severity grades a bearish warning signal.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
)

// BearishKind identifies a bearish signal condition.
type BearishKind string

const (
	BearishMACDDeathCross    BearishKind = "MACD_DEATH_CROSS"
	BearishMACDBearish       BearishKind = "MACD_BEARISH"
	BearishRSIOverbought     BearishKind = "RSI_OVERBOUGHT"
	BearishBelowMA20         BearishKind = "BELOW_MA20"
	BearishBelowMA50         BearishKind = "BELOW_MA50"
	BearishDeathCross50200   BearishKind = "DEATH_CROSS_50_200"
	BearishBBLowerBreak      BearishKind = "BB_LOWER_BREAK"
	BearishHighVolumeDecline BearishKind = "HIGH_VOLUME_DECLINE"
)

// BearishSignal is one detected warning condition for a held symbol.
type BearishSignal struct {
	Kind        BearishKind `json:"type"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description"`
}

// SellKind identifies the rule that fired a sell decision.
type SellKind string

const (
	SellStopLoss      SellKind = "STOP_LOSS"
	SellTakeProfit    SellKind = "TAKE_PROFIT"
	SellTrailingStop  SellKind = "TRAILING_STOP"
	SellBreakevenStop SellKind = "BREAKEVEN_STOP"
	SellTimeStop      SellKind = "TIME_STOP"
	SellComposite     SellKind = "SELL"
)

// Label returns the human-readable name for a sell kind.
func (k SellKind) Label() string {
	switch k {
	case SellStopLoss:
		return "Stop Loss"
	case SellTakeProfit:
		return "Take Profit"
	case SellTrailingStop:
		return "Trailing Stop"
	case SellBreakevenStop:
		return "Breakeven Stop"
	case SellTimeStop:
		return "Time Stop"
	default:
		return "Sell"
	}
}

// SellSignalRecord is an append-only record of a fired sell decision.
// The (Symbol, Kind) pair is the de-duplication key: a second record
// within 24 hours of an earlier one is suppressed entirely.
type SellSignalRecord struct {
	ID            string    `json:"id"`
	Symbol        string    `json:"symbol"`
	Kind          SellKind  `json:"signal_type"`
	Strategy      Strategy  `json:"strategy"`
	CombinedScore float64   `json:"combined_score"`
	TechScore     float64   `json:"tech_score"`
	SellScore     float64   `json:"sell_score"`
	PnLPct        float64   `json:"pnl_pct"`
	Reasoning     string    `json:"reasoning"`
	SignalAt      time.Time `json:"signal_at"`
}

// Recommendation is one ranked buy candidate produced by a scan.
type Recommendation struct {
	Symbol         string   `json:"symbol"`
	Name           string   `json:"name,omitempty"`
	Strategy       Strategy `json:"strategy"`
	Price          float64  `json:"price"`
	TechScore      float64  `json:"tech_score"`
	SentimentScore float64  `json:"sentiment_score"`
	CombinedScore  float64  `json:"combined_score"`
	EntryScore     float64  `json:"entry_score,omitempty"`
	SentimentUsed  bool     `json:"sentiment_used"`
	Reasons        []string `json:"reasons,omitempty"`
}

// HoldAnalysis explains why a held position was not sold this cycle.
type HoldAnalysis struct {
	Symbol        string   `json:"symbol"`
	Strategy      Strategy `json:"strategy"`
	PnLPct        float64  `json:"pnl_pct"`
	CombinedScore float64  `json:"combined_score"`
	HoldReasons   []string `json:"hold_reasons,omitempty"`
}
