package core

import "time"

// Holding is one portfolio position, one per symbol. Scalp holdings
// additionally carry the protective-stop state advanced on every price
// refresh; swing holdings leave those fields zero.
type Holding struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`

	Quantity    float64 `json:"quantity"`
	AvgBuyPrice float64 `json:"avg_buy_price"`

	CurrentPrice     float64 `json:"current_price"`
	UnrealizedPnL    float64 `json:"unrealized_pnl"`
	UnrealizedPnLPct float64 `json:"unrealized_pnl_pct"`

	// Immutable after creation.
	IsScalpTrade bool `json:"is_scalp_trade"`

	PeakPrice          float64 `json:"peak_price,omitempty"`
	TrailingStopActive bool    `json:"trailing_stop_active,omitempty"`
	TrailingStopPrice  float64 `json:"trailing_stop_price,omitempty"`
	BreakevenLocked    bool    `json:"breakeven_locked,omitempty"`
	TradingDaysHeld    int     `json:"trading_days_held,omitempty"`

	FirstBoughtAt   time.Time `json:"first_bought_at"`
	LastPriceUpdate time.Time `json:"last_price_update,omitempty"`
}

// Strategy returns the holding's strategy classification.
func (h Holding) Strategy() Strategy {
	if h.IsScalpTrade {
		return StrategyScalp
	}
	return StrategySwing
}

// ApplyBuy folds an additional purchase into the position at the
// weighted-average price.
func (h *Holding) ApplyBuy(quantity, price float64) {
	if quantity <= 0 {
		return
	}
	total := h.AvgBuyPrice*h.Quantity + price*quantity
	h.Quantity += quantity
	h.AvgBuyPrice = total / h.Quantity
}

// ApplyPrice sets the current price and recomputes unrealized P&L.
func (h *Holding) ApplyPrice(price float64) {
	h.CurrentPrice = price
	h.UnrealizedPnL = (price - h.AvgBuyPrice) * h.Quantity
	if h.AvgBuyPrice > 0 {
		h.UnrealizedPnLPct = (price - h.AvgBuyPrice) / h.AvgBuyPrice * 100
	} else {
		h.UnrealizedPnLPct = 0
	}
}
