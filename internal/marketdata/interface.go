// Package marketdata defines the price-data contracts the engine
// consumes: daily bar history and current quotes.
package marketdata

import (
	"context"

	"github.com/quantfarer/vigil/internal/core"
)

// HistoryProvider supplies daily bars, oldest first. Implementations
// return core.ErrNoData when the symbol yields nothing.
type HistoryProvider interface {
	Bars(ctx context.Context, symbol string, lookbackDays int) ([]core.PriceBar, error)
}

// QuoteProvider supplies the latest traded price.
type QuoteProvider interface {
	Price(ctx context.Context, symbol string) (float64, error)
}

// Provider bundles both sides; real backends implement both against
// one upstream.
type Provider interface {
	HistoryProvider
	QuoteProvider
}
