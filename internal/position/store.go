package position

import (
	"context"
	"time"

	"github.com/quantfarer/vigil/internal/core"
)

// Store persists holdings and the append-only sell-signal log.
type Store interface {
	// Holdings returns every open position.
	Holdings(ctx context.Context) ([]core.Holding, error)

	// Holding retrieves one position by symbol.
	Holding(ctx context.Context, symbol string) (*core.Holding, error)

	// Buy opens a position or folds a purchase into an existing one at
	// the weighted-average price. The scalp flag only applies to a new
	// position; it never flips an existing one.
	Buy(ctx context.Context, symbol, name string, quantity, price float64, scalp bool) (*core.Holding, error)

	// Update replaces the stored state of an existing position.
	Update(ctx context.Context, h core.Holding) error

	// Close removes a fully sold position.
	Close(ctx context.Context, symbol string) error

	// SellSignals lists recorded sell signals at or after since,
	// newest first.
	SellSignals(ctx context.Context, since time.Time) ([]core.SellSignalRecord, error)

	// RecordIfNew appends rec unless a record with the same
	// (symbol, kind) exists within the window before rec.SignalAt.
	// The check and insert are atomic; it returns false for a
	// suppressed duplicate.
	RecordIfNew(ctx context.Context, rec core.SellSignalRecord, window time.Duration) (bool, error)
}
