// Package notifier delivers sell-signal alerts to configured channels.
package notifier

import (
	"github.com/quantfarer/vigil/internal/core"
)

// Notifier defines the interface for sell-signal notification
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Send sends a single sell-signal notification
	Send(rec core.SellSignalRecord) error

	// SendDigest sends multiple sell signals as one notification
	SendDigest(recs []core.SellSignalRecord) error
}
