package notifier

import (
	"fmt"
	"sync"

	"github.com/quantfarer/vigil/internal/core"
)

// Registry holds the configured alert channels. Delivery is
// best-effort per channel: one failing notifier never blocks the rest,
// and callers get the failures back keyed by channel name.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]Notifier
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]Notifier)}
}

// Register adds a channel under its Name. Names are unique.
func (r *Registry) Register(n Notifier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := n.Name()
	if _, dup := r.channels[name]; dup {
		return fmt.Errorf("notifier %s already registered", name)
	}
	r.channels[name] = n
	return nil
}

// Get looks up a channel by name.
func (r *Registry) Get(name string) (Notifier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.channels[name]
	return n, ok
}

// GetAll returns the registered channels in unspecified order.
func (r *Registry) GetAll() []Notifier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Notifier, 0, len(r.channels))
	for _, n := range r.channels {
		all = append(all, n)
	}
	return all
}

// NotifyAll delivers one sell signal to every channel and returns the
// failures by channel name.
func (r *Registry) NotifyAll(rec core.SellSignalRecord) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	failed := make(map[string]error)
	for name, n := range r.channels {
		if err := n.Send(rec); err != nil {
			failed[name] = err
		}
	}
	return failed
}

// NotifyAllDigest delivers a batch of sell signals as one digest per
// channel and returns the failures by channel name.
func (r *Registry) NotifyAllDigest(recs []core.SellSignalRecord) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	failed := make(map[string]error)
	for name, n := range r.channels {
		if err := n.SendDigest(recs); err != nil {
			failed[name] = err
		}
	}
	return failed
}
