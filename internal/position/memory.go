package position

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quantfarer/vigil/internal/core"
)

// MemoryStore is an in-memory Store. Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	holdings map[string]core.Holding
	signals  []core.SellSignalRecord
	maxLog   int
	now      func() time.Time
}

// NewMemoryStore creates an empty store retaining at most maxLog
// sell-signal records (oldest dropped first).
func NewMemoryStore(maxLog int) *MemoryStore {
	return &MemoryStore{
		holdings: make(map[string]core.Holding),
		maxLog:   maxLog,
		now:      time.Now,
	}
}

// Holdings returns every open position, sorted by symbol.
func (m *MemoryStore) Holdings(ctx context.Context) ([]core.Holding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Holding, 0, len(m.holdings))
	for _, h := range m.holdings {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// Holding retrieves one position by symbol.
func (m *MemoryStore) Holding(ctx context.Context, symbol string) (*core.Holding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.holdings[normalize(symbol)]
	if !ok {
		return nil, core.ErrHoldingNotFound
	}
	return &h, nil
}

// Buy opens or extends a position.
func (m *MemoryStore) Buy(ctx context.Context, symbol, name string, quantity, price float64, scalp bool) (*core.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := normalize(symbol)
	h, ok := m.holdings[key]
	if !ok {
		h = core.Holding{
			ID:            uuid.NewString(),
			Symbol:        key,
			Name:          name,
			Quantity:      quantity,
			AvgBuyPrice:   price,
			IsScalpTrade:  scalp,
			FirstBoughtAt: m.now(),
		}
		h.ApplyPrice(price)
	} else {
		h.ApplyBuy(quantity, price)
		h.ApplyPrice(h.CurrentPrice)
	}
	m.holdings[key] = h
	return &h, nil
}

// Update replaces the stored state of an existing position.
func (m *MemoryStore) Update(ctx context.Context, h core.Holding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := normalize(h.Symbol)
	if _, ok := m.holdings[key]; !ok {
		return core.ErrHoldingNotFound
	}
	m.holdings[key] = h
	return nil
}

// Close removes a position.
func (m *MemoryStore) Close(ctx context.Context, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := normalize(symbol)
	if _, ok := m.holdings[key]; !ok {
		return core.ErrHoldingNotFound
	}
	delete(m.holdings, key)
	return nil
}

// SellSignals lists records at or after since, newest first.
func (m *MemoryStore) SellSignals(ctx context.Context, since time.Time) ([]core.SellSignalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.SellSignalRecord
	for i := len(m.signals) - 1; i >= 0; i-- {
		if !m.signals[i].SignalAt.Before(since) {
			out = append(out, m.signals[i])
		}
	}
	return out, nil
}

// RecordIfNew appends rec unless the same (symbol, kind) was recorded
// within the window before rec.SignalAt.
func (m *MemoryStore) RecordIfNew(ctx context.Context, rec core.SellSignalRecord, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := rec.SignalAt.Add(-window)
	key := normalize(rec.Symbol)
	for i := len(m.signals) - 1; i >= 0; i-- {
		prev := m.signals[i]
		if prev.SignalAt.Before(cutoff) {
			continue
		}
		if normalize(prev.Symbol) == key && prev.Kind == rec.Kind {
			return false, nil
		}
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Symbol = key
	m.signals = append(m.signals, rec)
	if m.maxLog > 0 && len(m.signals) > m.maxLog {
		m.signals = m.signals[len(m.signals)-m.maxLog:]
	}
	return true, nil
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
