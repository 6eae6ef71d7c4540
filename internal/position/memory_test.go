package position

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/quantfarer/vigil/internal/core"
)

func TestBuyWeightedAverage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(100)

	h, err := s.Buy(ctx, "aapl", "Apple Inc.", 10, 100.0, true)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if h.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want normalized AAPL", h.Symbol)
	}
	if !h.IsScalpTrade {
		t.Error("scalp flag lost on create")
	}
	if h.ID == "" {
		t.Error("expected a generated ID")
	}

	// Second buy at a higher price: weighted average.
	h, err = s.Buy(ctx, "AAPL", "", 10, 110.0, false)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if h.Quantity != 20 {
		t.Errorf("Quantity = %v, want 20", h.Quantity)
	}
	if h.AvgBuyPrice != 105.0 {
		t.Errorf("AvgBuyPrice = %v, want 105.0", h.AvgBuyPrice)
	}
	if !h.IsScalpTrade {
		t.Error("scalp flag flipped by a follow-up buy")
	}
}

func TestHoldingLookupAndClose(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(100)

	if _, err := s.Holding(ctx, "MSFT"); !errors.Is(err, core.ErrHoldingNotFound) {
		t.Errorf("missing holding error = %v, want ErrHoldingNotFound", err)
	}

	if _, err := s.Buy(ctx, "MSFT", "Microsoft", 5, 400.0, false); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	h, err := s.Holding(ctx, "msft")
	if err != nil {
		t.Fatalf("Holding: %v", err)
	}
	if h.Quantity != 5 {
		t.Errorf("Quantity = %v, want 5", h.Quantity)
	}

	if err := s.Close(ctx, "MSFT"); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := s.Holding(ctx, "MSFT"); !errors.Is(err, core.ErrHoldingNotFound) {
		t.Errorf("closed holding still present: %v", err)
	}
	if err := s.Close(ctx, "MSFT"); !errors.Is(err, core.ErrHoldingNotFound) {
		t.Errorf("double close error = %v, want ErrHoldingNotFound", err)
	}
}

func TestUpdateRequiresExisting(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(100)

	err := s.Update(ctx, core.Holding{Symbol: "NVDA"})
	if !errors.Is(err, core.ErrHoldingNotFound) {
		t.Errorf("Update on missing holding = %v, want ErrHoldingNotFound", err)
	}

	if _, err := s.Buy(ctx, "NVDA", "", 1, 500.0, true); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	h, _ := s.Holding(ctx, "NVDA")
	h.TradingDaysHeld = 3
	if err := s.Update(ctx, *h); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := s.Holding(ctx, "NVDA")
	if got.TradingDaysHeld != 3 {
		t.Errorf("TradingDaysHeld = %d after update, want 3", got.TradingDaysHeld)
	}
}

func TestRecordIfNewDedup(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(100)
	at := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	rec := core.SellSignalRecord{
		Symbol:   "AAPL",
		Kind:     core.SellStopLoss,
		SignalAt: at,
	}

	ok, err := s.RecordIfNew(ctx, rec, 24*time.Hour)
	if err != nil || !ok {
		t.Fatalf("first record: ok=%v err=%v", ok, err)
	}

	// Same (symbol, kind) inside the window is suppressed.
	rec.SignalAt = at.Add(6 * time.Hour)
	ok, err = s.RecordIfNew(ctx, rec, 24*time.Hour)
	if err != nil || ok {
		t.Fatalf("duplicate within window: ok=%v err=%v", ok, err)
	}

	// Different kind passes.
	other := rec
	other.Kind = core.SellTakeProfit
	if ok, _ := s.RecordIfNew(ctx, other, 24*time.Hour); !ok {
		t.Error("different kind suppressed")
	}

	// Different symbol passes.
	elsewhere := rec
	elsewhere.Symbol = "MSFT"
	if ok, _ := s.RecordIfNew(ctx, elsewhere, 24*time.Hour); !ok {
		t.Error("different symbol suppressed")
	}

	// Outside the window the same pair records again.
	rec.SignalAt = at.Add(25 * time.Hour)
	if ok, _ := s.RecordIfNew(ctx, rec, 24*time.Hour); !ok {
		t.Error("record outside the window suppressed")
	}
}

func TestRecordIfNewConcurrentSinglePass(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(100)
	at := time.Now().UTC()

	var wg sync.WaitGroup
	passed := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.RecordIfNew(ctx, core.SellSignalRecord{
				Symbol:   "TSLA",
				Kind:     core.SellTrailingStop,
				SignalAt: at,
			}, 24*time.Hour)
			if err != nil {
				t.Errorf("RecordIfNew: %v", err)
				return
			}
			passed <- ok
		}()
	}
	wg.Wait()
	close(passed)

	count := 0
	for ok := range passed {
		if ok {
			count++
		}
	}
	if count != 1 {
		t.Errorf("%d concurrent records passed the dedup gate, want exactly 1", count)
	}
}

func TestSellSignalsSinceNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(100)
	base := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	kinds := []core.SellKind{core.SellStopLoss, core.SellTakeProfit, core.SellTimeStop}
	for i, k := range kinds {
		ok, err := s.RecordIfNew(ctx, core.SellSignalRecord{
			Symbol:   "AAPL",
			Kind:     k,
			SignalAt: base.Add(time.Duration(i) * time.Hour),
		}, 24*time.Hour)
		if err != nil || !ok {
			t.Fatalf("record %d: ok=%v err=%v", i, ok, err)
		}
	}

	got, err := s.SellSignals(ctx, base.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("SellSignals: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Kind != core.SellTimeStop || got[1].Kind != core.SellTakeProfit {
		t.Errorf("order = %v, %v; want newest first", got[0].Kind, got[1].Kind)
	}
}
