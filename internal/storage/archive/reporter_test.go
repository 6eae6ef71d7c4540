package archive

import (
	"context"
	"testing"
	"time"

	"github.com/quantfarer/vigil/internal/core"
)

func testReporter(t *testing.T) *Reporter {
	t.Helper()
	store, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}
	return NewReporter(store)
}

func TestReporter_ScanRoundTrip(t *testing.T) {
	r := testReporter(t)
	ctx := context.Background()

	report := ScanReport{
		GeneratedAt:  time.Date(2025, 3, 12, 16, 30, 0, 0, time.UTC),
		UniverseSize: 50,
		Shortlisted:  20,
		Picks: []core.Recommendation{
			{Symbol: "AAPL", Strategy: core.StrategyScalp, CombinedScore: 78.5},
			{Symbol: "NVDA", Strategy: core.StrategySwing, CombinedScore: 71.2},
		},
	}

	if err := r.SaveScan(ctx, report); err != nil {
		t.Fatalf("SaveScan: %v", err)
	}

	got, err := r.LoadScan(ctx, "2025-03-12")
	if err != nil {
		t.Fatalf("LoadScan: %v", err)
	}
	if got.Date != "2025-03-12" {
		t.Errorf("Date = %q, want 2025-03-12", got.Date)
	}
	if len(got.Picks) != 2 {
		t.Fatalf("expected 2 picks, got %d", len(got.Picks))
	}
	if got.Picks[0].Symbol != "AAPL" || got.Picks[0].Strategy != core.StrategyScalp {
		t.Errorf("unexpected first pick: %+v", got.Picks[0])
	}
}

func TestReporter_SameDayScanOverwrites(t *testing.T) {
	r := testReporter(t)
	ctx := context.Background()

	day := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	first := ScanReport{GeneratedAt: day, Shortlisted: 10}
	second := ScanReport{GeneratedAt: day.Add(6 * time.Hour), Shortlisted: 20}

	if err := r.SaveScan(ctx, first); err != nil {
		t.Fatalf("SaveScan: %v", err)
	}
	if err := r.SaveScan(ctx, second); err != nil {
		t.Fatalf("SaveScan: %v", err)
	}

	got, err := r.LoadScan(ctx, "2025-03-12")
	if err != nil {
		t.Fatalf("LoadScan: %v", err)
	}
	if got.Shortlisted != 20 {
		t.Errorf("expected later report to win, got Shortlisted = %d", got.Shortlisted)
	}

	dates, err := r.ScanDates(ctx)
	if err != nil {
		t.Fatalf("ScanDates: %v", err)
	}
	if len(dates) != 1 || dates[0] != "2025-03-12" {
		t.Errorf("ScanDates = %v, want [2025-03-12]", dates)
	}
}

func TestReporter_ScanDatesSorted(t *testing.T) {
	r := testReporter(t)
	ctx := context.Background()

	for _, d := range []string{"2025-03-14", "2025-03-12", "2025-03-13"} {
		day, _ := time.Parse("2006-01-02", d)
		if err := r.SaveScan(ctx, ScanReport{GeneratedAt: day}); err != nil {
			t.Fatalf("SaveScan %s: %v", d, err)
		}
	}

	dates, err := r.ScanDates(ctx)
	if err != nil {
		t.Fatalf("ScanDates: %v", err)
	}
	want := []string{"2025-03-12", "2025-03-13", "2025-03-14"}
	if len(dates) != len(want) {
		t.Fatalf("ScanDates = %v, want %v", dates, want)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %q, want %q", i, dates[i], want[i])
		}
	}
}

func TestReporter_SellChecksDoNotOverwrite(t *testing.T) {
	store, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}
	r := NewReporter(store)
	ctx := context.Background()

	day := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	first := SellCheckReport{
		At: day,
		Signals: []core.SellSignalRecord{
			{Symbol: "AAPL", Kind: core.SellStopLoss, SignalAt: day},
		},
	}
	second := SellCheckReport{At: day.Add(10 * time.Minute)}

	if err := r.SaveSellCheck(ctx, first); err != nil {
		t.Fatalf("SaveSellCheck: %v", err)
	}
	if err := r.SaveSellCheck(ctx, second); err != nil {
		t.Fatalf("SaveSellCheck: %v", err)
	}

	paths, err := store.List(ctx, "sell-checks")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 2 {
		t.Errorf("expected 2 sell check files, got %v", paths)
	}
}
