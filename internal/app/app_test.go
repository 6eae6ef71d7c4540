package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/quantfarer/vigil/internal/calendar"
	"github.com/quantfarer/vigil/internal/config"
	"github.com/quantfarer/vigil/internal/core"
	"github.com/quantfarer/vigil/internal/decision"
	"github.com/quantfarer/vigil/internal/position"
	"github.com/quantfarer/vigil/internal/recommend"
	"github.com/quantfarer/vigil/internal/scoring"
	"github.com/quantfarer/vigil/internal/storage/archive"
)

func flatBars() []core.PriceBar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]core.PriceBar, 60)
	for i := range bars {
		bars[i] = core.PriceBar{
			Time:   start.AddDate(0, 0, i),
			Close:  100.0,
			Volume: 1_000_000,
		}
	}
	return bars
}

type fakeMarket struct {
	mu     sync.Mutex
	bars   map[string][]core.PriceBar
	prices map[string]float64
}

func (f *fakeMarket) Bars(ctx context.Context, symbol string, lookbackDays int) ([]core.PriceBar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bars, ok := f.bars[symbol]
	if !ok {
		return nil, core.ErrNoData
	}
	return bars, nil
}

func (f *fakeMarket) Price(ctx context.Context, symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	price, ok := f.prices[symbol]
	if !ok {
		return 0, core.ErrNoData
	}
	return price, nil
}

// Wednesday 2025-03-12 11:00 Eastern: a regular open session.
func testCalendar(t *testing.T) *calendar.Calendar {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("loading timezone: %v", err)
	}
	pinned := time.Date(2025, 3, 12, 11, 0, 0, 0, loc)
	cal, err := calendar.NewWithClock(func() time.Time { return pinned })
	if err != nil {
		t.Fatalf("building calendar: %v", err)
	}
	return cal
}

// testApp assembles an App around fakes, bypassing New so no network
// clients are constructed.
func testApp(t *testing.T, market *fakeMarket, universe []string) *App {
	t.Helper()
	log := zap.NewNop()
	cal := testCalendar(t)
	store := position.NewMemoryStore(100)

	scanCfg := recommend.DefaultConfig()
	// Flat history scores 48.2 combined without sentiment; keep the
	// fallback floor under it so picks come through.
	scanCfg.FallbackBuyThreshold = 48.0
	scanner := recommend.NewScanner(scanCfg, market, nil, nil,
		scoring.DefaultScalpValidator(), scoring.DefaultCombiner(), log)

	lifecycle := position.NewLifecycle(position.DefaultLifecycleConfig(), cal.Location())
	manager := position.NewManager(position.DefaultManagerConfig(), store, market,
		lifecycle, decision.NewEngine(decision.DefaultConfig()), scoring.DefaultCombiner(), cal, log)

	backend, err := archive.NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("building archive: %v", err)
	}

	return &App{
		cfg:      &config.Config{Universe: universe},
		log:      log,
		cal:      cal,
		store:    store,
		market:   market,
		scanner:  scanner,
		manager:  manager,
		reporter: archive.NewReporter(backend),
	}
}

func TestRunScan_CachesAndArchives(t *testing.T) {
	market := &fakeMarket{bars: map[string][]core.PriceBar{"AAPL": flatBars()}}
	app := testApp(t, market, []string{"AAPL"})

	if _, _, ok := app.LatestRecommendations(); ok {
		t.Fatal("expected no recommendations before the first scan")
	}

	result, err := app.RunScan(context.Background())
	if err != nil {
		t.Fatalf("RunScan: %v", err)
	}
	if len(result.Picks) != 1 {
		t.Fatalf("expected 1 pick, got %d", len(result.Picks))
	}
	if result.Picks[0].Symbol != "AAPL" {
		t.Errorf("pick symbol = %s, want AAPL", result.Picks[0].Symbol)
	}

	picks, at, ok := app.LatestRecommendations()
	if !ok {
		t.Fatal("expected cached recommendations after scan")
	}
	if len(picks) != 1 || at.IsZero() {
		t.Errorf("cached picks = %d at %v", len(picks), at)
	}

	report, err := app.reporter.LoadScan(context.Background(), "2025-03-12")
	if err != nil {
		t.Fatalf("loading archived scan: %v", err)
	}
	if len(report.Picks) != 1 {
		t.Errorf("archived picks = %d, want 1", len(report.Picks))
	}
}

func TestRunScan_ExcludesHeldSymbols(t *testing.T) {
	market := &fakeMarket{bars: map[string][]core.PriceBar{
		"AAPL": flatBars(),
		"MSFT": flatBars(),
	}}
	app := testApp(t, market, []string{"AAPL", "MSFT"})

	if _, err := app.store.Buy(context.Background(), "AAPL", "Apple", 10, 100, false); err != nil {
		t.Fatalf("buying: %v", err)
	}

	result, err := app.RunScan(context.Background())
	if err != nil {
		t.Fatalf("RunScan: %v", err)
	}
	if result.UniverseSize != 1 {
		t.Errorf("universe size = %d, want 1 after excluding held AAPL", result.UniverseSize)
	}
	for _, pick := range result.Picks {
		if pick.Symbol == "AAPL" {
			t.Error("held symbol AAPL recommended")
		}
	}
}

func TestRunSellCheck_ArchivesReport(t *testing.T) {
	market := &fakeMarket{
		bars:   map[string][]core.PriceBar{"AAPL": flatBars()},
		prices: map[string]float64{"AAPL": 100.5},
	}
	app := testApp(t, market, nil)

	if _, err := app.store.Buy(context.Background(), "AAPL", "Apple", 10, 100, true); err != nil {
		t.Fatalf("buying: %v", err)
	}

	report, err := app.RunSellCheck(context.Background())
	if err != nil {
		t.Fatalf("RunSellCheck: %v", err)
	}
	if len(report.Signals) != 0 {
		t.Errorf("signals = %d, want 0 at +0.5%%", len(report.Signals))
	}
	if len(report.Holds) != 1 {
		t.Errorf("holds = %d, want 1", len(report.Holds))
	}
}

func TestRunOnce(t *testing.T) {
	market := &fakeMarket{
		bars:   map[string][]core.PriceBar{"AAPL": flatBars()},
		prices: map[string]float64{"AAPL": 100.0},
	}
	app := testApp(t, market, []string{"AAPL"})

	if err := app.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if _, _, ok := app.LatestRecommendations(); !ok {
		t.Error("expected cached recommendations after RunOnce")
	}
}

func TestNew_ComposesFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Universe = []string{"AAPL"}
	cfg.Archive.Path = t.TempDir()

	app, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if app.server == nil {
		t.Error("expected HTTP server to be constructed")
	}
	if _, _, ok := app.LatestRecommendations(); ok {
		t.Error("expected no recommendations before the first scan")
	}
}

func TestNew_BadNotifierConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Archive.Path = t.TempDir()
	cfg.Notifiers = map[string]config.NotifierConfig{
		"email": {Enabled: true}, // missing host, from, to
	}

	if _, err := New(cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for invalid email notifier config")
	}
}

func TestBuildMarket_UnknownProvider(t *testing.T) {
	if _, err := buildMarket(config.MarketDataConfig{Provider: "bloomberg"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestBuildReporter_UnknownType(t *testing.T) {
	if _, err := buildReporter(config.ArchiveConfig{Type: "ftp"}); err == nil {
		t.Fatal("expected error for unknown archive type")
	}
}
