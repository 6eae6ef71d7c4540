// Package app wires configuration into the running engine: market
// data, the buy-side scanner, portfolio monitoring, notifiers, report
// archiving, metrics, and the HTTP API.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/quantfarer/vigil/internal/api"
	"github.com/quantfarer/vigil/internal/calendar"
	"github.com/quantfarer/vigil/internal/config"
	"github.com/quantfarer/vigil/internal/core"
	"github.com/quantfarer/vigil/internal/decision"
	"github.com/quantfarer/vigil/internal/marketdata"
	"github.com/quantfarer/vigil/internal/marketdata/yahoo"
	"github.com/quantfarer/vigil/internal/metrics"
	"github.com/quantfarer/vigil/internal/news"
	"github.com/quantfarer/vigil/internal/notifier"
	"github.com/quantfarer/vigil/internal/notifier/email"
	"github.com/quantfarer/vigil/internal/notifier/webhook"
	"github.com/quantfarer/vigil/internal/position"
	"github.com/quantfarer/vigil/internal/recommend"
	"github.com/quantfarer/vigil/internal/scoring"
	"github.com/quantfarer/vigil/internal/sentiment"
	"github.com/quantfarer/vigil/internal/sentiment/factory"
	"github.com/quantfarer/vigil/internal/storage/archive"
)

// App owns the composed engine and its run loop.
type App struct {
	cfg *config.Config
	log *zap.Logger

	cal      *calendar.Calendar
	store    position.Store
	market   marketdata.Provider
	scanner  *recommend.Scanner
	manager  *position.Manager
	reporter *archive.Reporter
	registry *metrics.Registry
	server   *api.Server

	mu           sync.RWMutex
	running      bool
	cancel       context.CancelFunc
	lastScanDate string
	lastPicks    []core.Recommendation
	lastScanAt   time.Time
}

// New composes the engine from configuration. The HTTP server is
// created but not started; Start runs it alongside the monitor loop.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	cal, err := calendar.New()
	if err != nil {
		return nil, err
	}

	var registry *metrics.Registry
	if cfg.Metrics.Enabled {
		registry = metrics.NewRegistry()
	}

	market, err := buildMarket(cfg.MarketData)
	if err != nil {
		return nil, err
	}

	store := position.NewMemoryStore(1000)

	lifecycle := position.NewLifecycle(position.LifecycleConfig{
		BreakevenTriggerPct: cfg.Scalp.BreakevenTrigger,
		TrailTriggerPct:     cfg.Scalp.TrailTrigger,
		TrailPct:            cfg.Scalp.TrailPct,
	}, cal.Location())

	engine := decision.NewEngine(decision.Config{
		ScalpStopLossPct:      cfg.Scalp.StopLossPct,
		ScalpTakeProfitPct:    cfg.Scalp.TakeProfitPct,
		ScalpMaxHoldingDays:   cfg.Scalp.MaxHoldingDays,
		SwingStopLossPct:      cfg.Swing.StopLossPct,
		SwingTakeProfitPct:    cfg.Swing.TakeProfitPct,
		NewsCombinedThreshold: cfg.Swing.NewsCombinedThreshold,
		NewsAloneThreshold:    cfg.Swing.NewsAloneThreshold,
		SellThreshold:         cfg.Scoring.SellThreshold,
	})

	combiner := scoring.Combiner{
		TechWeight:      cfg.Scoring.TechWeight,
		SentimentWeight: cfg.Scoring.SentimentWeight,
	}

	headliner := news.New(cfg.News.APIKey, cfg.News.Headlines, cfg.News.WindowDays, log)

	var analyst *sentiment.Analyst
	if cfg.Sentiment.Provider != "" && cfg.Sentiment.Provider != "none" {
		provider, err := factory.New(cfg.Sentiment)
		if err != nil {
			return nil, err
		}
		analyst = sentiment.NewAnalyst(provider, log)
		if registry != nil {
			analyst.WithMetrics(registry)
		}
		log.Info("sentiment analysis enabled", zap.String("provider", cfg.Sentiment.Provider))
	} else {
		log.Info("sentiment analysis disabled, running technical-only")
	}

	validator := scoring.NewScalpValidator(cfg.Scalp.RSIMin, cfg.Scalp.RSIMax, cfg.Scalp.VolumeMultiplier)

	scanCfg := recommend.DefaultConfig()
	scanCfg.TechConcurrency = cfg.Scan.TechConcurrency
	scanCfg.SentimentConcurrency = cfg.Scan.SentimentConcurrency
	scanCfg.ShortlistSize = cfg.Scan.ShortlistSize
	scanCfg.TopN = cfg.Scan.TopN
	scanCfg.LookbackDays = cfg.MarketData.Lookback
	scanCfg.SwingBuyThreshold = cfg.Scoring.BuyThreshold
	scanCfg.FallbackBuyThreshold = cfg.Scoring.FallbackBuyThreshold
	scanCfg.ScalpBuyThreshold = cfg.Scalp.BuyThreshold

	// A typed-nil analyst must not reach the interface fields.
	var scanAnalyst recommend.Analyst
	var sellAnalyst position.SellAnalyst
	if analyst != nil {
		scanAnalyst = analyst
		sellAnalyst = analyst
	}

	scanner := recommend.NewScanner(scanCfg, market, headliner, scanAnalyst, validator, combiner, log)

	notifiers, err := buildNotifiers(cfg.Notifiers, log)
	if err != nil {
		return nil, err
	}

	mgrCfg := position.DefaultManagerConfig()
	mgrCfg.LookbackDays = cfg.MarketData.Lookback
	if cfg.Sentiment.PortfolioConcurrency > 0 {
		mgrCfg.Concurrency = cfg.Sentiment.PortfolioConcurrency
	}
	manager := position.NewManager(mgrCfg, store, market, lifecycle, engine, combiner, cal, log).
		WithSentiment(headliner, sellAnalyst).
		WithNotifiers(notifiers).
		WithMetrics(registry)

	reporter, err := buildReporter(cfg.Archive)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		log:      log,
		cal:      cal,
		store:    store,
		market:   market,
		scanner:  scanner,
		manager:  manager,
		reporter: reporter,
		registry: registry,
	}

	a.server = api.NewServer(api.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		LookbackDays: cfg.MarketData.Lookback,
		MetricsPath:  cfg.Metrics.Path,
	}, api.Deps{
		Store:           store,
		Market:          market,
		Calendar:        cal,
		Recommendations: a,
		Metrics:         registry,
		Validator:       validator,
	}, log)

	return a, nil
}

func buildMarket(cfg config.MarketDataConfig) (marketdata.Provider, error) {
	switch cfg.Provider {
	case "", "yahoo":
		var opts []yahoo.Option
		if cfg.Timeout > 0 {
			opts = append(opts, yahoo.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
		}
		return yahoo.New(opts...), nil
	default:
		return nil, fmt.Errorf("unknown market data provider: %s", cfg.Provider)
	}
}

func buildNotifiers(cfgs map[string]config.NotifierConfig, log *zap.Logger) (*notifier.Registry, error) {
	reg := notifier.NewRegistry()
	for name, nc := range cfgs {
		if !nc.Enabled {
			continue
		}

		var n notifier.Notifier
		var err error
		switch name {
		case "email":
			n, err = email.New(nc.Host, nc.Port, nc.Username, nc.Password, nc.From, nc.To)
		case "webhook":
			n, err = webhook.New(nc.URL, nc.Headers)
		default:
			log.Warn("unknown notifier type, skipping", zap.String("name", name))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("notifier %s: %w", name, err)
		}
		if err := reg.Register(n); err != nil {
			return nil, err
		}
		log.Info("notifier registered", zap.String("name", name))
	}
	return reg, nil
}

func buildReporter(cfg config.ArchiveConfig) (*archive.Reporter, error) {
	switch cfg.Type {
	case "s3":
		store, err := archive.NewS3(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return archive.NewReporter(store), nil
	case "", "localfs":
		path := cfg.Path
		if path == "" {
			path = "data/archive"
		}
		store, err := archive.NewLocalFS(path)
		if err != nil {
			return nil, err
		}
		return archive.NewReporter(store), nil
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}

// Start runs the HTTP server and the monitor loop until ctx is
// cancelled or Stop is called. It blocks.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.running = true
	a.mu.Unlock()

	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Error("http server stopped", zap.Error(err))
		}
	}()

	interval := a.cfg.Scan.SellCheckInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.log.Info("engine started",
		zap.Duration("sell_check_interval", interval),
		zap.Int("universe", len(a.cfg.Universe)))

	a.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			shutCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
			defer done()
			return a.server.Shutdown(shutCtx)
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

// Stop cancels the run loop. Safe to call more than once.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.running = false
}

// tick is one pass of the monitor loop: at most one scan per trading
// day, plus a sell check whenever the session is open.
func (a *App) tick(ctx context.Context) {
	now := a.cal.Now()
	if a.cal.IsTradingDay(now) {
		date := now.Format("2006-01-02")
		a.mu.RLock()
		done := a.lastScanDate == date
		a.mu.RUnlock()
		if !done {
			if _, err := a.RunScan(ctx); err != nil {
				a.log.Error("daily scan failed", zap.Error(err))
			}
		}
	}

	if a.cal.IsOpen() {
		if _, err := a.RunSellCheck(ctx); err != nil {
			a.log.Error("sell check failed", zap.Error(err))
		}
	}
}

// RunScan ranks the configured universe, caches the picks for the API,
// and archives the report.
func (a *App) RunScan(ctx context.Context) (recommend.Result, error) {
	holdings, err := a.store.Holdings(ctx)
	if err != nil {
		return recommend.Result{}, err
	}
	held := make([]string, 0, len(holdings))
	for _, h := range holdings {
		held = append(held, h.Symbol)
	}

	start := time.Now()
	result, err := a.scanner.Scan(ctx, a.cfg.Universe, held)
	if err != nil {
		return recommend.Result{}, err
	}
	if a.registry != nil {
		a.registry.RecordScan(time.Since(start).Seconds())
		for _, pick := range result.Picks {
			a.registry.RecordRecommendation(string(pick.Strategy))
		}
	}

	now := a.cal.Now()
	a.mu.Lock()
	a.lastScanDate = now.Format("2006-01-02")
	a.lastPicks = result.Picks
	a.lastScanAt = now
	a.mu.Unlock()

	a.log.Info("scan complete",
		zap.Int("universe", result.UniverseSize),
		zap.Int("shortlisted", result.Shortlisted),
		zap.Int("picks", len(result.Picks)),
		zap.Duration("elapsed", time.Since(start)))

	if err := a.reporter.SaveScan(ctx, archive.ScanReport{
		GeneratedAt:  now,
		UniverseSize: result.UniverseSize,
		Shortlisted:  result.Shortlisted,
		Picks:        result.Picks,
	}); err != nil {
		a.log.Error("archiving scan report failed", zap.Error(err))
	}

	return result, nil
}

// RunSellCheck runs one portfolio monitoring cycle and archives the
// outcome.
func (a *App) RunSellCheck(ctx context.Context) (position.CheckReport, error) {
	report, err := a.manager.Check(ctx)
	if err != nil {
		return report, err
	}

	if err := a.reporter.SaveSellCheck(ctx, archive.SellCheckReport{
		At:      report.At,
		Signals: report.Signals,
		Holds:   report.Holds,
	}); err != nil {
		a.log.Error("archiving sell check failed", zap.Error(err))
	}

	return report, nil
}

// RunOnce performs a single scan plus sell check and returns. Used by
// the CLI.
func (a *App) RunOnce(ctx context.Context) error {
	if _, err := a.RunScan(ctx); err != nil {
		return err
	}
	_, err := a.RunSellCheck(ctx)
	return err
}

// LatestRecommendations returns the cached picks from the most recent
// scan. ok is false until the first scan completes.
func (a *App) LatestRecommendations() ([]core.Recommendation, time.Time, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastPicks, a.lastScanAt, !a.lastScanAt.IsZero()
}
