package position

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quantfarer/vigil/internal/core"
	"github.com/quantfarer/vigil/internal/decision"
	"github.com/quantfarer/vigil/internal/marketdata"
	"github.com/quantfarer/vigil/internal/metrics"
	"github.com/quantfarer/vigil/internal/notifier"
	"github.com/quantfarer/vigil/internal/scoring"
	"github.com/quantfarer/vigil/internal/sentiment"
)

// MarketClock reports session state for lifecycle ticks.
type MarketClock interface {
	Now() time.Time
	IsOpen() bool
}

// Headliner supplies recent headlines for a symbol.
type Headliner interface {
	Headlines(ctx context.Context, symbol, companyName string) ([]string, error)
}

// SellAnalyst scores headlines from the sell perspective.
type SellAnalyst interface {
	AnalyzeSell(ctx context.Context, symbol string, headlines []string) sentiment.SellAnalysis
}

// ManagerConfig holds the monitoring cycle parameters.
type ManagerConfig struct {
	Concurrency  int
	LookbackDays int
	DedupWindow  time.Duration
}

// DefaultManagerConfig returns the standard cycle parameters.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Concurrency:  3,
		LookbackDays: 260,
		DedupWindow:  24 * time.Hour,
	}
}

// CheckReport is the outcome of one monitoring cycle over all holdings.
type CheckReport struct {
	At      time.Time
	Signals []core.SellSignalRecord
	Holds   []core.HoldAnalysis
}

// Manager runs the sell-side monitoring cycle: refresh prices, advance
// position lifecycles, evaluate the sell ladders, and route any fired
// signals through de-duplication to the notifiers.
type Manager struct {
	cfg       ManagerConfig
	store     Store
	provider  marketdata.Provider
	lifecycle *Lifecycle
	engine    *decision.Engine
	combiner  scoring.Combiner
	clock     MarketClock

	// Optional: any of these may be nil.
	news      Headliner
	analyst   SellAnalyst
	notifiers *notifier.Registry
	metrics   *metrics.Registry

	log *zap.Logger
}

// NewManager assembles a monitoring manager.
func NewManager(cfg ManagerConfig, store Store, provider marketdata.Provider,
	lifecycle *Lifecycle, engine *decision.Engine, combiner scoring.Combiner,
	clock MarketClock, log *zap.Logger) *Manager {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Manager{
		cfg:       cfg,
		store:     store,
		provider:  provider,
		lifecycle: lifecycle,
		engine:    engine,
		combiner:  combiner,
		clock:     clock,
		log:       log,
	}
}

// WithSentiment attaches the news fetcher and sell analyst.
func (m *Manager) WithSentiment(news Headliner, analyst SellAnalyst) *Manager {
	m.news = news
	m.analyst = analyst
	return m
}

// WithNotifiers attaches the alert registry.
func (m *Manager) WithNotifiers(reg *notifier.Registry) *Manager {
	m.notifiers = reg
	return m
}

// WithMetrics attaches the metrics registry.
func (m *Manager) WithMetrics(reg *metrics.Registry) *Manager {
	m.metrics = reg
	return m
}

// Check runs one monitoring cycle. Each holding is processed by exactly
// one goroutine, so holding state has a single writer per cycle.
func (m *Manager) Check(ctx context.Context) (CheckReport, error) {
	start := m.clock.Now()
	report := CheckReport{At: start}

	holdings, err := m.store.Holdings(ctx)
	if err != nil {
		return report, err
	}
	if m.metrics != nil {
		m.metrics.SetHoldings(len(holdings))
	}
	if len(holdings) == 0 {
		return report, nil
	}

	marketOpen := m.clock.IsOpen()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	sem := make(chan struct{}, m.cfg.Concurrency)

	for _, h := range holdings {
		wg.Add(1)
		sem <- struct{}{}
		go func(h core.Holding) {
			defer wg.Done()
			defer func() { <-sem }()

			signal, hold := m.checkHolding(ctx, h, start, marketOpen)
			mu.Lock()
			if signal != nil {
				report.Signals = append(report.Signals, *signal)
			}
			if hold != nil {
				report.Holds = append(report.Holds, *hold)
			}
			mu.Unlock()
		}(h)
	}
	wg.Wait()

	m.notify(report.Signals)

	if m.metrics != nil {
		m.metrics.RecordPortfolioRefresh(time.Since(start).Seconds())
	}
	return report, nil
}

// notify delivers the cycle's fired signals. A single signal goes out
// as an individual alert; several are bundled into one digest per
// channel so a volatile day produces one message, not a flood.
func (m *Manager) notify(signals []core.SellSignalRecord) {
	if m.notifiers == nil || len(signals) == 0 {
		return
	}

	var errs map[string]error
	if len(signals) == 1 {
		errs = m.notifiers.NotifyAll(signals[0])
	} else {
		errs = m.notifiers.NotifyAllDigest(signals)
	}

	for _, n := range m.notifiers.GetAll() {
		status := "ok"
		if err, failed := errs[n.Name()]; failed {
			status = "error"
			m.log.Error("notifier delivery failed",
				zap.String("notifier", n.Name()), zap.Error(err))
		}
		if m.metrics != nil {
			m.metrics.RecordSignalRouted(n.Name(), status)
		}
	}
}

func (m *Manager) checkHolding(ctx context.Context, h core.Holding, now time.Time, marketOpen bool) (*core.SellSignalRecord, *core.HoldAnalysis) {
	log := m.log.With(zap.String("symbol", h.Symbol))

	bars, err := m.provider.Bars(ctx, h.Symbol, m.cfg.LookbackDays)
	if err != nil || len(bars) == 0 {
		log.Warn("skipping holding, history fetch failed", zap.Error(err))
		return nil, nil
	}

	price, err := m.provider.Price(ctx, h.Symbol)
	if err != nil || price <= 0 {
		price = bars[len(bars)-1].Close
	}

	updated := m.lifecycle.Advance(h, Tick{Price: price, At: now, MarketOpen: marketOpen})
	if err := m.store.Update(ctx, updated); err != nil {
		log.Error("persisting holding state failed", zap.Error(err))
	}

	bearish := scoring.DetectBearish(bars)
	tech := scoring.Technical(bars)

	sell := sentiment.SellAnalysis{SellScore: sentiment.NeutralSellScore, Action: "HOLD"}
	if m.news != nil && m.analyst != nil {
		headlines, err := m.news.Headlines(ctx, h.Symbol, h.Name)
		if err != nil {
			log.Warn("headline fetch failed, using neutral sell view", zap.Error(err))
		}
		sell = m.analyst.AnalyzeSell(ctx, h.Symbol, headlines)
	}

	// The sell score inverts into a buy-equivalent sentiment leg so the
	// combined score stays on the same scale as the buy side.
	sentLeg := 100 - sell.SellScore
	if sentLeg < 0 {
		sentLeg = 0
	}
	combined := m.combiner.Combine(tech, sentLeg)

	dec := m.engine.Decide(decision.Input{
		Holding:       updated,
		Bearish:       bearish,
		SellScore:     sell.SellScore,
		SellAction:    sell.Action,
		RiskFactors:   sell.RiskFactors,
		TechScore:     tech,
		CombinedScore: combined,
	})

	if !dec.Sell {
		return nil, &core.HoldAnalysis{
			Symbol:        updated.Symbol,
			Strategy:      updated.Strategy(),
			PnLPct:        updated.UnrealizedPnLPct,
			CombinedScore: combined,
			HoldReasons:   dec.HoldReasons,
		}
	}

	rec := core.SellSignalRecord{
		ID:            uuid.NewString(),
		Symbol:        updated.Symbol,
		Kind:          dec.Kind,
		Strategy:      dec.Strategy,
		CombinedScore: combined,
		TechScore:     tech,
		SellScore:     sell.SellScore,
		PnLPct:        updated.UnrealizedPnLPct,
		Reasoning:     dec.Reasoning,
		SignalAt:      now,
	}

	inserted, err := m.store.RecordIfNew(ctx, rec, m.cfg.DedupWindow)
	if err != nil {
		// Fail closed: without the dedup guarantee a repeated alert is
		// worse than a missed cycle.
		log.Error("sell signal dedup check failed, suppressing alert", zap.Error(err))
		return nil, nil
	}
	if !inserted {
		log.Debug("duplicate sell signal suppressed",
			zap.String("kind", string(rec.Kind)))
		if m.metrics != nil {
			m.metrics.RecordSuppressedSignal()
		}
		return nil, nil
	}

	log.Info("sell signal fired",
		zap.String("kind", string(rec.Kind)),
		zap.String("strategy", string(rec.Strategy)),
		zap.Float64("pnl_pct", rec.PnLPct),
		zap.String("reasoning", rec.Reasoning))

	if m.metrics != nil {
		m.metrics.RecordSellSignal(string(rec.Kind), string(rec.Strategy))
	}
	return &rec, nil
}
