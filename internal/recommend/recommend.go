// Package recommend ranks the scan universe into buy candidates.
//
// The pipeline runs in two stages so the expensive sentiment calls only
// happen for symbols that already look good technically: every universe
// symbol gets a technical score, the top slice gets headlines, sentiment
// and scalp validation, and the combined scores are ranked.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/quantfarer/vigil/internal/core"
	"github.com/quantfarer/vigil/internal/marketdata"
	"github.com/quantfarer/vigil/internal/scoring"
	"github.com/quantfarer/vigil/internal/sentiment"
)

// Headliner supplies recent headlines for a symbol.
type Headliner interface {
	Headlines(ctx context.Context, symbol, companyName string) ([]string, error)
}

// Analyst scores headlines from the buy perspective.
type Analyst interface {
	Analyze(ctx context.Context, symbol string, headlines []string) sentiment.Analysis
}

// Config holds the pipeline parameters.
type Config struct {
	TechConcurrency      int
	SentimentConcurrency int
	ShortlistSize        int
	TopN                 int
	LookbackDays         int

	SwingBuyThreshold    float64 // combined floor with sentiment available
	FallbackBuyThreshold float64 // combined floor without sentiment
	ScalpBuyThreshold    float64 // combined floor for scalp entries
}

// DefaultConfig returns the standard pipeline parameters.
func DefaultConfig() Config {
	return Config{
		TechConcurrency:      30,
		SentimentConcurrency: 5,
		ShortlistSize:        20,
		TopN:                 3,
		LookbackDays:         260,
		SwingBuyThreshold:    70.0,
		FallbackBuyThreshold: 62.0,
		ScalpBuyThreshold:    75.0,
	}
}

// Result is the outcome of one scan.
type Result struct {
	UniverseSize int
	Shortlisted  int
	Picks        []core.Recommendation
}

// Scanner runs the buy-side ranking pipeline.
type Scanner struct {
	cfg       Config
	bars      marketdata.HistoryProvider
	news      Headliner
	analyst   Analyst
	validator *scoring.ScalpValidator
	combiner  scoring.Combiner
	log       *zap.Logger
}

// NewScanner assembles a scanner. news and analyst may be nil, in which
// case the pipeline runs technical-only with the fallback threshold.
func NewScanner(cfg Config, bars marketdata.HistoryProvider, news Headliner, analyst Analyst,
	validator *scoring.ScalpValidator, combiner scoring.Combiner, log *zap.Logger) *Scanner {
	return &Scanner{
		cfg:       cfg,
		bars:      bars,
		news:      news,
		analyst:   analyst,
		validator: validator,
		combiner:  combiner,
		log:       log,
	}
}

type candidate struct {
	symbol string
	bars   []core.PriceBar
	tech   float64
	price  float64
}

// Scan ranks the universe, excluding symbols already held.
func (s *Scanner) Scan(ctx context.Context, universe, held []string) (Result, error) {
	if len(universe) == 0 {
		return Result{}, fmt.Errorf("scan universe is empty")
	}

	heldSet := make(map[string]bool, len(held))
	for _, sym := range held {
		heldSet[sym] = true
	}
	symbols := make([]string, 0, len(universe))
	for _, sym := range universe {
		if !heldSet[sym] {
			symbols = append(symbols, sym)
		}
	}

	result := Result{UniverseSize: len(symbols)}

	candidates := s.scoreTechnical(ctx, symbols)
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].tech > candidates[j].tech
	})
	if len(candidates) > s.cfg.ShortlistSize {
		candidates = candidates[:s.cfg.ShortlistSize]
	}
	result.Shortlisted = len(candidates)

	picks := s.scoreShortlist(ctx, candidates)

	// Scalp setups first, then by combined score.
	sort.Slice(picks, func(i, j int) bool {
		si := picks[i].Strategy == core.StrategyScalp
		sj := picks[j].Strategy == core.StrategyScalp
		if si != sj {
			return si
		}
		return picks[i].CombinedScore > picks[j].CombinedScore
	})
	if len(picks) > s.cfg.TopN {
		picks = picks[:s.cfg.TopN]
	}
	result.Picks = picks

	return result, nil
}

// scoreTechnical fetches history and scores every symbol, bounded by
// TechConcurrency. Symbols whose data cannot be fetched are skipped.
func (s *Scanner) scoreTechnical(ctx context.Context, symbols []string) []candidate {
	var (
		mu  sync.Mutex
		out []candidate
		wg  sync.WaitGroup
	)
	sem := make(chan struct{}, s.cfg.TechConcurrency)

	for _, sym := range symbols {
		wg.Add(1)
		sem <- struct{}{}
		go func(sym string) {
			defer wg.Done()
			defer func() { <-sem }()

			bars, err := s.bars.Bars(ctx, sym, s.cfg.LookbackDays)
			if err != nil {
				s.log.Warn("skipping symbol, history fetch failed",
					zap.String("symbol", sym), zap.Error(err))
				return
			}
			if len(bars) == 0 {
				return
			}

			c := candidate{
				symbol: sym,
				bars:   bars,
				tech:   scoring.Technical(bars),
				price:  bars[len(bars)-1].Close,
			}
			mu.Lock()
			out = append(out, c)
			mu.Unlock()
		}(sym)
	}
	wg.Wait()
	return out
}

// scoreShortlist runs sentiment and scalp validation over the shortlist,
// bounded by SentimentConcurrency, and classifies each survivor.
func (s *Scanner) scoreShortlist(ctx context.Context, candidates []candidate) []core.Recommendation {
	var (
		mu    sync.Mutex
		picks []core.Recommendation
		wg    sync.WaitGroup
	)
	sem := make(chan struct{}, s.cfg.SentimentConcurrency)

	for _, c := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(c candidate) {
			defer wg.Done()
			defer func() { <-sem }()

			if rec, ok := s.classify(ctx, c); ok {
				mu.Lock()
				picks = append(picks, rec)
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()
	return picks
}

func (s *Scanner) classify(ctx context.Context, c candidate) (core.Recommendation, bool) {
	sentScore := sentiment.NeutralBuyScore
	sentAvailable := false
	var reasons []string

	if s.news != nil && s.analyst != nil {
		headlines, err := s.news.Headlines(ctx, c.symbol, "")
		if err != nil {
			s.log.Warn("headline fetch failed, scoring without news",
				zap.String("symbol", c.symbol), zap.Error(err))
		}
		analysis := s.analyst.Analyze(ctx, c.symbol, headlines)
		sentScore = analysis.Score
		sentAvailable = analysis.Available
		if analysis.Reasoning != "" {
			reasons = append(reasons, analysis.Reasoning)
		}
	}

	combined := s.combiner.Combine(c.tech, sentScore)
	validation := s.validator.Validate(c.bars)

	rec := core.Recommendation{
		Symbol:         c.symbol,
		Price:          c.price,
		TechScore:      c.tech,
		SentimentScore: sentScore,
		CombinedScore:  combined,
		SentimentUsed:  sentAvailable,
		Reasons:        reasons,
	}

	switch {
	case validation.AllConditionsPass && combined >= s.cfg.ScalpBuyThreshold:
		rec.Strategy = core.StrategyScalp
		rec.EntryScore = validation.EntryScore
		rec.Reasons = append(rec.Reasons,
			fmt.Sprintf("scalp setup confirmed, entry score %.1f", validation.EntryScore))
	case sentAvailable && combined >= s.cfg.SwingBuyThreshold:
		rec.Strategy = core.StrategySwing
	case !sentAvailable && combined >= s.cfg.FallbackBuyThreshold:
		rec.Strategy = core.StrategySwing
	default:
		return core.Recommendation{}, false
	}
	return rec, true
}
