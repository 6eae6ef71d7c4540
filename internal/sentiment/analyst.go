package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/quantfarer/vigil/internal/core"
)

// Neutral fallback scores. The buy view regresses to indifferent; the
// sell view carries a mild hold bias because absent news is not a
// reason to exit.
const (
	NeutralBuyScore  = 50.0
	NeutralSellScore = 25.0
)

const maxAttempts = 3

const buySystemPrompt = `You are a stock market news sentiment analyst.
Score the investment sentiment of the given headlines from 0 to 100.

Scale:
- 80-100: very positive (earnings surprise, major contract, big target raises)
- 60-79: positive (analyst upgrades, partnerships, growth outlook)
- 40-59: neutral (no news or mixed signals)
- 20-39: negative (earnings miss, lawsuits, regulatory issues)
- 0-19: very negative (accounting fraud, heavy losses, bankruptcy risk)

Respond with JSON only, no other text:
{
    "news_score": <number 0-100>,
    "sentiment": "one of very_positive|positive|neutral|negative|very_negative",
    "key_catalysts": ["catalyst 1", "catalyst 2"],
    "reasoning": "one or two sentences"
}`

const sellSystemPrompt = `You are a portfolio risk manager.
Given recent news for a stock already held, decide how urgently it
should be sold, from 0 (no reason to sell) to 100 (sell immediately).

Scale:
- 80-100: sell now (fraud, bankruptcy risk, core business collapse)
- 60-79: consider selling (big earnings miss, sweeping downgrades, abrupt executive exits)
- 40-59: watch (short-term negative, fundamentals intact)
- 20-39: keep holding (transient issue, recovery likely)
- 0-19: no sell case (neutral or positive news)

Respond with JSON only, no other text:
{
    "sell_score": <number 0-100>,
    "action": "one of sell_now|consider_selling|watch|hold|no_action",
    "risk_factors": ["risk 1", "risk 2"],
    "reasoning": "one or two sentences"
}`

// Analysis is the buy-view result.
type Analysis struct {
	Score     float64  `json:"news_score"`
	Sentiment string   `json:"sentiment"`
	Catalysts []string `json:"key_catalysts"`
	Reasoning string   `json:"reasoning"`
	Available bool     `json:"news_available"`
}

// SellAnalysis is the sell-view result for a held position.
type SellAnalysis struct {
	SellScore   float64  `json:"sell_score"`
	Action      string   `json:"action"`
	RiskFactors []string `json:"risk_factors"`
	Reasoning   string   `json:"reasoning"`
	Available   bool     `json:"news_available"`
}

// RequestRecorder counts provider calls by outcome.
type RequestRecorder interface {
	RecordSentimentRequest(provider, outcome string)
}

// Analyst runs sentiment analysis with retry and fallback semantics:
// transient provider faults are retried with exponential backoff,
// permanent ones (auth, billing) abort immediately, and every failure
// path degrades to the neutral score with Available=false.
type Analyst struct {
	provider ChatProvider
	log      *zap.Logger
	sleep    func(time.Duration)
	recorder RequestRecorder
}

// NewAnalyst creates an analyst on the given provider.
func NewAnalyst(provider ChatProvider, log *zap.Logger) *Analyst {
	return &Analyst{provider: provider, log: log, sleep: time.Sleep}
}

// WithMetrics attaches a per-call outcome recorder.
func (a *Analyst) WithMetrics(rec RequestRecorder) *Analyst {
	a.recorder = rec
	return a
}

// Analyze scores headlines from the buy side. No headlines is not a
// fault: it yields the neutral score with Available=true.
func (a *Analyst) Analyze(ctx context.Context, symbol string, headlines []string) Analysis {
	if len(headlines) == 0 {
		return Analysis{
			Score:     NeutralBuyScore,
			Sentiment: "neutral",
			Reasoning: "no recent news to analyze",
			Available: true,
		}
	}

	prompt := fmt.Sprintf("Stock: %s\n\nRecent headlines:\n%s", symbol, bulleted(headlines))
	raw, err := a.complete(ctx, symbol, buySystemPrompt, prompt)
	if err != nil {
		return Analysis{Score: NeutralBuyScore, Sentiment: "neutral", Reasoning: err.Error()}
	}

	var out Analysis
	if jerr := json.Unmarshal(raw, &out); jerr != nil {
		a.log.Warn("sentiment response malformed", zap.String("symbol", symbol), zap.Error(jerr))
		return Analysis{Score: NeutralBuyScore, Sentiment: "neutral", Reasoning: "unparseable provider response"}
	}
	out.Score = clampScore(out.Score)
	out.Available = true
	return out
}

// AnalyzeSell scores headlines from the sell side for a held symbol.
// No headlines yields the neutral sell score with Available=false.
func (a *Analyst) AnalyzeSell(ctx context.Context, symbol string, headlines []string) SellAnalysis {
	if len(headlines) == 0 {
		return SellAnalysis{
			SellScore: NeutralSellScore,
			Action:    "hold",
			Reasoning: "no recent news, no news-driven sell case",
		}
	}

	prompt := fmt.Sprintf("Held stock: %s\n\nRecent news:\n%s\n\nShould this position be sold now?",
		symbol, bulleted(headlines))
	raw, err := a.complete(ctx, symbol, sellSystemPrompt, prompt)
	if err != nil {
		return SellAnalysis{SellScore: NeutralSellScore, Action: "hold", Reasoning: err.Error()}
	}

	var out SellAnalysis
	if jerr := json.Unmarshal(raw, &out); jerr != nil {
		a.log.Warn("sell sentiment response malformed", zap.String("symbol", symbol), zap.Error(jerr))
		return SellAnalysis{SellScore: NeutralSellScore, Action: "hold", Reasoning: "unparseable provider response"}
	}
	out.SellScore = clampScore(out.SellScore)
	out.Available = true
	return out
}

// AnalyzeBatch fans Analyze out over symbols with at most limit calls
// in flight.
func (a *Analyst) AnalyzeBatch(ctx context.Context, headlines map[string][]string, limit int) map[string]Analysis {
	out := make(map[string]Analysis, len(headlines))
	var mu sync.Mutex

	runBounded(headlines, limit, func(symbol string, lines []string) {
		res := a.Analyze(ctx, symbol, lines)
		mu.Lock()
		out[symbol] = res
		mu.Unlock()
	})
	return out
}

// AnalyzeSellBatch fans AnalyzeSell out over held symbols.
func (a *Analyst) AnalyzeSellBatch(ctx context.Context, headlines map[string][]string, limit int) map[string]SellAnalysis {
	out := make(map[string]SellAnalysis, len(headlines))
	var mu sync.Mutex

	runBounded(headlines, limit, func(symbol string, lines []string) {
		res := a.AnalyzeSell(ctx, symbol, lines)
		mu.Lock()
		out[symbol] = res
		mu.Unlock()
	})
	return out
}

func runBounded(headlines map[string][]string, limit int, fn func(string, []string)) {
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for symbol, lines := range headlines {
		wg.Add(1)
		sem <- struct{}{}
		go func(symbol string, lines []string) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(symbol, lines)
		}(symbol, lines)
	}
	wg.Wait()
}

// complete calls the provider with retry. Backoff doubles per attempt;
// permanent faults abort without further attempts.
func (a *Analyst) complete(ctx context.Context, symbol, system, user string) ([]byte, error) {
	req := ChatRequest{SystemPrompt: system, UserPrompt: user, MaxTokens: 512}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := a.provider.Chat(ctx, req)
		if err == nil {
			payload, perr := extractJSON(resp.Content)
			if perr == nil {
				a.record("ok")
				return payload, nil
			}
			err = perr
		}

		if isPermanent(err) {
			a.record("permanent")
			a.log.Error("sentiment provider permanent fault",
				zap.String("symbol", symbol), zap.String("provider", a.provider.Name()), zap.Error(err))
			return nil, core.WrapError(core.ErrSentimentPermanent, err)
		}

		a.record("retryable")
		lastErr = err
		a.log.Warn("sentiment call failed",
			zap.String("symbol", symbol), zap.Int("attempt", attempt+1), zap.Error(err))
		if attempt < maxAttempts-1 {
			a.sleep(time.Duration(1<<attempt) * time.Second)
		}
	}
	return nil, core.WrapError(core.ErrSentimentThrottled, lastErr)
}

func (a *Analyst) record(outcome string) {
	if a.recorder != nil {
		a.recorder.RecordSentimentRequest(a.provider.Name(), outcome)
	}
}

var jsonPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// extractJSON returns the JSON object in text, tolerating providers
// that wrap it in prose or code fences.
func extractJSON(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if json.Valid([]byte(text)) {
		return []byte(text), nil
	}
	if m := jsonPattern.FindString(text); m != "" && json.Valid([]byte(m)) {
		return []byte(m), nil
	}
	return nil, fmt.Errorf("no JSON object in response")
}

// permanentKeywords mark faults that retrying cannot fix.
var permanentKeywords = []string{
	"credit balance is too low",
	"insufficient balance",
	"billing",
	"payment required",
	"invalid_request_error",
	"authentication",
	"unauthorized",
	"forbidden",
	"invalid api key",
	"status 400",
	"status 401",
	"status 403",
}

func isPermanent(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, kw := range permanentKeywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func bulleted(lines []string) string {
	if len(lines) > 10 {
		lines = lines[:10]
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
