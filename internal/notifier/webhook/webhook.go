// Package webhook implements an HTTP webhook notifier
package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/quantfarer/vigil/internal/core"
)

// Webhook implements the Notifier interface for HTTP webhooks
type Webhook struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// New creates a new Webhook notifier
func New(url string, headers map[string]string) (*Webhook, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook: url is required")
	}
	return &Webhook{
		url:     url,
		headers: headers,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Send(rec core.SellSignalRecord) error {
	payload := w.recordToPayload(rec)
	return w.post(payload)
}

func (w *Webhook) SendDigest(recs []core.SellSignalRecord) error {
	if len(recs) == 0 {
		return nil
	}

	payloads := make([]map[string]any, len(recs))
	for i, rec := range recs {
		payloads[i] = w.recordToPayload(rec)
	}

	digestPayload := map[string]any{
		"type":    "digest",
		"count":   len(recs),
		"signals": payloads,
	}

	return w.post(digestPayload)
}

func (w *Webhook) recordToPayload(rec core.SellSignalRecord) map[string]any {
	return map[string]any{
		"type":           "sell_signal",
		"id":             rec.ID,
		"symbol":         rec.Symbol,
		"signal_type":    rec.Kind,
		"strategy":       rec.Strategy,
		"combined_score": rec.CombinedScore,
		"tech_score":     rec.TechScore,
		"sell_score":     rec.SellScore,
		"pnl_pct":        rec.PnLPct,
		"reasoning":      rec.Reasoning,
		"signal_at":      rec.SignalAt.Format(time.RFC3339),
	}
}

func (w *Webhook) post(payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest("POST", w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: server returned %d", resp.StatusCode)
	}

	return nil
}
