package webhook

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quantfarer/vigil/internal/core"
	"github.com/quantfarer/vigil/internal/notifier"
)

func testWebhook(t *testing.T, url string, headers map[string]string) *Webhook {
	t.Helper()
	w, err := New(url, headers)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func TestWebhook_ImplementsNotifier(t *testing.T) {
	var _ notifier.Notifier = (*Webhook)(nil)
}

func TestWebhook_Name(t *testing.T) {
	w := testWebhook(t, "http://example.com/hook", nil)
	if w.Name() != "webhook" {
		t.Errorf("expected 'webhook', got %s", w.Name())
	}
}

func TestWebhook_RequiresURL(t *testing.T) {
	if _, err := New("", nil); err == nil {
		t.Error("expected error for missing URL")
	}
}

func TestWebhook_Send(t *testing.T) {
	var receivedPayload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&receivedPayload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	w := testWebhook(t, server.URL, nil)

	rec := core.SellSignalRecord{
		Symbol:        "AAPL",
		Kind:          core.SellStopLoss,
		Strategy:      core.StrategyScalp,
		PnLPct:        -2.4,
		CombinedScore: 35.5,
		SignalAt:      time.Now(),
	}

	err := w.Send(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receivedPayload["symbol"] != "AAPL" {
		t.Errorf("expected symbol AAPL, got %v", receivedPayload["symbol"])
	}
	if receivedPayload["signal_type"] != "STOP_LOSS" {
		t.Errorf("expected signal_type STOP_LOSS, got %v", receivedPayload["signal_type"])
	}
	if receivedPayload["strategy"] != "SCALP" {
		t.Errorf("expected strategy SCALP, got %v", receivedPayload["strategy"])
	}
}

func TestWebhook_SendDigest(t *testing.T) {
	var receivedPayload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&receivedPayload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	w := testWebhook(t, server.URL, nil)

	recs := []core.SellSignalRecord{
		{Symbol: "AAPL", Kind: core.SellStopLoss, SignalAt: time.Now()},
		{Symbol: "GOOG", Kind: core.SellTimeStop, SignalAt: time.Now()},
	}

	err := w.SendDigest(recs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receivedPayload["type"] != "digest" {
		t.Errorf("expected type digest, got %v", receivedPayload["type"])
	}
	if receivedPayload["count"].(float64) != 2 {
		t.Errorf("expected count 2, got %v", receivedPayload["count"])
	}
}

func TestWebhook_SendDigest_Empty(t *testing.T) {
	w := testWebhook(t, "http://example.com/hook", nil)
	err := w.SendDigest([]core.SellSignalRecord{})
	if err != nil {
		t.Errorf("empty digest should not error: %v", err)
	}
}

func TestWebhook_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	w := testWebhook(t, server.URL, nil)

	err := w.Send(core.SellSignalRecord{Symbol: "TEST", SignalAt: time.Now()})
	if err == nil {
		t.Error("expected error for server error response")
	}
}

func TestWebhook_CustomHeaders(t *testing.T) {
	var receivedHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedHeaders = r.Header
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	headers := map[string]string{
		"Authorization": "Bearer test-token",
		"X-Custom":      "value",
	}
	w := testWebhook(t, server.URL, headers)

	w.Send(core.SellSignalRecord{Symbol: "TEST", SignalAt: time.Now()})

	if receivedHeaders.Get("Authorization") != "Bearer test-token" {
		t.Error("expected Authorization header")
	}
	if receivedHeaders.Get("X-Custom") != "value" {
		t.Error("expected X-Custom header")
	}
}
