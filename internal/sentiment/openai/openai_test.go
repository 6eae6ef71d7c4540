package openai

import (
	"testing"

	"github.com/quantfarer/vigil/internal/sentiment"
)

func TestProvider_ImplementsChatProvider(t *testing.T) {
	var _ sentiment.ChatProvider = (*Provider)(nil)
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New("", ""); err == nil {
		t.Error("expected error for empty API key")
	}

	p, err := New("test-key", "custom-model")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("Name() = %q, want openai", p.Name())
	}
	if p.model != "custom-model" {
		t.Errorf("model = %q, want custom-model", p.model)
	}
}
