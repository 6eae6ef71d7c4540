package claude

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

	p, err := New("test-key", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != "claude" {
		t.Errorf("Name() = %q, want claude", p.Name())
	}
	if p.model != defaultModel {
		t.Errorf("model = %q, want default %q", p.model, defaultModel)
	}
}
