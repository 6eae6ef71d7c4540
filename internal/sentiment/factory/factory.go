// Package factory builds the configured sentiment provider.
package factory

import (
	"fmt"

	"github.com/quantfarer/vigil/internal/config"
	"github.com/quantfarer/vigil/internal/sentiment"
	"github.com/quantfarer/vigil/internal/sentiment/claude"
	"github.com/quantfarer/vigil/internal/sentiment/openai"
)

// New creates a ChatProvider from configuration.
func New(cfg config.SentimentConfig) (sentiment.ChatProvider, error) {
	switch cfg.Provider {
	case "claude":
		return claude.New(cfg.Claude.APIKey, cfg.Claude.Model)
	case "openai":
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	default:
		return nil, fmt.Errorf("unknown sentiment provider: %s", cfg.Provider)
	}
}
