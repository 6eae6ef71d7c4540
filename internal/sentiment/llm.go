// Package sentiment scores news flow for a symbol with an LLM: a
// buy-view score for candidates and a sell-view score for holdings.
package sentiment

import "context"

// ChatProvider is the LLM backend contract. Implementations live in
// the claude and openai subpackages.
type ChatProvider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest holds one completion request.
type ChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// ChatResponse holds the completion and token usage.
type ChatResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
}
