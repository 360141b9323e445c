// Package llm defines the Provider interface for the language-model backends
// hexforge consults during semantic analysis and seed summarisation.
//
// Callers only ever need a single JSON-shaped completion per request, so the
// interface is deliberately narrow. Implementations must be safe for
// concurrent use and must honour context cancellation.
package llm

import (
	"context"
	"strings"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn of a conversation.
type Message struct {
	Role    string
	Content string
}

// Usage holds token accounting reported by the backend.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionRequest carries everything the model needs to answer.
// At minimum Messages must be non-empty.
type CompletionRequest struct {
	// SystemPrompt is sent ahead of Messages with the system role.
	SystemPrompt string

	Messages []Message

	// Temperature in [0, 2]. Zero asks for the provider default.
	Temperature float64

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int
}

// CompletionResponse is the full reply of a completion.
type CompletionResponse struct {
	Content string
	Usage   Usage
}

// ModelCapabilities describes static limits of the configured model.
type ModelCapabilities struct {
	// ContextWindow is the maximum token count for input plus output.
	ContextWindow int

	// MaxOutputTokens is the largest completion the model can produce.
	MaxOutputTokens int
}

// Provider is the abstraction over any LLM backend.
type Provider interface {
	// Complete sends req and waits for the whole reply. It returns an error
	// when the request fails or ctx ends first.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Capabilities returns the static limits of the underlying model.
	Capabilities() ModelCapabilities
}

// EstimateTokens approximates the token count of s at four bytes per token.
// It never undercounts by more than a few tokens for English prose.
func EstimateTokens(s string) int {
	return (len(s) + 3) / 4
}

// TruncateToTokens cuts s so that EstimateTokens(s) <= n, keeping the prefix.
func TruncateToTokens(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if limit := n * 4; len(s) > limit {
		return strings.ToValidUTF8(s[:limit], "")
	}
	return s
}
