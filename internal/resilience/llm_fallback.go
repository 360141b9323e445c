package resilience

import (
	"context"

	"github.com/MrWong99/hexforge/pkg/provider/llm"
)

// LLMFallback is an [llm.Provider] that fails over across several LLM
// backends, each with its own breaker and per-call timeout.
type LLMFallback struct {
	group *FallbackGroup[llm.Provider]
}

var _ llm.Provider = (*LLMFallback)(nil)

// NewLLMFallback creates an LLMFallback preferring primary.
func NewLLMFallback(primary llm.Provider, primaryName string, cfg FallbackConfig) *LLMFallback {
	return &LLMFallback{group: NewFallbackGroup(primary, primaryName, cfg)}
}

// AddFallback registers another backend.
func (f *LLMFallback) AddFallback(name string, p llm.Provider) {
	f.group.AddFallback(name, p)
}

// Complete sends req to the first healthy backend.
func (f *LLMFallback) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return ExecuteWithResult(ctx, f.group, func(ctx context.Context, p llm.Provider) (*llm.CompletionResponse, error) {
		return p.Complete(ctx, req)
	})
}

// Capabilities reports the smallest context window across all backends, so
// that a prompt sized for it fits whichever backend answers.
func (f *LLMFallback) Capabilities() llm.ModelCapabilities {
	var caps llm.ModelCapabilities
	for i, e := range f.group.entries {
		c := e.value.Capabilities()
		if i == 0 || c.ContextWindow < caps.ContextWindow {
			caps.ContextWindow = c.ContextWindow
		}
		if i == 0 || c.MaxOutputTokens < caps.MaxOutputTokens {
			caps.MaxOutputTokens = c.MaxOutputTokens
		}
	}
	return caps
}
