// Package ollama provides an [llm.Provider] that talks to a local Ollama
// server directly, so that sampling options such as the thread count and seed
// can be pinned for reproducible seed builds.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/MrWong99/hexforge/pkg/provider/llm"
)

// DefaultBaseURL is the address of a locally running Ollama.
const DefaultBaseURL = "http://localhost:11434"

var _ llm.Provider = (*Provider)(nil)

// Provider implements llm.Provider on Ollama's chat endpoint.
type Provider struct {
	client  *api.Client
	model   string
	threads int
	seed    int
	ctxSize int
}

// Option configures a Provider.
type Option func(*Provider)

// WithThreads sets num_thread for every request. Default 1.
func WithThreads(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.threads = n
		}
	}
}

// WithSeed sets the sampling seed for every request.
func WithSeed(seed int) Option {
	return func(p *Provider) { p.seed = seed }
}

// WithContextSize sets num_ctx and the reported context window. Default 8192.
func WithContextSize(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.ctxSize = n
		}
	}
}

// New returns a Provider for model at baseURL (DefaultBaseURL if empty).
func New(baseURL, model string, timeout time.Duration, opts ...Option) (*Provider, error) {
	if model == "" {
		return nil, errors.New("ollama: model must not be empty")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("ollama: parse base url %q: %w", baseURL, err)
	}
	p := &Provider{
		client:  api.NewClient(u, &http.Client{Timeout: timeout}),
		model:   model,
		threads: 1,
		ctxSize: 8_192,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	msgs := make([]api.Message, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		msgs = append(msgs, api.Message{Role: llm.RoleSystem, Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, api.Message{Role: m.Role, Content: m.Content})
	}

	options := map[string]any{
		"num_thread":  p.threads,
		"seed":        p.seed,
		"num_ctx":     p.ctxSize,
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	stream := false
	var (
		sb  strings.Builder
		out llm.CompletionResponse
	)
	err := p.client.Chat(ctx, &api.ChatRequest{
		Model:    p.model,
		Messages: msgs,
		Stream:   &stream,
		Options:  options,
	}, func(r api.ChatResponse) error {
		sb.WriteString(r.Message.Content)
		if r.Done {
			out.Usage = llm.Usage{
				PromptTokens:     r.PromptEvalCount,
				CompletionTokens: r.EvalCount,
				TotalTokens:      r.PromptEvalCount + r.EvalCount,
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama: chat: %w", err)
	}
	out.Content = sb.String()
	return &out, nil
}

// Capabilities implements llm.Provider.
func (p *Provider) Capabilities() llm.ModelCapabilities {
	return llm.ModelCapabilities{ContextWindow: p.ctxSize, MaxOutputTokens: p.ctxSize / 4}
}
