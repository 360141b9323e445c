// Package anyllm runs hexforge's agent prompts through
// github.com/mozilla-ai/any-llm-go, one client for OpenAI, Anthropic, Gemini,
// Ollama, DeepSeek, Mistral, Groq and local llama.cpp or llamafile servers.
//
//	p, err := anyllm.New("anthropic", "claude-sonnet-4-5", anyllmlib.WithAPIKey(key))
package anyllm

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/llamacpp"
	"github.com/mozilla-ai/any-llm-go/providers/llamafile"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/MrWong99/hexforge/pkg/provider/llm"
)

type constructor func(...anyllmlib.Option) (anyllmlib.Provider, error)

// constructors maps backend names to any-llm-go providers.
var constructors = map[string]constructor{
	"openai":    func(o ...anyllmlib.Option) (anyllmlib.Provider, error) { return anyllmoai.New(o...) },
	"anthropic": func(o ...anyllmlib.Option) (anyllmlib.Provider, error) { return anthropic.New(o...) },
	"gemini":    func(o ...anyllmlib.Option) (anyllmlib.Provider, error) { return gemini.New(o...) },
	"ollama":    func(o ...anyllmlib.Option) (anyllmlib.Provider, error) { return ollama.New(o...) },
	"deepseek":  func(o ...anyllmlib.Option) (anyllmlib.Provider, error) { return deepseek.New(o...) },
	"mistral":   func(o ...anyllmlib.Option) (anyllmlib.Provider, error) { return mistral.New(o...) },
	"groq":      func(o ...anyllmlib.Option) (anyllmlib.Provider, error) { return groq.New(o...) },
	"llamacpp":  func(o ...anyllmlib.Option) (anyllmlib.Provider, error) { return llamacpp.New(o...) },
	"llamafile": func(o ...anyllmlib.Option) (anyllmlib.Provider, error) { return llamafile.New(o...) },
}

// Backends lists the backend names New accepts, sorted.
var Backends = slices.Sorted(maps.Keys(constructors))

var (
	// ErrEmptyResponse is returned when the backend answers with no text.
	ErrEmptyResponse = errors.New("anyllm: empty response")

	// ErrNoMessages is returned for a request without user content.
	ErrNoMessages = errors.New("anyllm: request has no messages")
)

// Provider implements [llm.Provider].
type Provider struct {
	backend anyllmlib.Provider
	model   string
}

var _ llm.Provider = (*Provider)(nil)

// New creates a Provider for backend (one of [Backends]) and model. Without
// an API key option the backend reads its usual environment variable, e.g.
// ANTHROPIC_API_KEY.
func New(backend, model string, opts ...anyllmlib.Option) (*Provider, error) {
	if model == "" {
		return nil, errors.New("anyllm: model must not be empty")
	}
	build, ok := constructors[strings.ToLower(backend)]
	if !ok {
		return nil, fmt.Errorf("anyllm: unsupported backend %q; supported: %s", backend, strings.Join(Backends, ", "))
	}
	b, err := build(opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %q backend: %w", backend, err)
	}
	return &Provider{backend: b, model: model}, nil
}

// Complete sends req and returns the first choice.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if len(req.Messages) == 0 {
		return nil, ErrNoMessages
	}
	resp, err := p.backend.Completion(ctx, buildParams(p.model, req))
	if err != nil {
		return nil, fmt.Errorf("anyllm: %s completion: %w", p.model, err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	text := resp.Choices[0].Message.ContentString()
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}
	out := &llm.CompletionResponse{Content: text}
	if u := resp.Usage; u != nil {
		out.Usage = llm.Usage{PromptTokens: u.PromptTokens, CompletionTokens: u.CompletionTokens, TotalTokens: u.TotalTokens}
	}
	return out, nil
}

// Capabilities implements llm.Provider.
func (p *Provider) Capabilities() llm.ModelCapabilities {
	return modelCapabilities(p.model)
}

func buildParams(model string, req llm.CompletionRequest) anyllmlib.CompletionParams {
	params := anyllmlib.CompletionParams{Model: model}
	if req.SystemPrompt != "" {
		params.Messages = append(params.Messages, anyllmlib.Message{Role: anyllmlib.RoleSystem, Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		params.Messages = append(params.Messages, anyllmlib.Message{Role: m.Role, Content: m.Content})
	}
	if req.Temperature > 0 {
		t := min(req.Temperature, 2)
		params.Temperature = &t
	}
	if req.MaxTokens > 0 {
		n := req.MaxTokens
		params.MaxTokens = &n
	}
	return params
}

// families maps model name prefixes to their limits. First match wins.
var families = []struct {
	prefixes []string
	caps     llm.ModelCapabilities
}{
	{[]string{"gpt-4o", "gpt-4.1"}, llm.ModelCapabilities{ContextWindow: 128_000, MaxOutputTokens: 16_384}},
	{[]string{"o1", "o3", "o4"}, llm.ModelCapabilities{ContextWindow: 200_000, MaxOutputTokens: 100_000}},
	{[]string{"claude"}, llm.ModelCapabilities{ContextWindow: 200_000, MaxOutputTokens: 8_192}},
	{[]string{"gemini"}, llm.ModelCapabilities{ContextWindow: 1_048_576, MaxOutputTokens: 8_192}},
	{[]string{"deepseek"}, llm.ModelCapabilities{ContextWindow: 64_000, MaxOutputTokens: 8_192}},
	{[]string{"llama", "qwen", "mistral"}, llm.ModelCapabilities{ContextWindow: 32_768, MaxOutputTokens: 4_096}},
}

// modelCapabilities returns the limits of model's family, or a small
// default for unknown models.
func modelCapabilities(model string) llm.ModelCapabilities {
	m := strings.ToLower(model)
	for _, f := range families {
		for _, p := range f.prefixes {
			if strings.HasPrefix(m, p) {
				return f.caps
			}
		}
	}
	return llm.ModelCapabilities{ContextWindow: 8_192, MaxOutputTokens: 2_048}
}
