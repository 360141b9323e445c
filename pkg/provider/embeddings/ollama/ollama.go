// Package ollama provides an embeddings provider backed by a local Ollama
// server through the official github.com/ollama/ollama/api client.
//
// Requests pin the server to a fixed thread count and seed so that repeated
// seed builds see identical vectors.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/MrWong99/hexforge/pkg/provider/embeddings"
)

// DefaultBaseURL is the address of a locally running Ollama.
const DefaultBaseURL = "http://localhost:11434"

var _ embeddings.Provider = (*Provider)(nil)

// Provider implements embeddings.Provider on an Ollama server.
type Provider struct {
	client  *api.Client
	model   string
	threads int
	seed    int
}

// Option configures a Provider.
type Option func(*Provider)

// WithThreads sets the num_thread option sent with every request. Default 1.
func WithThreads(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.threads = n
		}
	}
}

// WithSeed sets the seed option sent with every request.
func WithSeed(seed int) Option {
	return func(p *Provider) { p.seed = seed }
}

// New returns a Provider for model at baseURL (DefaultBaseURL if empty).
// timeout bounds each HTTP request; zero means no limit.
func New(baseURL, model string, timeout time.Duration, opts ...Option) (*Provider, error) {
	if model == "" {
		return nil, errors.New("ollama embeddings: model must not be empty")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings: parse base url %q: %w", baseURL, err)
	}
	p := &Provider{
		client:  api.NewClient(u, &http.Client{Timeout: timeout}),
		model:   model,
		threads: 1,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// EmbedBatch implements embeddings.Provider.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := p.client.Embed(ctx, &api.EmbedRequest{
		Model: p.model,
		Input: texts,
		Options: map[string]any{
			"num_thread": p.threads,
			"seed":       p.seed,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings: embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embeddings: expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	return resp.Embeddings, nil
}

// ModelID implements embeddings.Provider.
func (p *Provider) ModelID() string { return p.model }
