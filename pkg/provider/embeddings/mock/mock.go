// Package mock provides a deterministic embeddings.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/hexforge/pkg/provider/embeddings"
)

// Provider returns Vectors[text] for each input, or Default when a text has
// no entry. Err, when set, fails every call.
type Provider struct {
	mu sync.Mutex

	Vectors map[string][]float32
	Default []float32
	Err     error
	Model   string

	// Batches records every EmbedBatch input.
	Batches [][]string
}

var _ embeddings.Provider = (*Provider)(nil)

// EmbedBatch implements embeddings.Provider.
func (p *Provider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Batches = append(p.Batches, append([]string(nil), texts...))
	if p.Err != nil {
		return nil, p.Err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := p.Vectors[t]; ok {
			out[i] = v
			continue
		}
		out[i] = p.Default
	}
	return out, nil
}

// ModelID implements embeddings.Provider.
func (p *Provider) ModelID() string {
	if p.Model == "" {
		return "mock-embed"
	}
	return p.Model
}
