package resilience

import (
	"context"

	"github.com/MrWong99/hexforge/pkg/provider/embeddings"
)

// EmbeddingsFallback is an [embeddings.Provider] that fails over across
// several embedding backends. All backends should share a model family;
// vectors from different models are not comparable.
type EmbeddingsFallback struct {
	group *FallbackGroup[embeddings.Provider]
}

var _ embeddings.Provider = (*EmbeddingsFallback)(nil)

// NewEmbeddingsFallback creates an EmbeddingsFallback preferring primary.
func NewEmbeddingsFallback(primary embeddings.Provider, primaryName string, cfg FallbackConfig) *EmbeddingsFallback {
	return &EmbeddingsFallback{group: NewFallbackGroup(primary, primaryName, cfg)}
}

// AddFallback registers another backend.
func (f *EmbeddingsFallback) AddFallback(name string, p embeddings.Provider) {
	f.group.AddFallback(name, p)
}

// EmbedBatch embeds texts with the first healthy backend.
func (f *EmbeddingsFallback) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return ExecuteWithResult(ctx, f.group, func(ctx context.Context, p embeddings.Provider) ([][]float32, error) {
		return p.EmbedBatch(ctx, texts)
	})
}

// ModelID returns the primary's model.
func (f *EmbeddingsFallback) ModelID() string {
	return f.group.entries[0].value.ModelID()
}
