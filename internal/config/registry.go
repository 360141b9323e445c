package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/MrWong99/hexforge/pkg/provider/embeddings"
	"github.com/MrWong99/hexforge/pkg/provider/llm"
)

// ErrProviderNotRegistered is returned when a [ProviderEntry] names a
// provider nobody registered a factory for.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Provider kinds accepted by [Registry.Names].
const (
	KindLLM        = "llm"
	KindEmbeddings = "embeddings"
)

// Factory builds a provider from its configuration entry.
type Factory[P any] func(ProviderEntry) (P, error)

// factories is one kind's name table. The owning Registry holds the lock.
type factories[P any] struct {
	kind  string
	table map[string]Factory[P]
}

func newFactories[P any](kind string) factories[P] {
	return factories[P]{kind: kind, table: make(map[string]Factory[P])}
}

func (f factories[P]) create(mu *sync.RWMutex, entry ProviderEntry) (P, error) {
	mu.RLock()
	build, ok := f.table[entry.Name]
	mu.RUnlock()
	if !ok {
		var zero P
		return zero, fmt.Errorf("%w: %s/%q", ErrProviderNotRegistered, f.kind, entry.Name)
	}
	return build(entry)
}

// Registry resolves the llm and embeddings entries of a [Config] into
// providers. Registering a name twice replaces the earlier factory. Safe for
// concurrent use.
type Registry struct {
	mu         sync.RWMutex
	llm        factories[llm.Provider]
	embeddings factories[embeddings.Provider]
}

// NewRegistry returns an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{
		llm:        newFactories[llm.Provider](KindLLM),
		embeddings: newFactories[embeddings.Provider](KindEmbeddings),
	}
}

// RegisterLLM makes f available as llm provider name.
func (r *Registry) RegisterLLM(name string, f Factory[llm.Provider]) {
	r.mu.Lock()
	r.llm.table[name] = f
	r.mu.Unlock()
}

func (r *Registry) RegisterEmbeddings(name string, f Factory[embeddings.Provider]) {
	r.mu.Lock()
	r.embeddings.table[name] = f
	r.mu.Unlock()
}

// CreateLLM builds the agent model named by entry. An unknown name wraps
// [ErrProviderNotRegistered].
func (r *Registry) CreateLLM(entry ProviderEntry) (llm.Provider, error) {
	return r.llm.create(&r.mu, entry)
}

// CreateEmbeddings builds the embedding model named by entry.
func (r *Registry) CreateEmbeddings(entry ProviderEntry) (embeddings.Provider, error) {
	return r.embeddings.create(&r.mu, entry)
}

// Names lists the registered names of kind in sorted order. Unknown kinds
// have none.
func (r *Registry) Names(kind string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch kind {
	case KindLLM:
		return slices.Sorted(maps.Keys(r.llm.table))
	case KindEmbeddings:
		return slices.Sorted(maps.Keys(r.embeddings.table))
	}
	return nil
}
