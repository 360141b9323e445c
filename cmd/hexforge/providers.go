package main

import (
	"fmt"
	"log/slog"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/MrWong99/hexforge/internal/config"
	"github.com/MrWong99/hexforge/internal/resilience"
	"github.com/MrWong99/hexforge/pkg/provider/embeddings"
	ollamaembed "github.com/MrWong99/hexforge/pkg/provider/embeddings/ollama"
	oaembed "github.com/MrWong99/hexforge/pkg/provider/embeddings/openai"
	"github.com/MrWong99/hexforge/pkg/provider/llm"
	"github.com/MrWong99/hexforge/pkg/provider/llm/anyllm"
	ollamallm "github.com/MrWong99/hexforge/pkg/provider/llm/ollama"
)

// defaultProviderTimeout bounds local model servers that have no
// configured timeout.
const defaultProviderTimeout = 2 * time.Minute

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the appropriate
// provider from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// ── LLM ───────────────────────────────────────────────────────────────────
	// Every any-llm backend shares the same pattern: optional APIKey +
	// optional BaseURL.
	for _, backend := range anyllm.Backends {
		reg.RegisterLLM(backend, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(backend, entry.Model, opts...)
		})
	}

	// ollama-native talks to the Ollama API directly and exposes runtime
	// knobs any-llm does not.
	reg.RegisterLLM("ollama-native", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []ollamallm.Option
		if n := optInt(entry.Options, "threads"); n > 0 {
			opts = append(opts, ollamallm.WithThreads(n))
		}
		if n := optInt(entry.Options, "seed"); n != 0 {
			opts = append(opts, ollamallm.WithSeed(n))
		}
		if n := optInt(entry.Options, "context_size"); n > 0 {
			opts = append(opts, ollamallm.WithContextSize(n))
		}
		return ollamallm.New(entry.BaseURL, entry.Model, optDuration(entry.Options, "timeout", defaultProviderTimeout), opts...)
	})

	// ── Embeddings ────────────────────────────────────────────────────────────

	reg.RegisterEmbeddings("openai", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		if d := optDuration(entry.Options, "timeout", 0); d > 0 {
			opts = append(opts, oaembed.WithTimeout(d))
		}
		if n := optInt(entry.Options, "dimensions"); n > 0 {
			opts = append(opts, oaembed.WithDimensions(n))
		}
		if n := optInt(entry.Options, "batch_size"); n > 0 {
			opts = append(opts, oaembed.WithBatchSize(n))
		}
		return oaembed.New(entry.APIKey, entry.Model, opts...)
	})

	reg.RegisterEmbeddings("ollama", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		var opts []ollamaembed.Option
		if n := optInt(entry.Options, "threads"); n > 0 {
			opts = append(opts, ollamaembed.WithThreads(n))
		}
		if n := optInt(entry.Options, "seed"); n != 0 {
			opts = append(opts, ollamaembed.WithSeed(n))
		}
		return ollamaembed.New(entry.BaseURL, entry.Model, optDuration(entry.Options, "timeout", defaultProviderTimeout), opts...)
	})

	for _, kind := range []string{config.KindLLM, config.KindEmbeddings} {
		for _, name := range reg.Names(kind) {
			slog.Debug("registered provider", "kind", kind, "name", name)
		}
	}
}

// buildAgentLLM instantiates the configured LLM and its fallbacks behind a
// [resilience.LLMFallback]. It returns nil when no LLM is configured.
func buildAgentLLM(cfg *config.Config, reg *config.Registry) (llm.Provider, error) {
	entry := cfg.Providers.LLM
	if entry.Name == "" {
		return nil, nil
	}
	primary, err := reg.CreateLLM(entry)
	if err != nil {
		return nil, fmt.Errorf("create llm provider %q: %w", entry.Name, err)
	}
	slog.Info("provider created", "kind", "llm", "name", entry.Name, "model", entry.Model)

	fb := resilience.NewLLMFallback(primary, entry.Name, resilience.FallbackConfig{
		Timeout: cfg.Analysis.AgentTimeout,
	})
	for _, fe := range cfg.Providers.LLMFallbacks {
		p, err := reg.CreateLLM(fe)
		if err != nil {
			// A broken fallback must not disable the primary.
			slog.Warn("skipping llm fallback", "name", fe.Name, "err", err)
			continue
		}
		fb.AddFallback(fe.Name, p)
		slog.Info("provider created", "kind", "llm_fallback", "name", fe.Name, "model", fe.Model)
	}
	return fb, nil
}

// buildEmbeddings instantiates the configured embeddings provider behind a
// circuit breaker, or returns nil when none is configured.
func buildEmbeddings(cfg *config.Config, reg *config.Registry) (embeddings.Provider, error) {
	entry := cfg.Providers.Embeddings
	if entry.Name == "" {
		return nil, nil
	}
	p, err := reg.CreateEmbeddings(entry)
	if err != nil {
		return nil, fmt.Errorf("create embeddings provider %q: %w", entry.Name, err)
	}
	slog.Info("provider created", "kind", "embeddings", "name", entry.Name, "model", entry.Model)
	return resilience.NewEmbeddingsFallback(p, entry.Name, resilience.FallbackConfig{
		Timeout: cfg.Analysis.AgentTimeout,
	}), nil
}

// optInt reads an integer from provider options. YAML numbers decode as int
// or float64.
func optInt(opts map[string]any, key string) int {
	switch v := opts[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// optDuration reads a duration string such as "90s" from provider options.
func optDuration(opts map[string]any, key string, def time.Duration) time.Duration {
	s, ok := opts[key].(string)
	if !ok || s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		slog.Warn("invalid provider option, using default", "key", key, "value", s, "err", err)
		return def
	}
	return d
}
