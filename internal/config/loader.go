package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvAgentAPIKey = "HEXFORGE_AGENT_API_KEY"
	EnvOutputDir   = "HEXFORGE_OUTPUT_DIR"
	EnvStateDir    = "HEXFORGE_STATE_DIR"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm":        {"openai", "anthropic", "ollama", "ollama-native", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
	"embeddings": {"openai", "ollama"},
}

// Load reads the YAML configuration file at path, applies environment
// overrides and returns a validated [Config]. A missing file is not an
// error: the defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Debug("config file not found, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	default:
		defer f.Close()
		if err := decode(f, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}
	ApplyEnv(cfg, os.Getenv)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults and
// validates the result. Environment overrides are not applied.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decode(r, cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: decode yaml: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg from the environment read through getenv. Empty
// values are ignored.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvAgentAPIKey); v != "" {
		cfg.Providers.LLM.APIKey = v
	}
	if v := getenv(EnvOutputDir); v != "" {
		cfg.Output.Dir = v
	}
	if v := getenv(EnvStateDir); v != "" {
		cfg.StateDir = v
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Archive.Path == "" {
		errs = append(errs, errors.New("archive.path is required"))
	}
	if cfg.Archive.ProgressEvery < 0 {
		errs = append(errs, fmt.Errorf("archive.progress_every %d must not be negative", cfg.Archive.ProgressEvery))
	}

	for field, dir := range map[string]string{
		"output.dir":            cfg.Output.Dir,
		"output.analysis_dir":   cfg.Output.AnalysisDir,
		"output.assets_dir":     cfg.Output.AssetsDir,
		"output.prompts_dir":    cfg.Output.PromptsDir,
		"output.containers_dir": cfg.Output.ContainersDir,
		"seed.dir":              cfg.Seed.Dir,
	} {
		if dir == "" {
			errs = append(errs, fmt.Errorf("%s is required", field))
		}
	}

	if t := cfg.Clusters.MatchThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("clusters.match_threshold %.2f is out of range [0, 1]", t))
	}
	if cfg.Analysis.AgentTimeout < 0 {
		errs = append(errs, fmt.Errorf("analysis.agent_timeout %s must not be negative", cfg.Analysis.AgentTimeout))
	}
	for field, n := range map[string]int{
		"analysis.row_samples":  cfg.Analysis.RowSamples,
		"analysis.text_samples": cfg.Analysis.TextSamples,
		"analysis.html_samples": cfg.Analysis.HTMLSamples,
		"analysis.min_ai_rows":  cfg.Analysis.MinAIRows,
		"seed.books_per_band":   cfg.Seed.BooksPerBand,
		"seed.grammar_cap":      cfg.Seed.GrammarCap,
	} {
		if n < 0 {
			errs = append(errs, fmt.Errorf("%s %d must not be negative", field, n))
		}
	}

	validateProviderName("llm", cfg.Providers.LLM.Name)
	for i, fb := range cfg.Providers.LLMFallbacks {
		if fb.Name == "" {
			errs = append(errs, fmt.Errorf("providers.llm_fallbacks[%d].name is required", i))
			continue
		}
		validateProviderName("llm", fb.Name)
	}
	validateProviderName("embeddings", cfg.Providers.Embeddings.Name)

	slices.SortFunc(errs, func(a, b error) int {
		switch {
		case a.Error() < b.Error():
			return -1
		case a.Error() > b.Error():
			return 1
		}
		return 0
	})
	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name, may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
