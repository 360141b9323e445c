// Package config provides the configuration schema, loader, and provider registry
// for the hexforge build pipeline.
package config

import (
	"path/filepath"
	"time"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	LogLevel  LogLevel        `yaml:"log_level"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Training  TrainingConfig  `yaml:"training"`
	Output    OutputConfig    `yaml:"output"`
	StateDir  string          `yaml:"state_dir"`
	Clusters  ClustersConfig  `yaml:"clusters"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Seed      SeedConfig      `yaml:"seed"`
	Providers ProvidersConfig `yaml:"providers"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ArchiveConfig locates the source archive.
type ArchiveConfig struct {
	// Path is the SQLite archive file.
	Path string `yaml:"path"`

	// ProgressEvery logs scan progress every N rows. 0 disables it.
	ProgressEvery int `yaml:"progress_every"`
}

// TrainingConfig locates the optional training corpus.
type TrainingConfig struct {
	// Dir is the corpus root. Empty disables training.
	Dir string `yaml:"dir"`

	// Strict turns a missing training file into a fatal error.
	Strict bool `yaml:"strict"`
}

// OutputConfig holds the output directories. Relative sub-directories are
// resolved against Dir.
type OutputConfig struct {
	Dir              string `yaml:"dir"`
	AnalysisDir      string `yaml:"analysis_dir"`
	AssetsDir        string `yaml:"assets_dir"`
	PromptsDir       string `yaml:"prompts_dir"`
	ContainersDir    string `yaml:"containers_dir"`
	ContainerPackage string `yaml:"container_package"`
}

// Path resolves sub against Dir unless it is absolute.
func (o OutputConfig) Path(sub string) string {
	if filepath.IsAbs(sub) {
		return sub
	}
	return filepath.Join(o.Dir, sub)
}

// ClustersConfig configures the cluster store.
type ClustersConfig struct {
	// CanonicalNames enables fuzzy keying onto these spellings when non-empty.
	CanonicalNames []string `yaml:"canonical_names"`

	// MatchThreshold is the Jaro-Winkler similarity required, in [0, 1].
	MatchThreshold float64 `yaml:"match_threshold"`
}

// AnalysisConfig configures relationship discovery and the AI analyzer.
type AnalysisConfig struct {
	RowSamples   int           `yaml:"row_samples"`
	TextSamples  int           `yaml:"text_samples"`
	HTMLSamples  int           `yaml:"html_samples"`
	MinAIRows    int           `yaml:"min_ai_rows"`
	AgentTimeout time.Duration `yaml:"agent_timeout"`
}

// SeedConfig configures the build-time seed generator.
type SeedConfig struct {
	Dir          string `yaml:"dir"`
	ShuffleSeed  uint64 `yaml:"shuffle_seed"`
	BooksPerBand int    `yaml:"books_per_band"`
	GrammarCap   int    `yaml:"grammar_cap"`
	CorpusURL    string `yaml:"corpus_url"`

	// DateBound restricts the book corpus to items published before this
	// year. 0 disables the bound.
	DateBound int `yaml:"date_bound"`
}

// ProvidersConfig declares which provider implementation to use for each
// collaborator. Each entry selects a named provider registered in the [Registry].
type ProvidersConfig struct {
	LLM ProviderEntry `yaml:"llm"`

	// LLMFallbacks are tried in order when the primary LLM fails.
	LLMFallbacks []ProviderEntry `yaml:"llm_fallbacks"`

	Embeddings ProviderEntry `yaml:"embeddings"`
}

// ProviderEntry is the common configuration block shared by all provider types.
// The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "openai", "ollama").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gpt-4o-mini").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or nested maps.
	Options map[string]any `yaml:"options"`
}

// TelemetryConfig configures the metrics endpoint.
type TelemetryConfig struct {
	// MetricsAddr serves /metrics on this address while a command runs.
	// Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel: LogInfo,
		Archive:  ArchiveConfig{Path: "raw/game.hbf", ProgressEvery: 1000},
		Training: TrainingConfig{Dir: "training"},
		Output: OutputConfig{
			Dir:              "out",
			AnalysisDir:      "analysis",
			AssetsDir:        "assets",
			PromptsDir:       "prompts",
			ContainersDir:    "generated",
			ContainerPackage: "containers",
		},
		StateDir: ".hexforge",
		Clusters: ClustersConfig{MatchThreshold: 0.92},
		Analysis: AnalysisConfig{
			RowSamples:   5,
			TextSamples:  10,
			HTMLSamples:  5,
			MinAIRows:    10,
			AgentTimeout: 30 * time.Second,
		},
		Seed: SeedConfig{
			Dir:          "seeds",
			ShuffleSeed:  1337,
			BooksPerBand: 3,
			GrammarCap:   400,
			CorpusURL:    "https://archive.org",
			DateBound:    1939,
		},
		Providers: ProvidersConfig{
			LLM:        ProviderEntry{Name: "openai", Model: "gpt-4o-mini"},
			Embeddings: ProviderEntry{Name: "openai", Model: "text-embedding-3-small"},
		},
	}
}
