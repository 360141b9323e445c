package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MrWong99/hexforge/internal/config"
)

func TestValidate_InvalidLogLevel(t *testing.T) {
	t.Parallel()
	_, err := config.LoadFromReader(strings.NewReader("log_level: verbose\n"))
	if err == nil {
		t.Fatal("expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error should mention log_level, got: %v", err)
	}
}

func TestValidate_MatchThresholdRange(t *testing.T) {
	t.Parallel()
	_, err := config.LoadFromReader(strings.NewReader("clusters:\n  match_threshold: 1.5\n"))
	if err == nil {
		t.Fatal("expected error for threshold above 1, got nil")
	}
	if !strings.Contains(err.Error(), "match_threshold") {
		t.Errorf("error should mention match_threshold, got: %v", err)
	}
}

func TestValidate_FallbackRequiresName(t *testing.T) {
	t.Parallel()
	yaml := `
providers:
  llm_fallbacks:
    - model: llama3
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unnamed fallback, got nil")
	}
	if !strings.Contains(err.Error(), "llm_fallbacks[0].name") {
		t.Errorf("error should name the fallback, got: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	t.Parallel()
	yaml := `
log_level: loud
archive:
  path: ""
  progress_every: -1
analysis:
  row_samples: -2
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected validation errors, got nil")
	}
	for _, want := range []string{"log_level", "archive.path", "archive.progress_every", "analysis.row_samples"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %q, got: %v", want, err)
		}
	}
}

func TestValidProviderNames(t *testing.T) {
	t.Parallel()
	for _, kind := range []string{"llm", "embeddings"} {
		names, ok := config.ValidProviderNames[kind]
		if !ok || len(names) == 0 {
			t.Errorf("ValidProviderNames[%q] should list providers", kind)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()
	env := map[string]string{
		config.EnvAgentAPIKey: "sk-env",
		config.EnvOutputDir:   "/tmp/out",
	}
	cfg := config.Default()
	cfg.StateDir = "keep"
	config.ApplyEnv(cfg, func(k string) string { return env[k] })

	if cfg.Providers.LLM.APIKey != "sk-env" {
		t.Errorf("api key = %q, want sk-env", cfg.Providers.LLM.APIKey)
	}
	if cfg.Output.Dir != "/tmp/out" {
		t.Errorf("output dir = %q, want /tmp/out", cfg.Output.Dir)
	}
	if cfg.StateDir != "keep" {
		t.Errorf("unset env should not override state dir, got %q", cfg.StateDir)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(config.EnvStateDir, "")
	t.Setenv(config.EnvOutputDir, "")
	t.Setenv(config.EnvAgentAPIKey, "")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Archive.Path != config.Default().Archive.Path {
		t.Errorf("archive path = %q, want default", cfg.Archive.Path)
	}
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	t.Setenv(config.EnvStateDir, "/var/lib/hexforge")
	t.Setenv(config.EnvOutputDir, "")
	t.Setenv(config.EnvAgentAPIKey, "")

	path := filepath.Join(t.TempDir(), "hexforge.yaml")
	if err := os.WriteFile(path, []byte("state_dir: local\narchive:\n  path: a.hbf\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Archive.Path != "a.hbf" {
		t.Errorf("archive path = %q, want a.hbf", cfg.Archive.Path)
	}
	if cfg.StateDir != "/var/lib/hexforge" {
		t.Errorf("state dir = %q, want env override", cfg.StateDir)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("archive: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected parse error, got nil")
	}
}
