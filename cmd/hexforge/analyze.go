package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MrWong99/hexforge/internal/archive"
	"github.com/MrWong99/hexforge/internal/config"
	"github.com/MrWong99/hexforge/internal/relations"
	"github.com/MrWong99/hexforge/internal/semantic"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var noAI bool
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Discover table relationships and write analysis/report.json",
		Long: `Analyze introspects the archive schema, infers implicit relationships
and computes data-quality findings. When an LLM provider is configured the
report is enriched with the semantic analyzer; agent failures are recorded
as concerns and never abort the analysis.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withTelemetry(cmd.Context(), func(ctx context.Context) error {
				return a.analyze(ctx, !noAI)
			})
		},
	}
	cmd.Flags().BoolVar(&noAI, "no-ai", false, "skip the semantic analyzer")
	return cmd
}

func (a *app) analyze(ctx context.Context, withAI bool) error {
	store, err := archive.Open(a.cfg.Archive.Path, archive.WithProgressEvery(a.cfg.Archive.ProgressEvery))
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := relations.NewDiscoverer(store,
		relations.WithRowSamples(a.cfg.Analysis.RowSamples),
		relations.WithTextSamples(a.cfg.Analysis.TextSamples),
	).Discover(ctx)
	if err != nil {
		return err
	}

	if withAI {
		if err := a.enrich(ctx, store, report); err != nil {
			return err
		}
	}

	path, err := report.Save(a.analysisDir())
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, path)
	return nil
}

func (a *app) enrich(ctx context.Context, store *archive.Store, report *relations.Report) error {
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)
	provider, err := buildAgentLLM(a.cfg, reg)
	if err != nil {
		slog.Warn("semantic analysis disabled", "err", err)
		return nil
	}
	if provider == nil {
		slog.Info("no llm provider configured, skipping semantic analysis")
		return nil
	}

	analyzer := semantic.NewAnalyzer(semantic.NewLLMAgent(provider), store,
		semantic.WithMetrics(a.metrics),
		semantic.WithMinRows(a.cfg.Analysis.MinAIRows),
		semantic.WithHTMLSamples(a.cfg.Analysis.HTMLSamples),
	)
	ins, err := analyzer.Enrich(ctx, report)
	if err != nil {
		return err
	}
	slog.Info("semantic analysis complete",
		"tables", len(ins.TableAnalyses),
		"warnings", len(ins.ValidationWarnings),
	)
	return nil
}
