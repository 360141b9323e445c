package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/MrWong99/hexforge/internal/archive"
	"github.com/MrWong99/hexforge/internal/categorize"
	"github.com/MrWong99/hexforge/internal/pipeline"
)

func newRunCmd(a *app) *cobra.Command {
	var themes bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan the archive, cluster entities and generate location assets",
		Long: `Run scans every entity in the archive, categorizes and clusters it,
writes the cluster files, generates metadata for regions, settlements and
factions, and writes the dungeon and region container sources. The run
summary is printed as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withTelemetry(cmd.Context(), func(ctx context.Context) error {
				return a.runPipeline(ctx, themes)
			})
		},
	}
	cmd.Flags().BoolVar(&themes, "corruption-themes", false, "fill corruption_band and horror_theme from the training corpus")
	return cmd
}

func (a *app) runPipeline(ctx context.Context, themes bool) error {
	corpus, err := a.loadCorpus()
	if err != nil {
		return err
	}
	em := a.emitter("", "", corpus)
	p := pipeline.New(a.cfg.Archive.Path, a.analysisDir(),
		pipeline.WithCategorizer(categorize.New(categorize.WithTraining(corpus))),
		pipeline.WithClusterOptions(a.clusterOptions()...),
		pipeline.WithArchiveOptions(archive.WithProgressEvery(a.cfg.Archive.ProgressEvery)),
		pipeline.WithGenerator(&pipeline.AssetGenerator{Emitter: em, CorruptionThemes: themes}),
		pipeline.WithEmitter(em),
		pipeline.WithMetrics(a.metrics),
	)
	sum, err := p.Run(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}
