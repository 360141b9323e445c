package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MrWong99/hexforge/internal/archive"
	"github.com/MrWong99/hexforge/internal/config"
	"github.com/MrWong99/hexforge/internal/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the build-time seed files",
		Long: `Seed writes one TOML sample file per major category drawn from the
archive and, unless --offline is given, world.toml built from public-domain
books, the Old Norse glossary and synthesized names. Existing files are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withTelemetry(cmd.Context(), func(ctx context.Context) error {
				return a.seed(ctx, offline)
			})
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "skip world.toml, which needs the book corpus and model providers")
	return cmd
}

func (a *app) seed(ctx context.Context, offline bool) error {
	store, err := archive.Open(a.cfg.Archive.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	sc := a.cfg.Seed
	opts := []seed.Option{
		seed.WithMetrics(a.metrics),
		seed.WithShuffleSeed(sc.ShuffleSeed),
		seed.WithBooksPerBand(sc.BooksPerBand),
		seed.WithGrammarCap(sc.GrammarCap),
		seed.WithDateBound(sc.DateBound),
	}
	if !offline {
		if c, ok := a.seedCollaborators(); ok {
			opts = append(opts, c)
		}
	}

	written, err := seed.NewGenerator(a.cfg.Output.Path(sc.Dir), store, opts...).Run(ctx)
	a.printPaths(written)
	return err
}

// seedCollaborators builds the corpus client and the model-backed
// classifiers. It reports false when a provider cannot be created.
func (a *app) seedCollaborators() (seed.Option, bool) {
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	llmProvider, err := buildAgentLLM(a.cfg, reg)
	if err != nil || llmProvider == nil {
		slog.Warn("world seed disabled: no usable llm provider", "err", err)
		return nil, false
	}
	emb, err := buildEmbeddings(a.cfg, reg)
	if err != nil || emb == nil {
		slog.Warn("world seed disabled: no usable embeddings provider", "err", err)
		return nil, false
	}

	corpus := seed.NewArchiveClient(a.cfg.Seed.CorpusURL, defaultProviderTimeout)
	return seed.WithCollaborators(
		corpus,
		seed.NewLLMSummariser(llmProvider),
		seed.NewEmbeddingZeroShot(emb),
		seed.NewEmbeddingSentiment(emb),
	), true
}
