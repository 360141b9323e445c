package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrWong99/hexforge/internal/cluster"
	"github.com/MrWong99/hexforge/internal/emit"
)

// emitFlags are shared by the commands that read cluster files.
type emitFlags struct {
	input  string
	assets string
	themes bool
}

func (f *emitFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.input, "input", "", "cluster directory written by run (default: output.analysis_dir)")
	cmd.Flags().StringVar(&f.assets, "assets", "", "asset output directory (default: output.assets_dir)")
	cmd.Flags().BoolVar(&f.themes, "corruption-themes", false, "fill corruption_band and horror_theme from the training corpus")
}

// snapshot loads the cluster files named by --input.
func (a *app) snapshot(f *emitFlags) (cluster.Snapshot, error) {
	dir := f.input
	if dir == "" {
		dir = a.analysisDir()
	}
	return cluster.Load(dir)
}

func newGenerateAllCmd(a *app) *cobra.Command {
	var (
		f      emitFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "generate-all",
		Short: "Write every asset, upgrade chain, prompt and container source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withTelemetry(cmd.Context(), func(ctx context.Context) error {
				return a.generateAll(ctx, &f, output)
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&output, "output", "", "prompt output directory (default: output.prompts_dir)")
	return cmd
}

func (a *app) generateAll(ctx context.Context, f *emitFlags, promptsDir string) error {
	snap, err := a.snapshot(f)
	if err != nil {
		return err
	}
	corpus, err := a.loadCorpus()
	if err != nil {
		return err
	}
	em := a.emitter(f.assets, promptsDir, corpus)
	opts := emit.PlanOptions{CorruptionThemes: f.themes}

	written, genErr := em.GenerateAll(ctx, snap, opts)
	dungeons, err := em.WriteDungeonContainers(ctx, snap)
	if err == nil {
		written = append(written, dungeons)
	}
	errs := []error{genErr, err}
	regions, err := em.WriteRegionContainers(ctx, snap, em.Plan(snap, opts))
	if err == nil {
		written = append(written, regions)
	}
	errs = append(errs, err)

	a.printPaths(written)
	return errors.Join(errs...)
}

func newGenerateCmd(a *app) *cobra.Command {
	var (
		f       emitFlags
		faction string
	)
	cmd := &cobra.Command{
		Use:       "generate <units|buildings|leaders|terrain>",
		Short:     "Write the metadata of one asset kind",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"units", "buildings", "leaders", "terrain"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := emit.ParseAssetKind(args[0])
			if err != nil {
				return err
			}
			return a.withTelemetry(cmd.Context(), func(ctx context.Context) error {
				snap, err := a.snapshot(&f)
				if err != nil {
					return err
				}
				corpus, err := a.loadCorpus()
				if err != nil {
					return err
				}
				em := a.emitter(f.assets, "", corpus)
				assets := em.Plan(snap, emit.PlanOptions{
					Kinds:            []emit.AssetKind{kind},
					Faction:          faction,
					CorruptionThemes: f.themes,
				})
				if len(assets) == 0 {
					return fmt.Errorf("no %s assets to generate", kind)
				}
				written, err := em.WriteAssets(ctx, assets)
				a.printPaths(written)
				return err
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&faction, "faction", "", "only generate assets of this faction")
	return cmd
}

func newUpgradesCmd(a *app) *cobra.Command {
	var (
		f          emitFlags
		autoDetect bool
	)
	cmd := &cobra.Command{
		Use:   "upgrades",
		Short: "Write the per-faction unit upgrade chains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withTelemetry(cmd.Context(), func(ctx context.Context) error {
				snap, err := a.snapshot(&f)
				if err != nil {
					return err
				}
				em := a.emitter(f.assets, "", nil)
				assets := em.Plan(snap, emit.PlanOptions{Kinds: []emit.AssetKind{emit.Units}})
				written, err := em.WriteUpgradeChains(ctx, emit.UpgradeChains(assets, autoDetect))
				a.printPaths(written)
				return err
			})
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&autoDetect, "auto-detect", false, "infer tiers from unit names when no explicit tier is present")
	return cmd
}
