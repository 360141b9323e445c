// Package emit turns categorized clusters into the artifacts consumed
// downstream: RON model metadata laid out by faction, settlement, biome and
// kind; faction upgrade chains; Markdown prompt templates; and generated Go
// source describing dungeon and region containers.
//
// Every file name is derived with [SanitizeName]. Emission is deterministic:
// identical clusters produce identical files, which are overwritten on each
// run.
package emit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MrWong99/hexforge/internal/categorize"
	"github.com/MrWong99/hexforge/internal/cluster"
	"github.com/MrWong99/hexforge/internal/observe"
)

// Emitter writes artifacts below three roots.
type Emitter struct {
	assetsDir     string
	promptsDir    string
	containersDir string
	pkg           string

	training *categorize.Corpus
	log      *slog.Logger
	metrics  *observe.Metrics
}

// Option configures an [Emitter].
type Option func(*Emitter)

// WithTraining supplies corruption bands and themes from a training corpus.
func WithTraining(c *categorize.Corpus) Option { return func(e *Emitter) { e.training = c } }

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option { return func(e *Emitter) { e.log = l } }

// WithMetrics counts written artifacts.
func WithMetrics(m *observe.Metrics) Option { return func(e *Emitter) { e.metrics = m } }

// WithContainerPackage sets the package name of generated container sources.
func WithContainerPackage(pkg string) Option { return func(e *Emitter) { e.pkg = pkg } }

// New returns an emitter. Empty roots disable the artifacts written there.
func New(assetsDir, promptsDir, containersDir string, opts ...Option) *Emitter {
	e := &Emitter{
		assetsDir:     assetsDir,
		promptsDir:    promptsDir,
		containersDir: containersDir,
		pkg:           DefaultContainerPkg,
		log:           slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Plan is [Plan] with the emitter's training corpus as default.
func (e *Emitter) Plan(snap cluster.Snapshot, opts PlanOptions) []Asset {
	if opts.Training == nil {
		opts.Training = e.training
	}
	return Plan(snap, opts)
}

func (e *Emitter) write(ctx context.Context, root, rel, kind string, data []byte) (string, error) {
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("emit: create %q: %w", filepath.Dir(p), err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("emit: write %q: %w", p, err)
	}
	if e.metrics != nil {
		e.metrics.RecordArtifact(ctx, kind)
	}
	e.log.Debug("artifact written", "path", p, "kind", kind)
	return p, nil
}

func checkAsset(a Asset) error {
	if !IsSanitized(a.Name) {
		return fmt.Errorf("%w: asset name %q", ErrInvalidPath, a.Name)
	}
	if a.Kind != Leaders && !IsSanitized(a.Group) {
		return fmt.Errorf("%w: %s group %q", ErrInvalidPath, a.Kind, a.Group)
	}
	return nil
}

// WriteAssets writes one .meta.ron per asset. A failing file does not stop
// the others; all failures are joined into the returned error.
func (e *Emitter) WriteAssets(ctx context.Context, assets []Asset) ([]string, error) {
	var (
		written []string
		errs    []error
	)
	for _, a := range assets {
		if err := checkAsset(a); err != nil {
			errs = append(errs, err)
			continue
		}
		p, err := e.write(ctx, e.assetsDir, a.RelPath(), "ron", a.Meta.MarshalRON())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		written = append(written, p)
	}
	return written, errors.Join(errs...)
}

// WriteUpgradeChains writes one RON file per chain.
func (e *Emitter) WriteUpgradeChains(ctx context.Context, chains []UpgradeChain) ([]string, error) {
	var (
		written []string
		errs    []error
	)
	for _, c := range chains {
		if !IsSanitized(c.Faction) {
			errs = append(errs, fmt.Errorf("%w: faction %q", ErrInvalidPath, c.Faction))
			continue
		}
		p, err := e.write(ctx, e.assetsDir, c.RelPath(), "upgrade_chain", c.MarshalRON())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		written = append(written, p)
	}
	return written, errors.Join(errs...)
}

// WritePrompts writes a model prompt per asset, a dialogue prompt per
// character unit, one progression guide per corruption band and the README
// index.
func (e *Emitter) WritePrompts(ctx context.Context, assets []Asset) ([]string, error) {
	var (
		written []string
		rels    []string
		errs    []error
	)
	emit := func(rel string, data []byte, err error) {
		if err == nil {
			var p string
			p, err = e.write(ctx, e.promptsDir, rel, "prompt", data)
			if err == nil {
				written = append(written, p)
				rels = append(rels, rel)
				return
			}
		}
		errs = append(errs, err)
	}

	for _, a := range assets {
		if err := checkAsset(a); err != nil {
			errs = append(errs, err)
			continue
		}
		data, err := RenderModelPrompt(a, e.training)
		emit(ModelPromptPath(a), data, err)
		if HasDialogue(a) {
			data, err := RenderDialoguePrompt(a, e.training)
			emit(DialoguePromptPath(a), data, err)
		}
	}
	for band := 1; band <= len(tierLooks); band++ {
		data, err := RenderProgressionGuide(band, assets, e.training)
		emit(ProgressionGuidePath(band), data, err)
	}
	data, err := RenderPromptIndex(rels)
	emit(PromptIndexFile, data, err)
	return written, errors.Join(errs...)
}

// WriteDungeonContainers writes the dungeon container source file.
func (e *Emitter) WriteDungeonContainers(ctx context.Context, snap cluster.Snapshot) (string, error) {
	src, err := RenderDungeonContainers(e.pkg, DungeonContainers(snap))
	if err != nil {
		return "", err
	}
	return e.write(ctx, e.containersDir, DungeonContainerFile, "container", src)
}

// WriteRegionContainers writes the region container source file, linking
// each region to the emitted assets.
func (e *Emitter) WriteRegionContainers(ctx context.Context, snap cluster.Snapshot, assets []Asset) (string, error) {
	src, err := RenderRegionContainers(e.pkg, RegionContainers(snap, assets))
	if err != nil {
		return "", err
	}
	return e.write(ctx, e.containersDir, RegionContainerFile, "container", src)
}

// GenerateAll plans every asset and writes metadata, auto-detected upgrade
// chains and prompts. It returns all paths written.
func (e *Emitter) GenerateAll(ctx context.Context, snap cluster.Snapshot, opts PlanOptions) ([]string, error) {
	assets := e.Plan(snap, opts)
	e.log.Info("generating assets", "assets", len(assets), "corruption_themes", opts.CorruptionThemes)

	var errs []error
	written, err := e.WriteAssets(ctx, assets)
	errs = append(errs, err)

	chains, err := e.WriteUpgradeChains(ctx, UpgradeChains(assets, true))
	written = append(written, chains...)
	errs = append(errs, err)

	prompts, err := e.WritePrompts(ctx, assets)
	written = append(written, prompts...)
	errs = append(errs, err)

	return written, errors.Join(errs...)
}
