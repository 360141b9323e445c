// Package pipeline composes one complete build run.
//
// A run scans the archive, categorizes every entity into the cluster store,
// persists the clusters, hands the combined cluster of each location
// category to a [Generator] in the fixed order of [category.Locations] and
// finally emits the dungeon and region container sources. Only input errors
// abort a run; every later failure is recorded in the returned [Summary] and
// the run continues.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MrWong99/hexforge/internal/archive"
	"github.com/MrWong99/hexforge/internal/categorize"
	"github.com/MrWong99/hexforge/internal/category"
	"github.com/MrWong99/hexforge/internal/cluster"
	"github.com/MrWong99/hexforge/internal/emit"
	"github.com/MrWong99/hexforge/internal/entity"
	"github.com/MrWong99/hexforge/internal/htmlparse"
	"github.com/MrWong99/hexforge/internal/observe"
)

// Generator produces artifacts for the combined cluster of one location
// category and returns the paths it wrote.
type Generator interface {
	Generate(ctx context.Context, c cluster.Cluster) ([]string, error)
}

// GeneratorFunc adapts a function to [Generator].
type GeneratorFunc func(ctx context.Context, c cluster.Cluster) ([]string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, c cluster.Cluster) ([]string, error) {
	return f(ctx, c)
}

// GenerationResult is the outcome of one per-category generation step.
type GenerationResult struct {
	Category string   `json:"category"`
	Entities int      `json:"entities"`
	Files    []string `json:"files,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// OK reports whether the step succeeded.
func (r GenerationResult) OK() bool { return r.Error == "" }

// Summary describes a finished run.
type Summary struct {
	EntityCounts       map[string]int     `json:"entity_counts"`
	UncategorizedCount int                `json:"uncategorized_count"`
	GenerationResults  []GenerationResult `json:"generation_results"`
	Notes              []string           `json:"notes"`
}

func (s *Summary) note(format string, args ...any) {
	s.Notes = append(s.Notes, fmt.Sprintf(format, args...))
}

// result returns the generation result of cat, if any.
func (s *Summary) result(cat category.Category) (GenerationResult, bool) {
	for _, r := range s.GenerationResults {
		if r.Category == cat.String() {
			return r, true
		}
	}
	return GenerationResult{}, false
}

// Option configures a [Pipeline].
type Option func(*Pipeline)

// WithCategorizer replaces the default heuristic categorizer.
func WithCategorizer(c *categorize.Categorizer) Option {
	return func(p *Pipeline) { p.categorizer = c }
}

// WithClusterOptions configures the cluster store of each run.
func WithClusterOptions(opts ...cluster.Option) Option {
	return func(p *Pipeline) { p.clusterOpts = append(p.clusterOpts, opts...) }
}

// WithGenerator sets the per-category generation step. Without one the
// categories are clustered and counted but nothing is generated for them.
func WithGenerator(g Generator) Option {
	return func(p *Pipeline) { p.generator = g }
}

// WithEmitter enables the container sources written after generation.
func WithEmitter(e *emit.Emitter) Option {
	return func(p *Pipeline) { p.emitter = e }
}

// WithArchiveOptions passes options to [archive.Open].
func WithArchiveOptions(opts ...archive.Option) Option {
	return func(p *Pipeline) { p.archiveOpts = append(p.archiveOpts, opts...) }
}

// WithMetrics records stage durations and categorization counters.
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// Pipeline runs builds against one archive.
type Pipeline struct {
	archivePath string
	analysisDir string

	categorizer *categorize.Categorizer
	clusterOpts []cluster.Option
	archiveOpts []archive.Option
	generator   Generator
	emitter     *emit.Emitter
	metrics     *observe.Metrics
	log         *slog.Logger
}

// New returns a pipeline reading archivePath and writing cluster files to
// analysisDir.
func New(archivePath, analysisDir string, opts ...Option) *Pipeline {
	p := &Pipeline{
		archivePath: archivePath,
		analysisDir: analysisDir,
		log:         slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	if p.categorizer == nil {
		p.categorizer = categorize.New()
	}
	return p
}

// Run executes one build. The error is non-nil only for input errors: a
// missing or corrupt archive, or a failing scan.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	ctx, finish := observe.Stage(ctx, p.metrics, "run")
	sum, err := p.run(ctx)
	finish(err)
	return sum, err
}

func (p *Pipeline) run(ctx context.Context) (*Summary, error) {
	log := p.log.With("run_id", observe.RunID(ctx))
	sum := &Summary{EntityCounts: make(map[string]int), GenerationResults: []GenerationResult{}, Notes: []string{}}

	clusters, err := p.scan(ctx, log, sum)
	if err != nil {
		return nil, err
	}
	for cat, n := range clusters.Counts() {
		if cat == category.Uncategorized {
			sum.UncategorizedCount = n
			continue
		}
		sum.EntityCounts[cat.String()] = n
	}

	if p.analysisDir != "" {
		_, done := observe.Stage(ctx, p.metrics, "write_clusters")
		written, err := clusters.WriteAll(p.analysisDir)
		done(err)
		if err != nil {
			log.Warn("writing clusters failed", "err", err)
			sum.note("write clusters: %v", err)
		} else {
			log.Info("clusters written", "dir", p.analysisDir, "files", len(written))
		}
	}

	p.generate(ctx, log, clusters, sum)
	p.containers(ctx, log, clusters, sum)

	log.Info("pipeline complete",
		"entities", clusters.Total(),
		"uncategorized", sum.UncategorizedCount,
		"generated", len(sum.GenerationResults),
		"notes", len(sum.Notes),
	)
	return sum, nil
}

// scan streams the archive into a fresh cluster store. Entities whose uuid
// was already seen are skipped with a note.
func (p *Pipeline) scan(ctx context.Context, log *slog.Logger, sum *Summary) (_ *cluster.Store, err error) {
	ctx, done := observe.Stage(ctx, p.metrics, "scan")
	defer func() { done(err) }()

	opts := append([]archive.Option{archive.WithLogger(log)}, p.archiveOpts...)
	store, err := archive.Open(p.archivePath, opts...)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	clusters := cluster.New(p.clusterOpts...)
	seen := entity.NewSeen(0)
	for row, err := range store.ScanEntities(ctx) {
		if err != nil {
			return nil, err
		}
		e := p.categorizer.Categorize(row.UUID, row.Value)
		if err := seen.Admit(e); err != nil {
			if errors.Is(err, entity.ErrDuplicateID) {
				sum.note("duplicate uuid %s skipped", row.UUID)
			} else {
				sum.note("invalid entity %s skipped: %v", row.UUID, err)
			}
			log.Warn("skipping entity", "uuid", row.UUID, "err", err)
			continue
		}
		clusters.Add(e)
		if p.metrics != nil {
			p.metrics.RecordCategorized(ctx, e.Category.String())
		}
		p.parseWarnings(ctx, log, e)
	}
	log.Info("archive scanned", "path", p.archivePath, "entities", clusters.Total())
	return clusters, nil
}

// parseWarnings logs the warnings of fragments some parser recognizes.
func (p *Pipeline) parseWarnings(ctx context.Context, log *slog.Logger, e entity.RawEntity) {
	if len(htmlparse.Recognize(e.RawValue)) == 0 {
		return
	}
	res := htmlparse.Parse(e.RawValue)
	res.Log(log, "uuid", e.UUID, "category", e.Category.String())
	if p.metrics != nil {
		for _, w := range res.Warnings {
			p.metrics.RecordParseWarning(ctx, string(w.Kind))
		}
	}
}

func (p *Pipeline) generate(ctx context.Context, log *slog.Logger, clusters *cluster.Store, sum *Summary) {
	if p.generator == nil {
		sum.note("no generator configured; generation skipped")
		return
	}
	for _, cat := range category.Locations {
		c := clusters.Combined(cat)
		if len(c.Entities) == 0 {
			continue
		}
		stageCtx, done := observe.Stage(ctx, p.metrics, "generate_"+cat.String())
		files, err := p.generator.Generate(stageCtx, c)
		done(err)

		res := GenerationResult{Category: cat.String(), Entities: len(c.Entities), Files: files}
		if err != nil {
			res.Error = err.Error()
			sum.note("generate %s: %v", cat, err)
			log.Warn("generation failed", "category", cat.String(), "err", err)
		} else {
			log.Info("category generated", "category", cat.String(), "entities", len(c.Entities), "files", len(files))
		}
		sum.GenerationResults = append(sum.GenerationResults, res)
	}
}

// containers writes the dungeon container after a successful dungeon step
// and the region container after a successful region step.
func (p *Pipeline) containers(ctx context.Context, log *slog.Logger, clusters *cluster.Store, sum *Summary) {
	if p.emitter == nil {
		return
	}
	ctx, done := observe.Stage(ctx, p.metrics, "containers")
	var errs []error
	defer func() { done(errors.Join(errs...)) }()

	snap := clusters.Snapshot()
	if r, ok := sum.result(category.Dungeons); !ok || !r.OK() {
		sum.note("dungeon container skipped: no successful dungeon generation")
	} else if path, err := p.emitter.WriteDungeonContainers(ctx, snap); err != nil {
		errs = append(errs, err)
		sum.note("dungeon container: %v", err)
	} else {
		log.Info("container written", "path", path)
	}

	if r, ok := sum.result(category.Regions); !ok || !r.OK() {
		sum.note("region container skipped: no successful region generation")
	} else if path, err := p.emitter.WriteRegionContainers(ctx, snap, p.emitter.Plan(snap, emit.PlanOptions{})); err != nil {
		errs = append(errs, err)
		sum.note("region container: %v", err)
	} else {
		log.Info("container written", "path", path)
	}
}
