// Package seed produces the build-time seed artifacts: one TOML sample file
// per major category drawn from the archive, and world.toml, which integrates
// summarised public-domain books, a themed Old Norse glossary, synthesized
// names, and the creature and landmark seeds derived from the books.
//
// Every output file is written at most once; an existing file is left as is.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/MrWong99/hexforge/internal/observe"
)

// Default tuning for [Generator].
const (
	DefaultBooksPerBand = 3
	DefaultGrammarCap   = 400
)

// Generator writes all seed artifacts into a directory.
type Generator struct {
	dir       string
	matcher   Matcher
	corpus    Corpus
	summ      Summariser
	zeroShot  ZeroShot
	sentiment SentimentClassifier

	shuffleSeed  uint64
	booksPerBand int
	grammarCap   int
	dateBound    int
	dictionary   []DictEntry

	log     *slog.Logger
	metrics *observe.Metrics
	now     func() time.Time
}

// Option configures a [Generator].
type Option func(*Generator)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option { return func(g *Generator) { g.log = l } }

// WithMetrics records per-band item counts.
func WithMetrics(m *observe.Metrics) Option { return func(g *Generator) { g.metrics = m } }

// WithClock overrides the time stamped into world.toml.
func WithClock(now func() time.Time) Option { return func(g *Generator) { g.now = now } }

// WithShuffleSeed overrides [DefaultShuffleSeed].
func WithShuffleSeed(seed uint64) Option { return func(g *Generator) { g.shuffleSeed = seed } }

// WithBooksPerBand sets how many books are summarised per band.
func WithBooksPerBand(n int) Option { return func(g *Generator) { g.booksPerBand = n } }

// WithGrammarCap bounds the number of dictionary entries classified.
func WithGrammarCap(n int) Option { return func(g *Generator) { g.grammarCap = n } }

// WithDateBound sets the latest publication year accepted from the corpus.
func WithDateBound(year int) Option { return func(g *Generator) { g.dateBound = year } }

// WithDictionary replaces the embedded dictionary.
func WithDictionary(entries []DictEntry) Option { return func(g *Generator) { g.dictionary = entries } }

// WithCollaborators sets the corpus and the classifiers used for world.toml.
func WithCollaborators(c Corpus, s Summariser, z ZeroShot, sc SentimentClassifier) Option {
	return func(g *Generator) {
		g.corpus, g.summ, g.zeroShot, g.sentiment = c, s, z, sc
	}
}

// NewGenerator returns a generator writing into dir and sampling categories
// through m.
func NewGenerator(dir string, m Matcher, opts ...Option) *Generator {
	g := &Generator{
		dir:          dir,
		matcher:      m,
		shuffleSeed:  DefaultShuffleSeed,
		booksPerBand: DefaultBooksPerBand,
		grammarCap:   DefaultGrammarCap,
		dateBound:    DefaultDateBound,
		log:          slog.Default(),
		now:          time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	if g.dictionary == nil {
		g.dictionary = Dictionary()
	}
	return g
}

// Run writes the category seeds and, when collaborators are configured,
// world.toml. It returns the paths written in this run.
func (g *Generator) Run(ctx context.Context) ([]string, error) {
	written, err := WriteCategorySeeds(ctx, g.matcher, g.dir, g.shuffleSeed, g.log)
	if err != nil {
		return written, err
	}
	if g.corpus == nil || g.summ == nil || g.zeroShot == nil || g.sentiment == nil {
		g.log.Info("no corpus collaborators configured, skipping world seed")
		return written, nil
	}

	path := filepath.Join(g.dir, WorldFile)
	ok, err := writeOnce(path, func() ([]byte, error) {
		w, err := g.World(ctx)
		if err != nil {
			return nil, err
		}
		b, err := EncodeTOML(w)
		if err != nil {
			return nil, fmt.Errorf("seed: encode world: %w", err)
		}
		return b, nil
	})
	if err != nil {
		return written, err
	}
	if !ok {
		g.log.Info("world seed exists, skipping", "path", path)
		return written, nil
	}
	return append(written, path), nil
}

// World assembles the world seed without writing it.
func (g *Generator) World(ctx context.Context) (*WorldSeed, error) {
	bs := &BookSeeder{
		Corpus:     g.corpus,
		Summariser: g.summ,
		ZeroShot:   g.zeroShot,
		Sentiment:  g.sentiment,
		PerBand:    g.booksPerBand,
		DateBound:  g.dateBound,
		Log:        g.log,
		OnItems: func(ctx context.Context, band BandKey, n int) {
			g.record(ctx, band, "books", n)
		},
	}
	books, err := bs.Seed(ctx)
	if err != nil {
		return nil, err
	}

	grammar, err := SeedGrammar(ctx, g.zeroShot, g.dictionary, g.grammarCap)
	if err != nil {
		return nil, err
	}
	for _, band := range Bands {
		g.record(ctx, band, "grammar", len(grammar[band]))
	}

	creatures, landmarks := DeriveSeeds(books)
	g.log.Info("world seed assembled", "books", len(books), "creatures", len(creatures), "landmarks", len(landmarks))

	return &WorldSeed{
		GeneratedAt: g.now().UTC().Truncate(time.Second),
		Books:       books,
		Grammar:     grammar,
		Names:       SynthesizeNames(g.shuffleSeed, NamesPerRegion),
		Creatures:   creatures,
		Landmarks:   landmarks,
	}, nil
}

func (g *Generator) record(ctx context.Context, band BandKey, source string, n int) {
	if g.metrics != nil {
		g.metrics.RecordSeedItems(ctx, string(band), source, n)
	}
}
