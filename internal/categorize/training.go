package categorize

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/MrWong99/hexforge/internal/category"
)

// ErrMalformedTraining is returned when a training file cannot be decoded or
// fails validation.
var ErrMalformedTraining = errors.New("categorize: malformed training data")

// ErrMissingTraining is returned in strict mode when a training file is absent.
var ErrMissingTraining = errors.New("categorize: missing training data")

// MaxCorruptionBand is the highest corruption band a training example may
// carry. Zero means the example has no band.
const MaxCorruptionBand = 5

// TrainingData is the shape of one training corpus file.
type TrainingData struct {
	Category TrainingCategory `toml:"category"`
	Examples []Example        `toml:"examples"`
	Patterns Patterns         `toml:"patterns"`
}

// TrainingCategory describes what a training file covers.
type TrainingCategory struct {
	Name        string `toml:"name"`
	Subcategory string `toml:"subcategory"`
	Description string `toml:"description"`
}

// Example is a single labelled reference entity.
type Example struct {
	Name            string   `toml:"name"`
	ContentPatterns []string `toml:"content_patterns"`
	Markers         []string `toml:"markers"`
	CorruptionBand  int      `toml:"corruption_band"`
	HorrorTheme     string   `toml:"horror_theme"`
}

// Patterns holds category-wide indicator phrases.
type Patterns struct {
	PositiveIndicators []string `toml:"positive_indicators"`
	NegativeIndicators []string `toml:"negative_indicators"`
}

// TrainingFile pairs a corpus-relative path with the category it trains.
type TrainingFile struct {
	Path     string
	Category category.Category
}

// TrainingFiles is the fixed corpus layout.
var TrainingFiles = []TrainingFile{
	{Path: "characters/npcs.toml", Category: category.Characters},
	{Path: "creatures/monsters.toml", Category: category.Creatures},
	{Path: "items/treasure.toml", Category: category.Items},
	{Path: "spells/magic_systems.toml", Category: category.Spells},
	{Path: "locations/dungeons.toml", Category: category.Dungeons},
	{Path: "locations/regions.toml", Category: category.Regions},
	{Path: "locations/settlements.toml", Category: category.Settlements},
	{Path: "locations/factions.toml", Category: category.Factions},
	{Path: "mechanics/dice_rules.toml", Category: category.Mechanics},
}

// Corpus is a loaded training corpus keyed by category.
// A nil *Corpus is valid and empty.
type Corpus struct {
	sets map[category.Category]*TrainingData
}

// LoadTrainingData decodes and validates one training file from r.
// Unknown keys are rejected.
func LoadTrainingData(r io.Reader) (*TrainingData, error) {
	var td TrainingData
	md, err := toml.NewDecoder(r).Decode(&td)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTraining, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown keys %v", ErrMalformedTraining, undecoded)
	}
	if err := td.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTraining, err)
	}
	return &td, nil
}

// Validate checks example names and corruption bands.
func (td *TrainingData) Validate() error {
	var errs []error
	for i, ex := range td.Examples {
		if strings.TrimSpace(ex.Name) == "" {
			errs = append(errs, fmt.Errorf("examples[%d]: name must not be empty", i))
		}
		if ex.CorruptionBand < 0 || ex.CorruptionBand > MaxCorruptionBand {
			errs = append(errs, fmt.Errorf("examples[%d] (%s): corruption_band %d outside 0..%d",
				i, ex.Name, ex.CorruptionBand, MaxCorruptionBand))
		}
	}
	return errors.Join(errs...)
}

// LoadCorpus reads every file in [TrainingFiles] below dir.
//
// In strict mode a missing file returns [ErrMissingTraining]; otherwise it is
// logged and skipped. Malformed files always fail with [ErrMalformedTraining].
func LoadCorpus(dir string, strict bool) (*Corpus, error) {
	c := &Corpus{sets: make(map[category.Category]*TrainingData)}
	for _, tf := range TrainingFiles {
		path := filepath.Join(dir, filepath.FromSlash(tf.Path))
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if strict {
					return nil, fmt.Errorf("%w: %s", ErrMissingTraining, path)
				}
				slog.Warn("training file missing, skipping", "path", path, "category", tf.Category)
				continue
			}
			return nil, fmt.Errorf("categorize: open %q: %w", path, err)
		}
		td, err := LoadTrainingData(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("categorize: load %q: %w", path, err)
		}
		c.sets[tf.Category] = td
	}
	slog.Debug("training corpus loaded", "dir", dir, "files", len(c.sets))
	return c, nil
}

// NewCorpus builds a corpus from already-decoded data.
func NewCorpus(sets map[category.Category]*TrainingData) *Corpus {
	return &Corpus{sets: sets}
}

// For returns the training data for cat, or nil.
func (c *Corpus) For(cat category.Category) *TrainingData {
	if c == nil {
		return nil
	}
	return c.sets[cat]
}

// Len returns the number of loaded training files.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.sets)
}

// Example looks up a training example by name, case-insensitively, across
// all categories.
func (c *Corpus) Example(name string) (Example, bool) {
	if c == nil {
		return Example{}, false
	}
	for _, tf := range TrainingFiles {
		td := c.sets[tf.Category]
		if td == nil {
			continue
		}
		for _, ex := range td.Examples {
			if strings.EqualFold(ex.Name, name) {
				return ex, true
			}
		}
	}
	return Example{}, false
}
