package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/MrWong99/hexforge/internal/archive"
	"github.com/MrWong99/hexforge/internal/category"
)

// DefaultShuffleSeed fixes the category name selection across builds.
const DefaultShuffleSeed = 1337

// SamplesPerCategory is the maximum number of entities in a category seed.
const SamplesPerCategory = 5

// knownNames lists entity names known to occur in the archive, per seeded
// category.
var knownNames = []struct {
	Category category.Category
	Names    []string
}{
	{category.Regions, []string{
		"Ashen Forest", "Fearful Peaks", "Barrowmoor", "Glimmering Fen", "Howling Steppe",
		"Blackwater Marsh", "Thornveil Woods", "Sunken Vale", "Frostmere", "Cinder Wastes",
	}},
	{category.Settlements, []string{
		"Village of Harad", "Town of Tinder", "City of Dorith", "Hamlet of Oakmere", "Village of Ember",
		"Town of Greywatch", "City of Vessel", "Village of Lornhollow",
	}},
	{category.Factions, []string{
		"The Red Hand", "Order of the Pale Flame", "Cult of the Hollow King", "The Ashen Circle",
		"Brotherhood of the Thorn", "The Grey Wardens", "Syndicate of Coin",
	}},
	{category.Dungeons, []string{
		"Crypt of the Dead King", "Caves of Chaos", "Temple of the Drowned God", "Tomb of Whispers",
		"Lair of the Wyrm", "Halls of the Forgotten", "Pit of Ash",
	}},
}

// SampleEntity is one archive row picked for a category seed.
type SampleEntity struct {
	UUID       string `toml:"uuid"`
	EntityName string `toml:"entity_name"`
	Content    string `toml:"content"`
}

// CategorySamples is the content of one {category}.toml seed.
type CategorySamples struct {
	Category    string         `toml:"category"`
	SampleCount int            `toml:"sample_count"`
	Entities    []SampleEntity `toml:"entities"`
}

// Matcher finds the first non-JSON archive row containing a name.
// [*archive.Store] satisfies it.
type Matcher interface {
	FirstMatching(ctx context.Context, needle string) (archive.Row, bool, error)
}

// PickNames returns up to n of names, shuffled with seed. The result depends
// only on its arguments.
func PickNames(names []string, n int, seed uint64) []string {
	picked := append([]string(nil), names...)
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	r.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	if len(picked) > n {
		picked = picked[:n]
	}
	return picked
}

// SampleCategory builds the seed for one category by looking up each picked
// name in the archive. Names without a match are skipped.
func SampleCategory(ctx context.Context, m Matcher, cat category.Category, names []string, seed uint64) (CategorySamples, error) {
	out := CategorySamples{Category: cat.String(), Entities: []SampleEntity{}}
	for _, name := range PickNames(names, SamplesPerCategory, seed) {
		row, ok, err := m.FirstMatching(ctx, name)
		if err != nil {
			return CategorySamples{}, fmt.Errorf("seed: sample %s %q: %w", cat, name, err)
		}
		if !ok {
			continue
		}
		out.Entities = append(out.Entities, SampleEntity{UUID: row.UUID, EntityName: name, Content: row.Value})
	}
	out.SampleCount = len(out.Entities)
	return out, nil
}

// EncodeTOML renders v as indented TOML.
func EncodeTOML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = "  "
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeOnce writes data to path unless path already exists. It reports
// whether the file was written.
func writeOnce(path string, data func() ([]byte, error)) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("seed: stat %q: %w", path, err)
	}
	b, err := data()
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("seed: create %q: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return false, fmt.Errorf("seed: write %q: %w", path, err)
	}
	return true, nil
}

// WriteCategorySeeds writes {category}.toml for every seeded category into
// dir, skipping files that already exist. It returns the paths written.
func WriteCategorySeeds(ctx context.Context, m Matcher, dir string, seed uint64, log *slog.Logger) ([]string, error) {
	if log == nil {
		log = slog.Default()
	}
	var written []string
	for _, kn := range knownNames {
		path := filepath.Join(dir, kn.Category.String()+".toml")
		ok, err := writeOnce(path, func() ([]byte, error) {
			samples, err := SampleCategory(ctx, m, kn.Category, kn.Names, seed)
			if err != nil {
				return nil, err
			}
			b, err := EncodeTOML(samples)
			if err != nil {
				return nil, fmt.Errorf("seed: encode %s: %w", kn.Category, err)
			}
			log.Info("category seed sampled", "category", kn.Category.String(), "samples", samples.SampleCount)
			return b, nil
		})
		if err != nil {
			return written, err
		}
		if !ok {
			log.Info("category seed exists, skipping", "path", path)
			continue
		}
		written = append(written, path)
	}
	return written, nil
}
