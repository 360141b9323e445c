package seed_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrWong99/hexforge/internal/archive"
	"github.com/MrWong99/hexforge/internal/seed"
)

// echoMatcher finds every name.
type echoMatcher struct{}

func (echoMatcher) FirstMatching(_ context.Context, needle string) (archive.Row, bool, error) {
	return archive.Row{UUID: "uuid-" + needle, Value: "<p>" + needle + "</p>"}, true, nil
}

func newGenerator(dir string) *seed.Generator {
	corpus := &fakeCorpus{
		match: "village",
		items: []seed.Item{{Identifier: "hearthtales", Title: "Hearth Tales of the Wolf and the Tower", Date: "1902"}},
	}
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return seed.NewGenerator(dir, echoMatcher{},
		seed.WithClock(func() time.Time { return fixed }),
		seed.WithCollaborators(corpus,
			fixedSummariser("A shepherd walks home past a wolf."),
			fixedZeroShot{"folklore": 0.8, "battle and weapons": 0.9},
			fixedMood{Polarity: seed.Positive, Score: 0.7}),
		seed.WithDictionary([]seed.DictEntry{{Word: "sverð", Gloss: "a sword, the weapon of a warrior"}}),
	)
}

func TestGenerator_Run(t *testing.T) {
	t.Parallel()
	dirA, dirB := t.TempDir(), t.TempDir()

	written, err := newGenerator(dirA).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(written) != 5 {
		t.Fatalf("wrote %v, want 4 category seeds and world.toml", written)
	}
	if _, err := newGenerator(dirB).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, name := range []string{"regions.toml", seed.WorldFile} {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		if err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(filepath.Join(dirB, name))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("%s is not byte-identical across runs", name)
		}
	}

	world, err := os.ReadFile(filepath.Join(dirA, seed.WorldFile))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"generated_at = 2024-03-01T12:00:00Z",
		`identifier = "hearthtales"`,
		`word = "sverð"`,
		`name = "wolf"`,
		`kind = "tower"`,
	} {
		if !bytes.Contains(world, []byte(want)) {
			t.Errorf("world.toml lacks %q", want)
		}
	}

	again, err := newGenerator(dirA).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second run wrote %v, want nothing", again)
	}
}

func TestGenerator_WithoutCollaborators(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	written, err := seed.NewGenerator(dir, echoMatcher{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(written) != 4 {
		t.Errorf("wrote %d files, want 4", len(written))
	}
	if _, err := os.Stat(filepath.Join(dir, seed.WorldFile)); !os.IsNotExist(err) {
		t.Errorf("world.toml should not exist, stat err = %v", err)
	}
}
