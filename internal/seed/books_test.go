package seed_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/MrWong99/hexforge/internal/seed"
)

const narrative = `"Who is there?" the shepherd called into the dark. Nothing answered but the wind. He drew his cloak tight and walked on toward the village, where the hearth fires still burned.`

// fakeCorpus answers searches whose query contains match and serves the
// same narrative for every item.
type fakeCorpus struct {
	mu      sync.Mutex
	match   string
	items   []seed.Item
	fetched []string
	fail    map[string]bool
}

func (f *fakeCorpus) Search(_ context.Context, query string, _ int) ([]seed.Item, error) {
	if f.match == "" || !strings.Contains(query, f.match) {
		return nil, nil
	}
	return f.items, nil
}

func (f *fakeCorpus) Fetch(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, id)
	if f.fail[id] {
		return "", seed.ErrNoText
	}
	return narrative, nil
}

type fixedSummariser string

func (s fixedSummariser) Summarise(context.Context, string) (string, error) { return string(s), nil }

type fixedZeroShot map[string]float64

func (z fixedZeroShot) Classify(_ context.Context, _ string, labels []string) ([]seed.LabelScore, error) {
	out := make([]seed.LabelScore, len(labels))
	for i, l := range labels {
		out[i] = seed.LabelScore{Label: l, Score: z[l]}
	}
	return out, nil
}

type fixedMood seed.Mood

func (m fixedMood) Sentiment(context.Context, string) (seed.Mood, error) { return seed.Mood(m), nil }

func TestComposeSummary(t *testing.T) {
	t.Parallel()
	got := seed.ComposeSummary("A tale.",
		[]seed.LabelScore{{Label: "horror", Score: 0.91}, {Label: "death", Score: 0.4}},
		seed.Mood{Polarity: seed.Negative, Score: 0.87})
	want := "A tale.\n\nTags: horror(0.91),death(0.40)\nMood: negative(0.87)"
	if got != want {
		t.Errorf("ComposeSummary =\n%q\nwant\n%q", got, want)
	}
}

func TestBookSeeder_Seed(t *testing.T) {
	t.Parallel()
	corpus := &fakeCorpus{
		match: "village",
		items: []seed.Item{
			{Identifier: "folkjournal", Title: "Folk-Lore Journal"},
			{Identifier: "broken", Title: "Broken Scan"},
			{Identifier: "hearthtales", Title: "Hearth Tales", Date: "1902"},
			{Identifier: "moretales", Title: "More Tales"},
			{Identifier: "extra", Title: "Extra Tales"},
		},
		fail: map[string]bool{"broken": true},
	}
	var counts sync.Map
	bs := &seed.BookSeeder{
		Corpus:     corpus,
		Summariser: fixedSummariser("A shepherd walks home."),
		ZeroShot:   fixedZeroShot{"folklore": 0.8, "nature": 0.3, "horror": 0.1},
		Sentiment:  fixedMood{Polarity: seed.Positive, Score: 0.7},
		PerBand:    2,
		DateBound:  1939,
		OnItems: func(_ context.Context, band seed.BandKey, n int) {
			counts.Store(band, n)
		},
	}

	books, err := bs.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("got %d books, want 2", len(books))
	}
	if books[0].Identifier != "hearthtales" || books[1].Identifier != "moretales" {
		t.Errorf("unexpected books: %s, %s", books[0].Identifier, books[1].Identifier)
	}
	for _, id := range corpus.fetched {
		if id == "folkjournal" {
			t.Error("denied item was fetched")
		}
	}

	b := books[0]
	if b.Band != seed.PeaceToUnease {
		t.Errorf("band = %s", b.Band)
	}
	wantSummary := "A shepherd walks home.\n\nTags: folklore(0.80),nature(0.30)\nMood: positive(0.70)"
	if b.Summary != wantSummary {
		t.Errorf("summary =\n%q\nwant\n%q", b.Summary, wantSummary)
	}
	if b.ID == "" || b.ID == books[1].ID {
		t.Errorf("book IDs must be set and distinct: %q %q", b.ID, books[1].ID)
	}

	again, err := bs.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed again: %v", err)
	}
	if again[0].ID != b.ID {
		t.Error("book IDs are not stable across runs")
	}

	if n, _ := counts.Load(seed.PeaceToUnease); n != 2 {
		t.Errorf("peace band count = %v, want 2", n)
	}
	if n, _ := counts.Load(seed.MadnessToVoid); n != 0 {
		t.Errorf("void band count = %v, want 0", n)
	}
}

func TestBookSeeder_NoYield(t *testing.T) {
	t.Parallel()
	bs := &seed.BookSeeder{
		Corpus:     &fakeCorpus{},
		Summariser: fixedSummariser("x"),
		ZeroShot:   fixedZeroShot{},
		Sentiment:  fixedMood{},
		PerBand:    3,
		DateBound:  1939,
	}
	if _, err := bs.Seed(context.Background()); !errors.Is(err, seed.ErrNoBandYield) {
		t.Errorf("err = %v, want ErrNoBandYield", err)
	}
}
