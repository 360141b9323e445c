package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// ErrNoBandYield is returned when no band produced a single book.
var ErrNoBandYield = errors.New("seed: no band yielded any book")

// bookNamespace derives stable book IDs from corpus identifiers.
var bookNamespace = uuid.MustParse("5d8c6a0e-7b0e-4a4c-9a57-2f0c1e6b9d31")

// BookSummary is one summarised corpus item.
type BookSummary struct {
	ID         string       `toml:"id"`
	Band       BandKey      `toml:"band"`
	Identifier string       `toml:"identifier"`
	Title      string       `toml:"title"`
	Date       string       `toml:"date,omitempty"`
	Abstract   string       `toml:"abstract"`
	Tags       []LabelScore `toml:"tags"`
	Mood       Mood         `toml:"mood"`
	Summary    string       `toml:"summary"`
}

// ComposeSummary renders the summary line stored with every book:
//
//	{abstract}\n\nTags: {label(score)},…\nMood: {polarity(score)}
func ComposeSummary(abstract string, tags []LabelScore, mood Mood) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = fmt.Sprintf("%s(%.2f)", t.Label, t.Score)
	}
	return fmt.Sprintf("%s\n\nTags: %s\nMood: %s(%.2f)", abstract, strings.Join(parts, ","), mood.Polarity, mood.Score)
}

// BookSeeder downloads and summarises corpus items per band.
type BookSeeder struct {
	Corpus     Corpus
	Summariser Summariser
	ZeroShot   ZeroShot
	Sentiment  SentimentClassifier

	PerBand   int
	DateBound int
	Log       *slog.Logger

	// OnItems is called with the number of books produced per band.
	OnItems func(ctx context.Context, band BandKey, n int)
}

// Seed returns the books of every band in band order. A band without books
// logs a warning; ErrNoBandYield is returned when all bands are empty.
func (b *BookSeeder) Seed(ctx context.Context) ([]BookSummary, error) {
	log := b.Log
	if log == nil {
		log = slog.Default()
	}
	var all []BookSummary
	for _, band := range Bands {
		books, err := b.seedBand(ctx, band, log)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("band produced no books", "band", string(band), "err", err)
		} else if len(books) == 0 {
			log.Warn("band produced no books", "band", string(band))
		}
		if b.OnItems != nil {
			b.OnItems(ctx, band, len(books))
		}
		all = append(all, books...)
	}
	if len(all) == 0 {
		return nil, ErrNoBandYield
	}
	return all, nil
}

func (b *BookSeeder) seedBand(ctx context.Context, band BandKey, log *slog.Logger) ([]BookSummary, error) {
	items, err := b.search(ctx, band)
	if err != nil {
		return nil, err
	}
	var out []BookSummary
	for _, it := range items {
		if len(out) >= b.PerBand {
			break
		}
		book, err := b.summarise(ctx, band, it)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			log.Warn("skipping book", "band", string(band), "identifier", it.Identifier, "err", err)
			continue
		}
		out = append(out, book)
	}
	return out, nil
}

// search tries each query variant until one returns items that pass the
// denylist.
func (b *BookSeeder) search(ctx context.Context, band BandKey) ([]Item, error) {
	var lastErr error
	for _, q := range QueryVariants(bandQueries[band], b.DateBound) {
		items, err := b.Corpus.Search(ctx, q, b.PerBand*5)
		if err != nil {
			lastErr = err
			continue
		}
		var kept []Item
		for _, it := range items {
			if !Denied(it) {
				kept = append(kept, it)
			}
		}
		if len(kept) > 0 {
			return kept, nil
		}
	}
	return nil, lastErr
}

func (b *BookSeeder) summarise(ctx context.Context, band BandKey, it Item) (BookSummary, error) {
	raw, err := b.Corpus.Fetch(ctx, it.Identifier)
	if err != nil {
		return BookSummary{}, err
	}
	window := NarrativeWindow(CleanOCR(StripBoilerplate(raw)), NarrativeWindowChars)
	if window == "" {
		return BookSummary{}, errors.New("no narrative text")
	}

	abstract, err := b.Summariser.Summarise(ctx, window)
	if err != nil {
		return BookSummary{}, err
	}
	scores, err := b.ZeroShot.Classify(ctx, window, bookLabels)
	if err != nil {
		return BookSummary{}, err
	}
	tags := []LabelScore{}
	for _, s := range scores {
		if s.Score >= BookLabelThreshold {
			tags = append(tags, s)
		}
	}
	mood, err := b.Sentiment.Sentiment(ctx, window)
	if err != nil {
		return BookSummary{}, err
	}

	return BookSummary{
		ID:         uuid.NewSHA1(bookNamespace, []byte(it.Identifier)).String(),
		Band:       band,
		Identifier: it.Identifier,
		Title:      it.Title,
		Date:       it.Date,
		Abstract:   abstract,
		Tags:       tags,
		Mood:       mood,
		Summary:    ComposeSummary(abstract, tags, mood),
	}, nil
}
