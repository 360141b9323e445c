package seed

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

//go:embed data/old_norse.tsv
var oldNorseTSV string

// GrammarTerm is one dictionary word filed under a band.
type GrammarTerm struct {
	Word  string   `toml:"word"`
	Gloss string   `toml:"gloss"`
	Tags  []string `toml:"tags"`
}

// DictEntry is a raw headword and its gloss.
type DictEntry struct {
	Word  string
	Gloss string
}

// glossFilter rejects glosses that are cross-references or grammar notes.
var glossFilter = regexp.MustCompile(`^[\p{Ll}][\p{L} ,;'()\-]+$`)

// Dictionary parses the embedded word list and returns the entries that pass
// the length and gloss filters, in file order.
func Dictionary() []DictEntry {
	return parseDictionary(oldNorseTSV)
}

func parseDictionary(src string) []DictEntry {
	var out []DictEntry
	sc := bufio.NewScanner(strings.NewReader(src))
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word, gloss, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		word, gloss = strings.TrimSpace(word), strings.TrimSpace(gloss)
		if n := utf8.RuneCountInString(word); n < 3 || n > 30 {
			continue
		}
		if len(gloss) < 12 || !glossFilter.MatchString(gloss) {
			continue
		}
		out = append(out, DictEntry{Word: word, Gloss: gloss})
	}
	return out
}

// GrammarLabels returns the theme labels in sorted order.
func GrammarLabels() []string {
	labels := make([]string, 0, len(grammarLabels))
	for l := range grammarLabels {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	return labels
}

// SeedGrammar classifies up to limit dictionary entries and files every word
// under the bands its labels map to. Each band holds at most GrammarBandCap
// terms and a word appears at most once per band.
func SeedGrammar(ctx context.Context, zs ZeroShot, entries []DictEntry, limit int) (map[BandKey][]GrammarTerm, error) {
	labels := GrammarLabels()
	out := make(map[BandKey][]GrammarTerm)
	seen := make(map[BandKey]map[string]bool)

	for i, e := range entries {
		if limit > 0 && i >= limit {
			break
		}
		scores, err := zs.Classify(ctx, e.Gloss, labels)
		if err != nil {
			return nil, fmt.Errorf("seed: classify %q: %w", e.Word, err)
		}
		tags := make(map[BandKey][]string)
		for _, s := range scores {
			if s.Score < GrammarLabelThreshold {
				continue
			}
			band, ok := grammarLabels[s.Label]
			if !ok {
				continue
			}
			tags[band] = append(tags[band], s.Label)
		}
		for _, band := range Bands {
			t, ok := tags[band]
			if !ok || len(out[band]) >= GrammarBandCap {
				continue
			}
			if seen[band] == nil {
				seen[band] = make(map[string]bool)
			}
			if seen[band][e.Word] {
				continue
			}
			seen[band][e.Word] = true
			out[band] = append(out[band], GrammarTerm{Word: e.Word, Gloss: e.Gloss, Tags: t})
		}
	}
	return out, nil
}
