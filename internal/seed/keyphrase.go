package seed

import (
	"regexp"
	"slices"
	"strings"
)

var (
	phraseSplit = regexp.MustCompile(`[.,;:!?()"\n\-]+`)
	wordSplit   = regexp.MustCompile(`[^\p{L}']+`)
)

var stopwords = func() map[string]bool {
	m := make(map[string]bool)
	for _, w := range strings.Fields(`a about above after again against all am an and any are as at be because been
		before being below between both but by can could did do does doing down during each few for from further had has
		have having he her here hers herself him himself his how i if in into is it its itself just me more most my
		myself no nor not now of off on once only or other our ours out over own same she should so some such than that
		the their theirs them themselves then there these they this those through to too under until up upon very was we
		were what when where which while who whom why will with would you your yours yourself yourselves one two upon
		also into shall may might must thus`) {
		m[w] = true
	}
	return m
}()

// Keyphrase is a scored candidate phrase.
type Keyphrase struct {
	Phrase string
	Score  float64
}

// Keyphrases extracts up to n phrases from text using RAKE scoring: candidate
// phrases are runs of non-stopwords, each word scores degree/frequency and a
// phrase scores the sum of its words. Ties break alphabetically.
func Keyphrases(text string, n int) []Keyphrase {
	var candidates [][]string
	for _, chunk := range phraseSplit.Split(strings.ToLower(text), -1) {
		var cur []string
		for _, w := range wordSplit.Split(chunk, -1) {
			w = strings.Trim(w, "'")
			if w == "" || stopwords[w] || len([]rune(w)) < 3 {
				if len(cur) > 0 {
					candidates = append(candidates, cur)
					cur = nil
				}
				continue
			}
			cur = append(cur, w)
		}
		if len(cur) > 0 {
			candidates = append(candidates, cur)
		}
	}

	freq := make(map[string]float64)
	degree := make(map[string]float64)
	for _, c := range candidates {
		for _, w := range c {
			freq[w]++
			degree[w] += float64(len(c))
		}
	}

	scores := make(map[string]float64)
	for _, c := range candidates {
		if len(c) > 4 {
			continue
		}
		var s float64
		for _, w := range c {
			s += degree[w] / freq[w]
		}
		scores[strings.Join(c, " ")] = s
	}

	out := make([]Keyphrase, 0, len(scores))
	for p, s := range scores {
		out = append(out, Keyphrase{Phrase: p, Score: s})
	}
	slices.SortFunc(out, func(a, b Keyphrase) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return strings.Compare(a.Phrase, b.Phrase)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
