package seed

import (
	"math/rand/v2"
	"strings"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NameRegions lists the phonotactic regions names are drawn from.
var NameRegions = []string{"celtic", "welsh", "norse", "semitic", "sino", "meso", "slavic_old", "akan", "tamil"}

// NameEntry is one synthesized name.
type NameEntry struct {
	Name      string `toml:"name"`
	Syllables int    `toml:"syllables"`
}

// NamesPerRegion is the number of names synthesized per band and region.
const NamesPerRegion = 8

// NameSimilarity is the Jaro-Winkler score above which two names count as
// duplicates.
const NameSimilarity = 0.92

type phonotactics struct {
	onsets []string
	harsh  []string
	nuclei []string
	codas  []string
}

var regionPhonotactics = map[string]phonotactics{
	"celtic":     {onsets: []string{"b", "c", "d", "l", "m", "n", "r", "s", "t", "br", "gl"}, harsh: []string{"cr", "dr", "gr"}, nuclei: []string{"a", "e", "i", "o", "ai", "ea"}, codas: []string{"", "n", "r", "ch", "gh", "th"}},
	"welsh":      {onsets: []string{"b", "c", "d", "g", "ll", "m", "rh", "t"}, harsh: []string{"ffr", "gw", "cr"}, nuclei: []string{"a", "e", "y", "w", "ae", "wy"}, codas: []string{"", "n", "dd", "ll", "th"}},
	"norse":      {onsets: []string{"b", "f", "h", "k", "s", "t", "v", "sk"}, harsh: []string{"gr", "hr", "kn", "þr"}, nuclei: []string{"a", "e", "i", "o", "u", "ei", "au"}, codas: []string{"", "r", "nn", "lf", "rk", "ld"}},
	"semitic":    {onsets: []string{"b", "d", "h", "k", "l", "m", "n", "s", "z"}, harsh: []string{"q", "kh", "sh"}, nuclei: []string{"a", "e", "i", "u", "aa"}, codas: []string{"", "l", "m", "r", "th"}},
	"sino":       {onsets: []string{"b", "ch", "h", "j", "l", "m", "sh", "x", "zh"}, harsh: []string{"g", "k", "q"}, nuclei: []string{"a", "ao", "ei", "i", "ou", "u"}, codas: []string{"", "n", "ng"}},
	"meso":       {onsets: []string{"c", "m", "n", "p", "t", "x", "y"}, harsh: []string{"tl", "tz", "qu"}, nuclei: []string{"a", "e", "i", "o"}, codas: []string{"", "l", "n", "c"}},
	"slavic_old": {onsets: []string{"b", "d", "l", "m", "r", "s", "v", "z"}, harsh: []string{"cz", "dr", "kr", "zv"}, nuclei: []string{"a", "e", "i", "o", "u", "ya"}, codas: []string{"", "k", "v", "slav", "mir"}},
	"akan":       {onsets: []string{"b", "d", "f", "k", "m", "n", "s", "y"}, harsh: []string{"kw", "ny", "tw"}, nuclei: []string{"a", "e", "i", "o", "u"}, codas: []string{"", "", "n"}},
	"tamil":      {onsets: []string{"k", "m", "n", "p", "r", "t", "v"}, harsh: []string{"zh", "nd", "tt"}, nuclei: []string{"a", "aa", "i", "ee", "u", "ai"}, codas: []string{"", "n", "m", "l", "r"}},
}

// bandWeights controls name shape per band: weights over 1, 2 and 3
// syllables, and the chance an onset is drawn from the harsh set.
var bandWeights = [len(Bands)]struct {
	syllables [3]int
	harsh     float64
}{
	{syllables: [3]int{3, 6, 1}, harsh: 0.05},
	{syllables: [3]int{2, 6, 2}, harsh: 0.15},
	{syllables: [3]int{1, 5, 4}, harsh: 0.30},
	{syllables: [3]int{1, 4, 5}, harsh: 0.45},
	{syllables: [3]int{0, 3, 7}, harsh: 0.60},
}

var titleCase = cases.Title(language.Und)

// SynthesizeNames generates n names per region for every band. The result
// depends only on seed.
func SynthesizeNames(seed uint64, n int) map[BandKey]map[string][]NameEntry {
	out := make(map[BandKey]map[string][]NameEntry, len(Bands))
	for bi, band := range Bands {
		out[band] = make(map[string][]NameEntry, len(NameRegions))
		for ri, region := range NameRegions {
			r := rand.New(rand.NewPCG(seed, uint64(bi)<<8|uint64(ri)))
			out[band][region] = regionNames(r, regionPhonotactics[region], bi, n)
		}
	}
	return out
}

func regionNames(r *rand.Rand, p phonotactics, band, n int) []NameEntry {
	w := bandWeights[band]
	var names []NameEntry
	for attempts := 0; len(names) < n && attempts < n*20; attempts++ {
		syl := pickWeighted(r, w.syllables[:]) + 1
		name := buildName(r, p, syl, w.harsh)
		if duplicateName(names, name) {
			continue
		}
		names = append(names, NameEntry{Name: name, Syllables: syl})
	}
	return names
}

func buildName(r *rand.Rand, p phonotactics, syllables int, harsh float64) string {
	var b strings.Builder
	for i := range syllables {
		if r.Float64() < harsh {
			b.WriteString(p.harsh[r.IntN(len(p.harsh))])
		} else {
			b.WriteString(p.onsets[r.IntN(len(p.onsets))])
		}
		b.WriteString(p.nuclei[r.IntN(len(p.nuclei))])
		if i == syllables-1 {
			b.WriteString(p.codas[r.IntN(len(p.codas))])
		}
	}
	return titleCase.String(b.String())
}

func pickWeighted(r *rand.Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	x := r.IntN(total)
	for i, w := range weights {
		if x < w {
			return i
		}
		x -= w
	}
	return len(weights) - 1
}

func duplicateName(names []NameEntry, name string) bool {
	lower := strings.ToLower(name)
	for _, e := range names {
		if matchr.JaroWinkler(strings.ToLower(e.Name), lower, false) >= NameSimilarity {
			return true
		}
	}
	return false
}
