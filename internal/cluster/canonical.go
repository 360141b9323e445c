package cluster

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// DefaultMatchThreshold is the minimum Jaro-Winkler similarity for a name to
// be keyed under a canonical spelling.
const DefaultMatchThreshold = 0.92

var _ KeyResolver = (*CanonicalResolver)(nil)

// CanonicalResolver folds near-duplicate spellings onto a fixed list of
// canonical names using Jaro-Winkler similarity, preferring candidates whose
// Double Metaphone codes agree. It is read-only after construction and safe
// for concurrent use.
type CanonicalResolver struct {
	names     []canonicalName
	threshold float64
}

type canonicalName struct {
	name  string
	lower string
	codes map[string]struct{}
}

// NewCanonicalResolver returns a resolver over names. A threshold <= 0 uses
// [DefaultMatchThreshold].
func NewCanonicalResolver(names []string, threshold float64) *CanonicalResolver {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	r := &CanonicalResolver{threshold: threshold}
	for _, n := range names {
		lower := strings.ToLower(strings.TrimSpace(n))
		if lower == "" {
			continue
		}
		r.names = append(r.names, canonicalName{name: n, lower: lower, codes: phoneticCodes(lower)})
	}
	return r
}

// Resolve returns the best canonical spelling for name, or name unchanged
// when nothing scores at least the threshold.
func (r *CanonicalResolver) Resolve(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" || len(r.names) == 0 {
		return name
	}
	codes := phoneticCodes(lower)

	var (
		best         string
		bestScore    float64
		bestPhonetic bool
	)
	for _, c := range r.names {
		if c.lower == lower {
			return c.name
		}
		score := matchr.JaroWinkler(lower, c.lower, false)
		if score < r.threshold {
			continue
		}
		phonetic := overlaps(codes, c.codes)
		switch {
		case phonetic && !bestPhonetic:
			best, bestScore, bestPhonetic = c.name, score, true
		case phonetic == bestPhonetic && score > bestScore:
			best, bestScore = c.name, score
		}
	}
	if best == "" {
		return name
	}
	return best
}

// phoneticCodes returns the union of Double Metaphone codes of the
// whitespace-separated tokens of s.
func phoneticCodes(s string) map[string]struct{} {
	tokens := strings.Fields(s)
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, sec := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if sec != "" {
			codes[sec] = struct{}{}
		}
	}
	return codes
}

func overlaps(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}
