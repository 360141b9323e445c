package seed

import (
	"regexp"
	"strings"
	"unicode"
)

// Boilerplate offsets used when a text has no explicit START/END markers.
const (
	headOffset = 2000
	tailOffset = 3000
)

// NarrativeWindowChars is the target size of an extracted narrative window.
const NarrativeWindowChars = 3000

var (
	startMarkerRe = regexp.MustCompile(`(?m)^\s*\*{3}\s*START OF (THE|THIS) PROJECT GUTENBERG.*$`)
	endMarkerRe   = regexp.MustCompile(`(?m)^\s*\*{3}\s*END OF (THE|THIS) PROJECT GUTENBERG.*$`)

	legalRe = regexp.MustCompile(`(?i)(copyright|all rights reserved|gutenberg|licen[cs]e|distribut|digitized by|produced by|transcriber|www\.|http|e-?text|ebook)`)

	pageNumberRe = regexp.MustCompile(`^\s*(\[?\d{1,4}\]?|[ivxlcdm]{1,6})\s*$`)
	spacesRe     = regexp.MustCompile(`[ \t]+`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// StripBoilerplate removes header and footer boilerplate. Texts with
// START/END markers are cut at them; other texts lose fixed offsets at both
// ends when they are long enough.
func StripBoilerplate(s string) string {
	if loc := startMarkerRe.FindStringIndex(s); loc != nil {
		s = s[loc[1]:]
		if end := endMarkerRe.FindStringIndex(s); end != nil {
			s = s[:end[0]]
		}
		return strings.TrimSpace(s)
	}
	if len(s) > 4*(headOffset+tailOffset) {
		s = s[headOffset : len(s)-tailOffset]
		// Realign to line boundaries.
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
		if i := strings.LastIndexByte(s, '\n'); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

// CleanOCR repairs common OCR noise line by line: page numbers and lines
// that are mostly symbols are dropped, words hyphenated across lines are
// joined and runs of spaces are collapsed. Paragraph breaks survive.
func CleanOCR(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(spacesRe.ReplaceAllString(line, " "))
		if line == "" {
			out = append(out, "")
			continue
		}
		if pageNumberRe.MatchString(strings.ToLower(line)) || letterRatio(line) < 0.5 {
			continue
		}
		if n := len(out); n > 0 && strings.HasSuffix(out[n-1], "-") && startsLower(line) {
			out[n-1] = strings.TrimSuffix(out[n-1], "-") + line
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(blankLinesRe.ReplaceAllString(strings.Join(out, "\n"), "\n\n"))
}

func startsLower(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}

// letterRatio is the share of letters among non-space runes.
func letterRatio(s string) float64 {
	var letters, total int
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}

// Paragraphs splits s on blank lines and joins wrapped lines.
func Paragraphs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "\n\n") {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ScoreParagraph rates how narrative a paragraph looks: mostly letters,
// some dialogue and complete sentences.
func ScoreParagraph(p string) float64 {
	if len(p) < 80 {
		return 0
	}
	score := letterRatio(p) * 2
	quotes := strings.Count(p, `"`) + strings.Count(p, "“") + strings.Count(p, "”")
	score += min(float64(quotes)/4, 1)
	sentences := strings.Count(p, ". ") + strings.Count(p, "! ") + strings.Count(p, "? ")
	if strings.HasSuffix(p, ".") || strings.HasSuffix(p, "!") || strings.HasSuffix(p, "?") {
		sentences++
	}
	score += min(float64(sentences)/5, 1)
	return score
}

// NarrativeWindow removes legal and distribution paragraphs, finds the
// highest scoring paragraph and grows a window of about limit characters
// around it. Ties keep the earliest paragraph.
func NarrativeWindow(s string, limit int) string {
	var paras []string
	for _, p := range Paragraphs(s) {
		if legalRe.MatchString(p) {
			continue
		}
		paras = append(paras, p)
	}
	if len(paras) == 0 {
		return ""
	}

	best, bestScore := 0, -1.0
	for i, p := range paras {
		if sc := ScoreParagraph(p); sc > bestScore {
			best, bestScore = i, sc
		}
	}

	lo, hi := best, best+1
	size := len(paras[best])
	for size < limit && (lo > 0 || hi < len(paras)) {
		if hi < len(paras) {
			size += len(paras[hi]) + 2
			hi++
		}
		if size < limit && lo > 0 {
			lo--
			size += len(paras[lo]) + 2
		}
	}
	w := strings.Join(paras[lo:hi], "\n\n")
	if len(w) > limit {
		w = strings.ToValidUTF8(w[:limit], "")
		if i := strings.LastIndexAny(w, ".!?"); i > limit/2 {
			w = w[:i+1]
		}
	}
	return w
}
