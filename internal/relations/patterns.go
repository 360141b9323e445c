package relations

import (
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// HTML pattern tags.
const (
	PatternTable      = "html_table"
	PatternDiv        = "html_div"
	PatternHeaders    = "html_headers"
	PatternLists      = "html_lists"
	PatternStyled     = "html_styled"
	PatternParagraphs = "html_paragraphs"
)

var (
	headerRe    = regexp.MustCompile(`<h[1-6][\s>]`)
	paragraphRe = regexp.MustCompile(`<p[\s>]`)
	listRe      = regexp.MustCompile(`<(ul|ol|li)[\s>]`)
	styledRe    = regexp.MustCompile(`<(span|em|strong|b|i)[\s>]|\sstyle=|\sclass=`)

	uuidRe       = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	archiveRefRe = regexp.MustCompile(`hexroll://[^\s"'<>)]+`)
	entityRefRe  = regexp.MustCompile(`entity:[A-Za-z0-9_\-]+`)
)

// HTMLPatterns returns the sorted set of markup patterns present in sample.
// PatternTable is present iff sample contains "<table" (case-insensitive),
// and analogously for the other tags.
func HTMLPatterns(sample string) []string {
	s := strings.ToLower(sample)
	var out []string
	if strings.Contains(s, "<table") {
		out = append(out, PatternTable)
	}
	if strings.Contains(s, "<div") {
		out = append(out, PatternDiv)
	}
	if headerRe.MatchString(s) {
		out = append(out, PatternHeaders)
	}
	if listRe.MatchString(s) {
		out = append(out, PatternLists)
	}
	if styledRe.MatchString(s) {
		out = append(out, PatternStyled)
	}
	if paragraphRe.MatchString(s) {
		out = append(out, PatternParagraphs)
	}
	slices.Sort(out)
	return out
}

// ExtractReferences returns reference tokens by kind, deduplicated in
// first-seen order. UUID candidates are validated with uuid.Parse.
func ExtractReferences(sample string) map[string][]string {
	refs := make(map[string][]string)
	add := func(kind, tok string) {
		if !slices.Contains(refs[kind], tok) {
			refs[kind] = append(refs[kind], tok)
		}
	}
	for _, m := range uuidRe.FindAllString(sample, -1) {
		if _, err := uuid.Parse(m); err == nil {
			add(RefUUID, strings.ToLower(m))
		}
	}
	for _, m := range archiveRefRe.FindAllString(sample, -1) {
		add(RefArchive, m)
	}
	for _, m := range entityRefRe.FindAllString(sample, -1) {
		add(RefEntity, m)
	}
	return refs
}

// relatedNames are the column-name fragments that mark a column as a
// potential key.
var relatedNames = []string{"uuid", "id", "ref", "key", "entity"}

// Related reports whether two column names could join: identical after
// lowercasing, both containing a key fragment, or one a substring of the
// other.
func Related(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return true
	}
	if hasKeyFragment(a) && hasKeyFragment(b) {
		return true
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func hasKeyFragment(s string) bool {
	for _, k := range relatedNames {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// isPrimaryName reports whether a column name is a bare identifier column.
func isPrimaryName(s string) bool {
	s = strings.ToLower(s)
	return s == "uuid" || s == "id"
}
