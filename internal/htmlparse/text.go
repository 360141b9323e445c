package htmlparse

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

const headingSelector = "h1, h2, h3, h4, h5, h6"

var (
	diceRe         = regexp.MustCompile(`\d+d\d+(?:\s*[+-]\s*\d+)?`)
	intRe          = regexp.MustCompile(`-?\d+`)
	probabilityRe  = regexp.MustCompile(`(\d+)\s+in\s+(\d+)`)
	descriptionOut = regexp.MustCompile(`(?i)^(area #|doorways\b|wandering\b|roll\b)`)
)

// newDoc parses raw into a document. The HTML5 parser accepts any input, so
// a failure only happens on reader errors; an empty document is returned then.
func newDoc(raw string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	return doc
}

// clean collapses all whitespace runs to single spaces.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// headingsContaining returns headings below sel whose text contains any of
// needles, case-insensitively.
func headingsContaining(sel *goquery.Selection, needles ...string) *goquery.Selection {
	return sel.Find(headingSelector).FilterFunction(func(_ int, h *goquery.Selection) bool {
		text := strings.ToLower(h.Text())
		for _, n := range needles {
			if strings.Contains(text, strings.ToLower(n)) {
				return true
			}
		}
		return false
	})
}

// directRows returns the rows of table without descending into nested tables.
func directRows(table *goquery.Selection) *goquery.Selection {
	return table.ChildrenFiltered("tbody, thead, tfoot").ChildrenFiltered("tr").
		AddSelection(table.ChildrenFiltered("tr"))
}

func cells(row *goquery.Selection) *goquery.Selection {
	return row.ChildrenFiltered("td, th")
}

func firstInt(s string) (int, bool) {
	m := intRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// title returns the page title: the first <span> in #title, then #title
// itself, then the first h1/h2, then <title>.
func title(doc *goquery.Document) string {
	for _, sel := range []string{"#title span", "#title", "h1", "h2", "title"} {
		if t := clean(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// MapCoords returns the position of the first <map-coords x y> element in
// raw, or nil.
func MapCoords(raw string) *Coordinates {
	return mapCoords(newDoc(raw))
}

// mapCoords reads the first <map-coords x y> element.
func mapCoords(doc *goquery.Document) *Coordinates {
	mc := doc.Find("map-coords").First()
	if mc.Length() == 0 {
		return nil
	}
	xs, okX := mc.Attr("x")
	ys, okY := mc.Attr("y")
	if !okX || !okY {
		return nil
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if errX != nil || errY != nil {
		return nil
	}
	return &Coordinates{X: x, Y: y}
}

// description concatenates blockquote and paragraph text outside stat blocks,
// tables and lists, dropping label lines and encounter probability notes.
func description(doc *goquery.Document) string {
	var parts []string
	doc.Find("blockquote, p").Each(func(_ int, s *goquery.Selection) {
		if s.Closest(".statblock, table, li").Length() > 0 {
			return
		}
		if goquery.NodeName(s) == "p" && s.ParentsFiltered("blockquote").Length() > 0 {
			return
		}
		text := clean(s.Text())
		if text == "" || descriptionOut.MatchString(text) || probabilityRe.MatchString(text) {
			return
		}
		parts = append(parts, text)
	})
	return strings.Join(parts, "\n\n")
}

// keywordIn returns the first keyword contained in s, or "".
func keywordIn(s string, keywords []string) string {
	s = strings.ToLower(s)
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return k
		}
	}
	return ""
}

// wordStartsWith reports whether some word of s begins with one of stems,
// so "runed" matches "rune" but "pruned" does not.
func wordStartsWith(s string, stems []string) bool {
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return !unicode.IsLetter(r) }) {
		for _, st := range stems {
			if strings.HasPrefix(w, st) {
				return true
			}
		}
	}
	return false
}
