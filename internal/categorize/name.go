package categorize

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/MrWong99/hexforge/internal/entity"
)

// maxBoldName is the exclusive upper bound, in runes, for a bold/strong
// element to be accepted as a name.
const maxBoldName = 100

// fallbackWords is how many visible-text tokens form a fallback name.
const fallbackWords = 3

// ExtractName derives a display name from a raw archive value.
//
// Order: <title>, then the first <h1>/<h2>/<h3>, then the first <b>/<strong>
// shorter than 100 runes, then the first three tokens of the visible text.
// [entity.UnknownName] is returned when all of these are empty.
func ExtractName(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return firstWords(raw)
	}

	if name := firstElementText(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Title
	}); name != "" {
		return name
	}

	if name := firstElementText(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.H1 || n.DataAtom == atom.H2 || n.DataAtom == atom.H3
	}); name != "" {
		return name
	}

	if name := firstElementText(doc, func(n *html.Node) bool {
		if n.DataAtom != atom.B && n.DataAtom != atom.Strong {
			return false
		}
		return utf8.RuneCountInString(collapse(nodeText(n))) < maxBoldName
	}); name != "" {
		return name
	}

	return firstWords(visibleText(doc))
}

// VisibleText returns the whitespace-collapsed text content of an HTML
// fragment, skipping script and style elements.
func VisibleText(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return collapse(raw)
	}
	return visibleText(doc)
}

func visibleText(doc *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return collapse(sb.String())
}

// firstElementText walks doc in document order and returns the collapsed
// text of the first element accepted by match that has non-empty text.
func firstElementText(doc *html.Node, match func(*html.Node) bool) string {
	var found string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && match(n) {
			if text := collapse(nodeText(n)); text != "" {
				found = text
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return found
}

// nodeText concatenates all descendant text nodes of n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func firstWords(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return entity.UnknownName
	}
	if len(fields) > fallbackWords {
		fields = fields[:fallbackWords]
	}
	return strings.Join(fields, " ")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
