package relations_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MrWong99/hexforge/internal/relations"
)

func TestHTMLPatterns(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want []string
	}{
		{"no markup at all", nil},
		{"<TABLE><tr></tr></TABLE>", []string{relations.PatternTable}},
		{`<div class="x">`, []string{relations.PatternDiv, relations.PatternStyled}},
		{"<h3>Title</h3><p>text</p>", []string{relations.PatternHeaders, relations.PatternParagraphs}},
		{"<ul><li>a</li></ul>", []string{relations.PatternLists}},
		{"<pre>not a paragraph</pre>", nil},
		{"<strong>bold</strong>", []string{relations.PatternStyled}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, relations.HTMLPatterns(tt.in)); diff != "" {
				t.Errorf("HTMLPatterns(%q) (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestExtractReferences_DedupAndValidate(t *testing.T) {
	t.Parallel()
	u := "0f8fad5b-d9cb-469f-a165-70867728950e"
	got := relations.ExtractReferences(u + " again " + u + " and hexroll://a hexroll://a")
	want := map[string][]string{
		relations.RefUUID:    {u},
		relations.RefArchive: {"hexroll://a"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestRelated(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a, b string
		want bool
	}{
		{"uuid", "UUID", true},
		{"ref_uuid", "uuid", true},
		{"owner_id", "entity", true},
		{"name", "display_name", true},
		{"value", "uuid", false},
		{"title", "body", false},
	}
	for _, tt := range tests {
		if got := relations.Related(tt.a, tt.b); got != tt.want {
			t.Errorf("Related(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestConfidenceBounds(t *testing.T) {
	t.Parallel()
	tests := []struct {
		matches, r1, r2 int
		want            float64
	}{
		{7, 10, 10, 0.7},
		{30, 10, 5, 1},
		{0, 10, 10, 0},
		{3, 0, 10, 0},
		{5, 20, 10, 0.5},
	}
	for _, tt := range tests {
		got := relations.Confidence(tt.matches, tt.r1, tt.r2)
		if got != tt.want || got < 0 || got > 1 {
			t.Errorf("Confidence(%d, %d, %d) = %v, want %v", tt.matches, tt.r1, tt.r2, got, tt.want)
		}
	}
	for c, want := range map[float64]string{0.95: "HIGH CONFIDENCE", 0.8: "HIGH CONFIDENCE", 0.7: "MEDIUM CONFIDENCE", 0.2: "LOW CONFIDENCE"} {
		if got := relations.Grade(c); got != want {
			t.Errorf("Grade(%v) = %q, want %q", c, got, want)
		}
	}
}
