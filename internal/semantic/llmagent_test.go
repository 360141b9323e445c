package semantic

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MrWong99/hexforge/internal/relations"
	"github.com/MrWong99/hexforge/pkg/provider/llm"
	llmmock "github.com/MrWong99/hexforge/pkg/provider/llm/mock"
)

func TestLLMAgent_AnalyzeTable(t *testing.T) {
	t.Parallel()
	p := &llmmock.Provider{Replies: []string{"```json\n" + `{
		"discovered_relationships": [
			{"source": "Entities.value", "target": "Regions", "kind": "located_in", "confidence": 1.4, "reasoning": "hex links"},
			{"source": "", "target": "dropped", "kind": "x", "confidence": 0.5}
		],
		"confidence_score": 0.8,
		"concerns": ["mixed JSON and HTML"],
		"suggestions": ["split by prefix"]
	}` + "\n```"}}
	a := NewLLMAgent(p)

	got, err := a.AnalyzeTable(context.Background(), TableRequest{
		Table: "Entities", TableType: TableEntities, HTMLSample: "<div>x</div>", Hints: "12 records",
	})
	if err != nil {
		t.Fatalf("AnalyzeTable: %v", err)
	}
	want := TableResult{
		DiscoveredRelationships: []relations.DiscoveredRelationship{{
			Source: "Entities.value", Target: "Regions", Kind: "located_in", Confidence: 1, Reasoning: "hex links",
		}},
		ConfidenceScore: 0.8,
		Concerns:        []string{"mixed JSON and HTML"},
		Suggestions:     []string{"split by prefix"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	if len(p.Calls) != 1 {
		t.Fatalf("calls = %d", len(p.Calls))
	}
	req := p.Calls[0]
	if !strings.Contains(req.Messages[0].Content, "Table: Entities") || !strings.Contains(req.Messages[0].Content, "<div>x</div>") {
		t.Errorf("user message = %q", req.Messages[0].Content)
	}
	if req.Temperature != defaultTemperature {
		t.Errorf("temperature = %v", req.Temperature)
	}
}

func TestLLMAgent_ErrorTaxonomy(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		p    *llmmock.Provider
		want error
	}{
		{"malformed", &llmmock.Provider{Fallback: "I think the table is fine."}, ErrAgentMalformed},
		{"rejected", &llmmock.Provider{Err: errors.New("401 unauthorized")}, ErrAgentRejected},
		{"timeout", &llmmock.Provider{Err: context.DeadlineExceeded}, ErrAgentTimeout},
		{"empty note", &llmmock.Provider{Fallback: `{"note": "  "}`}, ErrAgentMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewLLMAgent(tt.p).ValidateRelationship(context.Background(), RelationshipCheck{
				From: "A.ref_uuid", To: "B.uuid", MatchCount: 7, Confidence: 0.7,
				Counts: map[string]int{"A": 10, "B": 10},
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLLMAgent_ParseHTMLTruncatesToContext(t *testing.T) {
	t.Parallel()
	p := &llmmock.Provider{
		Fallback: `{"relationships": [{"source": "Ashen Forest", "target": "hexroll://hex/12", "kind": "contains", "confidence": 0.6}]}`,
		Caps:     llm.ModelCapabilities{ContextWindow: 2_000, MaxOutputTokens: 512},
	}
	a := NewLLMAgent(p, WithMaxTokens(256))
	html := strings.Repeat("<p>ash</p>", 2_000)

	rels, err := a.ParseHTML(context.Background(), "Ashen Forest", html)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	if len(rels) != 1 || rels[0].Target != "hexroll://hex/12" {
		t.Errorf("rels = %+v", rels)
	}
	sent := p.Calls[0].SystemPrompt + p.Calls[0].Messages[0].Content
	if llm.EstimateTokens(sent)+256 > 2_000+4 {
		t.Errorf("prompt of %d tokens exceeds context window", llm.EstimateTokens(sent))
	}
}

func TestStripMarkdown(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]string{
		"```json\n{}\n```": "{}",
		"```\n[]```":        "[]",
		"  {\"a\":1} ":      `{"a":1}`,
	} {
		if got := stripMarkdown(in); got != want {
			t.Errorf("stripMarkdown(%q) = %q, want %q", in, got, want)
		}
	}
}
