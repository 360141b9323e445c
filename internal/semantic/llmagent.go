package semantic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/MrWong99/hexforge/internal/relations"
	"github.com/MrWong99/hexforge/pkg/provider/llm"
)

const defaultTemperature = 0.1

const analyzeTablePrompt = `You are a database analyst reverse-engineering a tabletop hexcrawl archive.
The archive stores regions, settlements, factions, dungeons, creatures, encounters and weather as HTML fragments and JSON blobs.

Given one table's name, type, hints and a markup sample, identify relationships to other entities.
Be conservative. Only report a relationship when the sample shows evidence for it.

Respond with ONLY a JSON object (no markdown, no prose):
{
  "discovered_relationships": [
    {"source": "<table.column or entity>", "target": "<table.column or entity>", "kind": "<contains|located_in|member_of|references|other>", "confidence": <0.0-1.0>, "reasoning": "<one sentence>"}
  ],
  "confidence_score": <0.0-1.0>,
  "concerns": ["<data quality concern>"],
  "suggestions": ["<extraction suggestion>"]
}`

const validatePrompt = `You are reviewing a relationship inferred by joining two archive columns on equality.
Judge whether it is plausible and what could make it misleading.

Respond with ONLY a JSON object (no markdown, no prose):
{"note": "<one or two sentences>"}`

const parseHTMLPrompt = `You read one HTML fragment from a tabletop hexcrawl archive and list the entities it links to.
Links appear as anchors, archive URIs (hexroll://...), entity references (entity:...) or UUIDs.

Respond with ONLY a JSON object (no markdown, no prose):
{"relationships": [{"source": "<this entity>", "target": "<linked entity>", "kind": "<kind>", "confidence": <0.0-1.0>, "reasoning": "<one sentence>"}]}`

type relationshipJSON struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Kind       string  `json:"kind"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type analyzeResponse struct {
	DiscoveredRelationships []relationshipJSON `json:"discovered_relationships"`
	ConfidenceScore         float64            `json:"confidence_score"`
	Concerns                []string           `json:"concerns"`
	Suggestions             []string           `json:"suggestions"`
}

type validateResponse struct {
	Note string `json:"note"`
}

type parseResponse struct {
	Relationships []relationshipJSON `json:"relationships"`
}

// LLMOption configures an [LLMAgent].
type LLMOption func(*LLMAgent)

// WithTemperature sets the sampling temperature. Default 0.1.
func WithTemperature(t float64) LLMOption {
	return func(a *LLMAgent) { a.temperature = t }
}

// WithMaxTokens caps the completion length of each call.
func WithMaxTokens(n int) LLMOption {
	return func(a *LLMAgent) { a.maxTokens = n }
}

// LLMAgent implements [Agent] with JSON-answering prompts against an
// [llm.Provider]. It is safe for concurrent use if the provider is.
type LLMAgent struct {
	llm         llm.Provider
	temperature float64
	maxTokens   int
}

var _ Agent = (*LLMAgent)(nil)

// NewLLMAgent returns an agent backed by provider.
func NewLLMAgent(provider llm.Provider, opts ...LLMOption) *LLMAgent {
	a := &LLMAgent{llm: provider, temperature: defaultTemperature, maxTokens: 1024}
	for _, o := range opts {
		o(a)
	}
	return a
}

// AnalyzeTable implements [Agent].
func (a *LLMAgent) AnalyzeTable(ctx context.Context, req TableRequest) (TableResult, error) {
	header := fmt.Sprintf("Table: %s\nType: %s\nHints: %s\n\nSample:\n", req.Table, req.TableType, req.Hints)
	user := header + a.fit(req.HTMLSample, analyzeTablePrompt+header)

	var resp analyzeResponse
	if err := a.ask(ctx, analyzeTablePrompt, user, &resp); err != nil {
		return TableResult{}, err
	}
	return TableResult{
		DiscoveredRelationships: convert(resp.DiscoveredRelationships),
		ConfidenceScore:         clamp(resp.ConfidenceScore),
		Concerns:                resp.Concerns,
		Suggestions:             resp.Suggestions,
	}, nil
}

// ValidateRelationship implements [Agent].
func (a *LLMAgent) ValidateRelationship(ctx context.Context, c RelationshipCheck) (string, error) {
	tables := make([]string, 0, len(c.Counts))
	for t := range c.Counts {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	var counts strings.Builder
	for _, t := range tables {
		fmt.Fprintf(&counts, "- %s: %d records\n", t, c.Counts[t])
	}
	user := fmt.Sprintf("From: %s\nTo: %s\nMatches: %d\nConfidence: %.2f\nTable sizes:\n%s",
		c.From, c.To, c.MatchCount, c.Confidence, counts.String())

	var resp validateResponse
	if err := a.ask(ctx, validatePrompt, user, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Note) == "" {
		return "", fmt.Errorf("%w: empty note", ErrAgentMalformed)
	}
	return strings.TrimSpace(resp.Note), nil
}

// ParseHTML implements [Agent].
func (a *LLMAgent) ParseHTML(ctx context.Context, entityName, html string) ([]relations.DiscoveredRelationship, error) {
	header := fmt.Sprintf("Entity: %s\n\nHTML:\n", entityName)
	user := header + a.fit(html, parseHTMLPrompt+header)

	var resp parseResponse
	if err := a.ask(ctx, parseHTMLPrompt, user, &resp); err != nil {
		return nil, err
	}
	return convert(resp.Relationships), nil
}

// fit truncates sample so that the prompt plus the expected completion stay
// inside the model's context window.
func (a *LLMAgent) fit(sample, rest string) string {
	budget := a.llm.Capabilities().ContextWindow - llm.EstimateTokens(rest) - a.maxTokens
	return llm.TruncateToTokens(sample, budget)
}

func (a *LLMAgent) ask(ctx context.Context, system, user string, out any) error {
	resp, err := a.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: system,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: user}},
		Temperature:  a.temperature,
		MaxTokens:    a.maxTokens,
	})
	if err != nil {
		return classify(ctx, err)
	}
	if err := json.Unmarshal([]byte(stripMarkdown(resp.Content)), out); err != nil {
		return fmt.Errorf("%w: %w", ErrAgentMalformed, err)
	}
	return nil
}

// classify maps a transport error onto the agent error taxonomy.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrAgentTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrAgentRejected, err)
}

func convert(in []relationshipJSON) []relations.DiscoveredRelationship {
	out := make([]relations.DiscoveredRelationship, 0, len(in))
	for _, r := range in {
		if r.Source == "" || r.Target == "" {
			continue
		}
		out = append(out, relations.DiscoveredRelationship{
			Source:     r.Source,
			Target:     r.Target,
			Kind:       r.Kind,
			Confidence: clamp(r.Confidence),
			Reasoning:  r.Reasoning,
		})
	}
	return out
}

func clamp(f float64) float64 {
	return min(1, max(0, f))
}

// stripMarkdown removes ```json fences some models wrap around JSON.
func stripMarkdown(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			s = after
			break
		}
	}
	if before, ok := strings.CutSuffix(s, "```"); ok {
		s = before
	}
	return strings.TrimSpace(s)
}
