package semantic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/MrWong99/hexforge/internal/categorize"
	"github.com/MrWong99/hexforge/internal/observe"
	"github.com/MrWong99/hexforge/internal/relations"
)

// Guidance thresholds on the accuracy prediction.
const (
	ExcellentAccuracy = 0.95
	GoodAccuracy      = 0.85
)

// Defaults for an [Analyzer].
const (
	DefaultMinRows         = 10
	DefaultHTMLSamples     = 5
	DefaultValidateMinConf = 0.5
	DefaultValidateMinHits = 5
	DefaultSampleBytes     = 4000
)

// Sampler reads text samples of one column. [*archive.Store] satisfies it.
type Sampler interface {
	TextSamples(ctx context.Context, table, column string, n int) ([]string, error)
}

// Option configures an [Analyzer].
type Option func(*Analyzer)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.log = l
		}
	}
}

// WithMetrics records agent call latency and outcome.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// WithMinRows sets the row count below which tables are not sent to the
// agent. Default 10.
func WithMinRows(n int) Option {
	return func(a *Analyzer) { a.minRows = n }
}

// WithHTMLSamples sets how many descriptions per column go to ParseHTML.
func WithHTMLSamples(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.htmlSamples = n
		}
	}
}

// Analyzer merges agent judgments into a report.
type Analyzer struct {
	agent       Agent
	src         Sampler
	log         *slog.Logger
	metrics     *observe.Metrics
	minRows     int
	htmlSamples int
}

// NewAnalyzer returns an analyzer using agent for judgments and src for
// description samples.
func NewAnalyzer(agent Agent, src Sampler, opts ...Option) *Analyzer {
	a := &Analyzer{
		agent:       agent,
		src:         src,
		log:         slog.Default(),
		minRows:     DefaultMinRows,
		htmlSamples: DefaultHTMLSamples,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Enrich consults the agent and sets r.AIInsights. Agent failures become
// concerns and recommendations; only errors reading src are returned.
func (a *Analyzer) Enrich(ctx context.Context, r *relations.Report) (*relations.AIInsights, error) {
	ins := &relations.AIInsights{
		TableAnalyses:      []relations.TableAnalysis{},
		ValidationWarnings: []string{},
		HTMLRelationships:  []relations.DiscoveredRelationship{},
	}

	for _, table := range sortedTables(r) {
		info := r.TableInfo[table]
		if info.RecordCount < a.minRows || len(info.SampleData) == 0 {
			continue
		}
		ins.TableAnalyses = append(ins.TableAnalyses, a.analyzeTable(ctx, r, table))
	}

	for _, rel := range r.ImplicitRelationships {
		if rel.Confidence <= DefaultValidateMinConf || rel.MatchCount <= DefaultValidateMinHits {
			continue
		}
		if w, ok := a.validate(ctx, r, rel); ok {
			ins.ValidationWarnings = append(ins.ValidationWarnings, w)
		}
	}

	for _, col := range descriptionColumns(r) {
		table, column, _ := strings.Cut(col, ".")
		samples, err := a.src.TextSamples(ctx, table, column, a.htmlSamples)
		if err != nil {
			return nil, fmt.Errorf("semantic: sample %s: %w", col, err)
		}
		for _, html := range samples {
			name := categorize.ExtractName(html)
			start := time.Now()
			rels, err := a.agent.ParseHTML(ctx, name, html)
			a.record(ctx, "parse_html", err, start)
			if err != nil {
				a.log.Warn("agent could not parse html", "column", col, "entity", name, "err", err)
				continue
			}
			ins.HTMLRelationships = mergeRelationships(ins.HTMLRelationships, rels)
		}
	}

	finalize(ins, r)
	r.AIInsights = ins
	r.Recommend("AI accuracy prediction %.1f%% (coverage %.1f%%): %s",
		ins.AccuracyPrediction*100, ins.RelationshipCoverage*100, ins.Guidance)
	a.log.Info("semantic analysis complete",
		"tables", len(ins.TableAnalyses),
		"warnings", len(ins.ValidationWarnings),
		"html_relationships", len(ins.HTMLRelationships),
		"accuracy", ins.AccuracyPrediction)
	return ins, nil
}

func (a *Analyzer) analyzeTable(ctx context.Context, r *relations.Report, table string) relations.TableAnalysis {
	req := TableRequest{
		Table:      table,
		TableType:  relations.TableType(table),
		HTMLSample: tableSample(r, table),
		Hints:      tableHints(r, table),
	}
	out := relations.TableAnalysis{
		Table:                   table,
		TableType:               req.TableType,
		DiscoveredRelationships: []relations.DiscoveredRelationship{},
		Concerns:                []string{},
		Suggestions:             []string{},
	}

	start := time.Now()
	res, err := a.agent.AnalyzeTable(ctx, req)
	a.record(ctx, "analyze_table", err, start)
	if err != nil {
		a.log.Warn("agent table analysis failed", "table", table, "err", err)
		out.Concerns = append(out.Concerns, "agent failure: "+err.Error())
		r.Recommend("AI analysis of table %s failed (%s); relying on deterministic results", table, errorKind(err))
		return out
	}

	out.DiscoveredRelationships = append(out.DiscoveredRelationships, res.DiscoveredRelationships...)
	out.ConfidenceScore = res.ConfidenceScore
	out.Concerns = append(out.Concerns, res.Concerns...)
	out.Suggestions = append(out.Suggestions, res.Suggestions...)
	return out
}

func (a *Analyzer) validate(ctx context.Context, r *relations.Report, rel relations.ImplicitRelationship) (string, bool) {
	check := RelationshipCheck{
		From:       rel.From(),
		To:         rel.To(),
		MatchCount: rel.MatchCount,
		Confidence: rel.Confidence,
		Counts: map[string]int{
			rel.FromTable: r.TableInfo[rel.FromTable].RecordCount,
			rel.ToTable:   r.TableInfo[rel.ToTable].RecordCount,
		},
	}
	start := time.Now()
	note, err := a.agent.ValidateRelationship(ctx, check)
	a.record(ctx, "validate_relationship", err, start)
	if err != nil {
		a.log.Warn("agent validation failed", "from", check.From, "to", check.To, "err", err)
		r.Recommend("Could not validate %s -> %s with AI (%s)", check.From, check.To, errorKind(err))
		return "", false
	}
	return fmt.Sprintf("%s -> %s: %s", check.From, check.To, note), true
}

func (a *Analyzer) record(ctx context.Context, op string, err error, start time.Time) {
	if a.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = errorKind(err)
	}
	a.metrics.RecordAgentCall(ctx, op, status, time.Since(start))
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrAgentTimeout):
		return "timeout"
	case errors.Is(err, ErrAgentMalformed):
		return "malformed"
	default:
		return "rejected"
	}
}

// finalize computes coverage, accuracy and guidance.
func finalize(ins *relations.AIInsights, r *relations.Report) {
	var (
		discovered int
		confSum    float64
	)
	for _, ta := range ins.TableAnalyses {
		for _, d := range ta.DiscoveredRelationships {
			discovered++
			confSum += d.Confidence
		}
	}
	for _, d := range ins.HTMLRelationships {
		discovered++
		confSum += d.Confidence
	}

	ins.RelationshipCoverage = Coverage(discovered, TotalRefs(r))

	var avg float64
	if discovered > 0 {
		avg = confSum / float64(discovered)
	} else if n := len(ins.TableAnalyses); n > 0 {
		for _, ta := range ins.TableAnalyses {
			avg += ta.ConfidenceScore
		}
		avg /= float64(n)
	}
	ins.AccuracyPrediction = (ins.RelationshipCoverage + avg) / 2
	ins.Guidance = Guidance(ins.AccuracyPrediction)
}

// TotalRefs counts the references the report knows about: every embedded
// reference token plus every implicit relationship.
func TotalRefs(r *relations.Report) int {
	n := len(r.ImplicitRelationships)
	for _, e := range r.EmbeddedReferences {
		n += len(e.Refs)
	}
	return n
}

// Coverage returns min(1, discovered/total). With nothing to cover it is 1.
func Coverage(discovered, total int) float64 {
	if total <= 0 {
		return 1
	}
	return min(1, float64(discovered)/float64(total))
}

// Guidance returns the tiered advice for an accuracy prediction.
func Guidance(accuracy float64) string {
	switch {
	case accuracy >= ExcellentAccuracy:
		return "EXCELLENT: relationships are reliable enough for automated emission"
	case accuracy >= GoodAccuracy:
		return "GOOD: review the validation warnings before emission"
	default:
		return "NEEDS REVIEW: verify relationships manually before relying on them"
	}
}

func mergeRelationships(dst, src []relations.DiscoveredRelationship) []relations.DiscoveredRelationship {
	for _, s := range src {
		if slices.ContainsFunc(dst, func(d relations.DiscoveredRelationship) bool {
			return d.Source == s.Source && d.Target == s.Target && d.Kind == s.Kind
		}) {
			continue
		}
		dst = append(dst, s)
	}
	return dst
}

func sortedTables(r *relations.Report) []string {
	out := make([]string, 0, len(r.TableInfo))
	for t := range r.TableInfo {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// descriptionColumns returns the markup-bearing text columns of entity
// tables in "table.column" form.
func descriptionColumns(r *relations.Report) []string {
	var out []string
	for _, col := range r.TextColumns() {
		table, _, _ := strings.Cut(col, ".")
		if relations.TableType(table) != TableEntities {
			continue
		}
		if len(r.ColumnPatterns[col]) > 0 {
			out = append(out, col)
		}
	}
	return out
}

// tableSample returns the first sampled text value that carries markup, or
// the first non-empty one.
func tableSample(r *relations.Report, table string) string {
	var fallback string
	for _, row := range r.TableInfo[table].SampleData {
		for _, col := range r.TableInfo[table].Columns {
			s, ok := row[col.Name].(string)
			if !ok || s == "" {
				continue
			}
			if len(relations.HTMLPatterns(s)) > 0 {
				return truncate(s)
			}
			if fallback == "" {
				fallback = s
			}
		}
	}
	return truncate(fallback)
}

func tableHints(r *relations.Report, table string) string {
	info := r.TableInfo[table]
	cols := make([]string, len(info.Columns))
	for i, c := range info.Columns {
		cols[i] = c.Name + " " + c.DataType
	}
	hints := fmt.Sprintf("%d records; columns: %s", info.RecordCount, strings.Join(cols, ", "))
	if len(info.HTMLPatterns) > 0 {
		hints += "; markup: " + strings.Join(info.HTMLPatterns, ", ")
	}
	return hints
}

func truncate(s string) string {
	if len(s) <= DefaultSampleBytes {
		return s
	}
	return strings.ToValidUTF8(s[:DefaultSampleBytes], "")
}
