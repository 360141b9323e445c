// Package relations infers relationships between archive tables that the
// schema does not declare. A [Discoverer] walks the archive in a fixed order
// and builds a [Report]: table structure, markup patterns per text column,
// references embedded in text, join-based implicit foreign keys and graded
// recommendations.
package relations

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/MrWong99/hexforge/internal/archive"
)

// Source is the archive introspection surface the discoverer needs.
// [*archive.Store] satisfies it.
type Source interface {
	ListTables(ctx context.Context) ([]string, error)
	DescribeTable(ctx context.Context, table string) (archive.TableInfo, error)
	SampleRows(ctx context.Context, table string, n int) ([]map[string]any, error)
	TextSamples(ctx context.Context, table, column string, n int) ([]string, error)
	JoinCount(ctx context.Context, leftTable, leftCol, rightTable, rightCol string) (int, error)
	ForeignKeys(ctx context.Context, table string) ([]archive.ForeignKey, error)
}

var _ Source = (*archive.Store)(nil)

// Confidence grades used in recommendations.
const (
	HighConfidence   = 0.8
	MediumConfidence = 0.5
)

// Default sample sizes.
const (
	DefaultRowSamples  = 5
	DefaultTextSamples = 10
)

// Option configures a [Discoverer].
type Option func(*Discoverer)

// WithRowSamples sets how many rows are stored per table in the report.
func WithRowSamples(n int) Option {
	return func(d *Discoverer) {
		if n >= 0 {
			d.rowSamples = n
		}
	}
}

// WithTextSamples sets how many values per text column are scanned for markup
// and references.
func WithTextSamples(n int) Option {
	return func(d *Discoverer) {
		if n > 0 {
			d.textSamples = n
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Discoverer) {
		if l != nil {
			d.log = l
		}
	}
}

// Discoverer builds relationship reports over an archive.
type Discoverer struct {
	src         Source
	rowSamples  int
	textSamples int
	log         *slog.Logger
}

// NewDiscoverer returns a discoverer reading from src.
func NewDiscoverer(src Source, opts ...Option) *Discoverer {
	d := &Discoverer{
		src:         src,
		rowSamples:  DefaultRowSamples,
		textSamples: DefaultTextSamples,
		log:         slog.Default(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Discover runs every analysis step and returns the report. Errors from the
// archive abort discovery; the archive is read-only so there is nothing to
// undo.
func (d *Discoverer) Discover(ctx context.Context) (*Report, error) {
	r := NewReport()

	tables, err := d.src.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("relations: list tables: %w", err)
	}

	for _, t := range tables {
		if err := d.describe(ctx, r, t); err != nil {
			return nil, err
		}
	}
	d.log.Info("tables described", "tables", len(tables), "records", r.TotalRecords())

	for _, t := range tables {
		fks, err := d.src.ForeignKeys(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("relations: foreign keys of %q: %w", t, err)
		}
		r.Relationships = append(r.Relationships, fks...)
	}

	patterns := make(map[string]struct{})
	for _, t := range tables {
		if err := d.scanText(ctx, r, t, patterns); err != nil {
			return nil, err
		}
	}
	for p := range patterns {
		r.HTMLPatterns = append(r.HTMLPatterns, p)
	}
	slices.Sort(r.HTMLPatterns)

	if err := d.implicit(ctx, r, tables); err != nil {
		return nil, err
	}
	d.log.Info("implicit relationships found",
		"count", len(r.ImplicitRelationships),
		"embedded_columns", len(r.EmbeddedReferences))

	recommend(r, tables)
	return r, nil
}

func (d *Discoverer) describe(ctx context.Context, r *Report, table string) error {
	info, err := d.src.DescribeTable(ctx, table)
	if err != nil {
		return fmt.Errorf("relations: describe %q: %w", table, err)
	}
	if d.rowSamples > 0 {
		rows, err := d.src.SampleRows(ctx, table, d.rowSamples)
		if err != nil {
			return fmt.Errorf("relations: sample %q: %w", table, err)
		}
		info.SampleData = rows
	}
	r.TableInfo[table] = info
	return nil
}

// scanText tags text columns with markup patterns and collects embedded
// references.
func (d *Discoverer) scanText(ctx context.Context, r *Report, table string, all map[string]struct{}) error {
	info := r.TableInfo[table]
	tableSet := make(map[string]struct{})

	for _, col := range info.Columns {
		if !col.IsText() {
			continue
		}
		samples, err := d.src.TextSamples(ctx, table, col.Name, d.textSamples)
		if err != nil {
			return fmt.Errorf("relations: scan %q.%q: %w", table, col.Name, err)
		}

		colSet := make(map[string]struct{})
		refs := make(map[string][]string)
		for _, s := range samples {
			for _, p := range HTMLPatterns(s) {
				colSet[p] = struct{}{}
			}
			for kind, toks := range ExtractReferences(s) {
				for _, tok := range toks {
					if !slices.Contains(refs[kind], tok) {
						refs[kind] = append(refs[kind], tok)
					}
				}
			}
		}

		if len(colSet) > 0 {
			key := table + "." + col.Name
			r.ColumnPatterns[key] = sortedKeys(colSet)
			for p := range colSet {
				tableSet[p] = struct{}{}
				all[p] = struct{}{}
			}
		}
		for _, kind := range []string{RefUUID, RefArchive, RefEntity} {
			if len(refs[kind]) == 0 {
				continue
			}
			r.EmbeddedReferences = append(r.EmbeddedReferences, EmbeddedReference{
				Table:  table,
				Column: col.Name,
				Kind:   kind,
				Refs:   refs[kind],
			})
		}
	}

	if len(tableSet) > 0 {
		info.HTMLPatterns = sortedKeys(tableSet)
	}
	r.TableInfo[table] = info
	return nil
}

// implicit joins every related column pair across every unordered table pair.
func (d *Discoverer) implicit(ctx context.Context, r *Report, tables []string) error {
	for i, t1 := range tables {
		for _, t2 := range tables[i+1:] {
			info1, info2 := r.TableInfo[t1], r.TableInfo[t2]
			denom := min(info1.RecordCount, info2.RecordCount)
			if denom == 0 {
				continue
			}
			for _, c1 := range info1.Columns {
				for _, c2 := range info2.Columns {
					if !Related(c1.Name, c2.Name) {
						continue
					}
					n, err := d.src.JoinCount(ctx, t1, c1.Name, t2, c2.Name)
					if err != nil {
						return fmt.Errorf("relations: join %s.%s=%s.%s: %w", t1, c1.Name, t2, c2.Name, err)
					}
					if n == 0 {
						continue
					}
					rel := orient(t1, c1.Name, t2, c2.Name)
					rel.MatchCount = n
					rel.Confidence = Confidence(n, info1.RecordCount, info2.RecordCount)
					d.log.Debug("implicit relationship",
						"from", rel.From(), "to", rel.To(),
						"matches", n, "confidence", rel.Confidence)
					r.ImplicitRelationships = append(r.ImplicitRelationships, rel)
				}
			}
		}
	}
	return nil
}

// orient points the relationship at the side whose column is a bare
// identifier column.
func orient(t1, c1, t2, c2 string) ImplicitRelationship {
	if isPrimaryName(c1) && !isPrimaryName(c2) {
		return ImplicitRelationship{FromTable: t2, FromColumn: c2, ToTable: t1, ToColumn: c1}
	}
	return ImplicitRelationship{FromTable: t1, FromColumn: c1, ToTable: t2, ToColumn: c2}
}

// Confidence returns matches / min(rows1, rows2) clamped to [0,1]. It is 0
// when either table is empty.
func Confidence(matches, rows1, rows2 int) float64 {
	denom := min(rows1, rows2)
	if denom <= 0 || matches <= 0 {
		return 0
	}
	return min(1, float64(matches)/float64(denom))
}

// Grade returns the recommendation label for a confidence value.
func Grade(confidence float64) string {
	switch {
	case confidence >= HighConfidence:
		return "HIGH CONFIDENCE"
	case confidence >= MediumConfidence:
		return "MEDIUM CONFIDENCE"
	default:
		return "LOW CONFIDENCE"
	}
}

func recommend(r *Report, tables []string) {
	for _, rel := range r.ImplicitRelationships {
		line := fmt.Sprintf("%s: %s -> %s (%d matches, %.1f%%)",
			Grade(rel.Confidence), rel.From(), rel.To(), rel.MatchCount, rel.Confidence*100)
		if rel.Confidence < MediumConfidence {
			line += "; verify before relying on it"
		}
		r.Recommendations = append(r.Recommendations, line)
	}
	if len(r.ImplicitRelationships) == 0 {
		r.Recommend("No implicit relationships found; entities may only reference each other inside markup")
	}
	if n := len(r.EmbeddedReferences); n > 0 {
		r.Recommend("%d column(s) carry embedded references; resolve them against Entities.uuid", n)
	}

	r.Recommend("Total records across %d table(s): %d", len(tables), r.TotalRecords())
	for _, t := range tables {
		info := r.TableInfo[t]
		if info.RecordCount == 0 {
			r.Recommend("Table %s is empty", t)
			continue
		}
		r.Recommend("Table %s: %d records", t, info.RecordCount)
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// TextColumns returns "table.column" for every text column in the report, in
// table then column order.
func (r *Report) TextColumns() []string {
	tables := make([]string, 0, len(r.TableInfo))
	for t := range r.TableInfo {
		tables = append(tables, t)
	}
	slices.Sort(tables)
	var out []string
	for _, t := range tables {
		for _, c := range r.TableInfo[t].Columns {
			if c.IsText() {
				out = append(out, t+"."+c.Name)
			}
		}
	}
	return out
}

// TableType guesses the role of a table from its name for the semantic
// agent: "entities", "refs" or "unknown".
func TableType(table string) string {
	t := strings.ToLower(table)
	switch {
	case strings.Contains(t, "entit"):
		return "entities"
	case strings.Contains(t, "ref"), strings.Contains(t, "link"), strings.Contains(t, "rel"):
		return "refs"
	default:
		return "unknown"
	}
}
