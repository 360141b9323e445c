package relations

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MrWong99/hexforge/internal/archive"
)

// ReportFile is the file name [Report.Save] writes.
const ReportFile = "report.json"

// ImplicitRelationship is a join edge inferred from value co-occurrence.
type ImplicitRelationship struct {
	FromTable  string  `json:"from_table"`
	FromColumn string  `json:"from_column"`
	ToTable    string  `json:"to_table"`
	ToColumn   string  `json:"to_column"`
	MatchCount int     `json:"match_count"`
	Confidence float64 `json:"confidence"`
}

// From returns "table.column" of the referencing side.
func (r ImplicitRelationship) From() string { return r.FromTable + "." + r.FromColumn }

// To returns "table.column" of the referenced side.
func (r ImplicitRelationship) To() string { return r.ToTable + "." + r.ToColumn }

// Reference kinds found embedded in text columns.
const (
	RefUUID    = "uuid"
	RefArchive = "archive_uri"
	RefEntity  = "entity_ref"
)

// EmbeddedReference lists reference tokens of one kind found in a column.
type EmbeddedReference struct {
	Table  string   `json:"table"`
	Column string   `json:"column"`
	Kind   string   `json:"kind"`
	Refs   []string `json:"refs"`
}

// DiscoveredRelationship is a relationship proposed by the semantic agent.
type DiscoveredRelationship struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Kind       string  `json:"kind"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// TableAnalysis is the agent's judgment of one table.
type TableAnalysis struct {
	Table                   string                   `json:"table"`
	TableType               string                   `json:"table_type"`
	DiscoveredRelationships []DiscoveredRelationship `json:"discovered_relationships"`
	ConfidenceScore         float64                  `json:"confidence_score"`
	Concerns                []string                 `json:"concerns"`
	Suggestions             []string                 `json:"suggestions"`
}

// AIInsights holds everything the semantic analyzer adds to a report.
type AIInsights struct {
	TableAnalyses        []TableAnalysis          `json:"table_analyses"`
	ValidationWarnings   []string                 `json:"validation_warnings"`
	HTMLRelationships    []DiscoveredRelationship `json:"html_relationships"`
	RelationshipCoverage float64                  `json:"relationship_coverage"`
	AccuracyPrediction   float64                  `json:"accuracy_prediction"`
	Guidance             string                   `json:"guidance"`
}

// Report is the result of relationship discovery. It only grows during
// analysis and is not modified after it is saved.
type Report struct {
	TableInfo             map[string]archive.TableInfo `json:"table_info"`
	Relationships         []archive.ForeignKey         `json:"relationships"`
	ImplicitRelationships []ImplicitRelationship       `json:"implicit_relationships"`
	EmbeddedReferences    []EmbeddedReference          `json:"embedded_references"`

	// HTMLPatterns is the sorted set of patterns seen in any column.
	HTMLPatterns []string `json:"html_patterns"`

	// ColumnPatterns maps "table.column" to its sorted pattern set.
	ColumnPatterns map[string][]string `json:"column_patterns"`

	Recommendations []string    `json:"recommendations"`
	AIInsights      *AIInsights `json:"ai_insights,omitempty"`
}

// NewReport returns an empty report with non-nil collections.
func NewReport() *Report {
	return &Report{
		TableInfo:             make(map[string]archive.TableInfo),
		Relationships:         []archive.ForeignKey{},
		ImplicitRelationships: []ImplicitRelationship{},
		EmbeddedReferences:    []EmbeddedReference{},
		HTMLPatterns:          []string{},
		ColumnPatterns:        make(map[string][]string),
		Recommendations:       []string{},
	}
}

// TotalRecords sums the record counts of all tables.
func (r *Report) TotalRecords() int {
	n := 0
	for _, ti := range r.TableInfo {
		n += ti.RecordCount
	}
	return n
}

// Recommend appends a recommendation line.
func (r *Report) Recommend(format string, args ...any) {
	r.Recommendations = append(r.Recommendations, fmt.Sprintf(format, args...))
}

// Save writes the report as pretty JSON to dir/report.json and returns the
// path.
func (r *Report) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("relations: create %q: %w", dir, err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("relations: encode report: %w", err)
	}
	path := filepath.Join(dir, ReportFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("relations: write %q: %w", path, err)
	}
	return path, nil
}

// LoadReport reads a report written by [Report.Save].
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("relations: read %q: %w", path, err)
	}
	r := NewReport()
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("relations: decode %q: %w", path, err)
	}
	return r, nil
}
