// Package semantic enriches a relationship report with judgments from an
// external language-model agent.
//
// The [Agent] interface is the collaborator boundary. [LLMAgent] implements
// it on any [llm.Provider]; [Analyzer] drives the agent over a
// [relations.Report] and merges the answers into its AIInsights. The
// deterministic fields of the report are never modified.
package semantic

import (
	"context"
	"errors"

	"github.com/MrWong99/hexforge/internal/relations"
)

// Agent failures. None of them are fatal to a run.
var (
	// ErrAgentTimeout is returned when the agent does not answer in time.
	ErrAgentTimeout = errors.New("semantic: agent timed out")

	// ErrAgentRejected is returned when the agent or its transport refuses
	// the request.
	ErrAgentRejected = errors.New("semantic: agent rejected request")

	// ErrAgentMalformed is returned when the agent's answer cannot be decoded.
	ErrAgentMalformed = errors.New("semantic: malformed agent response")
)

// Table types passed to [Agent.AnalyzeTable].
const (
	TableEntities = "entities"
	TableRefs     = "refs"
	TableUnknown  = "unknown"
)

// TableRequest asks the agent about one table.
type TableRequest struct {
	Table      string
	TableType  string
	HTMLSample string
	Hints      string
}

// TableResult is the agent's view of one table.
type TableResult struct {
	DiscoveredRelationships []relations.DiscoveredRelationship
	ConfidenceScore         float64
	Concerns                []string
	Suggestions             []string
}

// RelationshipCheck asks the agent to sanity-check an implicit relationship.
type RelationshipCheck struct {
	From       string
	To         string
	MatchCount int
	Confidence float64

	// Counts maps table name to record count for both sides.
	Counts map[string]int
}

// Agent is the external semantic analyst.
type Agent interface {
	AnalyzeTable(ctx context.Context, req TableRequest) (TableResult, error)
	ValidateRelationship(ctx context.Context, check RelationshipCheck) (string, error)
	ParseHTML(ctx context.Context, entityName, html string) ([]relations.DiscoveredRelationship, error)
}
