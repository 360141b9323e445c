// Package entity defines the raw archive entity as it flows through the
// pipeline, together with an in-memory uuid index.
//
// A [RawEntity] is created exactly once at ingestion and never mutated.
// Downstream stages refer to entities by uuid through a [Store] rather than
// by sharing pointers.
package entity

import "github.com/MrWong99/hexforge/internal/category"

// UnknownName is the entity name used when nothing could be extracted from
// the raw value.
const UnknownName = "unknown"

// RawEntity is one row of the archive after categorization.
type RawEntity struct {
	// UUID is unique within the archive.
	UUID string `json:"uuid"`

	// Category is the closed category assigned by the categorizer.
	Category category.Category `json:"category"`

	// EntityName is the best-effort display name, or [UnknownName].
	EntityName string `json:"entity_name"`

	// RawValue is the original HTML, JSON or opaque text.
	RawValue string `json:"raw_value"`
}

// HasName reports whether a real name was extracted for e.
func (e RawEntity) HasName() bool {
	return e.EntityName != "" && e.EntityName != UnknownName
}
