// Package category defines the closed set of entity categories produced by the
// categorizer and consumed by the cluster store, emitters and orchestrator.
package category

import "fmt"

// Category is a closed sum type over the entity categories recognised by the
// pipeline. The zero value is [Uncategorized].
type Category int

const (
	Uncategorized Category = iota
	Regions
	Settlements
	Factions
	Dungeons
	Characters
	Creatures
	Items
	Spells
	Mechanics
)

// All lists every category in file-emission order, with [Uncategorized] last.
var All = []Category{
	Regions, Settlements, Factions, Dungeons,
	Characters, Creatures, Items, Spells, Mechanics,
	Uncategorized,
}

// Locations is the fixed per-category generation order used by the
// orchestrator.
var Locations = []Category{Regions, Settlements, Factions, Dungeons}

// String returns the lowercase file stem of c (e.g. "regions").
func (c Category) String() string {
	switch c {
	case Regions:
		return "regions"
	case Settlements:
		return "settlements"
	case Factions:
		return "factions"
	case Dungeons:
		return "dungeons"
	case Characters:
		return "characters"
	case Creatures:
		return "creatures"
	case Items:
		return "items"
	case Spells:
		return "spells"
	case Mechanics:
		return "mechanics"
	case Uncategorized:
		return "uncategorized"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// IsValid reports whether c is one of the declared categories.
func (c Category) IsValid() bool {
	return c >= Uncategorized && c <= Mechanics
}

// Parse maps a file stem back to its [Category].
func Parse(s string) (Category, error) {
	for _, c := range All {
		if c.String() == s {
			return c, nil
		}
	}
	return Uncategorized, fmt.Errorf("category: unknown category %q", s)
}

// MarshalText implements [encoding.TextMarshaler].
func (c Category) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("category: invalid value %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
