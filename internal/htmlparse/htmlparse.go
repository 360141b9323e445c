// Package htmlparse converts archive HTML fragments and city map documents
// into typed records.
//
// Every parser is a pure function of its input. None of them return errors:
// unrecognized or partial input yields nil or empty results plus [Warning]
// values, which callers log. [Recognize] selects which parsers apply to a
// fragment by recognition predicates, and [Parse] runs all of them.
package htmlparse

import (
	"log/slog"
	"strings"
)

// Kind names a parser shape.
type Kind string

const (
	KindCity           Kind = "city"
	KindDungeonRoom    Kind = "dungeon_room"
	KindSettlement     Kind = "settlement"
	KindHexFeature     Kind = "hex_feature"
	KindCreature       Kind = "creature"
	KindEncounterTable Kind = "encounter_table"
	KindWeather        Kind = "weather"
)

// Recognize returns the parser kinds whose recognition predicates accept raw,
// in a fixed order.
func Recognize(raw string) []Kind {
	if IsCity(raw) {
		return []Kind{KindCity}
	}
	var kinds []Kind
	lower := strings.ToLower(raw)
	if IsDungeonRoom(raw) {
		kinds = append(kinds, KindDungeonRoom)
	}
	if SettlementKind(raw) != "" {
		kinds = append(kinds, KindSettlement)
	} else if HexFeatureKind(raw) != "" {
		kinds = append(kinds, KindHexFeature)
	}
	if strings.Contains(lower, "statblock") {
		kinds = append(kinds, KindCreature)
	}
	if strings.Contains(lower, "<h5") && (strings.Contains(lower, "encounter") || strings.Contains(lower, "monsters")) {
		kinds = append(kinds, KindEncounterTable)
	}
	if strings.Contains(raw, "Weather") && strings.Contains(lower, "<h5") {
		kinds = append(kinds, KindWeather)
	}
	return kinds
}

// Result gathers every record parsed from one fragment.
type Result struct {
	Kinds      []Kind                 `json:"kinds"`
	City       *ParsedCity            `json:"city,omitempty"`
	Room       *ParsedDungeonRoom     `json:"room,omitempty"`
	Settlement *ParsedSettlement      `json:"settlement,omitempty"`
	HexFeature *ParsedHexFeature      `json:"hex_feature,omitempty"`
	Creatures  []ParsedCreature       `json:"creatures,omitempty"`
	Encounters []ParsedEncounterTable `json:"encounters,omitempty"`
	Weather    *ParsedWeatherSystem   `json:"weather,omitempty"`
	Warnings   []Warning              `json:"warnings,omitempty"`
}

// Empty reports whether nothing was parsed.
func (r Result) Empty() bool {
	return r.City == nil && r.Room == nil && r.Settlement == nil && r.HexFeature == nil &&
		len(r.Creatures) == 0 && len(r.Encounters) == 0 && r.Weather == nil
}

// Parse runs every parser that [Recognize] selects. When nothing is
// recognized, the result carries a single [WarnShapeUnrecognized] warning.
func Parse(raw string) Result {
	r := Result{Kinds: Recognize(raw)}
	for _, k := range r.Kinds {
		var ws []Warning
		switch k {
		case KindCity:
			r.City, ws = ParseCity(raw)
		case KindDungeonRoom:
			r.Room, ws = ParseDungeonRoom(raw)
		case KindSettlement:
			r.Settlement, ws = ParseSettlement(raw)
			if r.Settlement != nil && r.Settlement.Weather != nil {
				r.Weather = r.Settlement.Weather
			}
		case KindHexFeature:
			r.HexFeature, ws = ParseHexFeature(raw)
		case KindCreature:
			r.Creatures, ws = ParseCreatures(raw)
		case KindEncounterTable:
			if r.Room != nil && r.Room.WanderingMonsters != nil {
				continue
			}
			r.Encounters, ws = ParseEncounterTables(raw)
		case KindWeather:
			if r.Weather != nil {
				continue
			}
			r.Weather, ws = ParseWeather(raw)
		}
		r.Warnings = append(r.Warnings, ws...)
	}
	if len(r.Kinds) == 0 {
		r.Warnings = append(r.Warnings, Warning{Kind: WarnShapeUnrecognized, Detail: "no parser recognized the fragment"})
	}
	return r
}

// Log emits each warning at warn level with the given attributes.
func (r Result) Log(log *slog.Logger, attrs ...any) {
	if log == nil {
		log = slog.Default()
	}
	for _, w := range r.Warnings {
		log.Warn("parse warning", append([]any{"kind", string(w.Kind), "detail", w.Detail}, attrs...)...)
	}
}
