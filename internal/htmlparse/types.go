package htmlparse

import "math"

// WarningKind classifies a non-fatal parse problem.
type WarningKind string

const (
	// WarnShapeUnrecognized means the input did not look like the parser's
	// target shape.
	WarnShapeUnrecognized WarningKind = "html_shape_unrecognized"

	// WarnStatblockIncomplete means a stat block was missing fields that
	// were filled with sentinel defaults.
	WarnStatblockIncomplete WarningKind = "statblock_incomplete"

	// WarnWeatherTableMissing means a weather heading had no condensed table.
	WarnWeatherTableMissing WarningKind = "weather_table_missing"
)

// Warning is a non-fatal parse diagnostic. Parsers collect warnings instead
// of returning errors.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Detail string      `json:"detail"`
}

// Sentinel values applied when a stat block omits a field.
const (
	DefaultArmorClass   = 10
	DefaultHitDice      = "1d4"
	DefaultAbilityScore = 10
	DefaultAlignment    = "Unknown"
)

// CityHexDivisor converts city map units to hex coordinates.
const CityHexDivisor = 100.0

// Coordinates is a position taken from a <map-coords> element.
type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Doorway is one exit of a dungeon room.
type Doorway struct {
	Direction   string `json:"direction"`
	Material    string `json:"material"`
	Shape       string `json:"shape"`
	Locked      bool   `json:"locked"`
	Magical     bool   `json:"magical"`
	Condition   string `json:"condition"`
	KeyLocation string `json:"key_location,omitempty"`
	Description string `json:"description"`
}

// ParsedDungeonRoom is a single keyed area of a dungeon.
type ParsedDungeonRoom struct {
	Title             string                `json:"title"`
	RoomType          string                `json:"room_type"`
	AreaNumber        int                   `json:"area_number,omitempty"`
	ParentDungeon     string                `json:"parent_dungeon,omitempty"`
	Coordinates       *Coordinates          `json:"coordinates,omitempty"`
	Description       string                `json:"description"`
	Doorways          []Doorway             `json:"doorways"`
	Features          []string              `json:"features"`
	WanderingMonsters *ParsedEncounterTable `json:"wandering_monsters,omitempty"`
}

// Movement holds speeds in feet. Zero means the mode is absent.
type Movement struct {
	Walk  int `json:"walk"`
	Fly   int `json:"fly,omitempty"`
	Swim  int `json:"swim,omitempty"`
	Climb int `json:"climb,omitempty"`
}

// AbilityScores are the six classic ability scores.
type AbilityScores struct {
	Str int `json:"str"`
	Dex int `json:"dex"`
	Con int `json:"con"`
	Int int `json:"int"`
	Wis int `json:"wis"`
	Cha int `json:"cha"`
}

// SpecialAbility is a named trait from a stat block.
type SpecialAbility struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Action is an entry under a stat block's Actions heading.
type Action struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AttackBonus *int   `json:"attack_bonus,omitempty"`
	Damage      string `json:"damage,omitempty"`
	SaveDC      *int   `json:"save_dc,omitempty"`
}

// ParsedCreature is a parsed stat block.
type ParsedCreature struct {
	Name             string           `json:"name"`
	ChallengeRating  string           `json:"challenge_rating"`
	ArmorClass       int              `json:"armor_class"`
	HitPoints        int              `json:"hit_points"`
	HitDice          string           `json:"hit_dice"`
	Movement         Movement         `json:"movement"`
	Abilities        AbilityScores    `json:"abilities"`
	Alignment        string           `json:"alignment"`
	SpecialAbilities []SpecialAbility `json:"special_abilities"`
	Actions          []Action         `json:"actions"`
}

// EncounterEntry is one row of an encounter table.
type EncounterEntry struct {
	Roll         string          `json:"roll"`
	CreatureName string          `json:"creature_name"`
	Quantity     string          `json:"quantity,omitempty"`
	Creature     *ParsedCreature `json:"creature,omitempty"`
}

// ParsedEncounterTable is a random-encounter table.
type ParsedEncounterTable struct {
	Title string `json:"title"`

	// ProbabilityText is the "X in Y" phrase near the table, if any.
	ProbabilityText string `json:"probability_text,omitempty"`

	// Probability is X/Y from ProbabilityText, or 0.
	Probability float64          `json:"probability"`
	Entries     []EncounterEntry `json:"entries"`
}

// WeatherRow maps a roll range to a condition per season.
type WeatherRow struct {
	Roll       string            `json:"roll"`
	Conditions map[string]string `json:"conditions"`
}

// ParsedWeatherSystem is a seasonal weather table.
type ParsedWeatherSystem struct {
	Seasons        []string     `json:"seasons"`
	Rows           []WeatherRow `json:"rows"`
	SpecialEffects []string     `json:"special_effects,omitempty"`
}

// Point is a position in city map units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Hex maps p onto the hex grid using [CityHexDivisor].
func (p Point) Hex() (q, r int) {
	return int(math.Floor(p.X / CityHexDivisor)), int(math.Floor(p.Y / CityHexDivisor))
}

// Building is a city building footprint.
type Building struct {
	Polygon []Point `json:"polygon"`
	UUID    string  `json:"uuid,omitempty"`
}

// Road is a city street polyline.
type Road struct {
	Points []Point `json:"points"`
	Width  float64 `json:"width"`
}

// POI is a point of interest on a city map.
type POI struct {
	Coords Point  `json:"coords"`
	Title  string `json:"title"`
	UUID   string `json:"uuid,omitempty"`
	Kind   string `json:"kind"`
}

// ParsedCity is a decoded city map document.
type ParsedCity struct {
	Buildings []Building `json:"buildings"`
	Roads     []Road     `json:"roads"`
	POIs      []POI      `json:"pois"`
}

// ParsedSettlement is a settlement page.
type ParsedSettlement struct {
	Name        string               `json:"name"`
	Kind        string               `json:"kind"`
	Coordinates *Coordinates         `json:"coordinates,omitempty"`
	Description string               `json:"description"`
	Services    []string             `json:"services"`
	Features    []string             `json:"features"`
	Weather     *ParsedWeatherSystem `json:"weather,omitempty"`
}

// ParsedHexFeature is a wilderness hex landmark.
type ParsedHexFeature struct {
	Name        string       `json:"name"`
	Kind        string       `json:"kind"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Description string       `json:"description"`
	Features    []string     `json:"features"`
}
