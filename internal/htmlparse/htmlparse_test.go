package htmlparse_test

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MrWong99/hexforge/internal/htmlparse"
)

const roomHTML = `
<div class="breadcrumbs"><a href="/region/r1">Grey Moor</a> / <a href="/location/abc">Hollow Crypt</a> / Area # 4</div>
<div id="title"><span>Flooded Chamber</span></div>
<map-coords x="12" y="34"></map-coords>
<blockquote>Water drips from the ceiling.</blockquote>
<p>Bones litter the floor.</p>
<h4>Doorways</h4>
<ul>
<li>Iron door to the <strong>S</strong>. Stuck.</li>
<li>Arched stone door to the <strong>E</strong>, carved with glowing glyphs.</li>
</ul>
<ul><li>A rusted lever</li><li>Roll 1d6 for loot</li></ul>
<h5>Wandering monsters</h5>
<p>Check 1 in 6 every turn.</p>
<table><tr><td>1</td><td>Giant Rats (2d4)</td></tr><tr><td>2</td><td>Ghoul</td></tr></table>
`

func TestParseDoorway(t *testing.T) {
	t.Parallel()

	got, ok := htmlparse.ParseDoorway(`<li>wooden arched door to the <strong>N</strong>. Locked. The key is in area 13.</li>`)
	if !ok {
		t.Fatal("ParseDoorway: expected ok")
	}
	want := htmlparse.Doorway{
		Direction:   "north",
		Material:    "wood",
		Shape:       "arched",
		Locked:      true,
		Magical:     false,
		Condition:   "locked",
		KeyLocation: "area_13",
		Description: "wooden arched door to the N. Locked. The key is in area 13.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseDoorway mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDoorway_MagicNeedsWholeWord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{`<li>Oak door to the <strong>W</strong>, runed and humming.</li>`, true},
		{`<li>Oak door to the <strong>W</strong>, covered in pruned ivy.</li>`, false},
		{`<li>Oak door to the <strong>W</strong>, its brunette keeper asleep.</li>`, false},
		{`<li>Oak door to the <strong>W</strong>, enchanted.</li>`, true},
	}
	for _, tt := range tests {
		got, ok := htmlparse.ParseDoorway(tt.in)
		if !ok {
			t.Fatalf("ParseDoorway(%q): expected ok", tt.in)
		}
		if got.Magical != tt.want {
			t.Errorf("ParseDoorway(%q).Magical = %v, want %v", tt.in, got.Magical, tt.want)
		}
	}
}

func TestParseDoorway_DirectionMustBeUnique(t *testing.T) {
	t.Parallel()

	tests := []string{
		`<li>a plain door</li>`,
		`<li>door to the <strong>N</strong> or <strong>S</strong></li>`,
		`<li>door to the <strong>North</strong></li>`,
	}
	for _, in := range tests {
		if _, ok := htmlparse.ParseDoorway(in); ok {
			t.Errorf("ParseDoorway(%q): expected not ok", in)
		}
	}
}

func TestParseDungeonRoom(t *testing.T) {
	t.Parallel()

	room, warnings := htmlparse.ParseDungeonRoom(roomHTML)
	if room == nil {
		t.Fatalf("ParseDungeonRoom: expected room, got nil (warnings %v)", warnings)
	}
	if room.Title != "Flooded Chamber" || room.RoomType != "chamber" {
		t.Errorf("title/type: got %q/%q", room.Title, room.RoomType)
	}
	if room.AreaNumber != 4 || room.ParentDungeon != "Hollow Crypt" {
		t.Errorf("area/parent: got %d/%q", room.AreaNumber, room.ParentDungeon)
	}
	if room.Coordinates == nil || *room.Coordinates != (htmlparse.Coordinates{X: 12, Y: 34}) {
		t.Errorf("coordinates: got %+v", room.Coordinates)
	}
	if room.Description != "Water drips from the ceiling.\n\nBones litter the floor." {
		t.Errorf("description: got %q", room.Description)
	}
	if len(room.Doorways) != 2 {
		t.Fatalf("doorways: expected 2, got %+v", room.Doorways)
	}
	if d := room.Doorways[0]; d.Direction != "south" || d.Material != "iron" || d.Condition != "stuck" || d.Shape != "rectangular" {
		t.Errorf("doorway[0]: got %+v", d)
	}
	if d := room.Doorways[1]; d.Direction != "east" || d.Material != "stone" || d.Shape != "arched" || !d.Magical || d.Condition != "normal" {
		t.Errorf("doorway[1]: got %+v", d)
	}
	if diff := cmp.Diff([]string{"A rusted lever"}, room.Features); diff != "" {
		t.Errorf("features mismatch (-want +got):\n%s", diff)
	}
	wm := room.WanderingMonsters
	if wm == nil || len(wm.Entries) != 2 {
		t.Fatalf("wandering monsters: got %+v", wm)
	}
	if wm.Entries[0].CreatureName != "Giant Rats" || wm.Entries[0].Quantity != "2d4" {
		t.Errorf("entry[0]: got %+v", wm.Entries[0])
	}
	if wm.Entries[1].CreatureName != "Ghoul" || wm.Entries[1].Quantity != "" {
		t.Errorf("entry[1]: got %+v", wm.Entries[1])
	}
}

func TestParseDungeonRoom_Unrecognized(t *testing.T) {
	t.Parallel()

	room, warnings := htmlparse.ParseDungeonRoom("<p>a meadow</p>")
	if room != nil {
		t.Fatalf("ParseDungeonRoom: expected nil, got %+v", room)
	}
	if len(warnings) != 1 || warnings[0].Kind != htmlparse.WarnShapeUnrecognized {
		t.Fatalf("warnings: got %v", warnings)
	}
}

func TestParseEncounterTables(t *testing.T) {
	t.Parallel()

	raw := `<h5>Random encounter</h5><p>Roll 1 in 6 each hour.</p>
<table><tr><td>1</td><td>Blood Hawks (7)</td></tr></table>`

	tables, warnings := htmlparse.ParseEncounterTables(raw)
	if len(warnings) != 0 {
		t.Fatalf("warnings: expected none, got %v", warnings)
	}
	if len(tables) != 1 {
		t.Fatalf("tables: expected 1, got %d", len(tables))
	}
	et := tables[0]
	if et.ProbabilityText != "1 in 6" || et.Probability != 1.0/6.0 {
		t.Errorf("probability: got %q %v", et.ProbabilityText, et.Probability)
	}
	want := []htmlparse.EncounterEntry{{Roll: "1", CreatureName: "Blood Hawks", Quantity: "7"}}
	if diff := cmp.Diff(want, et.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEncounterTables_EmbeddedStatblock(t *testing.T) {
	t.Parallel()

	raw := `<h5>Monsters</h5><table>
<tr><td>1</td><td>Wolf (3)</td><td><div class="statblock"><strong>Wolf</strong> AC 13, HP 11 (2d8+2), CR 1/4</div></td></tr>
</table>`
	tables, _ := htmlparse.ParseEncounterTables(raw)
	if len(tables) != 1 || len(tables[0].Entries) != 1 {
		t.Fatalf("tables: got %+v", tables)
	}
	c := tables[0].Entries[0].Creature
	if c == nil || c.Name != "Wolf" || c.ArmorClass != 13 || c.HitDice != "2d8+2" || c.ChallengeRating != "1/4" {
		t.Fatalf("creature: got %+v", c)
	}
}

const goblinHTML = `
<div class="statblock">
  <h4>Goblin</h4>
  <p>Small humanoid, neutral evil</p>
  <p>AC 15, HP 7 (2d6), CR 1/4</p>
  <p>Speed 30 ft., climb 20 ft.</p>
  <table class="statblock-table">
    <tr><th>STR</th><th>DEX</th><th>CON</th><th>INT</th><th>WIS</th><th>CHA</th></tr>
    <tr><td>8 (-1)</td><td>14 (+2)</td><td>10 (+0)</td><td>10 (+0)</td><td>8 (-1)</td><td>8 (-1)</td></tr>
  </table>
  <ul><li><strong>Nimble Escape</strong>: can disengage as a bonus action.</li></ul>
  <h5>Actions</h5>
  <ul>
    <li><strong>Scimitar</strong>: +4 to hit, reach 5 ft. Hit: 5 (1d6 + 2) slashing damage.</li>
    <li><strong>Shriek</strong>: each creature must succeed on a DC 12 Wisdom save.</li>
  </ul>
</div>`

func TestParseCreature(t *testing.T) {
	t.Parallel()

	c, warnings := htmlparse.ParseCreature(goblinHTML)
	if c == nil {
		t.Fatal("ParseCreature: expected creature, got nil")
	}
	if len(warnings) != 0 {
		t.Errorf("warnings: expected none, got %v", warnings)
	}
	if c.Name != "Goblin" || c.ChallengeRating != "1/4" || c.ArmorClass != 15 || c.HitPoints != 7 || c.HitDice != "2d6" {
		t.Errorf("core stats: got %+v", c)
	}
	if c.Movement != (htmlparse.Movement{Walk: 30, Climb: 20}) {
		t.Errorf("movement: got %+v", c.Movement)
	}
	if c.Abilities != (htmlparse.AbilityScores{Str: 8, Dex: 14, Con: 10, Int: 10, Wis: 8, Cha: 8}) {
		t.Errorf("abilities: got %+v", c.Abilities)
	}
	if c.Alignment != "neutral evil" {
		t.Errorf("alignment: got %q", c.Alignment)
	}
	if len(c.SpecialAbilities) != 1 || c.SpecialAbilities[0].Name != "Nimble Escape" {
		t.Errorf("special abilities: got %+v", c.SpecialAbilities)
	}
	if len(c.Actions) != 2 {
		t.Fatalf("actions: expected 2, got %+v", c.Actions)
	}
	scimitar := c.Actions[0]
	if scimitar.Name != "Scimitar" || scimitar.AttackBonus == nil || *scimitar.AttackBonus != 4 || scimitar.Damage != "1d6+2" {
		t.Errorf("scimitar: got %+v", scimitar)
	}
	shriek := c.Actions[1]
	if shriek.SaveDC == nil || *shriek.SaveDC != 12 || shriek.AttackBonus != nil {
		t.Errorf("shriek: got %+v", shriek)
	}
}

func TestParseCreature_Defaults(t *testing.T) {
	t.Parallel()

	c, warnings := htmlparse.ParseCreature(`<div class="statblock"><strong>Rat</strong></div>`)
	if c == nil {
		t.Fatal("ParseCreature: expected creature, got nil")
	}
	if c.ArmorClass != htmlparse.DefaultArmorClass || c.HitDice != htmlparse.DefaultHitDice ||
		c.Alignment != htmlparse.DefaultAlignment || c.Abilities.Str != htmlparse.DefaultAbilityScore {
		t.Errorf("defaults not applied: %+v", c)
	}
	if len(warnings) != 1 || warnings[0].Kind != htmlparse.WarnStatblockIncomplete {
		t.Errorf("warnings: got %v", warnings)
	}

	if c, _ := htmlparse.ParseCreature("<p>no block</p>"); c != nil {
		t.Errorf("ParseCreature: expected nil for missing statblock, got %+v", c)
	}
}

const weatherHTML = `
<h5>Weather</h5>
<table class="condensed">
<tr><th>d6</th><th>Summer</th><th>Winter</th></tr>
<tr><td>1-3</td><td>Clear</td><td>Snow</td></tr>
<tr><td>4-6</td><td>Rain</td><td>Blizzard</td></tr>
</table>
<small>20% chance of flooding in spring</small>
<small>unrelated note</small>`

func TestParseWeather(t *testing.T) {
	t.Parallel()

	w, warnings := htmlparse.ParseWeather(weatherHTML)
	if w == nil {
		t.Fatalf("ParseWeather: expected weather, got nil (%v)", warnings)
	}
	want := &htmlparse.ParsedWeatherSystem{
		Seasons: []string{"Summer", "Winter"},
		Rows: []htmlparse.WeatherRow{
			{Roll: "1-3", Conditions: map[string]string{"Summer": "Clear", "Winter": "Snow"}},
			{Roll: "4-6", Conditions: map[string]string{"Summer": "Rain", "Winter": "Blizzard"}},
		},
		SpecialEffects: []string{"20% chance of flooding in spring"},
	}
	if diff := cmp.Diff(want, w); diff != "" {
		t.Fatalf("ParseWeather mismatch (-want +got):\n%s", diff)
	}
}

func TestParseWeather_TableMissing(t *testing.T) {
	t.Parallel()

	w, warnings := htmlparse.ParseWeather(`<h5>Weather</h5><p>It rains.</p>`)
	if w != nil {
		t.Fatalf("ParseWeather: expected nil, got %+v", w)
	}
	if len(warnings) != 1 || warnings[0].Kind != htmlparse.WarnWeatherTableMissing {
		t.Fatalf("warnings: got %v", warnings)
	}
}

const cityJSON = `{"map_data":{"type":"FeatureCollection","features":[
 {"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,0],"b-uuid-1"]]},"properties":{}},
 {"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,5],[250,5]]},"properties":{"width":3}},
 {"type":"Feature","geometry":{"type":"Point","coordinates":[150,220]},"properties":{"title":"The Rusty Anvil Blacksmith","uuid":"p-1"}}
]},"poi":[{"coords":{"x":5,"y":6},"title":"Old Tavern","uuid":"p-2"}]}`

func TestParseCity(t *testing.T) {
	t.Parallel()

	if !htmlparse.IsCity(cityJSON) {
		t.Fatal("IsCity: expected true")
	}
	city, warnings := htmlparse.ParseCity(cityJSON)
	if city == nil {
		t.Fatalf("ParseCity: expected city, got nil (%v)", warnings)
	}
	if len(city.Buildings) != 1 || city.Buildings[0].UUID != "b-uuid-1" || len(city.Buildings[0].Polygon) != 4 {
		t.Errorf("buildings: got %+v", city.Buildings)
	}
	if len(city.Roads) != 1 || city.Roads[0].Width != 3 || len(city.Roads[0].Points) != 2 {
		t.Errorf("roads: got %+v", city.Roads)
	}
	if len(city.POIs) != 2 {
		t.Fatalf("pois: expected 2, got %+v", city.POIs)
	}
	if p := city.POIs[0]; p.Kind != "blacksmith" || p.UUID != "p-1" {
		t.Errorf("poi[0]: got %+v", p)
	}
	if q, r := city.POIs[0].Coords.Hex(); q != 1 || r != 2 {
		t.Errorf("poi[0] hex: got (%d,%d)", q, r)
	}
	if p := city.POIs[1]; p.Kind != "tavern" || p.Coords != (htmlparse.Point{X: 5, Y: 6}) {
		t.Errorf("poi[1]: got %+v", p)
	}
}

func TestPOIKind(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Gorm's Blacksmith Shop": "blacksmith",
		"General Shop":           "shop",
		"Hunters Lodge":          "lodge",
		"The Witch's Hut":        "witch",
		"Town Hall":              "unknown",
	}
	for title, want := range tests {
		if got := htmlparse.POIKind(title); got != want {
			t.Errorf("POIKind(%q): expected %q, got %q", title, want, got)
		}
	}
}

func TestIsCity_RejectsNonCity(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{`{"type":"FeatureCollection"}`, `<p>map_data FeatureCollection</p>`, `{broken`} {
		if htmlparse.IsCity(raw) {
			t.Errorf("IsCity(%q): expected false", raw)
		}
	}
}

const settlementHTML = `
<div id="title"><span>Village of Millbrook</span></div>
<map-coords x="3" y="4"></map-coords>
<p>A quiet village.</p>
<h4>Services</h4>
<ul><li>Inn: The Drowned Rat</li><li>Blacksmith</li></ul>
<h4>Notes</h4>
<ul><li>Old well</li></ul>
<h5>Weather</h5>
<table class="condensed"><tr><th>d6</th><th>Spring</th></tr><tr><td>1-6</td><td>Fog</td></tr></table>`

func TestParseSettlement(t *testing.T) {
	t.Parallel()

	s, warnings := htmlparse.ParseSettlement(settlementHTML)
	if s == nil {
		t.Fatalf("ParseSettlement: expected settlement, got nil (%v)", warnings)
	}
	if s.Name != "Village of Millbrook" || s.Kind != "village" {
		t.Errorf("name/kind: got %q/%q", s.Name, s.Kind)
	}
	if diff := cmp.Diff([]string{"Inn: The Drowned Rat", "Blacksmith"}, s.Services); diff != "" {
		t.Errorf("services mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Old well"}, s.Features); diff != "" {
		t.Errorf("features mismatch (-want +got):\n%s", diff)
	}
	if s.Weather == nil || len(s.Weather.Rows) != 1 {
		t.Errorf("weather: got %+v", s.Weather)
	}
	if s.Coordinates == nil || s.Coordinates.X != 3 {
		t.Errorf("coordinates: got %+v", s.Coordinates)
	}
}

func TestParseHexFeature(t *testing.T) {
	t.Parallel()

	f, _ := htmlparse.ParseHexFeature(`<h1>Ruins of Kharn</h1><p>Broken pillars.</p><ul><li>Collapsed arch</li></ul>`)
	if f == nil || f.Kind != "ruins" || f.Description != "Broken pillars." || len(f.Features) != 1 {
		t.Fatalf("ParseHexFeature: got %+v", f)
	}
	if f, ws := htmlparse.ParseHexFeature(`<h1>Meadow</h1>`); f != nil || len(ws) != 1 {
		t.Fatalf("ParseHexFeature(meadow): expected nil with warning, got %+v %v", f, ws)
	}
}

func TestRecognizeAndParse(t *testing.T) {
	t.Parallel()

	if got := htmlparse.Recognize(cityJSON); !slices.Equal(got, []htmlparse.Kind{htmlparse.KindCity}) {
		t.Errorf("Recognize(city): got %v", got)
	}

	kinds := htmlparse.Recognize(roomHTML)
	if !slices.Contains(kinds, htmlparse.KindDungeonRoom) || !slices.Contains(kinds, htmlparse.KindEncounterTable) {
		t.Errorf("Recognize(room): got %v", kinds)
	}

	r := htmlparse.Parse(roomHTML)
	if r.Room == nil || len(r.Encounters) != 0 {
		t.Errorf("Parse(room): expected room with embedded encounters, got %+v", r)
	}

	s := htmlparse.Parse(settlementHTML)
	if s.Settlement == nil || s.Weather == nil {
		t.Errorf("Parse(settlement): got %+v", s)
	}

	u := htmlparse.Parse("<p>unknown fragment</p>")
	if !u.Empty() || len(u.Warnings) != 1 || u.Warnings[0].Kind != htmlparse.WarnShapeUnrecognized {
		t.Errorf("Parse(unknown): got %+v", u)
	}
}
