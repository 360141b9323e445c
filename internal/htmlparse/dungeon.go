package htmlparse

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	roomMarkers   = []string{"area #", "doorways", "corridor", "chamber", "crypt"}
	roomTypes     = []string{"corridor", "chamber", "crypt", "hall", "vault", "cell", "shrine", "cavern", "cave", "passage", "stair", "room"}
	areaNumberRe  = regexp.MustCompile(`Area #\s*(\d+)`)
	keyLocationRe = regexp.MustCompile(`(?i)\barea\s+(\d+)`)
)

// doorway attribute tables, checked in order.
var (
	doorMaterials = []struct{ keyword, material string }{
		{"wood", "wood"},
		{"iron", "iron"},
		{"bronze", "bronze"},
		{"marble", "marble"},
		{"stone", "stone"},
	}
	doorShapes = []struct{ keyword, shape string }{
		{"arched", "arched"},
		{"round", "round"},
		{"circular", "round"},
	}
	magicMarkers = []string{"magic", "glyph", "rune", "arcane", "enchant"}
	directions   = map[string]string{"N": "north", "S": "south", "E": "east", "W": "west"}
)

// IsDungeonRoom reports whether raw looks like a dungeon area page.
func IsDungeonRoom(raw string) bool {
	return keywordIn(raw, roomMarkers) != ""
}

// ParseDungeonRoom extracts a dungeon area. It returns nil and a
// [WarnShapeUnrecognized] warning when raw is not a room.
func ParseDungeonRoom(raw string) (*ParsedDungeonRoom, []Warning) {
	if !IsDungeonRoom(raw) {
		return nil, []Warning{{Kind: WarnShapeUnrecognized, Detail: "dungeon room: no room markers"}}
	}
	doc := newDoc(raw)

	room := &ParsedDungeonRoom{
		Title:       title(doc),
		Coordinates: mapCoords(doc),
		Description: description(doc),
		Doorways:    []Doorway{},
		Features:    []string{},
	}
	room.RoomType = roomType(room.Title, room.Description)

	crumbs := doc.Find(".breadcrumbs").First()
	if m := areaNumberRe.FindStringSubmatch(crumbs.Text()); m != nil {
		room.AreaNumber, _ = firstInt(m[1])
	}
	if parent := crumbs.Find(`a[href*="/location/"]`).Last(); parent.Length() > 0 {
		room.ParentDungeon = clean(parent.Text())
	}

	doorItems := doorwayItems(doc)
	doorItems.Each(func(_ int, li *goquery.Selection) {
		if d, ok := parseDoorway(li); ok {
			room.Doorways = append(room.Doorways, d)
		}
	})

	doc.Find("ul li").Each(func(_ int, li *goquery.Selection) {
		if li.Closest(".statblock, table").Length() > 0 || li.IsSelection(doorItems) {
			return
		}
		text := clean(li.Text())
		if text == "" || diceRe.MatchString(text) {
			return
		}
		room.Features = append(room.Features, text)
	})

	var warnings []Warning
	tables, ws := parseEncounterTables(doc)
	warnings = append(warnings, ws...)
	if len(tables) > 0 {
		room.WanderingMonsters = &tables[0]
	}
	return room, warnings
}

// doorwayItems returns the <li> elements of the list following a "Doorways"
// heading.
func doorwayItems(doc *goquery.Document) *goquery.Selection {
	heading := headingsContaining(doc.Selection, "doorways").First()
	if heading.Length() == 0 {
		return doc.Find("ul li").FilterFunction(func(_ int, li *goquery.Selection) bool {
			_, ok := directionOf(li)
			return ok
		})
	}
	return heading.NextAllFiltered("ul").First().ChildrenFiltered("li")
}

func roomType(title, desc string) string {
	if k := keywordIn(title, roomTypes); k != "" {
		return k
	}
	if k := keywordIn(desc, roomTypes); k != "" {
		return k
	}
	return "room"
}

// ParseDoorway parses a single <li> doorway fragment. ok is false unless the
// fragment carries exactly one N/S/E/W marker.
func ParseDoorway(liHTML string) (Doorway, bool) {
	doc := newDoc(liHTML)
	li := doc.Find("li").First()
	if li.Length() == 0 {
		li = doc.Find("body")
	}
	return parseDoorway(li)
}

func parseDoorway(li *goquery.Selection) (Doorway, bool) {
	dir, ok := directionOf(li)
	if !ok {
		return Doorway{}, false
	}
	text := clean(li.Text())
	lower := strings.ToLower(text)

	d := Doorway{
		Direction:   dir,
		Material:    "unknown",
		Shape:       "rectangular",
		Locked:      strings.Contains(text, "Locked"),
		Description: text,
	}
	for _, m := range doorMaterials {
		if strings.Contains(lower, m.keyword) {
			d.Material = m.material
			break
		}
	}
	for _, s := range doorShapes {
		if strings.Contains(lower, s.keyword) {
			d.Shape = s.shape
			break
		}
	}
	d.Magical = wordStartsWith(lower, magicMarkers)

	switch {
	case strings.Contains(lower, "stuck"):
		d.Condition = "stuck"
	case strings.Contains(lower, "broken"):
		d.Condition = "broken"
	case strings.Contains(lower, "barricaded"):
		d.Condition = "barricaded"
	case d.Locked:
		d.Condition = "locked"
	default:
		d.Condition = "normal"
	}

	if m := keyLocationRe.FindStringSubmatch(text); m != nil {
		d.KeyLocation = "area_" + m[1]
	}
	return d, true
}

// directionOf finds the single <strong>N|S|E|W</strong> marker in li.
func directionOf(li *goquery.Selection) (string, bool) {
	var found []string
	li.Find("strong").Each(func(_ int, s *goquery.Selection) {
		if dir, ok := directions[strings.TrimSpace(s.Text())]; ok {
			found = append(found, dir)
		}
	})
	if len(found) != 1 {
		return "", false
	}
	return found[0], true
}
