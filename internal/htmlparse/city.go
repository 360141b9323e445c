package htmlparse

import (
	"strings"

	"github.com/tidwall/gjson"
)

// poiKinds are matched against lowercased POI titles in order.
var poiKinds = []string{"blacksmith", "shop", "tavern", "lodge", "witch", "market", "tailor", "herbalist", "veterinarian"}

// IsCity reports whether raw is a city map document: a JSON object with a
// "map_data" member holding a FeatureCollection.
func IsCity(raw string) bool {
	t := strings.TrimSpace(raw)
	if !strings.HasPrefix(t, "{") || !gjson.Valid(t) {
		return false
	}
	return gjson.Get(t, "map_data").Exists() && strings.Contains(t, "FeatureCollection")
}

// ParseCity decodes a city map document. Polygons become buildings (a
// trailing string in the outer ring, or properties.uuid, is the building
// uuid), line strings become roads and points become POIs. A top-level
// "poi" array of {coords:{x,y}, title, uuid} is also read.
func ParseCity(raw string) (*ParsedCity, []Warning) {
	if !IsCity(raw) {
		return nil, []Warning{{Kind: WarnShapeUnrecognized, Detail: "city: not a map_data FeatureCollection"}}
	}
	doc := gjson.Parse(strings.TrimSpace(raw))

	mapData := doc.Get("map_data")
	if mapData.Type == gjson.String {
		mapData = gjson.Parse(mapData.String())
	}

	city := &ParsedCity{Buildings: []Building{}, Roads: []Road{}, POIs: []POI{}}
	mapData.Get("features").ForEach(func(_, f gjson.Result) bool {
		props := f.Get("properties")
		geom := f.Get("geometry")
		switch geom.Get("type").String() {
		case "Polygon", "MultiPolygon":
			city.Buildings = append(city.Buildings, building(geom, props))
		case "LineString":
			city.Roads = append(city.Roads, road(geom.Get("coordinates"), props))
		case "MultiLineString":
			geom.Get("coordinates").ForEach(func(_, line gjson.Result) bool {
				city.Roads = append(city.Roads, road(line, props))
				return true
			})
		case "Point":
			c := geom.Get("coordinates").Array()
			if len(c) < 2 {
				return true
			}
			city.POIs = append(city.POIs, newPOI(Point{X: c[0].Float(), Y: c[1].Float()}, firstString(props, "title", "name"), props.Get("uuid").String()))
		}
		return true
	})

	doc.Get("poi").ForEach(func(_, p gjson.Result) bool {
		city.POIs = append(city.POIs, newPOI(
			Point{X: p.Get("coords.x").Float(), Y: p.Get("coords.y").Float()},
			p.Get("title").String(),
			p.Get("uuid").String(),
		))
		return true
	})
	return city, nil
}

// POIKind classifies a POI title by keyword.
func POIKind(title string) string {
	if k := keywordIn(title, poiKinds); k != "" {
		return k
	}
	return "unknown"
}

func newPOI(at Point, title, uuid string) POI {
	return POI{Coords: at, Title: title, UUID: uuid, Kind: POIKind(title)}
}

func building(geom, props gjson.Result) Building {
	b := Building{UUID: props.Get("uuid").String()}
	coords := geom.Get("coordinates")
	if geom.Get("type").String() == "MultiPolygon" {
		coords = coords.Get("0")
	}
	ring := coords.Get("0")
	ring.ForEach(func(_, v gjson.Result) bool {
		switch {
		case v.IsArray():
			xy := v.Array()
			if len(xy) >= 2 {
				b.Polygon = append(b.Polygon, Point{X: xy[0].Float(), Y: xy[1].Float()})
			}
		case v.Type == gjson.String && b.UUID == "":
			b.UUID = v.String()
		}
		return true
	})
	return b
}

func road(line, props gjson.Result) Road {
	r := Road{Width: 1}
	if w := props.Get("width"); w.Exists() {
		r.Width = w.Float()
	}
	line.ForEach(func(_, v gjson.Result) bool {
		xy := v.Array()
		if len(xy) >= 2 {
			r.Points = append(r.Points, Point{X: xy[0].Float(), Y: xy[1].Float()})
		}
		return true
	})
	return r
}

func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
