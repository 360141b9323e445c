package htmlparse

import (
	"github.com/PuerkitoBio/goquery"
)

var (
	settlementKinds = []string{"village", "town", "city", "hamlet", "settlement", "outpost", "stronghold"}
	hexFeatureKinds = []string{"ruins", "tower", "shrine", "monolith", "standing stones", "obelisk", "barrow", "camp", "bridge", "cave", "lair", "well", "statue", "portal", "grove"}
	serviceHeadings = []string{"services", "shops", "establishments", "merchants", "taverns"}
)

// SettlementKind returns the settlement keyword in the page title, or "".
func SettlementKind(raw string) string {
	return keywordIn(title(newDoc(raw)), settlementKinds)
}

// HexFeatureKind returns the hex feature keyword in the page title, or "".
func HexFeatureKind(raw string) string {
	return keywordIn(title(newDoc(raw)), hexFeatureKinds)
}

// ParseSettlement parses a settlement page. The title must name a
// settlement kind.
func ParseSettlement(raw string) (*ParsedSettlement, []Warning) {
	doc := newDoc(raw)
	name := title(doc)
	kind := keywordIn(name, settlementKinds)
	if kind == "" {
		return nil, []Warning{{Kind: WarnShapeUnrecognized, Detail: "settlement: title has no settlement keyword"}}
	}

	s := &ParsedSettlement{
		Name:        name,
		Kind:        kind,
		Coordinates: mapCoords(doc),
		Description: description(doc),
		Services:    []string{},
		Features:    []string{},
	}

	services := doc.Slice(0, 0)
	headingsContaining(doc.Selection, serviceHeadings...).Each(func(_ int, h *goquery.Selection) {
		services = services.AddSelection(h.NextAllFiltered("ul").First().ChildrenFiltered("li"))
	})
	services.Each(func(_ int, li *goquery.Selection) {
		if t := clean(li.Text()); t != "" {
			s.Services = append(s.Services, t)
		}
	})
	s.Features = listFeatures(doc, services)

	w, warnings := parseWeather(doc)
	s.Weather = w
	return s, warnings
}

// ParseHexFeature parses a wilderness landmark page. The title must name a
// hex feature kind.
func ParseHexFeature(raw string) (*ParsedHexFeature, []Warning) {
	doc := newDoc(raw)
	name := title(doc)
	kind := keywordIn(name, hexFeatureKinds)
	if kind == "" {
		return nil, []Warning{{Kind: WarnShapeUnrecognized, Detail: "hex feature: title has no feature keyword"}}
	}
	return &ParsedHexFeature{
		Name:        name,
		Kind:        kind,
		Coordinates: mapCoords(doc),
		Description: description(doc),
		Features:    listFeatures(doc, doc.Slice(0, 0)),
	}, nil
}

// listFeatures returns list item text outside stat blocks and tables,
// excluding items in skip.
func listFeatures(doc *goquery.Document, skip *goquery.Selection) []string {
	features := []string{}
	doc.Find("ul li").Each(func(_ int, li *goquery.Selection) {
		if li.Closest(".statblock, table").Length() > 0 || li.IsSelection(skip) {
			return
		}
		if t := clean(li.Text()); t != "" {
			features = append(features, t)
		}
	})
	return features
}
