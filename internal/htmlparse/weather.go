package htmlparse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseWeather extracts the condensed weather table following an <h5>
// mentioning "Weather". It returns nil with [WarnWeatherTableMissing] when
// the heading exists without a table.
func ParseWeather(raw string) (*ParsedWeatherSystem, []Warning) {
	w, ws := parseWeather(newDoc(raw))
	if w == nil && len(ws) == 0 {
		ws = []Warning{{Kind: WarnShapeUnrecognized, Detail: "weather: no weather heading"}}
	}
	return w, ws
}

// parseWeather returns nil, nil when the document has no weather heading.
func parseWeather(doc *goquery.Document) (*ParsedWeatherSystem, []Warning) {
	h := doc.Find("h5").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "Weather")
	}).First()
	if h.Length() == 0 {
		return nil, nil
	}
	table := h.NextAllFiltered("table.condensed").First()
	if table.Length() == 0 {
		return nil, []Warning{{Kind: WarnWeatherTableMissing, Detail: clean(h.Text())}}
	}

	rows := directRows(table)
	if rows.Length() == 0 {
		return nil, []Warning{{Kind: WarnWeatherTableMissing, Detail: "empty weather table"}}
	}

	w := &ParsedWeatherSystem{Rows: []WeatherRow{}}
	cells(rows.First()).Each(func(i int, c *goquery.Selection) {
		if i > 0 {
			w.Seasons = append(w.Seasons, clean(c.Text()))
		}
	})

	rows.Slice(1, rows.Length()).Each(func(_ int, tr *goquery.Selection) {
		cs := cells(tr)
		if cs.Length() == 0 {
			return
		}
		row := WeatherRow{Roll: clean(cs.First().Text()), Conditions: make(map[string]string, len(w.Seasons))}
		cs.Slice(1, cs.Length()).Each(func(i int, c *goquery.Selection) {
			if i < len(w.Seasons) {
				row.Conditions[w.Seasons[i]] = clean(c.Text())
			}
		})
		w.Rows = append(w.Rows, row)
	})

	doc.Find("small").Each(func(_ int, s *goquery.Selection) {
		text := clean(s.Text())
		lower := strings.ToLower(text)
		if strings.Contains(lower, "flood") || strings.Contains(lower, "chance") {
			w.SpecialEffects = append(w.SpecialEffects, text)
		}
	})
	return w, nil
}
