package htmlparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var nameCountRe = regexp.MustCompile(`^(.*?)\s*\(([^()]*)\)\s*$`)

// ParseEncounterTables extracts every table that follows an <h5> heading
// mentioning "encounter" or "monsters".
func ParseEncounterTables(raw string) ([]ParsedEncounterTable, []Warning) {
	tables, ws := parseEncounterTables(newDoc(raw))
	if len(tables) == 0 && len(ws) == 0 {
		ws = append(ws, Warning{Kind: WarnShapeUnrecognized, Detail: "encounter table: no encounter heading"})
	}
	return tables, ws
}

func parseEncounterTables(doc *goquery.Document) ([]ParsedEncounterTable, []Warning) {
	var (
		tables   []ParsedEncounterTable
		warnings []Warning
	)
	doc.Find("h5").Each(func(_ int, h *goquery.Selection) {
		heading := clean(h.Text())
		lower := strings.ToLower(heading)
		if !strings.Contains(lower, "encounter") && !strings.Contains(lower, "monsters") {
			return
		}
		table := h.NextAllFiltered("table").First()
		if table.Length() == 0 {
			warnings = append(warnings, Warning{Kind: WarnShapeUnrecognized, Detail: "encounter table: heading without table: " + heading})
			return
		}

		et := ParsedEncounterTable{Title: heading, Entries: []EncounterEntry{}}
		et.ProbabilityText, et.Probability = probabilityNear(h, table)

		directRows(table).Each(func(_ int, tr *goquery.Selection) {
			tds := tr.ChildrenFiltered("td")
			if tds.Length() < 2 {
				return
			}
			entry, ok := parseEncounterCell(clean(tds.Eq(0).Text()), clean(tds.Eq(1).Text()))
			if !ok {
				return
			}
			if tds.Length() > 2 {
				if sb := tds.Eq(2).Find(".statblock").First(); sb.Length() > 0 {
					c, ws := parseStatblock(sb)
					entry.Creature = &c
					warnings = append(warnings, ws...)
				}
			}
			et.Entries = append(et.Entries, entry)
		})
		tables = append(tables, et)
	})
	return tables, warnings
}

// parseEncounterCell splits "Name (Count)". Rows without a name are dropped.
func parseEncounterCell(roll, nameCell string) (EncounterEntry, bool) {
	e := EncounterEntry{Roll: roll, CreatureName: nameCell}
	if m := nameCountRe.FindStringSubmatch(nameCell); m != nil {
		e.CreatureName = strings.TrimSpace(m[1])
		e.Quantity = strings.TrimSpace(m[2])
	}
	if e.CreatureName == "" {
		return EncounterEntry{}, false
	}
	return e, true
}

// probabilityNear finds an "X in Y" phrase in the heading, the siblings
// between heading and table, or the heading's parent, in that order.
func probabilityNear(h, table *goquery.Selection) (string, float64) {
	candidates := []string{
		h.Text(),
		h.NextUntilSelection(table).Text(),
		h.Parent().Text(),
	}
	for _, text := range candidates {
		m := probabilityRe.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		den, _ := strconv.Atoi(m[2])
		if den == 0 {
			continue
		}
		return m[0], float64(num) / float64(den)
	}
	return "", 0
}
