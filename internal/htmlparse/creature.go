package htmlparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	crRe        = regexp.MustCompile(`\bCR\s*:?\s*(\d+(?:/\d+)?)`)
	acRe        = regexp.MustCompile(`\bAC\s*:?\s*(\d+)`)
	hpRe        = regexp.MustCompile(`\bHP\s*:?\s*(\d+)?\s*\(([^)]*)\)`)
	walkRe      = regexp.MustCompile(`(?i)\b(?:speed|walk)\s*:?\s*(\d+)\s*ft\.?`)
	modeRe      = regexp.MustCompile(`(?i)\b(fly|swim|climb)\s*:?\s*(\d+)\s*ft\.?`)
	attackRe    = regexp.MustCompile(`^\s*\+(\d+)`)
	saveDCRe    = regexp.MustCompile(`DC\s*(\d+)`)
	alignmentRe = regexp.MustCompile(`(?i)\b(lawful good|lawful neutral|lawful evil|neutral good|true neutral|neutral evil|chaotic good|chaotic neutral|chaotic evil|unaligned|neutral)\b`)
)

// ParseCreatures parses every .statblock in raw.
func ParseCreatures(raw string) ([]ParsedCreature, []Warning) {
	doc := newDoc(raw)
	blocks := doc.Find(".statblock")
	if blocks.Length() == 0 {
		return nil, []Warning{{Kind: WarnShapeUnrecognized, Detail: "creature: no .statblock"}}
	}
	var (
		creatures []ParsedCreature
		warnings  []Warning
	)
	blocks.Each(func(_ int, sb *goquery.Selection) {
		// Nested stat blocks are parsed by their enclosing encounter table.
		if sb.ParentsFiltered(".statblock").Length() > 0 {
			return
		}
		c, ws := parseStatblock(sb)
		creatures = append(creatures, c)
		warnings = append(warnings, ws...)
	})
	return creatures, warnings
}

// ParseCreature parses the first .statblock in raw, or returns nil.
func ParseCreature(raw string) (*ParsedCreature, []Warning) {
	creatures, ws := ParseCreatures(raw)
	if len(creatures) == 0 {
		return nil, ws
	}
	return &creatures[0], ws
}

func parseStatblock(sb *goquery.Selection) (ParsedCreature, []Warning) {
	text := clean(sb.Text())
	c := ParsedCreature{
		Name:             statblockName(sb),
		ArmorClass:       DefaultArmorClass,
		HitDice:          DefaultHitDice,
		Alignment:        DefaultAlignment,
		SpecialAbilities: []SpecialAbility{},
		Actions:          []Action{},
	}
	var missing []string

	if m := crRe.FindStringSubmatch(text); m != nil {
		c.ChallengeRating = m[1]
	} else {
		missing = append(missing, "cr")
	}
	if m := acRe.FindStringSubmatch(text); m != nil {
		c.ArmorClass, _ = strconv.Atoi(m[1])
	} else {
		missing = append(missing, "ac")
	}
	if m := hpRe.FindStringSubmatch(text); m != nil {
		if formula := diceRe.FindString(m[2]); formula != "" {
			c.HitDice = strings.ReplaceAll(formula, " ", "")
		}
		if m[1] != "" {
			c.HitPoints, _ = strconv.Atoi(m[1])
		}
	} else {
		missing = append(missing, "hp")
	}
	if m := walkRe.FindStringSubmatch(text); m != nil {
		c.Movement.Walk, _ = strconv.Atoi(m[1])
	}
	for _, m := range modeRe.FindAllStringSubmatch(text, -1) {
		n, _ := strconv.Atoi(m[2])
		switch strings.ToLower(m[1]) {
		case "fly":
			c.Movement.Fly = n
		case "swim":
			c.Movement.Swim = n
		case "climb":
			c.Movement.Climb = n
		}
	}
	if m := alignmentRe.FindString(text); m != "" {
		c.Alignment = strings.ToLower(m)
	}

	var ok bool
	c.Abilities, ok = abilityScores(sb)
	if !ok {
		missing = append(missing, "abilities")
	}

	actionItems := actionList(sb)
	actionItems.Each(func(_ int, li *goquery.Selection) {
		name, desc := namedItem(li)
		c.Actions = append(c.Actions, parseAction(name, desc))
	})
	sb.Find("ul li").Each(func(_ int, li *goquery.Selection) {
		if li.IsSelection(actionItems) || li.Find("strong").Length() == 0 {
			return
		}
		name, desc := namedItem(li)
		c.SpecialAbilities = append(c.SpecialAbilities, SpecialAbility{Name: name, Description: desc})
	})

	if len(missing) == 0 {
		return c, nil
	}
	return c, []Warning{{
		Kind:   WarnStatblockIncomplete,
		Detail: fmt.Sprintf("%s: missing %s", c.Name, strings.Join(missing, ", ")),
	}}
}

func statblockName(sb *goquery.Selection) string {
	for _, sel := range []string{".name", ".statblock-name", headingSelector, "strong"} {
		if t := clean(sb.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return "Unknown"
}

// abilityScores reads the six scores from the second row of .statblock-table.
func abilityScores(sb *goquery.Selection) (AbilityScores, bool) {
	scores := AbilityScores{
		Str: DefaultAbilityScore, Dex: DefaultAbilityScore, Con: DefaultAbilityScore,
		Int: DefaultAbilityScore, Wis: DefaultAbilityScore, Cha: DefaultAbilityScore,
	}
	table := sb.Find(".statblock-table").First()
	if table.Length() == 0 {
		return scores, false
	}
	rows := directRows(table)
	if rows.Length() < 2 {
		return scores, false
	}
	var values []int
	cells(rows.Eq(1)).Each(func(_ int, td *goquery.Selection) {
		if n, ok := firstInt(td.Text()); ok {
			values = append(values, n)
		}
	})
	if len(values) < 6 {
		return scores, false
	}
	scores = AbilityScores{Str: values[0], Dex: values[1], Con: values[2], Int: values[3], Wis: values[4], Cha: values[5]}
	return scores, true
}

// actionList returns the items of the list following an "Actions" heading.
func actionList(sb *goquery.Selection) *goquery.Selection {
	heading := sb.Find(headingSelector).FilterFunction(func(_ int, h *goquery.Selection) bool {
		return strings.EqualFold(clean(h.Text()), "actions")
	}).First()
	if heading.Length() == 0 {
		return sb.Find("ul li").Slice(0, 0)
	}
	return heading.NextAllFiltered("ul").First().ChildrenFiltered("li")
}

// namedItem splits "<strong>Name</strong>: description".
func namedItem(li *goquery.Selection) (string, string) {
	name := clean(li.Find("strong").First().Text())
	full := clean(li.Text())
	desc := strings.TrimSpace(strings.TrimPrefix(full, name))
	desc = strings.TrimSpace(strings.TrimPrefix(desc, ":"))
	name = strings.TrimSuffix(name, ":")
	name = strings.TrimSuffix(name, ".")
	return name, desc
}

func parseAction(name, desc string) Action {
	a := Action{Name: name, Description: desc}
	if m := attackRe.FindStringSubmatch(desc); m != nil {
		n, _ := strconv.Atoi(m[1])
		a.AttackBonus = &n
	}
	if d := diceRe.FindString(desc); d != "" {
		a.Damage = strings.ReplaceAll(d, " ", "")
	}
	if m := saveDCRe.FindStringSubmatch(desc); m != nil {
		n, _ := strconv.Atoi(m[1])
		a.SaveDC = &n
	}
	return a
}
