package emit

import (
	"bytes"
	"fmt"
	"path"
	"slices"
	"strings"
	"text/template"

	"github.com/MrWong99/hexforge/internal/categorize"
	"github.com/MrWong99/hexforge/internal/category"
	"github.com/MrWong99/hexforge/internal/htmlparse"
	"github.com/MrWong99/hexforge/internal/seed"
)

// Prompt directory layout below the prompts root.
const (
	ModelPromptsDir      = "model_prompts"
	DialoguePromptsDir   = "dialogue_prompts"
	ProgressionGuidesDir = "progression_guides"
	PromptIndexFile      = "README.md"
)

// promptDescriptionMax bounds the source description quoted in a prompt.
const promptDescriptionMax = 600

// TechSpec is the modelling budget of an asset kind.
type TechSpec struct {
	PolyCount int
	Texture   string
	Bones     int
	Materials []string
}

var techSpecs = map[AssetKind]TechSpec{
	Units:     {PolyCount: 8000, Texture: "2048x2048", Bones: 45, Materials: []string{"albedo", "normal", "roughness"}},
	Buildings: {PolyCount: 15000, Texture: "2048x2048", Materials: []string{"albedo", "normal", "roughness", "emissive"}},
	Leaders:   {PolyCount: 15000, Texture: "4096x4096", Bones: 65, Materials: []string{"albedo", "normal", "roughness", "emissive"}},
	Terrain:   {PolyCount: 20000, Texture: "4096x4096", Materials: []string{"albedo", "normal", "height"}},
}

// tierLooks describes each corruption band visually and in speech.
var tierLooks = [5]struct{ label, look, speech string }{
	{"Untouched", "clean silhouettes, warm natural colours, upright posture", "plain and friendly, talks of weather and harvest"},
	{"Touched", "faint stains, frayed edges, nervous glances over the shoulder", "hesitant, trails off, mentions odd dreams"},
	{"Tainted", "dark veins under the skin, rusted metal, candles burned low", "clipped and suspicious, speaks of curses and blood"},
	{"Corrupted", "warped proportions, weeping sores, fused armour plates", "rambling, laughs at the wrong moments, begs and threatens"},
	{"Consumed", "hollow eyes leaking starlight, geometry that does not sit right", "speaks in fragments of a language older than the world"},
}

type promptTier struct {
	Band    int
	Label   string
	Look    string
	Speech  string
	Current bool
}

func promptTiers(current int) []promptTier {
	out := make([]promptTier, len(tierLooks))
	for i, t := range tierLooks {
		out[i] = promptTier{Band: i + 1, Label: t.label, Look: t.look, Speech: t.speech, Current: i+1 == current}
	}
	return out
}

type promptData struct {
	Asset       Asset
	DisplayName string
	Subject     string
	Description string
	Spec        TechSpec
	Band        int
	Theme       string
	Tiers       []promptTier
	References  []string
	Creature    *htmlparse.ParsedCreature
}

var promptFuncs = template.FuncMap{
	"join": strings.Join,
}

const modelPromptTmpl = `# {{.DisplayName}}

- Asset: {{.Asset.Kind}}{{with .Asset.Group}} / {{.}}{{end}}
- ID: ` + "`{{.Asset.Meta.ID}}`" + `
- Corruption band: {{.Band}} ({{.Theme}})

## Primary Prompt

Create a stylized 3D model of {{.Subject}} for a dark-fantasy hexcrawl strategy game.
{{- with .Description}}

Source description:

> {{.}}
{{- end}}

## Style Guidelines

- Hand-painted textures over a muted, earthy palette.
- Readable silhouette from an isometric camera at 45 degrees.
- Wear and corruption are told through materials, not extra geometry.

## Technical Specifications

| Property | Value |
|---|---|
| Poly count | at most {{.Spec.PolyCount}} triangles |
| Texture resolution | {{.Spec.Texture}} |
| Bone count | {{if .Spec.Bones}}{{.Spec.Bones}}{{else}}none (static mesh){{end}} |
| Animations | {{if .Asset.Meta.Animations}}{{join .Asset.Meta.Animations ", "}}{{else}}none{{end}} |
| Materials | {{join .Spec.Materials ", "}} |

## Corruption Progression
{{range .Tiers}}
- {{if .Current}}**Tier {{.Band}}: {{.Label}}** (current){{else}}Tier {{.Band}}: {{.Label}}{{end}}: {{.Look}}
{{- end}}
{{- with .Creature}}

## Stat Block

- AC {{.ArmorClass}}, HP {{.HitPoints}} ({{.HitDice}}), CR {{.ChallengeRating}}
- STR {{.Abilities.Str}} DEX {{.Abilities.Dex}} CON {{.Abilities.Con}} INT {{.Abilities.Int}} WIS {{.Abilities.Wis}} CHA {{.Abilities.Cha}}
{{- range .Actions}}
- Action: {{.Name}}{{with .Damage}} ({{.}}){{end}}
{{- end}}
{{- end}}

## Reference Suggestions
{{range .References}}
- {{.}}
{{- end}}

## Animation Requirements
{{range .Asset.Meta.Animations}}
- ` + "`{{.}}`" + `
{{- else}}
- none (static mesh)
{{- end}}
`

const dialoguePromptTmpl = `# {{.DisplayName}}: Dialogue

- ID: ` + "`{{.Asset.Meta.ID}}`" + `
- Faction: {{with .Asset.Faction}}{{.}}{{else}}none{{end}}
- Corruption band: {{.Band}} ({{.Theme}})

## Primary Prompt

Write in-character dialogue for {{.Subject}}, a non-player character in a dark-fantasy hexcrawl.
{{- with .Description}}

Source description:

> {{.}}
{{- end}}

## Voice and Style

- Short lines, at most two sentences each.
- No modern idioms; period-appropriate vocabulary.
- The character never names game mechanics.

## Corruption Progression
{{range .Tiers}}
- {{if .Current}}**Tier {{.Band}}: {{.Label}}** (current){{else}}Tier {{.Band}}: {{.Label}}{{end}}: {{.Speech}}
{{- end}}

## Required Lines

- greeting
- farewell
- rumour about the surrounding hexes
- refusal
- combat bark
- corrupted whisper (band 4 and above)

## Reference Suggestions
{{range .References}}
- {{.}}
{{- end}}
`

const progressionGuideTmpl = `# Corruption Band {{.Band}}: {{.Label}}

Theme: {{.Theme}}

## Visual Direction

{{.Look}}

## Dialogue Direction

{{.Speech}}

## Assets in this Band
{{range .Assets}}
- ` + "`{{.Meta.ID}}`" + ` {{.Meta.DisplayName}} ({{.Kind}})
{{- else}}
- none
{{- end}}
`

const promptIndexTmpl = `# Prompt Index

Generated prompt templates, grouped by type.
{{range .}}
## {{.Title}}
{{range .Files}}
- [{{.}}]({{.}})
{{- end}}
{{end}}`

var (
	modelPromptTemplate      = template.Must(template.New("model").Funcs(promptFuncs).Parse(modelPromptTmpl))
	dialoguePromptTemplate   = template.Must(template.New("dialogue").Funcs(promptFuncs).Parse(dialoguePromptTmpl))
	progressionGuideTemplate = template.Must(template.New("progression").Funcs(promptFuncs).Parse(progressionGuideTmpl))
	promptIndexTemplate      = template.Must(template.New("index").Funcs(promptFuncs).Parse(promptIndexTmpl))
)

func render(t *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("emit: render %s: %w", t.Name(), err)
	}
	return buf.Bytes(), nil
}

// subject is the noun phrase a prompt asks for.
func subject(a Asset) string {
	name := a.Meta.DisplayName
	switch a.Kind {
	case Units:
		if a.Faction != "" && a.Faction != Independent {
			return fmt.Sprintf("%s, %s %s of %s", name, article(a.Meta.Class), a.Meta.Class, DisplayName(a.Faction))
		}
		return fmt.Sprintf("%s, a wandering %s", name, a.Meta.Class)
	case Buildings:
		return fmt.Sprintf("%s, a building in %s", name, DisplayName(a.Group))
	case Leaders:
		return fmt.Sprintf("%s, the head of their faction", name)
	case Terrain:
		return fmt.Sprintf("a %s terrain tile for %s", a.Group, name)
	}
	return name
}

func article(word string) string {
	if word != "" && strings.ContainsRune("aeiou", rune(word[0])) {
		return "an"
	}
	return "a"
}

// references suggests well-known works matching the asset's band.
func references(a Asset, band int) []string {
	byBand := [5][]string{
		{"Brueghel's village scenes", "Studio Ghibli countryside", "Darkest Dungeon hamlet"},
		{"Arthur Rackham illustrations", "Bloodborne's Central Yharnam", "Slavic folk woodcuts"},
		{"Zdzisław Beksiński", "Darkest Dungeon", "Berserk's Eclipse arc"},
		{"Francis Bacon portraits", "Bloodborne's Nightmare Frontier", "Junji Ito"},
		{"H. R. Giger", "Annihilation's shimmer", "Dead Space architecture"},
	}
	refs := append([]string{}, byBand[band-1]...)
	if a.Kind == Terrain {
		refs = append(refs, "satellite imagery of real "+a.Group)
	}
	return refs
}

func promptFor(a Asset, training *categorize.Corpus) promptData {
	band, theme := a.Meta.CorruptionBand, a.Meta.HorrorTheme
	if band == 0 {
		band, theme = corruption(a.Entity, training)
	}
	d := promptData{
		Asset:       a,
		DisplayName: a.Meta.DisplayName,
		Subject:     subject(a),
		Description: truncateWords(categorize.VisibleText(a.Entity.RawValue), promptDescriptionMax),
		Spec:        techSpecs[a.Kind],
		Band:        band,
		Theme:       theme,
		Tiers:       promptTiers(band),
		References:  references(a, band),
	}
	if a.Entity.Category == category.Creatures {
		if cs := htmlparse.Parse(a.Entity.RawValue).Creatures; len(cs) > 0 {
			d.Creature = &cs[0]
		}
	}
	return d
}

func truncateWords(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	s = strings.ToValidUTF8(s[:limit], "")
	if i := strings.LastIndexByte(s, ' '); i > limit/2 {
		s = s[:i]
	}
	return s + "…"
}

// ModelPromptPath returns the model prompt path of a below the prompts root.
func ModelPromptPath(a Asset) string {
	group := a.Group
	if a.Kind == Leaders {
		group = a.Faction
	}
	return path.Join(ModelPromptsDir, group, a.Name+"_prompt.md")
}

// DialoguePromptPath returns the dialogue prompt path of a.
func DialoguePromptPath(a Asset) string {
	return path.Join(DialoguePromptsDir, a.Name+"_dialogue.md")
}

// ProgressionGuidePath returns the guide path of band 1..5.
func ProgressionGuidePath(band int) string {
	return path.Join(ProgressionGuidesDir, fmt.Sprintf("band_%d_%s.md", band, HorrorTheme(band)))
}

// HasDialogue reports whether a gets a dialogue prompt.
func HasDialogue(a Asset) bool {
	return a.Kind == Units && a.Entity.Category == category.Characters
}

// RenderModelPrompt renders the Markdown model prompt of a.
func RenderModelPrompt(a Asset, training *categorize.Corpus) ([]byte, error) {
	return render(modelPromptTemplate, promptFor(a, training))
}

// RenderDialoguePrompt renders the Markdown dialogue prompt of a.
func RenderDialoguePrompt(a Asset, training *categorize.Corpus) ([]byte, error) {
	return render(dialoguePromptTemplate, promptFor(a, training))
}

// RenderProgressionGuide renders the guide of band 1..5 listing the assets
// that fall into it.
func RenderProgressionGuide(band int, assets []Asset, training *categorize.Corpus) ([]byte, error) {
	if band < 1 || band > len(seed.Bands) {
		return nil, fmt.Errorf("emit: corruption band %d out of range", band)
	}
	var in []Asset
	for _, a := range assets {
		b := a.Meta.CorruptionBand
		if b == 0 {
			b, _ = corruption(a.Entity, training)
		}
		if b == band {
			in = append(in, a)
		}
	}
	t := tierLooks[band-1]
	return render(progressionGuideTemplate, struct {
		Band                int
		Label, Look, Speech string
		Theme               string
		Assets              []Asset
	}{band, t.label, t.look, t.speech, HorrorTheme(band), in})
}

// PromptSection is one heading of the prompt index.
type PromptSection struct {
	Title string
	Files []string
}

// RenderPromptIndex renders README.md for the prompt files, given relative
// to the prompts root.
func RenderPromptIndex(files []string) ([]byte, error) {
	sections := []PromptSection{
		{Title: "Model Prompts"},
		{Title: "Dialogue Prompts"},
		{Title: "Progression Guides"},
	}
	for _, f := range files {
		switch {
		case strings.HasPrefix(f, ModelPromptsDir+"/"):
			sections[0].Files = append(sections[0].Files, f)
		case strings.HasPrefix(f, DialoguePromptsDir+"/"):
			sections[1].Files = append(sections[1].Files, f)
		case strings.HasPrefix(f, ProgressionGuidesDir+"/"):
			sections[2].Files = append(sections[2].Files, f)
		}
	}
	for i := range sections {
		slices.Sort(sections[i].Files)
	}
	sections = slices.DeleteFunc(sections, func(s PromptSection) bool { return len(s.Files) == 0 })
	return render(promptIndexTemplate, sections)
}
