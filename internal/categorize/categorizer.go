// Package categorize assigns each raw archive value to a closed
// [category.Category] and derives its display name.
//
// Classification first consults an optional training corpus of markers and
// indicator phrases, then falls back to fixed keyword heuristics. The
// [Categorizer] holds no mutable state: the same input always yields the
// same [entity.RawEntity].
package categorize

import (
	"strings"

	"github.com/MrWong99/hexforge/internal/category"
	"github.com/MrWong99/hexforge/internal/entity"
)

// trainingOrder is the order in which training sets are consulted.
var trainingOrder = []category.Category{
	category.Characters,
	category.Creatures,
	category.Items,
	category.Spells,
	category.Mechanics,
}

// keywordRule maps a keyword set to a category.
type keywordRule struct {
	category category.Category
	keywords []string
}

// heuristics are evaluated in order against lowercased content; first match
// wins.
var heuristics = []keywordRule{
	{category.Settlements, []string{"village", "town", "city", "settlement", "hamlet", "outpost"}},
	{category.Factions, []string{"guild", "organization", "cult", "order", "covenant", "brotherhood", "faction", "company"}},
	{category.Dungeons, []string{"cave", "lair", "crypt", "tomb", "temple", "shrine", "hideout", "cavern", "dungeon", "ruins"}},
	{category.Regions, []string{"forest", "mountain", "biome", "region", "wilderness", "plains", "hills", "valley", "desert", "swamp"}},
	{category.Characters, []string{"npc", "character", "person", "individual", "merchant", "guard"}},
	{category.Items, []string{"item", "weapon", "armor", "equipment", "tool", "artifact"}},
	{category.Spells, []string{"spell", "magic", "enchantment", "ritual", "incantation", "cantrip"}},
	{category.Creatures, []string{"creature", "monster", "beast", "dragon", "goblin", "orc"}},
}

// Option is a functional option for configuring a [Categorizer].
type Option func(*Categorizer)

// WithTraining enables the training-enhanced path backed by corpus.
func WithTraining(corpus *Corpus) Option {
	return func(c *Categorizer) {
		c.corpus = corpus
	}
}

// Categorizer classifies raw archive values. It is safe for concurrent use.
type Categorizer struct {
	corpus *Corpus
}

// New returns a [Categorizer]. Without [WithTraining] only the keyword
// heuristics are used.
func New(opts ...Option) *Categorizer {
	c := &Categorizer{}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Corpus returns the training corpus in use, or nil.
func (c *Categorizer) Corpus() *Corpus {
	return c.corpus
}

// Categorize builds the [entity.RawEntity] for one archive row.
func (c *Categorizer) Categorize(uuid, raw string) entity.RawEntity {
	name := ExtractName(raw)
	return entity.RawEntity{
		UUID:       uuid,
		Category:   c.Classify(name, raw),
		EntityName: name,
		RawValue:   raw,
	}
}

// Classify returns the category for raw content whose extracted name is name.
func (c *Categorizer) Classify(name, raw string) category.Category {
	content := strings.ToLower(raw)
	lname := strings.ToLower(name)

	if c.corpus.Len() > 0 {
		if cat, ok := c.classifyTrained(lname, content); ok {
			return cat
		}
	}

	for _, rule := range heuristics {
		if containsAny(content, rule.keywords) {
			return rule.category
		}
	}
	return category.Uncategorized
}

func (c *Categorizer) classifyTrained(name, content string) (category.Category, bool) {
	for _, cat := range trainingOrder {
		td := c.corpus.For(cat)
		if td == nil {
			continue
		}
		if containsAny(content, td.Patterns.NegativeIndicators) || containsAny(name, td.Patterns.NegativeIndicators) {
			continue
		}
		if matchesTraining(td, name, content) {
			return cat, true
		}
	}
	return category.Uncategorized, false
}

func matchesTraining(td *TrainingData, name, content string) bool {
	for _, ex := range td.Examples {
		if containsAny(content, ex.Markers) || containsAny(name, ex.Markers) {
			return true
		}
	}
	return containsAny(content, td.Patterns.PositiveIndicators) ||
		containsAny(name, td.Patterns.PositiveIndicators)
}

// containsAny reports whether s contains any non-empty needle, compared
// case-insensitively. s must already be lowercase.
func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}
