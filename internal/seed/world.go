package seed

import (
	"regexp"
	"slices"
	"strings"
	"time"
)

// WorldFile is the integrated seed artifact name.
const WorldFile = "world.toml"

// CreatureSeed is a creature mention lifted from a book summary.
type CreatureSeed struct {
	Name       string   `toml:"name"`
	Band       BandKey  `toml:"band"`
	Book       string   `toml:"book"`
	Keyphrases []string `toml:"keyphrases"`
}

// LandmarkSeed is a place mention lifted from a book summary.
type LandmarkSeed struct {
	Kind       string   `toml:"kind"`
	Band       BandKey  `toml:"band"`
	Book       string   `toml:"book"`
	Keyphrases []string `toml:"keyphrases"`
}

// WorldSeed is the content of world.toml.
type WorldSeed struct {
	GeneratedAt time.Time                          `toml:"generated_at"`
	Books       []BookSummary                      `toml:"books"`
	Grammar     map[BandKey][]GrammarTerm          `toml:"grammar"`
	Names       map[BandKey]map[string][]NameEntry `toml:"names"`
	Creatures   []CreatureSeed                     `toml:"creatures"`
	Landmarks   []LandmarkSeed                     `toml:"landmarks"`
}

var creatureLexicon = []string{
	"bat", "demon", "dragon", "ghost", "ghoul", "giant", "hound", "serpent", "spectre",
	"spider", "troll", "vampire", "werewolf", "witch", "wolf", "worm", "wraith",
}

var landmarkLexicon = []string{
	"abbey", "barrow", "bridge", "castle", "cave", "chapel", "crypt", "forest", "graveyard",
	"lake", "marsh", "mill", "moor", "ruin", "tower", "well",
}

// KeyphrasesPerSeed bounds the keyphrases attached to a creature or landmark.
const KeyphrasesPerSeed = 3

func lexiconPattern(words []string) *regexp.Regexp {
	return regexp.MustCompile(`\b(` + strings.Join(words, "|") + `)s?\b`)
}

var (
	creaturePattern = lexiconPattern(creatureLexicon)
	landmarkPattern = lexiconPattern(landmarkLexicon)
)

// DeriveSeeds scans book abstracts for lexicon words and pairs every match
// with the book's top keyphrases. Each (band, word) pair is kept once.
func DeriveSeeds(books []BookSummary) ([]CreatureSeed, []LandmarkSeed) {
	creatures := []CreatureSeed{}
	landmarks := []LandmarkSeed{}
	seenC := make(map[string]bool)
	seenL := make(map[string]bool)

	for _, b := range books {
		text := strings.ToLower(b.Title + ". " + b.Abstract)
		var phrases []string
		for _, k := range Keyphrases(b.Abstract, KeyphrasesPerSeed) {
			phrases = append(phrases, k.Phrase)
		}
		for _, w := range lexiconMatches(creaturePattern, text) {
			key := string(b.Band) + "/" + w
			if seenC[key] {
				continue
			}
			seenC[key] = true
			creatures = append(creatures, CreatureSeed{Name: w, Band: b.Band, Book: b.ID, Keyphrases: phrases})
		}
		for _, w := range lexiconMatches(landmarkPattern, text) {
			key := string(b.Band) + "/" + w
			if seenL[key] {
				continue
			}
			seenL[key] = true
			landmarks = append(landmarks, LandmarkSeed{Kind: w, Band: b.Band, Book: b.ID, Keyphrases: phrases})
		}
	}
	return creatures, landmarks
}

// lexiconMatches returns the distinct lexicon words in text, sorted.
func lexiconMatches(re *regexp.Regexp, text string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if !slices.Contains(out, m[1]) {
			out = append(out, m[1])
		}
	}
	slices.Sort(out)
	return out
}
