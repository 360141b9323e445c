package emit

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MrWong99/hexforge/internal/htmlparse"
	"github.com/MrWong99/hexforge/internal/seed"
)

// AssetKind is a top-level asset directory.
type AssetKind string

const (
	Units     AssetKind = "units"
	Buildings AssetKind = "buildings"
	Leaders   AssetKind = "leaders"
	Terrain   AssetKind = "terrain"
)

// AssetKinds lists every kind in emission order.
var AssetKinds = []AssetKind{Units, Buildings, Leaders, Terrain}

// ParseAssetKind validates a kind given on the command line.
func ParseAssetKind(s string) (AssetKind, error) {
	k := AssetKind(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(AssetKinds, k) {
		return "", fmt.Errorf("emit: unknown asset kind %q (want units, buildings, leaders or terrain)", s)
	}
	return k, nil
}

// Vec3 is an x, y, z triple.
type Vec3 [3]float64

// Quat is a rotation quaternion x, y, z, w.
type Quat [4]float64

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min Vec3
	Max Vec3
}

// Socket is an attachment point on a model.
type Socket struct {
	Name string
	Pos  Vec3
	Rot  Quat
}

// ModelMetadata describes one model for the asset loader. Empty optional
// strings and a zero CorruptionBand are written as None.
type ModelMetadata struct {
	ID          string
	DisplayName string
	ModelPath   string
	Scale       Vec3
	Bounds      Bounds
	Animations  []string
	Sockets     []Socket
	Tags        []string

	Cult       string
	Class      string
	UpgradesTo string
	UIIcon     string
	Sounds     []string

	// CorruptionBand is 1..5, or 0 when absent.
	CorruptionBand int
	HorrorTheme    string
	ForgeMaterial  string
}

// MarshalRON renders m as a RON struct.
func (m ModelMetadata) MarshalRON() []byte {
	sockets := make(ronList, len(m.Sockets))
	for i, s := range m.Sockets {
		sockets[i] = ronRecord{
			{"name", ronString(s.Name)},
			{"pos", ronTuple(s.Pos[:])},
			{"rot", ronTuple(s.Rot[:])},
		}
	}
	return encodeRON(ronStruct{
		{"id", ronString(m.ID)},
		{"display_name", ronString(m.DisplayName)},
		{"model_path", ronString(m.ModelPath)},
		{"scale", ronTuple(m.Scale[:])},
		{"bounds", ronRecord{{"min", ronTuple(m.Bounds.Min[:])}, {"max", ronTuple(m.Bounds.Max[:])}}},
		{"animations", ronStrings(m.Animations)},
		{"sockets", sockets},
		{"tags", ronStrings(m.Tags)},
		{"cult", optString(m.Cult)},
		{"class", optString(m.Class)},
		{"upgrades_to", optString(m.UpgradesTo)},
		{"ui_icon", optString(m.UIIcon)},
		{"sounds", ronStrings(m.Sounds)},
		{"corruption_band", optInt(m.CorruptionBand)},
		{"horror_theme", optString(m.HorrorTheme)},
		{"forge_material", optString(m.ForgeMaterial)},
	})
}

// profile holds the per-kind model defaults.
type profile struct {
	scale      Vec3
	bounds     Bounds
	animations []string
	sockets    []Socket
	sounds     []string
}

var identity = Quat{0, 0, 0, 1}

var profiles = map[AssetKind]profile{
	Units: {
		scale:      Vec3{1, 1, 1},
		bounds:     Bounds{Min: Vec3{-0.5, 0, -0.5}, Max: Vec3{0.5, 2, 0.5}},
		animations: []string{"idle", "walk", "run", "attack", "hit", "death"},
		sockets: []Socket{
			{Name: "hand_r", Pos: Vec3{0.4, 1.1, 0}, Rot: identity},
			{Name: "hand_l", Pos: Vec3{-0.4, 1.1, 0}, Rot: identity},
			{Name: "head", Pos: Vec3{0, 1.8, 0}, Rot: identity},
		},
		sounds: []string{"footstep", "attack", "hurt", "death"},
	},
	Buildings: {
		scale:      Vec3{1, 1, 1},
		bounds:     Bounds{Min: Vec3{-4, 0, -4}, Max: Vec3{4, 6, 4}},
		animations: []string{"idle", "construct", "damaged", "destroyed"},
		sockets: []Socket{
			{Name: "door", Pos: Vec3{0, 0, 4}, Rot: identity},
			{Name: "banner", Pos: Vec3{0, 6, 0}, Rot: identity},
		},
		sounds: []string{"ambient", "construct", "collapse"},
	},
	Leaders: {
		scale:      Vec3{1.2, 1.2, 1.2},
		bounds:     Bounds{Min: Vec3{-0.6, 0, -0.6}, Max: Vec3{0.6, 2.4, 0.6}},
		animations: []string{"idle", "walk", "attack", "cast", "command", "death"},
		sockets: []Socket{
			{Name: "hand_r", Pos: Vec3{0.45, 1.3, 0}, Rot: identity},
			{Name: "hand_l", Pos: Vec3{-0.45, 1.3, 0}, Rot: identity},
			{Name: "head", Pos: Vec3{0, 2.2, 0}, Rot: identity},
			{Name: "aura", Pos: Vec3{0, 1.2, 0}, Rot: identity},
		},
		sounds: []string{"footstep", "command", "cast", "death"},
	},
	Terrain: {
		scale:  Vec3{1, 1, 1},
		bounds: Bounds{Min: Vec3{-5, 0, -5}, Max: Vec3{5, 1, 5}},
		sounds: []string{"ambient"},
	},
}

// DefaultBiome applies when neither keywords nor a position decide.
const DefaultBiome = "grassland"

var biomeKeywords = []struct{ keyword, biome string }{
	{"forest", "forest"}, {"wood", "forest"}, {"jungle", "jungle"},
	{"swamp", "swamp"}, {"marsh", "swamp"}, {"fen", "swamp"}, {"bog", "swamp"},
	{"mountain", "mountains"}, {"peak", "mountains"}, {"hill", "hills"},
	{"desert", "desert"}, {"waste", "wasteland"}, {"ash", "wasteland"},
	{"tundra", "tundra"}, {"frost", "tundra"}, {"snow", "tundra"},
	{"steppe", "grassland"}, {"plain", "grassland"}, {"meadow", "grassland"},
}

// biomeWord reports whether word is keyword or a plain inflection of it
// such as "peaks", "marshes", "snowy" or "woodlands".
func biomeWord(word, keyword string) bool {
	rest, ok := strings.CutPrefix(word, keyword)
	if !ok {
		return false
	}
	switch rest {
	case "", "s", "es", "y", "land", "lands":
		return true
	}
	return false
}

var positionBiomes = []string{"forest", "grassland", "hills", "mountains", "swamp", "tundra", "desert", "wasteland"}

// Biome picks a terrain biome for an entity: a biome word in name or
// content wins, then a stable hash of the map position, then DefaultBiome.
func Biome(name, content string, pos *htmlparse.Coordinates) string {
	for _, s := range []string{name, content} {
		words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return !unicode.IsLetter(r) })
		for _, k := range biomeKeywords {
			if slices.ContainsFunc(words, func(w string) bool { return biomeWord(w, k.keyword) }) {
				return k.biome
			}
		}
	}
	if pos != nil {
		q, r := int(math.Floor(pos.X)), int(math.Floor(pos.Y))
		n := len(positionBiomes)
		return positionBiomes[((q*31+r*17)%n+n)%n]
	}
	return DefaultBiome
}

// corruptionKeywords lists, per corruption band 1..5, the words that raise
// an entity to that band.
var corruptionKeywords = [5][]string{
	{"peaceful", "pastoral", "harvest", "quiet", "hearth"},
	{"uneasy", "whisper", "omen", "strange", "shadow"},
	{"dread", "haunted", "cursed", "blood", "undead"},
	{"terror", "madness", "despair", "torment", "abomination"},
	{"void", "abyss", "eldritch", "unspeakable", "oblivion"},
}

// CorruptionTier returns the highest band 1..5 whose keywords occur in
// content, or 1 when none do.
func CorruptionTier(content string) int {
	lower := strings.ToLower(content)
	for band := len(corruptionKeywords); band > 1; band-- {
		for _, k := range corruptionKeywords[band-1] {
			if strings.Contains(lower, k) {
				return band
			}
		}
	}
	return 1
}

// HorrorTheme names the theme of a band 1..5.
func HorrorTheme(band int) string {
	k, err := seed.BandForCorruption(band)
	if err != nil {
		return ""
	}
	return string(k)
}

// UpgradeTiers is the fixed promotion order within a faction.
var UpgradeTiers = []string{"acolyte", "cultist", "priest", "leader"}

// tierOf returns the highest upgrade tier named in content, or "".
func tierOf(content string) string {
	lower := strings.ToLower(content)
	for i := len(UpgradeTiers) - 1; i >= 0; i-- {
		if strings.Contains(lower, UpgradeTiers[i]) {
			return UpgradeTiers[i]
		}
	}
	return ""
}

// nextTier returns the tier after t, or "".
func nextTier(t string) string {
	i := slices.Index(UpgradeTiers, t)
	if i < 0 || i == len(UpgradeTiers)-1 {
		return ""
	}
	return UpgradeTiers[i+1]
}

var forgeMaterials = [5]string{"iron", "steel", "blackened steel", "bone iron", "void glass"}

var displayCase = cases.Title(language.English)

// DisplayName title-cases a name, or the words of a sanitized stem.
func DisplayName(s string) string {
	s = strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " ")
	return displayCase.String(strings.ToLower(s))
}

func sortedTags(tags ...string) []string {
	var out []string
	for _, t := range tags {
		if t = SanitizeName(t); t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return out
}
