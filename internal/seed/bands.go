package seed

import "fmt"

// BandKey names one of the five thematic tiers, from calm to void.
type BandKey string

// The fixed band tuple, in order.
const (
	PeaceToUnease          BandKey = "peace_to_unease"
	UneaseToDread          BandKey = "unease_to_dread"
	DreadToTerror          BandKey = "dread_to_terror"
	TerrorToDespairMadness BandKey = "terror_to_despair_madness"
	MadnessToVoid          BandKey = "madness_to_void"
)

// Bands is the ordered band tuple. Bands[i] corresponds to corruption band
// i+1 and dread level i.
var Bands = [5]BandKey{PeaceToUnease, UneaseToDread, DreadToTerror, TerrorToDespairMadness, MadnessToVoid}

// Index returns the position of b in [Bands], or -1.
func (b BandKey) Index() int {
	for i, k := range Bands {
		if k == b {
			return i
		}
	}
	return -1
}

// IsValid reports whether b is a member of [Bands].
func (b BandKey) IsValid() bool { return b.Index() >= 0 }

// CorruptionBand returns the 1-based corruption band of b.
func (b BandKey) CorruptionBand() int { return b.Index() + 1 }

// BandForCorruption returns the band for corruption band n in 1..5.
func BandForCorruption(n int) (BandKey, error) {
	if n < 1 || n > len(Bands) {
		return "", fmt.Errorf("seed: corruption band %d out of range 1..%d", n, len(Bands))
	}
	return Bands[n-1], nil
}

// bandQueries pairs each band with the corpus keyword expression used to find
// books for it.
var bandQueries = map[BandKey]string{
	PeaceToUnease:          `(folklore OR "fairy tales" OR pastoral) AND (village OR harvest OR hearth)`,
	UneaseToDread:          `(folklore OR legends) AND (omen OR haunting OR "strange tales")`,
	DreadToTerror:          `("ghost stories" OR "weird tales" OR gothic) AND (horror OR terror)`,
	TerrorToDespairMadness: `(gothic OR "tales of terror") AND (madness OR despair OR asylum)`,
	MadnessToVoid:          `(cosmic OR "weird fiction" OR apocalypse) AND (void OR abyss OR "end of the world")`,
}

// bookLabels is the zero-shot label set scored against every book window.
var bookLabels = []string{
	"folklore", "horror", "madness", "nature", "war", "religion",
	"death", "monsters", "journey", "despair", "hope", "isolation",
}

// BookLabelThreshold is the minimum zero-shot score for a book tag.
const BookLabelThreshold = 0.30

// grammarLabels maps the theme labels scored against dictionary glosses to the
// band the word is filed under.
var grammarLabels = map[string]BandKey{
	"home and kinship":     PeaceToUnease,
	"farming and seasons":  PeaceToUnease,
	"omens and fate":       UneaseToDread,
	"cold and darkness":    UneaseToDread,
	"battle and weapons":   DreadToTerror,
	"wounds and blood":     DreadToTerror,
	"grief and loss":       TerrorToDespairMadness,
	"frenzy and rage":      TerrorToDespairMadness,
	"death and the grave":  MadnessToVoid,
	"giants and monsters":  MadnessToVoid,
	"the end of the world": MadnessToVoid,
}

// GrammarLabelThreshold is the minimum zero-shot score for a grammar tag.
const GrammarLabelThreshold = 0.45

// GrammarBandCap bounds the number of terms per band.
const GrammarBandCap = 200
