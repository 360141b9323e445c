package seed_test

import (
	"strings"
	"testing"

	"github.com/MrWong99/hexforge/internal/seed"
)

func TestStripBoilerplate_Markers(t *testing.T) {
	t.Parallel()
	in := "Produced by someone\n*** START OF THE PROJECT GUTENBERG EBOOK GHOSTS ***\nThe story.\n*** END OF THE PROJECT GUTENBERG EBOOK GHOSTS ***\nLicense text"
	if got := seed.StripBoilerplate(in); got != "The story." {
		t.Errorf("StripBoilerplate = %q, want %q", got, "The story.")
	}
}

func TestStripBoilerplate_ShortTextUnchanged(t *testing.T) {
	t.Parallel()
	in := "  A short text without markers.  "
	if got := seed.StripBoilerplate(in); got != "A short text without markers." {
		t.Errorf("StripBoilerplate = %q", got)
	}
}

func TestCleanOCR(t *testing.T) {
	t.Parallel()
	in := "The old  man walked to the vil-\nlage at dusk.\n\n42\n\n~~~ ## ~~\nHe knocked twice."
	want := "The old man walked to the village at dusk.\n\nHe knocked twice."
	if got := seed.CleanOCR(in); got != want {
		t.Errorf("CleanOCR =\n%q\nwant\n%q", got, want)
	}
}

func TestNarrativeWindow(t *testing.T) {
	t.Parallel()
	story := `"Who goes there?" cried the watchman. No one answered him. The fog crept over the moor and the lantern guttered. He waited, and waited, and the night grew cold.`
	in := strings.Join([]string{
		"This eBook is for the use of anyone anywhere at no cost and with almost no restrictions whatsoever.",
		"CHAPTER ONE",
		story,
		"Copyright renewed by the estate.",
	}, "\n\n")

	got := seed.NarrativeWindow(in, seed.NarrativeWindowChars)
	if !strings.Contains(got, story) {
		t.Errorf("window lacks the narrative paragraph:\n%s", got)
	}
	if strings.Contains(got, "eBook") || strings.Contains(got, "Copyright") {
		t.Errorf("window kept legal text:\n%s", got)
	}
	if seed.NarrativeWindow("", 100) != "" {
		t.Error("empty input should give an empty window")
	}
}

func TestNarrativeWindow_Limit(t *testing.T) {
	t.Parallel()
	para := strings.Repeat("The wind moaned in the pines. ", 10)
	in := strings.Repeat(para+"\n\n", 20)
	got := seed.NarrativeWindow(in, 500)
	if len(got) > 500 {
		t.Errorf("window length %d exceeds limit", len(got))
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("window should end on a sentence: %q", got[len(got)-20:])
	}
}

func TestScoreParagraph(t *testing.T) {
	t.Parallel()
	narrative := `"Come in," she said. The fire was warm. He sat down by the hearth and told her of the road, the rain and the wolves.`
	table := "12 34 56 78 90 12 34 56 78 90 12 34 56 78 90 12 34 56 78 90 12 34 56 78 90 12 34 56 78"
	if seed.ScoreParagraph("too short") != 0 {
		t.Error("short paragraphs must score 0")
	}
	if seed.ScoreParagraph(narrative) <= seed.ScoreParagraph(table) {
		t.Error("narrative should outscore a number table")
	}
}
