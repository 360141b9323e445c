package emit_test

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MrWong99/hexforge/internal/emit"
	"github.com/MrWong99/hexforge/internal/htmlparse"
)

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Village of Millbrook", "village_of_millbrook"},
		{"  Inn: The Drowned Rat ", "inn_the_drowned_rat"},
		{"Ørn's Hall", "rn_s_hall"},
		{"a--b__c", "a_b_c"},
		{"ABC123", "abc123"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := emit.SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeName_Idempotent(t *testing.T) {
	t.Parallel()

	shape := regexp.MustCompile(`^([a-z0-9]+(_[a-z0-9]+)*)?$`)
	for _, in := range []string{"Hollow Crypt", "__x__", "Tier 3: Tainted!", "ÄÖÜ", "a b  c", "9 Lives", "_"} {
		once := emit.SanitizeName(in)
		if !shape.MatchString(once) {
			t.Errorf("SanitizeName(%q) = %q has the wrong shape", in, once)
		}
		if twice := emit.SanitizeName(once); twice != once {
			t.Errorf("SanitizeName not idempotent on %q: %q then %q", in, once, twice)
		}
	}
}

func TestIsSanitized(t *testing.T) {
	t.Parallel()

	for s, want := range map[string]bool{"": false, "a_b": true, "A": false, "_a": false, "a1": true} {
		if got := emit.IsSanitized(s); got != want {
			t.Errorf("IsSanitized(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestModelMetadata_MarshalRON(t *testing.T) {
	t.Parallel()

	m := emit.ModelMetadata{
		ID:          "x",
		DisplayName: "X",
		ModelPath:   "models/x.glb",
		Scale:       emit.Vec3{1, 1, 1},
		Bounds:      emit.Bounds{Min: emit.Vec3{-0.5, 0, -0.5}, Max: emit.Vec3{0.5, 2, 0.5}},
		Animations:  []string{"idle"},
		Sockets: []emit.Socket{
			{Name: "head", Pos: emit.Vec3{0, 1.8, 0}, Rot: emit.Quat{0, 0, 0, 1}},
		},
		CorruptionBand: 3,
		HorrorTheme:    "dread_to_terror",
	}
	want := `(
    id: "x",
    display_name: "X",
    model_path: "models/x.glb",
    scale: (1.0, 1.0, 1.0),
    bounds: (min: (-0.5, 0.0, -0.5), max: (0.5, 2.0, 0.5)),
    animations: ["idle"],
    sockets: [
        (name: "head", pos: (0.0, 1.8, 0.0), rot: (0.0, 0.0, 0.0, 1.0)),
    ],
    tags: [],
    cult: None,
    class: None,
    upgrades_to: None,
    ui_icon: None,
    sounds: [],
    corruption_band: Some(3),
    horror_theme: Some("dread_to_terror"),
    forge_material: None,
)
`
	got := m.MarshalRON()
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("MarshalRON mismatch (-want +got):\n%s", diff)
	}
	if reasons := emit.ValidateRON("x.meta.ron", got); len(reasons) != 0 {
		t.Errorf("ValidateRON: %v", reasons)
	}
}

func TestUpgradeChain_MarshalRON(t *testing.T) {
	t.Parallel()

	c := emit.UpgradeChain{
		Faction: "ash",
		Steps: []emit.UpgradeStep{
			{Tier: 1, From: "ash_acolyte", To: "ash_cultist", Requirements: []string{"a \"quoted\" rite"}},
		},
	}
	want := `(
    faction: "ash",
    steps: [
        (tier: 1, from: "ash_acolyte", to: "ash_cultist", requirements: ["a \"quoted\" rite"]),
    ],
)
`
	got := c.MarshalRON()
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("MarshalRON mismatch (-want +got):\n%s", diff)
	}
	if reasons := emit.ValidateRON("ash_upgrades.ron", got); len(reasons) != 0 {
		t.Errorf("ValidateRON: %v", reasons)
	}
}

func TestBiome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, content string
		pos           *htmlparse.Coordinates
		want          string
	}{
		{"Ashen Marsh", "", nil, "swamp"},
		{"Grey Reach", "frosty peaks all around", nil, "mountains"},
		{"Grey Reach", "", &htmlparse.Coordinates{X: 0, Y: 0}, "forest"},
		{"Grey Reach", "", &htmlparse.Coordinates{X: 2, Y: 0}, "desert"},
		{"Grey Reach", "", nil, emit.DefaultBiome},
		{"Grey Reach", "<p>A defended wooden fence, washed by rain.</p>", nil, emit.DefaultBiome},
		{"Grey Reach", "<p>Snowy fens and old woodlands.</p>", nil, "forest"},
		{"Grey Reach", "<p>Snowy fens.</p>", nil, "swamp"},
		{"Cinder Wastes", "", nil, "wasteland"},
	}
	for _, tt := range tests {
		if got := emit.Biome(tt.name, tt.content, tt.pos); got != tt.want {
			t.Errorf("Biome(%q, %q, %v) = %q, want %q", tt.name, tt.content, tt.pos, got, tt.want)
		}
	}
}

func TestCorruptionTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		content string
		want    int
	}{
		{"a quiet hearth", 1},
		{"nothing of note", 1},
		{"whispering shadows", 2},
		{"a haunted crypt", 3},
		{"slow madness", 4},
		{"the void beyond, and blood", 5},
	}
	for _, tt := range tests {
		if got := emit.CorruptionTier(tt.content); got != tt.want {
			t.Errorf("CorruptionTier(%q) = %d, want %d", tt.content, got, tt.want)
		}
	}
}

func TestHorrorTheme(t *testing.T) {
	t.Parallel()

	if got := emit.HorrorTheme(1); got != "peace_to_unease" {
		t.Errorf("HorrorTheme(1) = %q", got)
	}
	if got := emit.HorrorTheme(5); got != "madness_to_void" {
		t.Errorf("HorrorTheme(5) = %q", got)
	}
	for _, band := range []int{0, 6} {
		if got := emit.HorrorTheme(band); got != "" {
			t.Errorf("HorrorTheme(%d) = %q, want empty", band, got)
		}
	}
}

func TestParseAssetKind(t *testing.T) {
	t.Parallel()

	if k, err := emit.ParseAssetKind(" Units "); err != nil || k != emit.Units {
		t.Errorf("ParseAssetKind(Units) = %q, %v", k, err)
	}
	if _, err := emit.ParseAssetKind("spells"); err == nil {
		t.Error("ParseAssetKind(spells): expected error")
	}
}
