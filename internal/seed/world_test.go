package seed_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/MrWong99/hexforge/internal/seed"
)

func TestDeriveSeeds(t *testing.T) {
	t.Parallel()
	books := []seed.BookSummary{
		{ID: "b1", Band: seed.PeaceToUnease, Title: "Tales", Abstract: "A wolf prowls near the ruined tower."},
		{ID: "b2", Band: seed.PeaceToUnease, Title: "More Tales", Abstract: "The wolf returns to the castle."},
		{ID: "b3", Band: seed.MadnessToVoid, Title: "The Werewolf", Abstract: "A grey wolf howls."},
	}

	creatures, landmarks := seed.DeriveSeeds(books)

	ignore := cmpopts.IgnoreFields(seed.CreatureSeed{}, "Keyphrases")
	wantC := []seed.CreatureSeed{
		{Name: "wolf", Band: seed.PeaceToUnease, Book: "b1"},
		{Name: "werewolf", Band: seed.MadnessToVoid, Book: "b3"},
		{Name: "wolf", Band: seed.MadnessToVoid, Book: "b3"},
	}
	if diff := cmp.Diff(wantC, creatures, ignore); diff != "" {
		t.Errorf("creatures mismatch (-want +got):\n%s", diff)
	}

	wantL := []seed.LandmarkSeed{
		{Kind: "tower", Band: seed.PeaceToUnease, Book: "b1"},
		{Kind: "castle", Band: seed.PeaceToUnease, Book: "b2"},
	}
	if diff := cmp.Diff(wantL, landmarks, cmpopts.IgnoreFields(seed.LandmarkSeed{}, "Keyphrases")); diff != "" {
		t.Errorf("landmarks mismatch (-want +got):\n%s", diff)
	}
	for _, b := range seed.Bands {
		if !b.IsValid() {
			t.Errorf("band %q invalid", b)
		}
	}
}

func TestBandForCorruption(t *testing.T) {
	t.Parallel()
	for i, want := range seed.Bands {
		got, err := seed.BandForCorruption(i + 1)
		if err != nil || got != want {
			t.Errorf("BandForCorruption(%d) = %q, %v; want %q", i+1, got, err, want)
		}
		if want.CorruptionBand() != i+1 {
			t.Errorf("%s.CorruptionBand() = %d", want, want.CorruptionBand())
		}
	}
	for _, n := range []int{0, 6} {
		if _, err := seed.BandForCorruption(n); err == nil {
			t.Errorf("BandForCorruption(%d) should fail", n)
		}
	}
	if seed.BandKey("calm").IsValid() {
		t.Error("unknown band reported valid")
	}
}
