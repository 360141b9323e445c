package seed_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MrWong99/hexforge/internal/seed"
)

func TestSynthesizeNames(t *testing.T) {
	t.Parallel()
	a := seed.SynthesizeNames(seed.DefaultShuffleSeed, seed.NamesPerRegion)
	b := seed.SynthesizeNames(seed.DefaultShuffleSeed, seed.NamesPerRegion)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("same seed gave different names (-a +b):\n%s", diff)
	}

	if len(a) != len(seed.Bands) {
		t.Fatalf("got %d bands, want %d", len(a), len(seed.Bands))
	}
	for _, band := range seed.Bands {
		regions := a[band]
		if len(regions) != len(seed.NameRegions) {
			t.Errorf("band %s has %d regions", band, len(regions))
		}
		for _, region := range seed.NameRegions {
			names := regions[region]
			if len(names) == 0 || len(names) > seed.NamesPerRegion {
				t.Errorf("%s/%s: %d names", band, region, len(names))
			}
			seen := map[string]bool{}
			for _, n := range names {
				if n.Name == "" || n.Syllables < 1 || n.Syllables > 3 {
					t.Errorf("%s/%s: bad entry %+v", band, region, n)
				}
				if seen[n.Name] {
					t.Errorf("%s/%s: duplicate %q", band, region, n.Name)
				}
				seen[n.Name] = true
			}
		}
	}

	other := seed.SynthesizeNames(seed.DefaultShuffleSeed+1, seed.NamesPerRegion)
	if cmp.Equal(a, other) {
		t.Error("different seeds gave identical names")
	}
}
