package emit_test

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MrWong99/hexforge/internal/emit"
)

func TestDungeonContainers(t *testing.T) {
	t.Parallel()

	got := emit.DungeonContainers(world())
	want := []emit.DungeonContainer{{
		UUID: "d1",
		Name: "Hollow Crypt",
		Rooms: []emit.ContainerRoom{
			{Area: 4, Title: "Flooded Chamber", Type: "chamber", Exits: []string{"south", "east (locked)"}},
		},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("containers mismatch (-want +got):\n%s", diff)
	}
}

func TestRegionContainers(t *testing.T) {
	t.Parallel()

	snap := world()
	got := emit.RegionContainers(snap, emit.Plan(snap, emit.PlanOptions{}))
	want := []emit.RegionContainer{{
		UUID:        "r1",
		Name:        "Ashen Marsh",
		Biome:       "swamp",
		Settlements: []string{"Village of Millbrook"},
		Dungeons:    []string{"Hollow Crypt"},
		Assets: []string{
			"village_of_millbrook_blacksmith",
			"village_of_millbrook_inn_the_drowned_rat",
			"swamp_ashen_marsh",
		},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("containers mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderContainers_ValidGo(t *testing.T) {
	t.Parallel()

	snap := world()
	dungeons, err := emit.RenderDungeonContainers("world", emit.DungeonContainers(snap))
	if err != nil {
		t.Fatalf("RenderDungeonContainers: %v", err)
	}
	regions, err := emit.RenderRegionContainers("", emit.RegionContainers(snap, nil))
	if err != nil {
		t.Fatalf("RenderRegionContainers: %v", err)
	}

	for name, src := range map[string][]byte{"dungeons": dungeons, "regions": regions} {
		f, err := parser.ParseFile(token.NewFileSet(), name+".go", src, parser.ParseComments)
		if err != nil {
			t.Fatalf("%s: generated source does not parse: %v\n%s", name, err, src)
		}
		wantPkg := "world"
		if name == "regions" {
			wantPkg = emit.DefaultContainerPkg
		}
		if f.Name.Name != wantPkg {
			t.Errorf("%s: package %q, want %q", name, f.Name.Name, wantPkg)
		}
	}
	if !strings.Contains(string(dungeons), `"Flooded Chamber"`) {
		t.Errorf("dungeons source missing room title:\n%s", dungeons)
	}
	if !strings.Contains(string(regions), `Settlements: []string{"Village of Millbrook"}`) {
		t.Errorf("regions source missing settlement:\n%s", regions)
	}
}
