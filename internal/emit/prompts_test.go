package emit_test

import (
	"strings"
	"testing"

	"github.com/MrWong99/hexforge/internal/emit"
)

func assetByID(t *testing.T, assets []emit.Asset, id string) emit.Asset {
	t.Helper()
	for _, a := range assets {
		if a.Meta.ID == id {
			return a
		}
	}
	t.Fatalf("no asset %q", id)
	return emit.Asset{}
}

func TestRenderModelPrompt(t *testing.T) {
	t.Parallel()

	assets := emit.Plan(world(), emit.PlanOptions{})
	mira := assetByID(t, assets, "cult_of_the_ash_mira_vell")

	out, err := emit.RenderModelPrompt(mira, nil)
	if err != nil {
		t.Fatalf("RenderModelPrompt: %v", err)
	}
	for _, want := range []string{
		"# Mira Vell\n",
		"## Primary Prompt",
		"Mira Vell, an acolyte of Cult Of The Ash",
		"> An acolyte of the Cult of the Ash.",
		"| Poly count | at most 8000 triangles |",
		"| Bone count | 45 |",
		"**Tier 1: Untouched** (current)",
		"Tier 5: Consumed",
		"## Animation Requirements",
		"- `death`",
	} {
		if !strings.Contains(string(out), want) {
			t.Errorf("model prompt missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(string(out), "## Stat Block") {
		t.Error("characters have no stat block")
	}

	terrain := assetByID(t, assets, "swamp_ashen_marsh")
	out, err = emit.RenderModelPrompt(terrain, nil)
	if err != nil {
		t.Fatalf("RenderModelPrompt(terrain): %v", err)
	}
	for _, want := range []string{"a swamp terrain tile for Ashen Marsh", "none (static mesh)", "satellite imagery of real swamp"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("terrain prompt missing %q:\n%s", want, out)
		}
	}
}

func TestRenderDialoguePrompt(t *testing.T) {
	t.Parallel()

	oskar := assetByID(t, emit.Plan(world(), emit.PlanOptions{}), "cult_of_the_ash_oskar")
	if !emit.HasDialogue(oskar) {
		t.Fatal("HasDialogue: expected true for a character unit")
	}
	out, err := emit.RenderDialoguePrompt(oskar, nil)
	if err != nil {
		t.Fatalf("RenderDialoguePrompt: %v", err)
	}
	for _, want := range []string{"# Oskar: Dialogue", "- Faction: cult_of_the_ash", "## Required Lines", "plain and friendly"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("dialogue prompt missing %q:\n%s", want, out)
		}
	}
	if got := emit.DialoguePromptPath(oskar); got != "dialogue_prompts/oskar_dialogue.md" {
		t.Errorf("DialoguePromptPath = %q", got)
	}
}

func TestRenderProgressionGuide(t *testing.T) {
	t.Parallel()

	assets := emit.Plan(world(), emit.PlanOptions{CorruptionThemes: true})
	out, err := emit.RenderProgressionGuide(3, assets, nil)
	if err != nil {
		t.Fatalf("RenderProgressionGuide: %v", err)
	}
	for _, want := range []string{"# Corruption Band 3: Tainted", "Theme: dread_to_terror", "`independent_bog_wight` Bog Wight (units)"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("guide missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(string(out), "mira_vell") {
		t.Error("band 3 guide lists a band 1 asset")
	}

	if _, err := emit.RenderProgressionGuide(0, assets, nil); err == nil {
		t.Error("RenderProgressionGuide(0): expected error")
	}
	if got := emit.ProgressionGuidePath(3); got != "progression_guides/band_3_dread_to_terror.md" {
		t.Errorf("ProgressionGuidePath = %q", got)
	}
}

func TestRenderPromptIndex(t *testing.T) {
	t.Parallel()

	out, err := emit.RenderPromptIndex([]string{
		"progression_guides/band_1_peace_to_unease.md",
		"model_prompts/ash/b_prompt.md",
		"model_prompts/ash/a_prompt.md",
	})
	if err != nil {
		t.Fatalf("RenderPromptIndex: %v", err)
	}
	s := string(out)
	if strings.Contains(s, "## Dialogue Prompts") {
		t.Error("empty sections should be omitted")
	}
	model, guides := strings.Index(s, "## Model Prompts"), strings.Index(s, "## Progression Guides")
	if model < 0 || guides < model {
		t.Fatalf("unexpected section order:\n%s", s)
	}
	if a, b := strings.Index(s, "a_prompt.md"), strings.Index(s, "b_prompt.md"); a > b {
		t.Errorf("files not sorted:\n%s", s)
	}
}
