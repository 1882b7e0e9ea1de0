package recommend

import (
	"context"
	"strings"
	"testing"
)

func TestGenerateLightingRecommendations(t *testing.T) {
	advisor := &StaticAdvisor{}
	ctx := context.Background()

	rec, err := advisor.GenerateLightingRecommendations(ctx, "a quiet dinner", "romantic", nil)
	if err != nil {
		t.Fatalf("GenerateLightingRecommendations: %v", err)
	}
	if len(rec.ColorSuggestions) == 0 || rec.ColorSuggestions[0] != "warm amber" {
		t.Errorf("romantic colors = %v", rec.ColorSuggestions)
	}

	// Mood word found in the description when the mood field is empty.
	rec, err = advisor.GenerateLightingRecommendations(ctx, "a tense standoff at the docks", "", nil)
	if err != nil {
		t.Fatalf("GenerateLightingRecommendations: %v", err)
	}
	if rec.ColorSuggestions[0] != "steel blue" {
		t.Errorf("description-derived mood colors = %v", rec.ColorSuggestions)
	}

	// Unknown moods fall back to neutral guidance, never an error.
	rec, err = advisor.GenerateLightingRecommendations(ctx, "", "brooding-electric", nil)
	if err != nil {
		t.Fatalf("GenerateLightingRecommendations: %v", err)
	}
	if len(rec.ColorSuggestions) == 0 {
		t.Error("fallback guidance should carry colors")
	}
}

func TestAnalyzeScript(t *testing.T) {
	advisor := &StaticAdvisor{}

	script := `ACT 1, SCENE 1
A village square at dawn. Lights fade up slowly.
The wedding party assembles, dancing.

SCENE 2
Night. A storm approaches. Blackout on the final line.
`

	analysis, err := advisor.AnalyzeScript(context.Background(), script)
	if err != nil {
		t.Fatalf("AnalyzeScript: %v", err)
	}
	if len(analysis.Scenes) != 2 {
		t.Fatalf("scene count = %d, want 2", len(analysis.Scenes))
	}

	first := analysis.Scenes[0]
	if first.SceneNumber != 1 || first.TimeOfDay != "dawn" || first.Mood != "joyful" {
		t.Errorf("first scene = %+v", first)
	}
	if len(first.LightingCues) == 0 || !strings.Contains(first.LightingCues[0], "Lights fade up") {
		t.Errorf("first scene lighting cues = %v", first.LightingCues)
	}

	second := analysis.Scenes[1]
	if second.Mood != "tense" || second.TimeOfDay != "night" {
		t.Errorf("second scene = %+v", second)
	}

	// Headingless text becomes a single scene.
	analysis, err = advisor.AnalyzeScript(context.Background(), "Just a monologue under a single spotlight.")
	if err != nil {
		t.Fatalf("AnalyzeScript: %v", err)
	}
	if len(analysis.Scenes) != 1 {
		t.Errorf("headingless scene count = %d", len(analysis.Scenes))
	}
}

func TestRecommendationsDescribe(t *testing.T) {
	rec := &Recommendations{
		Reasoning:        "why",
		ColorSuggestions: []string{"red", "amber"},
		IntensityLevels:  []string{"wash 50%"},
	}
	text := rec.Describe()
	for _, want := range []string{"why", "red, amber", "wash 50%"} {
		if !strings.Contains(text, want) {
			t.Errorf("Describe missing %q:\n%s", want, text)
		}
	}

	var nilRec *Recommendations
	if nilRec.Describe() != "" {
		t.Error("nil Describe should be empty")
	}
}
