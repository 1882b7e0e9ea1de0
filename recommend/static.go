package recommend

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// StaticAdvisor is a table-driven Service implementation. It lets the
// generation pipeline run without a retrieval deployment; a vector-search
// backed implementation can replace it behind the same interface.
type StaticAdvisor struct{}

var _ Service = (*StaticAdvisor)(nil)

// moodGuidance maps normalized moods to color and intensity advice.
var moodGuidance = map[string]Recommendations{
	"romantic": {
		Reasoning:        "Romantic moments read best in warm, low-saturation tones with soft front light.",
		ColorSuggestions: []string{"warm amber", "soft pink", "lavender"},
		IntensityLevels:  []string{"low front wash 30-50%", "warm backlight 40%"},
	},
	"tense": {
		Reasoning:        "Tension benefits from cold, directional light and hard shadows.",
		ColorSuggestions: []string{"steel blue", "pale cyan", "desaturated white"},
		IntensityLevels:  []string{"side light 60-80%", "minimal front fill under 30%"},
	},
	"mysterious": {
		Reasoning:        "Mystery is built from deep saturated color and low overall levels.",
		ColorSuggestions: []string{"deep blue", "violet", "dark green"},
		IntensityLevels:  []string{"overall under 40%", "isolated specials up to 70%"},
	},
	"joyful": {
		Reasoning:        "Bright, saturated warm colors at high levels carry celebratory energy.",
		ColorSuggestions: []string{"golden yellow", "warm white", "orange"},
		IntensityLevels:  []string{"full stage wash 80-100%", "color accents 60%"},
	},
	"dramatic": {
		Reasoning:        "High contrast between a strong key and deep shadow reads as dramatic.",
		ColorSuggestions: []string{"red", "deep amber", "cold white key"},
		IntensityLevels:  []string{"key light 90%", "fill under 20%"},
	},
	"somber": {
		Reasoning:        "Muted cool tones at restrained levels suit grief and reflection.",
		ColorSuggestions: []string{"pale blue", "cool white", "grey lavender"},
		IntensityLevels:  []string{"overall 30-50%", "no saturated accents"},
	},
}

// defaultGuidance is returned for unrecognized moods.
var defaultGuidance = Recommendations{
	Reasoning:        "No specific mood guidance matched; favoring a neutral stage wash with room for color accents.",
	ColorSuggestions: []string{"neutral white", "warm white", "light amber"},
	IntensityLevels:  []string{"front wash 60-70%", "backlight 50%"},
}

// GenerateLightingRecommendations returns table-driven guidance for the mood.
func (a *StaticAdvisor) GenerateLightingRecommendations(_ context.Context, description, mood string, _ []string) (*Recommendations, error) {
	key := strings.ToLower(strings.TrimSpace(mood))
	if rec, ok := moodGuidance[key]; ok {
		return &rec, nil
	}

	// Fall back to scanning the description for a known mood word.
	lowered := strings.ToLower(description)
	for _, word := range moodOrder {
		if strings.Contains(lowered, word) {
			rec := moodGuidance[word]
			return &rec, nil
		}
	}

	rec := defaultGuidance
	return &rec, nil
}

// sceneHeadingPattern matches common scene headings: "Scene 2", "SCENE II",
// "Act 1, Scene 3".
var sceneHeadingPattern = regexp.MustCompile(`(?im)^\s*(?:act\s+[\divxlc]+[,.\s]+)?scene\s+([\divxlc]+)\b.*$`)

// lightingCuePattern matches lines carrying explicit lighting directions.
var lightingCuePattern = regexp.MustCompile(`(?i)\b(lights?|blackout|spotlight|dim|fade|dawn|dusk|sunset|sunrise|darkness)\b`)

// AnalyzeScript splits a script into scenes on scene headings and collects
// lines that look like lighting directions. It is heuristic by design.
func (a *StaticAdvisor) AnalyzeScript(_ context.Context, text string) (*ScriptAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return &ScriptAnalysis{}, nil
	}

	headings := sceneHeadingPattern.FindAllStringIndex(text, -1)
	if len(headings) == 0 {
		// No headings: treat the whole text as one scene.
		return &ScriptAnalysis{Scenes: []ScriptScene{buildScene(1, "Scene 1", text)}}, nil
	}

	var scenes []ScriptScene
	for i, loc := range headings {
		end := len(text)
		if i+1 < len(headings) {
			end = headings[i+1][0]
		}
		body := text[loc[0]:end]
		title := strings.TrimSpace(text[loc[0]:loc[1]])
		scenes = append(scenes, buildScene(i+1, title, body))
	}
	return &ScriptAnalysis{Scenes: scenes}, nil
}

func buildScene(number int, title, content string) ScriptScene {
	scene := ScriptScene{
		SceneNumber: number,
		Title:       title,
		Mood:        detectMood(content),
		TimeOfDay:   detectTimeOfDay(content),
		Content:     strings.TrimSpace(content),
	}
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == title {
			continue
		}
		if lightingCuePattern.MatchString(trimmed) {
			scene.LightingCues = append(scene.LightingCues, trimmed)
		}
	}
	return scene
}

// moodOrder fixes the scan order so detection is deterministic.
var moodOrder = []string{"romantic", "tense", "mysterious", "joyful", "dramatic", "somber"}

func detectMood(content string) string {
	lowered := strings.ToLower(content)
	for _, mood := range moodOrder {
		if strings.Contains(lowered, mood) {
			return mood
		}
	}
	switch {
	case strings.Contains(lowered, "storm"), strings.Contains(lowered, "fight"):
		return "tense"
	case strings.Contains(lowered, "funeral"), strings.Contains(lowered, "grave"):
		return "somber"
	case strings.Contains(lowered, "wedding"), strings.Contains(lowered, "dance"):
		return "joyful"
	default:
		return "neutral"
	}
}

func detectTimeOfDay(content string) string {
	lowered := strings.ToLower(content)
	for _, tod := range []string{"dawn", "morning", "noon", "afternoon", "dusk", "sunset", "evening", "night", "midnight"} {
		if strings.Contains(lowered, tod) {
			return tod
		}
	}
	return ""
}

// Describe renders recommendations as prompt-ready text.
func (r *Recommendations) Describe() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	if r.Reasoning != "" {
		fmt.Fprintf(&b, "%s\n", r.Reasoning)
	}
	if len(r.ColorSuggestions) > 0 {
		fmt.Fprintf(&b, "Suggested colors: %s\n", strings.Join(r.ColorSuggestions, ", "))
	}
	if len(r.IntensityLevels) > 0 {
		fmt.Fprintf(&b, "Suggested intensity levels: %s\n", strings.Join(r.IntensityLevels, ", "))
	}
	return b.String()
}
