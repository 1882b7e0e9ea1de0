// Package recommend defines the retrieval/recommendation collaborator
// contract: mood-to-color/intensity guidance for scene generation and script
// analysis for cue sequencing.
package recommend

import "context"

// Recommendations carries mood-derived lighting guidance that is rendered
// into the scene-generation prompt.
type Recommendations struct {
	Reasoning        string   `json:"reasoning"`
	ColorSuggestions []string `json:"colorSuggestions"`
	IntensityLevels  []string `json:"intensityLevels"`
}

// ScriptScene is one scene identified within a script.
type ScriptScene struct {
	SceneNumber  int      `json:"sceneNumber"`
	Title        string   `json:"title"`
	Mood         string   `json:"mood"`
	TimeOfDay    string   `json:"timeOfDay"`
	Location     string   `json:"location"`
	LightingCues []string `json:"lightingCues"`
	Content      string   `json:"content"`
}

// ScriptAnalysis is the result of analyzing a script text.
type ScriptAnalysis struct {
	Scenes []ScriptScene `json:"scenes"`
}

// Service is the recommendation collaborator contract.
type Service interface {
	GenerateLightingRecommendations(ctx context.Context, description, mood string, fixtureTypes []string) (*Recommendations, error)
	AnalyzeScript(ctx context.Context, text string) (*ScriptAnalysis, error)
}
