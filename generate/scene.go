package generate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/luxstudio/cuegen/lighting"
	"github.com/luxstudio/cuegen/llm"
	"github.com/luxstudio/cuegen/prompt"
	"github.com/luxstudio/cuegen/recommend"
)

// completer is the subset of the completion client used by the generation
// layer. Extracted as an interface to enable testing with mock responses.
type completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// SceneGenerator orchestrates recommendation retrieval, prompt construction,
// the completion call, structured extraction and validation into a
// GeneratedScene.
type SceneGenerator struct {
	llm         completer
	recommender recommend.Service
	logger      *slog.Logger
	temperature float64
}

// SceneGeneratorOption configures a SceneGenerator.
type SceneGeneratorOption func(*SceneGenerator)

// WithSceneLogger sets the logger.
func WithSceneLogger(logger *slog.Logger) SceneGeneratorOption {
	return func(g *SceneGenerator) {
		g.logger = logger
	}
}

// WithSceneTemperature sets the completion temperature.
func WithSceneTemperature(t float64) SceneGeneratorOption {
	return func(g *SceneGenerator) {
		g.temperature = t
	}
}

// NewSceneGenerator creates a scene generator. recommender may be nil, in
// which case prompts carry no mood guidance.
func NewSceneGenerator(client completer, recommender recommend.Service, opts ...SceneGeneratorOption) *SceneGenerator {
	g := &SceneGenerator{
		llm:         client,
		recommender: recommender,
		logger:      slog.Default(),
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateSceneRequest carries the design intent for one scene.
type GenerateSceneRequest struct {
	// Description is the natural-language scene description.
	Description string

	// Mood is an optional one-word mood hint.
	Mood string

	// Fixtures is the authoritative set of available fixtures.
	Fixtures []lighting.FixtureInstance

	// SelectedFixtureIDs optionally narrows generation to a subset; in
	// additive mode the remainder is rendered as context only.
	SelectedFixtureIDs []string

	// Mode selects full or additive generation. Empty means full.
	Mode prompt.SceneMode
}

// Generate runs the full pipeline once. A completion-service failure
// propagates to the caller; there is no retry at this layer. Malformed
// completion output never fails the call: the returned scene is then empty
// with diagnostic reasoning.
func (g *SceneGenerator) Generate(ctx context.Context, req GenerateSceneRequest) (*lighting.GeneratedScene, error) {
	if req.Description == "" {
		return nil, fmt.Errorf("generate scene: description is required")
	}

	guidance := g.fetchGuidance(ctx, req)

	target, contextFixtures := splitSelection(req.Fixtures, req.SelectedFixtureIDs)

	p := prompt.ScenePrompt(prompt.SceneRequest{
		Description:     req.Description,
		Mood:            req.Mood,
		Fixtures:        target,
		ContextFixtures: contextFixtures,
		Mode:            req.Mode,
		Guidance:        guidance,
	})

	temp := g.temperature
	resp, err := g.llm.Complete(ctx, llm.Request{
		System:      prompt.SceneSystemPrompt(),
		Prompt:      p,
		Temperature: &temp,
	})
	if err != nil {
		generationFailures.WithLabelValues("scene").Inc()
		return nil, fmt.Errorf("generate scene: %w", err)
	}

	parsed, kind := ParseSceneResponse(resp.Content)
	recordParse("scene", kind)
	if kind == ParseFallback {
		g.logger.Warn("Scene response unparseable, using fallback",
			"request_id", resp.RequestID,
			"content_chars", len(resp.Content))
	}

	scene := &lighting.GeneratedScene{
		Name:          parsed.Name,
		Description:   parsed.Description,
		FixtureValues: NormalizeFixtureValues(parsed.FixtureValues, target),
		Reasoning:     parsed.Reasoning,
	}
	if scene.Name == "" {
		scene.Name = "Generated Scene"
	}
	if scene.Description == "" {
		scene.Description = req.Description
	}

	scenesGenerated.Inc()
	g.logger.Info("Scene generated",
		"name", scene.Name,
		"fixtures", len(scene.FixtureValues),
		"parse", string(kind))

	return scene, nil
}

// OptimizeSceneForFixtures re-validates a previously generated scene against
// the current fixture definitions: values are re-clamped, lengths re-padded
// or truncated, and values for removed fixtures dropped.
func (g *SceneGenerator) OptimizeSceneForFixtures(scene *lighting.GeneratedScene, fixtures []lighting.FixtureInstance) *lighting.GeneratedScene {
	optimized := *scene
	optimized.FixtureValues = OptimizeSceneValues(scene.FixtureValues, fixtures)
	return &optimized
}

// fetchGuidance asks the recommendation collaborator for mood guidance.
// Recommendation failures degrade to an unguided prompt rather than failing
// generation.
func (g *SceneGenerator) fetchGuidance(ctx context.Context, req GenerateSceneRequest) string {
	if g.recommender == nil {
		return ""
	}

	types := make([]string, 0, len(req.Fixtures))
	seen := make(map[string]bool)
	for _, f := range req.Fixtures {
		if !seen[f.Type] {
			seen[f.Type] = true
			types = append(types, f.Type)
		}
	}

	rec, err := g.recommender.GenerateLightingRecommendations(ctx, req.Description, req.Mood, types)
	if err != nil {
		g.logger.Warn("Recommendation lookup failed, continuing without guidance", "error", err)
		return ""
	}
	return rec.Describe()
}

// splitSelection partitions fixtures into the generation targets and the
// context-only remainder. An empty selection targets everything.
func splitSelection(fixtures []lighting.FixtureInstance, selectedIDs []string) ([]lighting.FixtureInstance, []lighting.FixtureInstance) {
	if len(selectedIDs) == 0 {
		return fixtures, nil
	}

	selected := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = true
	}

	var target, rest []lighting.FixtureInstance
	for _, f := range fixtures {
		if selected[f.ID] {
			target = append(target, f)
		} else {
			rest = append(rest, f)
		}
	}
	return target, rest
}
