package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/luxstudio/cuegen/backend"
	"github.com/luxstudio/cuegen/lighting"
	"github.com/luxstudio/cuegen/llm"
	"github.com/luxstudio/cuegen/prompt"
)

// manualAdvanceSeconds is the runtime-estimate assumption for cues without a
// follow time: the operator takes roughly this long to press Go.
const manualAdvanceSeconds = 5.0

// CueSequenceSynthesizer turns script context plus a fixed scene list into
// persisted cues through the backend collaborator.
type CueSequenceSynthesizer struct {
	llm         completer
	backend     backend.Service
	logger      *slog.Logger
	temperature float64
}

// SynthesizerOption configures a CueSequenceSynthesizer.
type SynthesizerOption func(*CueSequenceSynthesizer)

// WithSynthesizerLogger sets the logger.
func WithSynthesizerLogger(logger *slog.Logger) SynthesizerOption {
	return func(s *CueSequenceSynthesizer) {
		s.logger = logger
	}
}

// WithSynthesizerTemperature sets the completion temperature.
func WithSynthesizerTemperature(t float64) SynthesizerOption {
	return func(s *CueSequenceSynthesizer) {
		s.temperature = t
	}
}

// NewCueSequenceSynthesizer creates a synthesizer.
func NewCueSequenceSynthesizer(client completer, svc backend.Service, opts ...SynthesizerOption) *CueSequenceSynthesizer {
	s := &CueSequenceSynthesizer{
		llm:         client,
		backend:     svc,
		logger:      slog.Default(),
		temperature: 0.6,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateCueSequence renders the sequence prompt, invokes completion once
// and parses the result with an empty-cue-list fallback. Only a completion
// failure is an error.
func (s *CueSequenceSynthesizer) GenerateCueSequence(ctx context.Context, scriptContext string, scenes []prompt.SceneSummary, prefs prompt.TransitionPreferences) (*lighting.CueSequence, error) {
	temp := s.temperature
	resp, err := s.llm.Complete(ctx, llm.Request{
		System:      prompt.CueSequenceSystemPrompt(),
		Prompt:      prompt.CueSequencePrompt(scriptContext, scenes, prefs),
		Temperature: &temp,
	})
	if err != nil {
		generationFailures.WithLabelValues("sequence").Inc()
		return nil, fmt.Errorf("generate cue sequence: %w", err)
	}

	seq, kind := ParseSequenceResponse(resp.Content)
	recordParse("sequence", kind)
	if kind == ParseFallback {
		s.logger.Warn("Sequence response unparseable, using fallback",
			"request_id", resp.RequestID,
			"content_chars", len(resp.Content))
	}

	sequencesGenerated.Inc()
	return &seq, nil
}

// CreateSequenceRequest carries everything needed to synthesize and persist
// a cue sequence.
type CreateSequenceRequest struct {
	ProjectID     string
	Name          string
	Description   string
	SceneIDs      []string
	ScriptContext string
	Preferences   prompt.TransitionPreferences
}

// SequenceStats summarize the created cues.
type SequenceStats struct {
	CueCount         int     `json:"cueCount"`
	AverageFadeIn    float64 `json:"averageFadeIn"`
	FollowCueCount   int     `json:"followCueCount"`
	EstimatedRuntime float64 `json:"estimatedRuntime"`
}

// CreateSequenceResult reports the persisted cue list and the synthesis it
// came from.
type CreateSequenceResult struct {
	CueList   *lighting.CueList `json:"cueList"`
	Cues      []lighting.Cue    `json:"cues"`
	Reasoning string            `json:"reasoning"`
	Stats     SequenceStats     `json:"stats"`
}

// CreateCueSequence validates the project and scene references, synthesizes
// a sequence, then persists one cue list and each cue strictly sequentially
// in response order so cue numbering stays traceable to synthesis order.
func (s *CueSequenceSynthesizer) CreateCueSequence(ctx context.Context, req CreateSequenceRequest) (*CreateSequenceResult, error) {
	if len(req.SceneIDs) == 0 {
		return nil, fmt.Errorf("create cue sequence: at least one scene ID is required")
	}

	project, err := s.backend.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create cue sequence: %w", err)
	}

	// Map scene ids to records in input order, failing fast on any miss.
	summaries := make([]prompt.SceneSummary, 0, len(req.SceneIDs))
	for i, id := range req.SceneIDs {
		scene := project.SceneByID(id)
		if scene == nil {
			return nil, fmt.Errorf("create cue sequence: %w", backend.NewNotFound("scene", id))
		}
		summaries = append(summaries, prompt.SceneSummary{
			Index:       i,
			Name:        scene.Name,
			Description: scene.Description,
		})
	}

	seq, err := s.GenerateCueSequence(ctx, req.ScriptContext, summaries, req.Preferences)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = seq.Name
	}
	description := req.Description
	if description == "" {
		description = seq.Description
	}

	cueList, err := s.backend.CreateCueList(ctx, name, description, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create cue sequence: %w", err)
	}

	// Sequential by design: creation order is the sequence order.
	cues := make([]lighting.Cue, 0, len(seq.Cues))
	for i, proposed := range seq.Cues {
		cueNumber := proposed.CueNumber
		if cueNumber == 0 {
			cueNumber = float64(i + 1)
		}

		cue, err := s.backend.CreateCue(ctx, backend.CreateCueRequest{
			CueListID:   cueList.ID,
			Name:        proposed.Name,
			CueNumber:   cueNumber,
			SceneID:     ResolveSceneRef(proposed.SceneRef, req.SceneIDs, i),
			FadeInTime:  proposed.FadeInTime,
			FadeOutTime: proposed.FadeOutTime,
			FollowTime:  proposed.FollowTime,
			Notes:       proposed.Notes,
		})
		if err != nil {
			return nil, fmt.Errorf("create cue sequence: cue %d: %w", i+1, err)
		}
		cues = append(cues, *cue)
	}

	s.logger.Info("Cue sequence created",
		"cue_list_id", cueList.ID,
		"cues", len(cues),
		"scenes", len(req.SceneIDs))

	return &CreateSequenceResult{
		CueList:   cueList,
		Cues:      cues,
		Reasoning: seq.Reasoning,
		Stats:     computeStats(cues),
	}, nil
}

// ResolveSceneRef resolves a model-returned scene reference against the
// original scene-id list. The completion service inconsistently returns
// either an index or an opaque identifier, so resolution is tiered:
// an in-range integer is treated as an index; otherwise the value is looked
// up directly; otherwise the scene at min(cueIndex, last) is used.
func ResolveSceneRef(ref string, sceneIDs []string, cueIndex int) string {
	if len(sceneIDs) == 0 {
		return ""
	}

	if idx, err := strconv.Atoi(strings.TrimSpace(ref)); err == nil && idx >= 0 && idx < len(sceneIDs) {
		return sceneIDs[idx]
	}

	for _, id := range sceneIDs {
		if id == ref {
			return id
		}
	}

	// Defined fallback: clamp the cue's own position to the scene list.
	i := cueIndex
	if i > len(sceneIDs)-1 {
		i = len(sceneIDs) - 1
	}
	if i < 0 {
		i = 0
	}
	return sceneIDs[i]
}

func computeStats(cues []lighting.Cue) SequenceStats {
	stats := SequenceStats{CueCount: len(cues)}
	if len(cues) == 0 {
		return stats
	}

	var fadeInSum float64
	for _, cue := range cues {
		fadeInSum += cue.FadeInTime
		if cue.FollowTime != nil {
			stats.FollowCueCount++
			stats.EstimatedRuntime += cue.FadeInTime + *cue.FollowTime
		} else {
			stats.EstimatedRuntime += cue.FadeInTime + manualAdvanceSeconds
		}
	}
	stats.AverageFadeIn = fadeInSum / float64(len(cues))
	return stats
}
