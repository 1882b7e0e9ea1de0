// Package generate implements the generation pipeline core: structured
// extraction of completion output, fixture-value validation, scene
// generation and cue-sequence synthesis.
package generate

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/luxstudio/cuegen/lighting"
	"github.com/luxstudio/cuegen/llm"
)

// ParseKind tags how a structured value was obtained from completion text.
type ParseKind string

// Parse outcomes. Consumers branch on nothing beyond "was this a fallback";
// the carried shape is identical for all three.
const (
	ParseDirect    ParseKind = "direct"    // whole text was valid JSON
	ParseExtracted ParseKind = "extracted" // JSON pulled out of surrounding prose
	ParseFallback  ParseKind = "fallback"  // nothing parseable; defined empty value
)

// fallbackReasoning is embedded in fallback values so callers can surface
// why the result is empty.
const fallbackReasoning = "Unable to parse AI response, using fallback structure"

// flexString unmarshals either a JSON string or a JSON number, since the
// completion service inconsistently returns scene references both ways.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	// Unexpected shape degrades to empty, not to a parse failure.
	*f = ""
	return nil
}

// RawFixtureValue is a fixture-value entry as the model produced it, before
// validation. ChannelValues is kept raw because the model emits either a
// flat numeric array or a legacy keyed form.
type RawFixtureValue struct {
	FixtureID     string          `json:"fixtureId"`
	ChannelValues json.RawMessage `json:"channelValues"`
}

// SceneResponse is the structured shape requested from scene generation.
type SceneResponse struct {
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	FixtureValues []RawFixtureValue `json:"fixtureValues"`
	Reasoning     string            `json:"reasoning"`
}

// rawProposedCue mirrors lighting.ProposedCue with tolerant field types.
type rawProposedCue struct {
	Name        string     `json:"name"`
	CueNumber   float64    `json:"cueNumber"`
	SceneID     flexString `json:"sceneId"`
	FadeInTime  float64    `json:"fadeInTime"`
	FadeOutTime float64    `json:"fadeOutTime"`
	FollowTime  *float64   `json:"followTime"`
	Notes       string     `json:"notes"`
}

// sequenceResponse is the structured shape requested from sequence synthesis.
type sequenceResponse struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Cues        []rawProposedCue `json:"cues"`
	Reasoning   string           `json:"reasoning"`
}

// parseStaged attempts the staged extraction into out:
// whole-text parse, then brace extraction, then failure (caller supplies the
// fallback value). It never returns an error.
func parseStaged(content string, out any) ParseKind {
	trimmed := strings.TrimSpace(content)
	if trimmed != "" && json.Unmarshal([]byte(trimmed), out) == nil {
		return ParseDirect
	}

	if extracted := llm.ExtractJSON(content); extracted != "" {
		if json.Unmarshal([]byte(extracted), out) == nil {
			return ParseExtracted
		}
	}

	return ParseFallback
}

// ParseSceneResponse extracts a SceneResponse from completion text. On
// fallback the result carries an empty fixture-value set and a diagnostic
// reasoning string.
func ParseSceneResponse(content string) (SceneResponse, ParseKind) {
	var resp SceneResponse
	kind := parseStaged(content, &resp)
	if kind == ParseFallback {
		return SceneResponse{
			FixtureValues: []RawFixtureValue{},
			Reasoning:     fallbackReasoning,
		}, kind
	}
	return resp, kind
}

// ParseSequenceResponse extracts a CueSequence from completion text. On
// fallback the result carries an empty cue list and a diagnostic reasoning
// string.
func ParseSequenceResponse(content string) (lighting.CueSequence, ParseKind) {
	var resp sequenceResponse
	kind := parseStaged(content, &resp)
	if kind == ParseFallback {
		return lighting.CueSequence{
			Cues:      []lighting.ProposedCue{},
			Reasoning: fallbackReasoning,
		}, kind
	}

	seq := lighting.CueSequence{
		Name:        resp.Name,
		Description: resp.Description,
		Cues:        make([]lighting.ProposedCue, 0, len(resp.Cues)),
		Reasoning:   resp.Reasoning,
	}
	for _, c := range resp.Cues {
		seq.Cues = append(seq.Cues, lighting.ProposedCue{
			Name:        c.Name,
			CueNumber:   c.CueNumber,
			SceneRef:    string(c.SceneID),
			FadeInTime:  c.FadeInTime,
			FadeOutTime: c.FadeOutTime,
			FollowTime:  c.FollowTime,
			Notes:       c.Notes,
		})
	}
	return seq, kind
}

// coerceNumber converts a decoded JSON value to an int, mapping anything
// non-numeric to zero.
func coerceNumber(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return int(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return int(f)
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}
