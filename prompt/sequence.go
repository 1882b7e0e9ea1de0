package prompt

import (
	"fmt"
	"strings"
)

// SceneSummary is the per-scene context embedded in a sequence prompt. Index
// is the scene's position in the caller-supplied order; the model is asked to
// reference scenes by that index.
type SceneSummary struct {
	Index       int
	Name        string
	Description string
}

// TransitionPreferences tune the timing defaults suggested to the model.
type TransitionPreferences struct {
	// DefaultFadeIn seconds suggested for cue fade-ins.
	DefaultFadeIn float64

	// DefaultFadeOut seconds suggested for cue fade-outs.
	DefaultFadeOut float64

	// UseFollowCues asks the model to chain cues with follow times where
	// the script supports it.
	UseFollowCues bool

	// Notes carries free-form transition guidance.
	Notes string
}

// CueSequenceSystemPrompt returns the system prompt for sequence synthesis.
func CueSequenceSystemPrompt() string {
	return `You are an experienced theatrical stage manager building a cue sheet. You
turn script context and a fixed list of scenes into an ordered cue sequence.

## Rules

- Reference scenes by their index number from the provided scene list.
- Cue numbers increase through the sequence; use whole numbers unless a cue
  must be inserted between existing numbers.
- fadeInTime and fadeOutTime are seconds and must be zero or positive.
- followTime, when present, auto-advances to the next cue after that many
  seconds; omit it for operator-triggered cues.

## Output Format

Respond with a single JSON object and nothing else:

` + "```json" + `
{
  "name": "Cue sequence name",
  "description": "What this sequence covers",
  "cues": [
    {
      "name": "Cue name",
      "cueNumber": 1,
      "sceneId": "0",
      "fadeInTime": 3,
      "fadeOutTime": 3,
      "followTime": 4,
      "notes": "optional operator note"
    }
  ],
  "reasoning": "How the sequence supports the script"
}
` + "```"
}

// CueSequencePrompt renders the user prompt for sequence synthesis.
func CueSequencePrompt(scriptContext string, scenes []SceneSummary, prefs TransitionPreferences) string {
	var b strings.Builder

	b.WriteString("Create a cue sequence for the following script context:\n\n")
	b.WriteString(scriptContext)
	b.WriteString("\n\nScenes available (reference by index):\n")
	for _, s := range scenes {
		fmt.Fprintf(&b, "%d. %s", s.Index, s.Name)
		if s.Description != "" {
			fmt.Fprintf(&b, " - %s", s.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nTransition preferences:\n")
	fmt.Fprintf(&b, "- Default fade-in: %.1fs\n", prefs.DefaultFadeIn)
	fmt.Fprintf(&b, "- Default fade-out: %.1fs\n", prefs.DefaultFadeOut)
	if prefs.UseFollowCues {
		b.WriteString("- Use follow times to chain cues where the script supports automatic advance.\n")
	} else {
		b.WriteString("- All cues advance manually; do not set follow times.\n")
	}
	if prefs.Notes != "" {
		fmt.Fprintf(&b, "- %s\n", prefs.Notes)
	}

	b.WriteString("\nEvery scene should be used by at least one cue unless the script clearly skips it.\n")
	b.WriteString("Respond with the JSON object only.\n")

	return b.String()
}
