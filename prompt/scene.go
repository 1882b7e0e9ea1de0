// Package prompt renders lighting-design context into bounded prompts for
// the completion service. Rendering is pure: no prompt function performs IO.
package prompt

import (
	"fmt"
	"strings"

	"github.com/luxstudio/cuegen/lighting"
)

const (
	// maxPromptFixtures bounds the fixture inventory rendered into a scene
	// prompt; larger lists are truncated with a visible notice.
	maxPromptFixtures = 15

	// maxContextFixtures bounds the "not modified" preview in additive mode.
	maxContextFixtures = 5
)

// SceneMode selects between a full-stage state and an additive change.
type SceneMode string

// Scene generation modes.
const (
	SceneModeFull     SceneMode = "full"
	SceneModeAdditive SceneMode = "additive"
)

// SceneRequest carries the design intent for one scene prompt.
type SceneRequest struct {
	// Description is the natural-language scene description.
	Description string

	// Mood is an optional one-word mood hint.
	Mood string

	// Fixtures are the fixtures the model should set values for.
	Fixtures []lighting.FixtureInstance

	// ContextFixtures are fixtures outside the selection, rendered as
	// context only in additive mode.
	ContextFixtures []lighting.FixtureInstance

	// Mode selects full or additive generation.
	Mode SceneMode

	// Guidance is prompt-ready recommendation text (colors, intensity).
	Guidance string
}

// SceneSystemPrompt returns the system prompt for scene generation.
func SceneSystemPrompt() string {
	return `You are an experienced theatrical lighting designer. You translate scene
descriptions into concrete per-fixture channel values.

## Rules

- Channel values are integers from 0 to 255.
- For every fixture you set, the channelValues array MUST contain exactly as
  many values as the fixture has channels, in channel order.
- Only reference fixtures listed in the request, by their id.
- Prefer motivated, stage-worthy looks over technically flat washes.

## Output Format

Respond with a single JSON object and nothing else:

` + "```json" + `
{
  "name": "Short scene name",
  "description": "One-sentence description of the look",
  "fixtureValues": [
    {"fixtureId": "fixture-id", "channelValues": [255, 180, 60, 0]}
  ],
  "reasoning": "Why this look serves the described moment"
}
` + "```"
}

// ScenePrompt renders the user prompt for a scene-generation request.
func ScenePrompt(req SceneRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Design lighting for the following scene:\n\n%s\n", req.Description)
	if req.Mood != "" {
		fmt.Fprintf(&b, "\nMood: %s\n", req.Mood)
	}
	if req.Guidance != "" {
		fmt.Fprintf(&b, "\nDesign guidance:\n%s", req.Guidance)
	}

	if req.Mode == SceneModeAdditive {
		b.WriteString("\nThis is an ADDITIVE change: set values only for the fixtures listed below; all other fixtures keep their current state.\n")
	}

	b.WriteString("\nAvailable fixtures:\n")
	writeFixtureList(&b, req.Fixtures)

	if req.Mode == SceneModeAdditive && len(req.ContextFixtures) > 0 {
		b.WriteString("\nOther fixtures on stage (context only, not modified):\n")
		preview := req.ContextFixtures
		if len(preview) > maxContextFixtures {
			preview = preview[:maxContextFixtures]
		}
		for _, f := range preview {
			fmt.Fprintf(&b, "- %s (%s)\n", f.Name, f.Type)
		}
		if len(req.ContextFixtures) > maxContextFixtures {
			fmt.Fprintf(&b, "- ... and %d more (not modified)\n", len(req.ContextFixtures)-maxContextFixtures)
		}
	}

	// The array-length contract is what downstream validation relies on the
	// model attempting to honor; it must survive every prompt variant.
	b.WriteString("\nFor each fixture you set, channelValues must contain exactly the fixture's channel count of integer values between 0 and 255, in channel order.\n")
	b.WriteString("Respond with the JSON object only.\n")

	return b.String()
}

// writeFixtureList renders the bounded fixture inventory.
func writeFixtureList(b *strings.Builder, fixtures []lighting.FixtureInstance) {
	shown := fixtures
	if len(shown) > maxPromptFixtures {
		shown = shown[:maxPromptFixtures]
	}

	for _, f := range shown {
		roles := make([]string, 0, len(f.Channels))
		for _, ch := range f.Channels {
			roles = append(roles, string(ch.Type))
		}
		fmt.Fprintf(b, "- [%s] %s (%s, %d channels: %s)\n",
			f.ID, f.Name, f.Type, f.ChannelCount, strings.Join(roles, ", "))
	}

	if len(fixtures) > maxPromptFixtures {
		fmt.Fprintf(b, "- ... and %d more fixtures (list truncated)\n", len(fixtures)-maxPromptFixtures)
	}
}
