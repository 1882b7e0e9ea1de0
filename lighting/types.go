// Package lighting defines the stage-lighting domain model shared across
// cuegen: fixtures, channels, scenes, cues and cue lists.
package lighting

// ChannelType classifies the role of a fixture channel.
type ChannelType string

// Channel roles understood by the generation and validation pipeline.
const (
	ChannelIntensity ChannelType = "intensity"
	ChannelRed       ChannelType = "red"
	ChannelGreen     ChannelType = "green"
	ChannelBlue      ChannelType = "blue"
	ChannelWhite     ChannelType = "white"
	ChannelAmber     ChannelType = "amber"
	ChannelPan       ChannelType = "pan"
	ChannelTilt      ChannelType = "tilt"
	ChannelStrobe    ChannelType = "strobe"
	ChannelGobo      ChannelType = "gobo"
	ChannelFocus     ChannelType = "focus"
	ChannelZoom      ChannelType = "zoom"
	ChannelOther     ChannelType = "other"
)

// ParseChannelType normalizes a channel type string. Unknown values map to
// ChannelOther so imported fixture definitions never fail on exotic roles.
func ParseChannelType(s string) ChannelType {
	switch ChannelType(s) {
	case ChannelIntensity, ChannelRed, ChannelGreen, ChannelBlue, ChannelWhite,
		ChannelAmber, ChannelPan, ChannelTilt, ChannelStrobe, ChannelGobo,
		ChannelFocus, ChannelZoom:
		return ChannelType(s)
	default:
		return ChannelOther
	}
}

// Channel describes one controllable parameter of a fixture.
// Offset is the 0-based position of the channel's value within the fixture's
// value array, not a DMX wire address.
type Channel struct {
	ID           string      `json:"id"`
	Offset       int         `json:"offset"`
	Type         ChannelType `json:"type"`
	MinValue     int         `json:"minValue"`
	MaxValue     int         `json:"maxValue"`
	DefaultValue int         `json:"defaultValue"`
}

// FixtureDefinition is a reusable fixture profile (manufacturer model) from
// which instances are placed into a project.
type FixtureDefinition struct {
	ID           string    `json:"id"`
	Manufacturer string    `json:"manufacturer"`
	Model        string    `json:"model"`
	Type         string    `json:"type"`
	Channels     []Channel `json:"channels"`
}

// FixtureInstance is a physical lighting unit placed in a project with an
// assigned universe and start channel.
type FixtureInstance struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Channels     []Channel `json:"channels"`
	ChannelCount int       `json:"channelCount"`
	Universe     int       `json:"universe"`
	StartChannel int       `json:"startChannel"`
	Tags         []string  `json:"tags,omitempty"`
}

// ChannelByOffset returns the channel at the given value-array offset,
// or nil when the fixture defines no channel there.
func (f *FixtureInstance) ChannelByOffset(offset int) *Channel {
	for i := range f.Channels {
		if f.Channels[i].Offset == offset {
			return &f.Channels[i]
		}
	}
	return nil
}

// FixtureValue assigns a full value array to one fixture. A validated value
// always has len(ChannelValues) == the fixture's ChannelCount.
type FixtureValue struct {
	FixtureID     string `json:"fixtureId"`
	ChannelValues []int  `json:"channelValues"`
}

// Scene is a captured lighting state: fixture-to-channel-values assignments.
type Scene struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	FixtureValues []FixtureValue `json:"fixtureValues"`
}

// GeneratedScene is the transient output of scene generation. It becomes
// durable only when explicitly persisted through the backend.
type GeneratedScene struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	FixtureValues []FixtureValue `json:"fixtureValues"`
	Reasoning     string         `json:"reasoning,omitempty"`
}

// Cue is a named, numbered instruction to transition to a scene with defined
// fade timing. A nil FollowTime means the operator advances manually.
type Cue struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	CueNumber   float64  `json:"cueNumber"`
	SceneID     string   `json:"sceneId"`
	FadeInTime  float64  `json:"fadeInTime"`
	FadeOutTime float64  `json:"fadeOutTime"`
	FollowTime  *float64 `json:"followTime,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// CueList is an ordered collection of cues belonging to a project. Cues are
// display-ordered by CueNumber but numbering is not required to be contiguous.
type CueList struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Cues        []Cue  `json:"cues"`
}

// ProposedCue is a cue suggested by sequence synthesis. SceneRef carries
// whatever scene reference the generative service produced; it is resolved to
// a persisted scene id only during cue creation.
type ProposedCue struct {
	Name        string   `json:"name"`
	CueNumber   float64  `json:"cueNumber"`
	SceneRef    string   `json:"sceneId"`
	FadeInTime  float64  `json:"fadeInTime"`
	FadeOutTime float64  `json:"fadeOutTime"`
	FollowTime  *float64 `json:"followTime,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// CueSequence is the transient output of cue-sequence synthesis.
type CueSequence struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Cues        []ProposedCue `json:"cues"`
	Reasoning   string        `json:"reasoning,omitempty"`
}

// Project aggregates the entities owned by one production.
type Project struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Fixtures []FixtureInstance `json:"fixtures"`
	Scenes   []Scene           `json:"scenes"`
	CueLists []CueList         `json:"cueLists"`
}

// SceneByID returns the project scene with the given id, or nil.
func (p *Project) SceneByID(id string) *Scene {
	for i := range p.Scenes {
		if p.Scenes[i].ID == id {
			return &p.Scenes[i]
		}
	}
	return nil
}

// FixtureByID returns the project fixture with the given id, or nil.
func (p *Project) FixtureByID(id string) *FixtureInstance {
	for i := range p.Fixtures {
		if p.Fixtures[i].ID == id {
			return &p.Fixtures[i]
		}
	}
	return nil
}
