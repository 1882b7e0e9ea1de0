package generate

import (
	"encoding/json"

	"github.com/luxstudio/cuegen/lighting"
)

// Default channel value bounds applied when a fixture channel carries no
// explicit range.
const (
	defaultMinValue = 0
	defaultMaxValue = 255
)

// keyedChannelValue is the legacy fixture-value element form: a value
// addressed by channel id instead of array position.
type keyedChannelValue struct {
	ChannelID string          `json:"channelId"`
	Value     json.RawMessage `json:"value"`
}

// NormalizeFixtureValues turns raw model-produced fixture values into
// length-correct, range-correct values against the authoritative fixture
// set. Entries referencing unknown fixtures are discarded; everything else
// is repaired rather than rejected: wrong-length arrays are truncated or
// zero-padded, non-numeric values become zero, and out-of-range values are
// clamped to the channel's bounds. The result is de-duplicated by fixture id
// (first occurrence wins).
func NormalizeFixtureValues(raw []RawFixtureValue, fixtures []lighting.FixtureInstance) []lighting.FixtureValue {
	byID := make(map[string]*lighting.FixtureInstance, len(fixtures))
	for i := range fixtures {
		byID[fixtures[i].ID] = &fixtures[i]
	}

	seen := make(map[string]bool, len(raw))
	result := make([]lighting.FixtureValue, 0, len(raw))

	for _, entry := range raw {
		fixture, ok := byID[entry.FixtureID]
		if entry.FixtureID == "" || !ok || seen[entry.FixtureID] {
			continue
		}
		seen[entry.FixtureID] = true

		values := decodeChannelValues(entry.ChannelValues, fixture)
		result = append(result, lighting.FixtureValue{
			FixtureID:     entry.FixtureID,
			ChannelValues: clampToFixture(values, fixture),
		})
	}

	return result
}

// decodeChannelValues accepts either a flat array of numbers or the legacy
// keyed form, producing a position-indexed value slice. Keyed entries whose
// channel id does not resolve are dropped.
func decodeChannelValues(raw json.RawMessage, fixture *lighting.FixtureInstance) []int {
	if len(raw) == 0 {
		return nil
	}

	// Legacy keyed form first: a flat array of numbers fails this decode.
	var keyed []keyedChannelValue
	if err := json.Unmarshal(raw, &keyed); err == nil && len(keyed) > 0 && keyed[0].ChannelID != "" {
		values := make([]int, fixture.ChannelCount)
		for _, kv := range keyed {
			offset, ok := offsetForChannelID(fixture, kv.ChannelID)
			if !ok || offset < 0 || offset >= len(values) {
				continue
			}
			var v any
			_ = json.Unmarshal(kv.Value, &v)
			values[offset] = coerceNumber(v)
		}
		return values
	}

	var flat []any
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil
	}
	values := make([]int, 0, len(flat))
	for _, v := range flat {
		values = append(values, coerceNumber(v))
	}
	return values
}

func offsetForChannelID(fixture *lighting.FixtureInstance, channelID string) (int, bool) {
	for _, ch := range fixture.Channels {
		if ch.ID == channelID {
			return ch.Offset, true
		}
	}
	return 0, false
}

// clampToFixture forces values to the fixture's channel count and per-channel
// bounds. Missing positions are zero-padded; excess positions are dropped.
func clampToFixture(values []int, fixture *lighting.FixtureInstance) []int {
	out := make([]int, fixture.ChannelCount)
	for i := range out {
		v := 0
		if i < len(values) {
			v = values[i]
		}

		minV, maxV := defaultMinValue, defaultMaxValue
		if ch := fixture.ChannelByOffset(i); ch != nil && ch.MaxValue > ch.MinValue {
			minV, maxV = ch.MinValue, ch.MaxValue
		}
		if v < minV {
			v = minV
		}
		if v > maxV {
			v = maxV
		}
		out[i] = v
	}
	return out
}

// OptimizeSceneValues re-clamps already-validated values against the current
// fixture definitions, independent of the generation path. Used when fixture
// definitions may have changed since the scene was generated. Values for
// fixtures that no longer exist are dropped.
func OptimizeSceneValues(values []lighting.FixtureValue, fixtures []lighting.FixtureInstance) []lighting.FixtureValue {
	byID := make(map[string]*lighting.FixtureInstance, len(fixtures))
	for i := range fixtures {
		byID[fixtures[i].ID] = &fixtures[i]
	}

	result := make([]lighting.FixtureValue, 0, len(values))
	for _, fv := range values {
		fixture, ok := byID[fv.FixtureID]
		if !ok {
			continue
		}
		result = append(result, lighting.FixtureValue{
			FixtureID:     fv.FixtureID,
			ChannelValues: clampToFixture(fv.ChannelValues, fixture),
		})
	}
	return result
}
