// Package bulk coordinates batch mutations against the backend: atomic
// whole-batch updates, best-effort sequential fixture creation with
// automatic channel assignment, and confirmation-guarded deletes.
package bulk

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/luxstudio/cuegen/backend"
	"github.com/luxstudio/cuegen/lighting"
)

// universeSize is the DMX channel capacity of one universe.
const universeSize = 512

// Coordinator fans batch operations out to the backend collaborator.
type Coordinator struct {
	backend backend.Service
	logger  *slog.Logger
}

// NewCoordinator creates a coordinator.
func NewCoordinator(svc backend.Service, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{backend: svc, logger: logger}
}

// UpdateCues applies the same timing mutation to every listed cue in one
// backend call. The call is validated locally first: at least one cue id and
// at least one field, or nothing is sent.
func (c *Coordinator) UpdateCues(ctx context.Context, req backend.BulkCueUpdate) ([]lighting.Cue, error) {
	if len(req.CueIDs) == 0 {
		return nil, fmt.Errorf("bulk update cues: at least one cue ID is required")
	}
	if req.FadeInTime == nil && req.FadeOutTime == nil && req.FollowTime == nil {
		return nil, fmt.Errorf("bulk update cues: at least one field to update is required")
	}

	cues, err := c.backend.BulkUpdateCues(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bulk update cues: %w", err)
	}
	c.logger.Info("Cues bulk-updated", "count", len(cues))
	return cues, nil
}

// UpdateFixtures applies the same mutation to every listed fixture in one
// backend call, with the same fail-fast validation as UpdateCues.
func (c *Coordinator) UpdateFixtures(ctx context.Context, req backend.BulkFixtureUpdate) ([]lighting.FixtureInstance, error) {
	if len(req.FixtureIDs) == 0 {
		return nil, fmt.Errorf("bulk update fixtures: at least one fixture ID is required")
	}
	if req.Universe == nil && len(req.Tags) == 0 {
		return nil, fmt.Errorf("bulk update fixtures: at least one field to update is required")
	}

	fixtures, err := c.backend.BulkUpdateFixtures(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bulk update fixtures: %w", err)
	}
	c.logger.Info("Fixtures bulk-updated", "count", len(fixtures))
	return fixtures, nil
}

// FixtureSpec describes one fixture to create. Universe and StartChannel of
// zero request automatic assignment into the first free contiguous range.
type FixtureSpec struct {
	Name         string             `json:"name"`
	Type         string             `json:"type"`
	Channels     []lighting.Channel `json:"channels"`
	Universe     int                `json:"universe,omitempty"`
	StartChannel int                `json:"startChannel,omitempty"`
	Tags         []string           `json:"tags,omitempty"`
}

// FailedFixture records one spec that could not be created.
type FailedFixture struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ChannelUsage aggregates the addressing consumed by successful creations.
type ChannelUsage struct {
	TotalChannels int   `json:"totalChannels"`
	Universes     []int `json:"universes"`
}

// CreateResult reports a best-effort batch creation.
type CreateResult struct {
	SuccessCount int                        `json:"successCount"`
	FailureCount int                        `json:"failureCount"`
	Succeeded    []lighting.FixtureInstance `json:"succeeded"`
	Failed       []FailedFixture            `json:"failed"`
	ChannelUsage ChannelUsage               `json:"channelUsage"`
}

// occupancy tracks which DMX channels are taken, per universe.
type occupancy map[int][]bool

func (o occupancy) universe(u int) []bool {
	if o[u] == nil {
		o[u] = make([]bool, universeSize+1) // 1-based addressing
	}
	return o[u]
}

func (o occupancy) claim(u, start, width int) {
	taken := o.universe(u)
	for ch := start; ch < start+width && ch <= universeSize; ch++ {
		taken[ch] = true
	}
}

// firstFit returns the lowest start channel in universe u with width free
// consecutive channels, or 0 when the universe is full.
func (o occupancy) firstFit(u, width int) int {
	taken := o.universe(u)
	for start := 1; start+width-1 <= universeSize; start++ {
		fits := true
		for ch := start; ch < start+width; ch++ {
			if taken[ch] {
				fits = false
				break
			}
		}
		if fits {
			return start
		}
	}
	return 0
}

// CreateFixtures creates each spec sequentially, never concurrently:
// automatic channel assignment for one fixture depends on the occupancy
// established by the fixtures created before it in the same batch. A single
// item's failure is recorded and the batch continues. Only a missing project
// fails the whole call.
func (c *Coordinator) CreateFixtures(ctx context.Context, projectID string, specs []FixtureSpec) (*CreateResult, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("bulk create fixtures: at least one fixture spec is required")
	}

	project, err := c.backend.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("bulk create fixtures: %w", err)
	}

	taken := make(occupancy)
	for _, fx := range project.Fixtures {
		taken.claim(fx.Universe, fx.StartChannel, fx.ChannelCount)
	}

	result := &CreateResult{
		Succeeded: []lighting.FixtureInstance{},
		Failed:    []FailedFixture{},
	}
	universes := make(map[int]bool)

	for _, spec := range specs {
		fixture, err := c.createOne(ctx, projectID, spec, taken)
		if err != nil {
			result.FailureCount++
			result.Failed = append(result.Failed, FailedFixture{Name: spec.Name, Error: err.Error()})
			continue
		}

		taken.claim(fixture.Universe, fixture.StartChannel, len(spec.Channels))
		result.SuccessCount++
		result.Succeeded = append(result.Succeeded, *fixture)
		result.ChannelUsage.TotalChannels += len(spec.Channels)
		universes[fixture.Universe] = true
	}

	result.ChannelUsage.Universes = make([]int, 0, len(universes))
	for u := range universes {
		result.ChannelUsage.Universes = append(result.ChannelUsage.Universes, u)
	}
	sort.Ints(result.ChannelUsage.Universes)

	c.logger.Info("Fixtures bulk-created",
		"project_id", projectID,
		"succeeded", result.SuccessCount,
		"failed", result.FailureCount)
	return result, nil
}

func (c *Coordinator) createOne(ctx context.Context, projectID string, spec FixtureSpec, taken occupancy) (*lighting.FixtureInstance, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("fixture name is required")
	}
	if len(spec.Channels) == 0 {
		return nil, fmt.Errorf("fixture %q has no channels", spec.Name)
	}

	universe, start := spec.Universe, spec.StartChannel
	if start == 0 {
		if universe == 0 {
			universe = 1
		}
		start = taken.firstFit(universe, len(spec.Channels))
		if start == 0 {
			return nil, fmt.Errorf("no free range of %d channels in universe %d", len(spec.Channels), universe)
		}
	} else if universe == 0 {
		universe = 1
	}

	return c.backend.CreateFixtureInstance(ctx, backend.CreateFixtureRequest{
		ProjectID:    projectID,
		Name:         spec.Name,
		Type:         spec.Type,
		Channels:     spec.Channels,
		Universe:     universe,
		StartChannel: start,
		Tags:         spec.Tags,
	})
}

// DeleteCueList deletes a cue list only when the caller explicitly confirms.
// The guard fails before any backend call.
func (c *Coordinator) DeleteCueList(ctx context.Context, id string, confirmDelete bool) (bool, error) {
	if !confirmDelete {
		return false, fmt.Errorf("delete cue list: confirmDelete must be set")
	}
	ok, err := c.backend.DeleteCueList(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete cue list: %w", err)
	}
	return ok, nil
}

// DeleteFixture deletes a fixture instance only when the caller explicitly
// confirms. The guard fails before any backend call.
func (c *Coordinator) DeleteFixture(ctx context.Context, id string, confirmDelete bool) (bool, error) {
	if !confirmDelete {
		return false, fmt.Errorf("delete fixture: confirmDelete must be set")
	}
	ok, err := c.backend.DeleteFixtureInstance(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete fixture: %w", err)
	}
	return ok, nil
}
