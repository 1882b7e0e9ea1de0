package bulk

import (
	"context"
	"errors"
	"testing"

	"github.com/luxstudio/cuegen/backend"
	"github.com/luxstudio/cuegen/backend/backendtest"
	"github.com/luxstudio/cuegen/lighting"
)

func floatp(v float64) *float64 { return &v }
func intp(v int) *int           { return &v }

func rgbChannels() []lighting.Channel {
	return []lighting.Channel{
		{ID: "r", Offset: 0, Type: lighting.ChannelRed},
		{ID: "g", Offset: 1, Type: lighting.ChannelGreen},
		{ID: "b", Offset: 2, Type: lighting.ChannelBlue},
	}
}

func seedProjectWithCues(t *testing.T, fake *backendtest.Fake) (string, []string) {
	t.Helper()
	project := &lighting.Project{ID: "p1", Name: "Show"}
	fake.AddProject(project)

	cl, err := fake.CreateCueList(context.Background(), "Main", "", "p1")
	if err != nil {
		t.Fatalf("CreateCueList: %v", err)
	}

	var ids []string
	for i := 1; i <= 3; i++ {
		cue, err := fake.CreateCue(context.Background(), backend.CreateCueRequest{
			CueListID: cl.ID, Name: "cue", CueNumber: float64(i), FadeInTime: 1,
		})
		if err != nil {
			t.Fatalf("CreateCue: %v", err)
		}
		ids = append(ids, cue.ID)
	}
	return cl.ID, ids
}

func TestUpdateCues(t *testing.T) {
	fake := backendtest.NewFake()
	_, ids := seedProjectWithCues(t, fake)
	coord := NewCoordinator(fake, nil)

	cues, err := coord.UpdateCues(context.Background(), backend.BulkCueUpdate{
		CueIDs:     ids,
		FadeInTime: floatp(4.5),
	})
	if err != nil {
		t.Fatalf("UpdateCues: %v", err)
	}
	if len(cues) != 3 {
		t.Fatalf("updated = %d, want 3", len(cues))
	}
	for _, cue := range cues {
		if cue.FadeInTime != 4.5 {
			t.Errorf("fade-in = %v, want 4.5", cue.FadeInTime)
		}
	}
}

func TestUpdateCuesValidation(t *testing.T) {
	coord := NewCoordinator(backendtest.NewFake(), nil)

	if _, err := coord.UpdateCues(context.Background(), backend.BulkCueUpdate{FadeInTime: floatp(1)}); err == nil {
		t.Error("expected error for empty cue id list")
	}
	if _, err := coord.UpdateCues(context.Background(), backend.BulkCueUpdate{CueIDs: []string{"c1"}}); err == nil {
		t.Error("expected error when no fields are supplied")
	}
}

func TestUpdateFixturesValidation(t *testing.T) {
	coord := NewCoordinator(backendtest.NewFake(), nil)

	if _, err := coord.UpdateFixtures(context.Background(), backend.BulkFixtureUpdate{Universe: intp(2)}); err == nil {
		t.Error("expected error for empty fixture id list")
	}
	if _, err := coord.UpdateFixtures(context.Background(), backend.BulkFixtureUpdate{FixtureIDs: []string{"f1"}}); err == nil {
		t.Error("expected error when no fields are supplied")
	}
}

func TestCreateFixturesPartialFailure(t *testing.T) {
	fake := backendtest.NewFake()
	fake.AddProject(&lighting.Project{ID: "p1"})
	fake.FailCreateFixture = func(name string) error {
		if name == "Broken Par" {
			return errors.New("dmx patch conflict")
		}
		return nil
	}
	coord := NewCoordinator(fake, nil)

	result, err := coord.CreateFixtures(context.Background(), "p1", []FixtureSpec{
		{Name: "Good Par", Type: "par", Channels: rgbChannels()},
		{Name: "Broken Par", Type: "par", Channels: rgbChannels()},
	})
	if err != nil {
		t.Fatalf("item failures must not fail the batch: %v", err)
	}

	if result.SuccessCount != 1 || result.FailureCount != 1 {
		t.Fatalf("counts = %d/%d, want 1/1", result.SuccessCount, result.FailureCount)
	}
	if result.Failed[0].Name != "Broken Par" || result.Failed[0].Error != "dmx patch conflict" {
		t.Errorf("failed item = %+v", result.Failed[0])
	}
	if result.ChannelUsage.TotalChannels != 3 {
		t.Errorf("usage counts successes only, got %d channels", result.ChannelUsage.TotalChannels)
	}
	if len(result.ChannelUsage.Universes) != 1 || result.ChannelUsage.Universes[0] != 1 {
		t.Errorf("universes = %v, want [1]", result.ChannelUsage.Universes)
	}
}

func TestCreateFixturesSequentialChannelAssignment(t *testing.T) {
	fake := backendtest.NewFake()
	fake.AddProject(&lighting.Project{
		ID: "p1",
		Fixtures: []lighting.FixtureInstance{
			{ID: "existing", Name: "House", ChannelCount: 4, Universe: 1, StartChannel: 1},
		},
	})
	coord := NewCoordinator(fake, nil)

	result, err := coord.CreateFixtures(context.Background(), "p1", []FixtureSpec{
		{Name: "Par A", Type: "par", Channels: rgbChannels()},
		{Name: "Par B", Type: "par", Channels: rgbChannels()},
		{Name: "Pinned", Type: "par", Channels: rgbChannels(), Universe: 2, StartChannel: 100},
	})
	if err != nil {
		t.Fatalf("CreateFixtures: %v", err)
	}
	if result.SuccessCount != 3 {
		t.Fatalf("result = %+v", result)
	}

	// Existing fixture holds 1-4, so the batch packs in behind it, each
	// later auto-assignment seeing the earlier one's claim.
	if got := result.Succeeded[0].StartChannel; got != 5 {
		t.Errorf("Par A start = %d, want 5", got)
	}
	if got := result.Succeeded[1].StartChannel; got != 8 {
		t.Errorf("Par B start = %d, want 8", got)
	}
	if fx := result.Succeeded[2]; fx.Universe != 2 || fx.StartChannel != 100 {
		t.Errorf("pinned fixture = universe %d start %d", fx.Universe, fx.StartChannel)
	}
	if len(result.ChannelUsage.Universes) != 2 {
		t.Errorf("universes = %v, want two", result.ChannelUsage.Universes)
	}
}

func TestCreateFixturesMissingProject(t *testing.T) {
	coord := NewCoordinator(backendtest.NewFake(), nil)

	_, err := coord.CreateFixtures(context.Background(), "nope", []FixtureSpec{
		{Name: "Par", Channels: rgbChannels()},
	})
	if !errors.Is(err, backend.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteGuards(t *testing.T) {
	fake := backendtest.NewFake()
	cueListID, _ := seedProjectWithCues(t, fake)
	coord := NewCoordinator(fake, nil)
	ctx := context.Background()

	if _, err := coord.DeleteCueList(ctx, cueListID, false); err == nil {
		t.Error("unconfirmed cue list delete must fail")
	}
	if _, err := fake.GetCueList(ctx, cueListID); err != nil {
		t.Error("cue list should survive an unconfirmed delete")
	}

	ok, err := coord.DeleteCueList(ctx, cueListID, true)
	if err != nil || !ok {
		t.Fatalf("confirmed delete = %v, %v", ok, err)
	}

	if _, err := coord.DeleteFixture(ctx, "f1", false); err == nil {
		t.Error("unconfirmed fixture delete must fail")
	}
}
