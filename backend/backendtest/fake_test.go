package backendtest

import (
	"context"
	"errors"
	"testing"

	"github.com/luxstudio/cuegen/backend"
	"github.com/luxstudio/cuegen/lighting"
)

func seedProject(f *Fake) *lighting.Project {
	p := &lighting.Project{
		ID:   "p1",
		Name: "Spring Revue",
		Fixtures: []lighting.FixtureInstance{
			{ID: "f1", Name: "FOH Left", Type: "led-par", Tags: []string{"foh"}},
			{ID: "f2", Name: "FOH Right", Type: "led-par", Tags: []string{"foh"}},
			{ID: "f3", Name: "Cyc Wash", Type: "cyc"},
		},
		Scenes: []lighting.Scene{
			{ID: "s1", Name: "Preset"},
			{ID: "s2", Name: "Blackout"},
		},
	}
	f.AddProject(p)
	return p
}

func TestFakeFixtureFilterGlob(t *testing.T) {
	f := NewFake()
	seedProject(f)
	ctx := context.Background()

	page, err := f.GetFixtureInstances(ctx, backend.FixtureFilter{NamePattern: "FOH *"}, 1, 50)
	if err != nil {
		t.Fatalf("GetFixtureInstances: %v", err)
	}
	if len(page.Fixtures) != 2 {
		t.Errorf("glob matched %d fixtures, want 2", len(page.Fixtures))
	}

	page, err = f.GetFixtureInstances(ctx, backend.FixtureFilter{Tag: "foh"}, 1, 1)
	if err != nil {
		t.Fatalf("GetFixtureInstances: %v", err)
	}
	if page.Pagination.Total != 2 || len(page.Fixtures) != 1 || !page.Pagination.HasMore {
		t.Errorf("pagination = %+v with %d fixtures", page.Pagination, len(page.Fixtures))
	}
}

func TestFakeCueLifecycle(t *testing.T) {
	f := NewFake()
	seedProject(f)
	ctx := context.Background()

	cl, err := f.CreateCueList(ctx, "Act 1", "", "p1")
	if err != nil {
		t.Fatalf("CreateCueList: %v", err)
	}

	cue, err := f.CreateCue(ctx, backend.CreateCueRequest{
		CueListID: cl.ID, Name: "Preset", CueNumber: 1, SceneID: "s1", FadeInTime: 3,
	})
	if err != nil {
		t.Fatalf("CreateCue: %v", err)
	}

	follow := 4.0
	if _, err := f.UpdateCue(ctx, cue.ID, backend.UpdateCueRequest{FollowTime: &follow}); err != nil {
		t.Fatalf("UpdateCue: %v", err)
	}

	got, err := f.GetCueList(ctx, cl.ID)
	if err != nil {
		t.Fatalf("GetCueList: %v", err)
	}
	if len(got.Cues) != 1 || got.Cues[0].FollowTime == nil || *got.Cues[0].FollowTime != 4 {
		t.Errorf("cue list after update = %+v", got.Cues)
	}

	if _, err := f.UpdateCue(ctx, cue.ID, backend.UpdateCueRequest{ClearFollow: true}); err != nil {
		t.Fatalf("UpdateCue clear follow: %v", err)
	}
	got, _ = f.GetCueList(ctx, cl.ID)
	if got.Cues[0].FollowTime != nil {
		t.Error("ClearFollow should remove the follow time")
	}
}

func TestFakePlaybackSession(t *testing.T) {
	f := NewFake()
	seedProject(f)
	ctx := context.Background()

	cl, _ := f.CreateCueList(ctx, "Act 1", "", "p1")
	_, _ = f.CreateCue(ctx, backend.CreateCueRequest{CueListID: cl.ID, Name: "one", CueNumber: 1, SceneID: "s1"})
	_, _ = f.CreateCue(ctx, backend.CreateCueRequest{CueListID: cl.ID, Name: "two", CueNumber: 2, SceneID: "s2"})

	session, err := f.StartCueList(ctx, cl.ID, 0)
	if err != nil {
		t.Fatalf("StartCueList: %v", err)
	}

	st, err := f.NextCue(ctx, *session)
	if err != nil {
		t.Fatalf("NextCue: %v", err)
	}
	if st.CurrentIndex != 1 || st.CurrentCue == nil || st.CurrentCue.Name != "two" {
		t.Errorf("status after next = %+v", st)
	}

	scene, err := f.GetCurrentActiveScene(ctx, *session)
	if err != nil {
		t.Fatalf("GetCurrentActiveScene: %v", err)
	}
	if scene.ID != "s2" {
		t.Errorf("active scene = %s, want s2", scene.ID)
	}

	if err := f.StopCueList(ctx, *session); err != nil {
		t.Fatalf("StopCueList: %v", err)
	}
	st, _ = f.GetPlaybackStatus(ctx, *session)
	if st.Running {
		t.Error("session should be stopped")
	}
}

func TestFakeNotFound(t *testing.T) {
	f := NewFake()
	ctx := context.Background()

	if _, err := f.GetProject(ctx, "nope"); !errors.Is(err, backend.ErrNotFound) {
		t.Errorf("GetProject error = %v", err)
	}
	if _, err := f.GetCueList(ctx, "nope"); !errors.Is(err, backend.ErrNotFound) {
		t.Errorf("GetCueList error = %v", err)
	}
}
