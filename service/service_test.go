package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/luxstudio/cuegen/analyze"
	"github.com/luxstudio/cuegen/backend"
	"github.com/luxstudio/cuegen/backend/backendtest"
	"github.com/luxstudio/cuegen/bulk"
	"github.com/luxstudio/cuegen/generate"
	"github.com/luxstudio/cuegen/lighting"
	"github.com/luxstudio/cuegen/llm"
	"github.com/luxstudio/cuegen/llm/testutil"
)

func newTestServer(t *testing.T, responses ...string) (*Server, *backendtest.Fake) {
	t.Helper()

	fake := backendtest.NewFake()
	fake.AddProject(&lighting.Project{
		ID: "p1",
		Fixtures: []lighting.FixtureInstance{
			{
				ID:           "f1",
				Name:         "Wash",
				ChannelCount: 2,
				Channels: []lighting.Channel{
					{ID: "int", Offset: 0, Type: lighting.ChannelIntensity},
					{ID: "red", Offset: 1, Type: lighting.ChannelRed},
				},
			},
		},
		Scenes: []lighting.Scene{
			{ID: "s1", Name: "Open"},
			{ID: "s2", Name: "Close"},
		},
	})

	mock := &testutil.MockClient{}
	for _, content := range responses {
		mock.Responses = append(mock.Responses, &llm.Response{Content: content})
	}

	srv := NewServer(nil, Deps{
		Scenes:    generate.NewSceneGenerator(mock, nil),
		Sequences: generate.NewCueSequenceSynthesizer(mock, fake),
		Analyzer:  analyze.NewCueStructureAnalyzer(fake, nil),
		Bulk:      bulk.NewCoordinator(fake, nil),
		Backend:   fake,
	})
	return srv, fake
}

func TestHandleSceneGenerate(t *testing.T) {
	srv, _ := newTestServer(t, `{
		"name": "Look 1",
		"fixtureValues": [{"fixtureId": "f1", "channelValues": [255, 120]}],
		"reasoning": "bright open"
	}`)

	req, _ := json.Marshal(SceneGenerateRequest{ProjectID: "p1", Description: "bright open look"})
	result, err := srv.handleSceneGenerate(context.Background(), req)
	if err != nil {
		t.Fatalf("handleSceneGenerate: %v", err)
	}

	scene := result.(*lighting.GeneratedScene)
	if scene.Name != "Look 1" || len(scene.FixtureValues) != 1 {
		t.Errorf("scene = %+v", scene)
	}
}

func TestHandleSceneGenerateUnknownProject(t *testing.T) {
	srv, _ := newTestServer(t)

	req, _ := json.Marshal(SceneGenerateRequest{ProjectID: "nope", Description: "x"})
	if _, err := srv.handleSceneGenerate(context.Background(), req); err == nil {
		t.Fatal("expected not-found error")
	}
}

func TestHandleSequenceCreate(t *testing.T) {
	srv, fake := newTestServer(t, `{
		"name": "Act",
		"cues": [{"name": "open", "cueNumber": 1, "sceneId": "0", "fadeInTime": 2}],
		"reasoning": ""
	}`)

	req, _ := json.Marshal(generate.CreateSequenceRequest{
		ProjectID: "p1",
		SceneIDs:  []string{"s1", "s2"},
	})
	result, err := srv.handleSequenceCreate(context.Background(), req)
	if err != nil {
		t.Fatalf("handleSequenceCreate: %v", err)
	}

	created := result.(*generate.CreateSequenceResult)
	if len(created.Cues) != 1 || created.Cues[0].SceneID != "s1" {
		t.Errorf("result = %+v", created)
	}
	if _, err := fake.GetCueList(context.Background(), created.CueList.ID); err != nil {
		t.Errorf("cue list should be persisted: %v", err)
	}
}

func TestHandleCueAnalyzeAndOptimize(t *testing.T) {
	srv, fake := newTestServer(t)
	ctx := context.Background()

	cl, err := fake.CreateCueList(ctx, "Main", "", "p1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fake.CreateCue(ctx, backend.CreateCueRequest{
		CueListID: cl.ID, CueNumber: 1, SceneID: "s1", FadeInTime: 3,
	}); err != nil {
		t.Fatal(err)
	}

	req, _ := json.Marshal(CueAnalyzeRequest{ProjectID: "p1", CueListID: cl.ID})
	result, err := srv.handleCueAnalyze(ctx, req)
	if err != nil {
		t.Fatalf("handleCueAnalyze: %v", err)
	}
	if result.(*analyze.Report).CueCount != 1 {
		t.Errorf("report = %+v", result)
	}

	optReq, _ := json.Marshal(CueOptimizeRequest{CueListID: cl.ID, Strategy: analyze.StrategySmoothTransitions})
	optResult, err := srv.handleCueOptimize(ctx, optReq)
	if err != nil {
		t.Fatalf("handleCueOptimize: %v", err)
	}
	if optResult.(*analyze.TimingOptimization).Strategy != analyze.StrategySmoothTransitions {
		t.Errorf("optimization = %+v", optResult)
	}

	badReq, _ := json.Marshal(CueOptimizeRequest{CueListID: cl.ID, Strategy: "nope"})
	if _, err := srv.handleCueOptimize(ctx, badReq); err == nil {
		t.Error("expected unknown-strategy error")
	}
}

func TestHandleFixtureBulkCreate(t *testing.T) {
	srv, _ := newTestServer(t)

	req, _ := json.Marshal(FixtureBulkCreateRequest{
		ProjectID: "p1",
		Fixtures: []bulk.FixtureSpec{
			{Name: "Par", Type: "par", Channels: []lighting.Channel{{ID: "i", Type: lighting.ChannelIntensity}}},
		},
	})
	result, err := srv.handleFixtureBulkCreate(context.Background(), req)
	if err != nil {
		t.Fatalf("handleFixtureBulkCreate: %v", err)
	}
	if result.(*bulk.CreateResult).SuccessCount != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestDispatchEncodesErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	reply := srv.dispatch(context.Background(), SubjectCueBulkUpdate, srv.handleCueBulkUpdate, []byte(`{"cueIds": []}`))

	var errResp ErrorResponse
	if err := json.Unmarshal(reply, &errResp); err != nil {
		t.Fatalf("reply is not JSON: %v", err)
	}
	if errResp.Error == "" || errResp.RequestID == "" {
		t.Errorf("error envelope = %+v", errResp)
	}
}

func TestStartWithoutConnection(t *testing.T) {
	srv, _ := newTestServer(t)
	if err := srv.Start(); err == nil {
		t.Fatal("expected error without a NATS connection")
	}
}
