package main

import (
	"fmt"
	"log/slog"

	"github.com/luxstudio/cuegen/analyze"
	"github.com/luxstudio/cuegen/backend"
	"github.com/luxstudio/cuegen/bulk"
	"github.com/luxstudio/cuegen/config"
	"github.com/luxstudio/cuegen/generate"
	"github.com/luxstudio/cuegen/llm"
	"github.com/luxstudio/cuegen/recommend"
)

// app bundles the wired pipeline for one invocation.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	backend   backend.Service
	scenes    *generate.SceneGenerator
	sequences *generate.CueSequenceSynthesizer
	analyzer  *analyze.CueStructureAnalyzer
	bulk      *bulk.Coordinator
}

// newApp loads configuration and constructs every collaborator the commands
// dispatch to.
func newApp() (*app, error) {
	logger := slog.Default()

	cfg, err := config.NewLoader(logger).Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	completionClient, err := llm.NewClient(llm.Config{
		Provider: cfg.Model.Provider,
		Model:    cfg.Model.Model,
		Endpoint: cfg.Model.Endpoint,
		Timeout:  cfg.Model.Timeout,
	}, llm.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create completion client: %w", err)
	}

	backendOpts := []backend.ClientOption{backend.WithLogger(logger)}
	if cfg.Backend.APIKey != "" {
		backendOpts = append(backendOpts, backend.WithAPIKey(cfg.Backend.APIKey))
	}
	backendClient, err := backend.NewClient(cfg.Backend.URL, backendOpts...)
	if err != nil {
		return nil, fmt.Errorf("create backend client: %w", err)
	}

	advisor := &recommend.StaticAdvisor{}

	return &app{
		cfg:     cfg,
		logger:  logger,
		backend: backendClient,
		scenes: generate.NewSceneGenerator(completionClient, advisor,
			generate.WithSceneLogger(logger),
			generate.WithSceneTemperature(cfg.Model.Temperature)),
		sequences: generate.NewCueSequenceSynthesizer(completionClient, backendClient,
			generate.WithSynthesizerLogger(logger)),
		analyzer: analyze.NewCueStructureAnalyzer(backendClient, logger),
		bulk:     bulk.NewCoordinator(backendClient, logger),
	}, nil
}
