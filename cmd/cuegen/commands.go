package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxstudio/cuegen/analyze"
	"github.com/luxstudio/cuegen/generate"
	"github.com/luxstudio/cuegen/prompt"
	"github.com/luxstudio/cuegen/script"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func generateCmd() *cobra.Command {
	var (
		projectID   string
		mood        string
		fixtureIDs  []string
		additive    bool
		description string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a lighting scene from a description",
		RunE: func(cmd *cobra.Command, args []string) error {
			if description == "" {
				return fmt.Errorf("--description is required")
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			project, err := a.backend.GetProject(cmd.Context(), projectID)
			if err != nil {
				return err
			}

			mode := prompt.SceneModeFull
			if additive {
				mode = prompt.SceneModeAdditive
			}

			scene, err := a.scenes.Generate(cmd.Context(), generate.GenerateSceneRequest{
				Description:        description,
				Mood:               mood,
				Fixtures:           project.Fixtures,
				SelectedFixtureIDs: fixtureIDs,
				Mode:               mode,
			})
			if err != nil {
				return err
			}
			return printJSON(scene)
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project ID")
	cmd.Flags().StringVar(&description, "description", "", "Scene description")
	cmd.Flags().StringVar(&mood, "mood", "", "Mood hint (romantic, tense, mysterious, ...)")
	cmd.Flags().StringSliceVar(&fixtureIDs, "fixtures", nil, "Restrict generation to these fixture IDs")
	cmd.Flags().BoolVar(&additive, "additive", false, "Modify only the selected fixtures")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func sequenceCmd() *cobra.Command {
	var (
		projectID   string
		name        string
		description string
		sceneIDs    []string
		scriptPath  string
		fadeIn      float64
		fadeOut     float64
		follows     bool
	)

	cmd := &cobra.Command{
		Use:   "sequence",
		Short: "Create a cue sequence from ordered scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			scriptContext := ""
			if scriptPath != "" {
				loaded, err := script.NewIngestor(script.WithLogger(a.logger)).Load(cmd.Context(), scriptPath)
				if err != nil {
					return err
				}
				scriptContext = loaded.Text
			}

			result, err := a.sequences.CreateCueSequence(cmd.Context(), generate.CreateSequenceRequest{
				ProjectID:     projectID,
				Name:          name,
				Description:   description,
				SceneIDs:      sceneIDs,
				ScriptContext: scriptContext,
				Preferences: prompt.TransitionPreferences{
					DefaultFadeIn:  fadeIn,
					DefaultFadeOut: fadeOut,
					UseFollowCues:  follows,
				},
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project ID")
	cmd.Flags().StringVar(&name, "name", "", "Cue list name (defaults to the generated one)")
	cmd.Flags().StringVar(&description, "description", "", "Cue list description")
	cmd.Flags().StringSliceVar(&sceneIDs, "scenes", nil, "Ordered scene IDs")
	cmd.Flags().StringVar(&scriptPath, "script", "", "Script file path or HTTPS URL for context")
	cmd.Flags().Float64Var(&fadeIn, "fade-in", 3, "Preferred default fade-in seconds")
	cmd.Flags().Float64Var(&fadeOut, "fade-out", 3, "Preferred default fade-out seconds")
	cmd.Flags().BoolVar(&follows, "follow-cues", false, "Allow auto-advancing follow cues")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("scenes")

	return cmd
}

func analyzeCmd() *cobra.Command {
	var (
		projectID       string
		cueListID       string
		recommendations bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a cue list's structure",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			report, err := a.analyzer.AnalyzeCueList(cmd.Context(), projectID, cueListID, recommendations)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project ID")
	cmd.Flags().StringVar(&cueListID, "cue-list", "", "Cue list ID")
	cmd.Flags().BoolVar(&recommendations, "recommendations", false, "Include advisory recommendations")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("cue-list")

	return cmd
}

func optimizeCmd() *cobra.Command {
	var (
		cueListID string
		strategy  string
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Report timing changes for a cue list under a strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			cueList, err := a.backend.GetCueList(cmd.Context(), cueListID)
			if err != nil {
				return err
			}

			opt, err := analyze.OptimizeCueTiming(cueList, strategy)
			if err != nil {
				return err
			}
			return printJSON(opt)
		},
	}

	cmd.Flags().StringVar(&cueListID, "cue-list", "", "Cue list ID")
	cmd.Flags().StringVar(&strategy, "strategy", analyze.StrategySmoothTransitions,
		"Timing strategy (smooth_transitions, dramatic_timing, technical_precision, energy_conscious)")
	_ = cmd.MarkFlagRequired("cue-list")

	return cmd
}
