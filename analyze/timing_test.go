package analyze

import (
	"testing"

	"github.com/luxstudio/cuegen/lighting"
)

func TestOptimizeCueTiming(t *testing.T) {
	cl := &lighting.CueList{ID: "cl1", Cues: []lighting.Cue{
		{ID: "c1", CueNumber: 1, FadeInTime: 0.5},
	}}

	for _, strategy := range []string{
		StrategySmoothTransitions,
		StrategyDramaticTiming,
		StrategyTechnicalPrecision,
		StrategyEnergyConscious,
	} {
		t.Run(strategy, func(t *testing.T) {
			opt, err := OptimizeCueTiming(cl, strategy)
			if err != nil {
				t.Fatalf("OptimizeCueTiming(%s): %v", strategy, err)
			}
			if opt.Strategy != strategy || opt.CueListID != "cl1" {
				t.Errorf("report = %+v", opt)
			}
			if len(opt.Changes) == 0 || opt.Summary == "" {
				t.Error("report should carry changes and a summary")
			}
		})
	}

	// Report generation only; the input cue list is untouched.
	if cl.Cues[0].FadeInTime != 0.5 {
		t.Error("cue list was mutated")
	}
}

func TestOptimizeCueTimingUnknownStrategy(t *testing.T) {
	if _, err := OptimizeCueTiming(&lighting.CueList{ID: "cl1"}, "vibes_based"); err == nil {
		t.Fatal("expected validation error for unknown strategy")
	}
}
