package analyze

import (
	"fmt"

	"github.com/luxstudio/cuegen/lighting"
)

// Timing strategies accepted by OptimizeCueTiming.
const (
	StrategySmoothTransitions  = "smooth_transitions"
	StrategyDramaticTiming     = "dramatic_timing"
	StrategyTechnicalPrecision = "technical_precision"
	StrategyEnergyConscious    = "energy_conscious"
)

// TimingOptimization is an advisory report. Nothing is written back to the
// cue list; applying the changes is the caller's decision.
type TimingOptimization struct {
	CueListID string   `json:"cueListId"`
	Strategy  string   `json:"strategy"`
	Changes   []string `json:"changes"`
	Summary   string   `json:"summary"`
}

type strategyPlan struct {
	changes []string
	summary string
}

var strategyPlans = map[string]strategyPlan{
	StrategySmoothTransitions: {
		changes: []string{
			"Lengthen fade-ins under 3 seconds to 3 seconds",
			"Match each cue's fade-out to the next cue's fade-in",
			"Replace snap cues with 1-second fades unless marked as effects",
		},
		summary: "Transitions blend into each other; the audience never sees a hard edge.",
	},
	StrategyDramaticTiming: {
		changes: []string{
			"Shorten fade-ins on climactic cues to under 1 second",
			"Stretch fade-outs after emotional peaks to 8 seconds or more",
			"Insert a held dark moment before each act's final cue",
		},
		summary: "Timing contrast is maximized so key moments land harder.",
	},
	StrategyTechnicalPrecision: {
		changes: []string{
			"Round every fade time to the nearest half second",
			"Convert timing-critical manual cues to follow cues with explicit delays",
			"Renumber cues into whole numbers with point cues reserved for inserts",
		},
		summary: "Every transition is deterministic and reproducible across operators.",
	},
	StrategyEnergyConscious: {
		changes: []string{
			"Extend fades on high-intensity looks to reduce peak draw",
			"Stagger large fixture groups so they never snap on together",
			"Lower standing-look intensities by 10% where no focus is lost",
		},
		summary: "Peak electrical load is flattened without visibly changing the design.",
	},
}

// OptimizeCueTiming builds a timing-change report for one of the named
// strategies. An unknown strategy is a validation error.
func OptimizeCueTiming(cueList *lighting.CueList, strategy string) (*TimingOptimization, error) {
	plan, ok := strategyPlans[strategy]
	if !ok {
		return nil, fmt.Errorf("optimize cue timing: unknown strategy %q (want %s, %s, %s or %s)",
			strategy,
			StrategySmoothTransitions, StrategyDramaticTiming,
			StrategyTechnicalPrecision, StrategyEnergyConscious)
	}

	return &TimingOptimization{
		CueListID: cueList.ID,
		Strategy:  strategy,
		Changes:   append([]string(nil), plan.changes...),
		Summary:   plan.summary,
	}, nil
}
