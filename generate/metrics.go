package generate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics. Parse outcomes are the leading indicator of completion
// quality drift, so they are labeled by kind.
var (
	scenesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cuegen",
		Name:      "scenes_generated_total",
		Help:      "Scenes successfully generated.",
	})

	sequencesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cuegen",
		Name:      "sequences_generated_total",
		Help:      "Cue sequences successfully synthesized.",
	})

	generationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cuegen",
		Name:      "generation_failures_total",
		Help:      "Generation attempts that failed before producing a result.",
	}, []string{"operation"})

	parseOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cuegen",
		Name:      "parse_outcomes_total",
		Help:      "Structured-extraction outcomes by kind (direct, extracted, fallback).",
	}, []string{"operation", "kind"})
)

func recordParse(operation string, kind ParseKind) {
	parseOutcomes.WithLabelValues(operation, string(kind)).Inc()
}
