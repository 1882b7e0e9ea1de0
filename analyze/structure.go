// Package analyze provides read-only diagnostics over persisted cue lists:
// numbering structure, fade-time patterns, scene usage and follow chains.
package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/luxstudio/cuegen/backend"
	"github.com/luxstudio/cuegen/lighting"
)

// NumberFormat classifies how cue numbers are written in a list.
type NumberFormat string

const (
	FormatInteger NumberFormat = "integer"
	FormatDecimal NumberFormat = "decimal"
	FormatMixed   NumberFormat = "mixed"
)

// NumberingAnalysis describes the cue-number structure of a list.
type NumberingAnalysis struct {
	Sequential bool         `json:"sequential"`
	Gaps       []int        `json:"gaps"`
	Duplicates []float64    `json:"duplicates"`
	Format     NumberFormat `json:"format"`
}

// FadeAnalysis summarizes fade timings across a list.
type FadeAnalysis struct {
	FadeInMin   float64 `json:"fadeInMin"`
	FadeInMax   float64 `json:"fadeInMax"`
	FadeOutMin  float64 `json:"fadeOutMin"`
	FadeOutMax  float64 `json:"fadeOutMax"`
	// CommonFadeTimes lists values occurring more than twice, pooled
	// across fade-in and fade-out, in ascending order.
	CommonFadeTimes []float64 `json:"commonFadeTimes"`
}

// SceneUsageAnalysis maps how cues reference the project's scenes.
type SceneUsageAnalysis struct {
	Counts    map[string]int `json:"counts"`
	Unused    []string       `json:"unused"`
	MostUsed  string         `json:"mostUsed"`
	MostCount int            `json:"mostCount"`
}

// FollowChain is a maximal run of two or more consecutive cues that
// auto-advance.
type FollowChain struct {
	StartCueNumber float64 `json:"startCueNumber"`
	Length         int     `json:"length"`
}

// FollowAnalysis describes auto-advance structure.
type FollowAnalysis struct {
	AutoAdvanceCount  int           `json:"autoAdvanceCount"`
	ManualCount       int           `json:"manualCount"`
	AverageFollowTime float64       `json:"averageFollowTime"`
	Chains            []FollowChain `json:"chains"`
}

// Report is the full structural analysis of one cue list.
type Report struct {
	CueListID       string             `json:"cueListId"`
	CueCount        int                `json:"cueCount"`
	Numbering       NumberingAnalysis  `json:"numbering"`
	Fades           FadeAnalysis       `json:"fades"`
	SceneUsage      SceneUsageAnalysis `json:"sceneUsage"`
	Follow          FollowAnalysis     `json:"follow"`
	Issues          []string           `json:"issues"`
	Recommendations []string           `json:"recommendations,omitempty"`
}

// CueStructureAnalyzer reads a cue list and its project's scenes through the
// backend collaborator and produces a Report. It never mutates anything.
type CueStructureAnalyzer struct {
	backend backend.Service
	logger  *slog.Logger
}

// NewCueStructureAnalyzer creates an analyzer.
func NewCueStructureAnalyzer(svc backend.Service, logger *slog.Logger) *CueStructureAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CueStructureAnalyzer{backend: svc, logger: logger}
}

// AnalyzeCueList fetches the cue list and project, then runs the pure
// analysis. Recommendations are static advisory text and included only when
// requested.
func (a *CueStructureAnalyzer) AnalyzeCueList(ctx context.Context, projectID, cueListID string, includeRecommendations bool) (*Report, error) {
	cueList, err := a.backend.GetCueList(ctx, cueListID)
	if err != nil {
		return nil, fmt.Errorf("analyze cue list: %w", err)
	}

	project, err := a.backend.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("analyze cue list: %w", err)
	}

	report := Analyze(cueList, project.Scenes, includeRecommendations)
	a.logger.Info("Cue list analyzed",
		"cue_list_id", cueListID,
		"cues", report.CueCount,
		"issues", len(report.Issues))
	return report, nil
}

// Analyze runs the structural analysis over in-memory data.
func Analyze(cueList *lighting.CueList, scenes []lighting.Scene, includeRecommendations bool) *Report {
	cues := append([]lighting.Cue(nil), cueList.Cues...)
	sort.Slice(cues, func(i, j int) bool { return cues[i].CueNumber < cues[j].CueNumber })

	report := &Report{
		CueListID:  cueList.ID,
		CueCount:   len(cues),
		Numbering:  analyzeNumbering(cues),
		Fades:      analyzeFades(cues),
		SceneUsage: analyzeSceneUsage(cues, scenes),
		Follow:     analyzeFollow(cues),
	}
	report.Issues = detectIssues(cues)
	if includeRecommendations {
		report.Recommendations = buildRecommendations(report)
	}
	return report
}

// analyzeNumbering expects cues sorted by cue number.
func analyzeNumbering(cues []lighting.Cue) NumberingAnalysis {
	analysis := NumberingAnalysis{
		Sequential: true,
		Gaps:       []int{},
		Duplicates: []float64{},
		Format:     FormatInteger,
	}
	if len(cues) == 0 {
		return analysis
	}

	seen := make(map[float64]int)
	hasInteger, hasDecimal := false, false
	for _, cue := range cues {
		seen[cue.CueNumber]++
		if cue.CueNumber == math.Trunc(cue.CueNumber) {
			hasInteger = true
		} else {
			hasDecimal = true
		}
	}

	switch {
	case hasInteger && hasDecimal:
		analysis.Format = FormatMixed
	case hasDecimal:
		analysis.Format = FormatDecimal
	}

	for number, count := range seen {
		if count > 1 {
			analysis.Duplicates = append(analysis.Duplicates, number)
		}
	}
	sort.Float64s(analysis.Duplicates)

	for i := 1; i < len(cues); i++ {
		prev, cur := cues[i-1].CueNumber, cues[i].CueNumber
		if cur != prev+1 {
			analysis.Sequential = false
		}
		// Whole numbers skipped between consecutive cues.
		for n := int(math.Floor(prev)) + 1; float64(n) < cur; n++ {
			if float64(n) > prev {
				analysis.Gaps = append(analysis.Gaps, n)
			}
		}
	}
	return analysis
}

func analyzeFades(cues []lighting.Cue) FadeAnalysis {
	analysis := FadeAnalysis{CommonFadeTimes: []float64{}}
	if len(cues) == 0 {
		return analysis
	}

	analysis.FadeInMin, analysis.FadeInMax = cues[0].FadeInTime, cues[0].FadeInTime
	analysis.FadeOutMin, analysis.FadeOutMax = cues[0].FadeOutTime, cues[0].FadeOutTime

	pooled := make(map[float64]int)
	for _, cue := range cues {
		analysis.FadeInMin = math.Min(analysis.FadeInMin, cue.FadeInTime)
		analysis.FadeInMax = math.Max(analysis.FadeInMax, cue.FadeInTime)
		analysis.FadeOutMin = math.Min(analysis.FadeOutMin, cue.FadeOutTime)
		analysis.FadeOutMax = math.Max(analysis.FadeOutMax, cue.FadeOutTime)
		pooled[cue.FadeInTime]++
		pooled[cue.FadeOutTime]++
	}

	for value, count := range pooled {
		if count > 2 {
			analysis.CommonFadeTimes = append(analysis.CommonFadeTimes, value)
		}
	}
	sort.Float64s(analysis.CommonFadeTimes)
	return analysis
}

func analyzeSceneUsage(cues []lighting.Cue, scenes []lighting.Scene) SceneUsageAnalysis {
	analysis := SceneUsageAnalysis{
		Counts: make(map[string]int),
		Unused: []string{},
	}

	for _, cue := range cues {
		if cue.SceneID != "" {
			analysis.Counts[cue.SceneID]++
		}
	}

	for _, scene := range scenes {
		if analysis.Counts[scene.ID] == 0 {
			analysis.Unused = append(analysis.Unused, scene.ID)
		}
	}
	sort.Strings(analysis.Unused)

	// Deterministic most-used tie-break: lowest id wins.
	ids := make([]string, 0, len(analysis.Counts))
	for id := range analysis.Counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if analysis.Counts[id] > analysis.MostCount {
			analysis.MostUsed = id
			analysis.MostCount = analysis.Counts[id]
		}
	}
	return analysis
}

// analyzeFollow expects cues sorted by cue number.
func analyzeFollow(cues []lighting.Cue) FollowAnalysis {
	analysis := FollowAnalysis{Chains: []FollowChain{}}

	var followSum float64
	chainStart := -1
	flush := func(end int) {
		if chainStart >= 0 && end-chainStart >= 2 {
			analysis.Chains = append(analysis.Chains, FollowChain{
				StartCueNumber: cues[chainStart].CueNumber,
				Length:         end - chainStart,
			})
		}
		chainStart = -1
	}

	for i, cue := range cues {
		if cue.FollowTime != nil {
			analysis.AutoAdvanceCount++
			followSum += *cue.FollowTime
			if chainStart < 0 {
				chainStart = i
			}
		} else {
			analysis.ManualCount++
			flush(i)
		}
	}
	flush(len(cues))

	if analysis.AutoAdvanceCount > 0 {
		analysis.AverageFollowTime = followSum / float64(analysis.AutoAdvanceCount)
	}
	return analysis
}

func detectIssues(cues []lighting.Cue) []string {
	issues := []string{}
	for _, cue := range cues {
		if cue.FadeInTime < 0.5 {
			issues = append(issues, fmt.Sprintf("Cue %g fade-in of %.2fs may be too fast", cue.CueNumber, cue.FadeInTime))
		}
	}

	if len(cues) > 1 {
		span := cues[len(cues)-1].CueNumber - cues[0].CueNumber
		if span > 2*float64(len(cues)) {
			issues = append(issues, fmt.Sprintf("Cue number span of %g across %d cues leaves excessive gaps", span, len(cues)))
		}
	}
	return issues
}

func buildRecommendations(report *Report) []string {
	recs := []string{}
	if !report.Numbering.Sequential {
		recs = append(recs, "Numbering: renumber cues into an unbroken sequence, or adopt point cues (e.g. 10.5) for inserts")
	}
	if len(report.Numbering.Duplicates) > 0 {
		recs = append(recs, "Numbering: resolve duplicate cue numbers before tech rehearsal")
	}
	if report.Fades.FadeInMax-report.Fades.FadeInMin > 10 {
		recs = append(recs, "Timing: the fade-in spread is wide; standardize a small set of house fade times")
	}
	if len(report.SceneUsage.Unused) > 0 {
		recs = append(recs, fmt.Sprintf("Structure: %d scene(s) are never referenced by a cue; archive or cue them", len(report.SceneUsage.Unused)))
	}
	if report.Follow.AutoAdvanceCount > report.Follow.ManualCount {
		recs = append(recs, "Safety: most cues auto-advance; confirm the operator has a hold point before each act")
	}
	if len(recs) == 0 {
		recs = append(recs, "No structural changes recommended")
	}
	return recs
}
