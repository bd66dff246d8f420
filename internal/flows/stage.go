// Package flows defines the pipeline stages: their document contracts and
// the functions that turn a stage's inputs into its outputs.
package flows

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/Lllllllleong/researchpipeline/internal/documents"
	"github.com/Lllllllleong/researchpipeline/internal/tasks"
)

// StageFunc produces a stage's output documents from its input documents.
type StageFunc func(ctx context.Context, projectName string, docs documents.Collection, opts Options) (documents.Collection, error)

type Stage struct {
	Name   string
	Config Config
	Run    StageFunc
}

const (
	SummaryStage         = "summary_flow"
	StandardizationStage = "standardization_flow"
	ReviewStage          = "review_flow"
	ReportStage          = "report_flow"
)

var (
	SummaryConfig = Config{
		Name:          SummaryStage,
		InputFamilies: []documents.Family{documents.UserInput},
		OutputFamily:  documents.InitialSummary,
	}
	StandardizationConfig = Config{
		Name:          StandardizationStage,
		InputFamilies: []documents.Family{documents.UserInput, documents.InitialSummary},
		OutputFamily:  documents.StandardizedFile,
	}
	ReviewConfig = Config{
		Name:          ReviewStage,
		InputFamilies: []documents.Family{documents.InitialSummary, documents.StandardizedFile},
		OutputFamily:  documents.ReviewFinding,
	}
	ReportConfig = Config{
		Name:          ReportStage,
		InputFamilies: []documents.Family{documents.InitialSummary, documents.StandardizedFile, documents.ReviewFinding},
		OutputFamily:  documents.FinalReport,
	}
)

// Stages returns the pipeline in execution order.
func Stages(r *tasks.Runner, logger *slog.Logger) []Stage {
	return []Stage{
		{Name: SummaryStage, Config: SummaryConfig, Run: Summary(r)},
		{Name: StandardizationStage, Config: StandardizationConfig, Run: Standardization(r, logger)},
		{Name: ReviewStage, Config: ReviewConfig, Run: Review(r)},
		{Name: ReportStage, Config: ReportConfig, Run: Report(r)},
	}
}

// Select returns the named stages in pipeline order. No names selects all.
func Select(stages []Stage, names ...string) ([]Stage, error) {
	if len(names) == 0 {
		return stages, nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var out []Stage
	for _, s := range stages {
		if want[s.Name] {
			out = append(out, s)
			delete(want, s.Name)
		}
	}
	if len(want) > 0 {
		missing := slices.Sorted(maps.Keys(want))
		return nil, fmt.Errorf("%w: %s", ErrUnknownStage, strings.Join(missing, ", "))
	}
	return out, nil
}

// Names lists stage names in order.
func Names(stages []Stage) []string {
	out := make([]string, len(stages))
	for i, s := range stages {
		out[i] = s.Name
	}
	return out
}
