package flows

import (
	"context"

	"github.com/Lllllllleong/researchpipeline/internal/documents"
	"github.com/Lllllllleong/researchpipeline/internal/retry"
	"github.com/Lllllllleong/researchpipeline/internal/tasks"
)

// Review generates the risks, opportunities and questions.
func Review(r *tasks.Runner) StageFunc {
	return func(ctx context.Context, projectName string, docs documents.Collection, opts Options) (documents.Collection, error) {
		inputs := ReviewConfig.GetInputDocuments(docs)

		summary, err := inputs.GetByName(documents.FileInitialSummary)
		if err != nil {
			return nil, retry.Permanent(err)
		}

		findings, err := r.GenerateFindings(ctx, inputs.FilterBy(documents.StandardizedFile), summary, opts.CoreModel, projectName)
		if err != nil {
			return nil, err
		}
		return ReviewConfig.CreateAndValidateOutput(findings...)
	}
}
