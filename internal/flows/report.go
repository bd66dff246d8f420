package flows

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/researchpipeline/internal/documents"
	"github.com/Lllllllleong/researchpipeline/internal/retry"
	"github.com/Lllllllleong/researchpipeline/internal/tasks"
)

// Report writes the full and short reports concurrently.
func Report(r *tasks.Runner) StageFunc {
	return func(ctx context.Context, projectName string, docs documents.Collection, opts Options) (documents.Collection, error) {
		inputs := ReportConfig.GetInputDocuments(docs)

		in := tasks.ReportInputs{Standardized: inputs.FilterBy(documents.StandardizedFile)}
		for name, dst := range map[string]*documents.Document{
			documents.FileInitialSummary: &in.Summary,
			documents.FileRisks:          &in.Risks,
			documents.FileOpportunities:  &in.Opportunities,
			documents.FileQuestions:      &in.Questions,
		} {
			d, err := inputs.GetByName(name)
			if err != nil {
				return nil, retry.Permanent(err)
			}
			*dst = d
		}

		var full, short documents.Document
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			full, err = r.WriteFullReport(gctx, in, opts.CoreModel, projectName)
			return err
		})
		g.Go(func() error {
			var err error
			short, err = r.WriteShortReport(gctx, in, opts.CoreModel, projectName)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		return ReportConfig.CreateAndValidateOutput(full, short)
	}
}
