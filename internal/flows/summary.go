package flows

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/researchpipeline/internal/documents"
	"github.com/Lllllllleong/researchpipeline/internal/tasks"
)

// Summary writes the initial summary from all inputs, then the short and
// long descriptions from the summary.
func Summary(r *tasks.Runner) StageFunc {
	return func(ctx context.Context, projectName string, docs documents.Collection, opts Options) (documents.Collection, error) {
		inputs := SummaryConfig.GetInputDocuments(docs)

		summary, err := r.CreateInitialSummary(ctx, inputs, opts.CoreModel, projectName)
		if err != nil {
			return nil, err
		}

		var short, long documents.Document
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			short, err = r.CreateShortDescription(gctx, summary, opts.CoreModel)
			return err
		})
		g.Go(func() error {
			var err error
			long, err = r.CreateLongDescription(gctx, summary, opts.CoreModel)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		return SummaryConfig.CreateAndValidateOutput(summary, short, long)
	}
}
