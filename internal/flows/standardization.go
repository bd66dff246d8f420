package flows

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/researchpipeline/internal/documents"
	"github.com/Lllllllleong/researchpipeline/internal/retry"
	"github.com/Lllllllleong/researchpipeline/internal/tasks"
)

// Standardization extracts metadata for every input and converts it to
// Markdown. Inputs are processed concurrently; the output keeps input order
// with each .yaml followed by its .md.
func Standardization(r *tasks.Runner, logger *slog.Logger) StageFunc {
	return func(ctx context.Context, projectName string, docs documents.Collection, opts Options) (documents.Collection, error) {
		inputs := StandardizationConfig.GetInputDocuments(docs)

		summary, err := inputs.GetByName(documents.FileInitialSummary)
		if err != nil {
			return nil, retry.Permanent(err)
		}

		userInputs := inputs.FilterBy(documents.UserInput)
		seen := map[string]string{}
		for _, d := range userInputs {
			slug := documents.Slugify(d.Name())
			if prev, ok := seen[slug]; ok {
				logger.Warn("Inputs share a standardized name, the later one wins.",
					"slug", slug, "first", prev, "second", d.Name())
			}
			seen[slug] = d.Name()
		}

		results := make([][2]documents.Document, len(userInputs))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(opts.Concurrency, 1))
		for i, d := range userInputs {
			g.Go(func() error {
				meta, err := r.ExtractMetadata(gctx, d, summary, opts.SmallModel, projectName)
				if err != nil {
					return err
				}
				md, err := r.StandardizeContent(gctx, d, meta, opts.SmallModel, projectName)
				if err != nil {
					return err
				}
				results[i] = [2]documents.Document{meta, md}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		out := make([]documents.Document, 0, 2*len(results))
		for _, pair := range results {
			out = append(out, pair[0], pair[1])
		}
		return StandardizationConfig.CreateAndValidateOutput(out...)
	}
}
