package tasks

import (
	"context"

	"github.com/Lllllllleong/researchpipeline/internal/documents"
	"github.com/Lllllllleong/researchpipeline/internal/llm"
	"github.com/Lllllllleong/researchpipeline/internal/models"
	"github.com/Lllllllleong/researchpipeline/internal/prompts"
	"github.com/Lllllllleong/researchpipeline/internal/retry"
)

// CreateInitialSummary describes the project and every input. All inputs
// form the cacheable context.
func (r *Runner) CreateInitialSummary(ctx context.Context, inputs documents.Collection, model, projectName string) (documents.Document, error) {
	req, err := r.request(prompts.CreateInitialSummary, model, prompts.Params{ProjectName: projectName}, llm.Docs(inputs))
	if err != nil {
		return documents.Document{}, err
	}

	summary, err := structured[models.InitialSummary](ctx, r, req, initialSummarySchema)
	if err != nil {
		return documents.Document{}, err
	}

	d, err := documents.NewJSON(documents.InitialSummary, documents.FileInitialSummary, summary)
	if err != nil {
		return documents.Document{}, retry.Permanent(err)
	}
	return d, nil
}

// CreateShortDescription writes the 50-100 word description from the summary.
func (r *Runner) CreateShortDescription(ctx context.Context, summary documents.Document, model string) (documents.Document, error) {
	return r.describe(ctx, prompts.CreateShortDescription, documents.FileShortDescription, summary, model)
}

// CreateLongDescription writes the 500-1000 word description from the summary.
func (r *Runner) CreateLongDescription(ctx context.Context, summary documents.Document, model string) (documents.Document, error) {
	return r.describe(ctx, prompts.CreateLongDescription, documents.FileLongDescription, summary, model)
}

func (r *Runner) describe(ctx context.Context, task, file string, summary documents.Document, model string) (documents.Document, error) {
	req, err := r.request(task, model, prompts.Params{}, []llm.Message{llm.Doc(summary)})
	if err != nil {
		return documents.Document{}, err
	}

	content, err := r.text(ctx, req)
	if err != nil {
		return documents.Document{}, err
	}
	return newDocument(documents.InitialSummary, file, content)
}
