package tasks

import (
	"context"

	"github.com/Lllllllleong/researchpipeline/internal/documents"
	"github.com/Lllllllleong/researchpipeline/internal/llm"
	"github.com/Lllllllleong/researchpipeline/internal/prompts"
)

// ReportInputs are the artifacts both reports are written from.
type ReportInputs struct {
	Standardized  documents.Collection
	Summary       documents.Document
	Risks         documents.Document
	Opportunities documents.Document
	Questions     documents.Document
}

// context orders the shared documents identically for both reports so the
// provider can reuse the cached prefix.
func (in ReportInputs) context() []llm.Message {
	msgs := llm.Docs(in.Standardized)
	return append(msgs, llm.Doc(in.Summary), llm.Doc(in.Risks), llm.Doc(in.Opportunities), llm.Doc(in.Questions))
}

// WriteFullReport writes the 15-20 page report as full_report.md.
func (r *Runner) WriteFullReport(ctx context.Context, in ReportInputs, model, projectName string) (documents.Document, error) {
	return r.report(ctx, prompts.WriteFullReport, documents.FileFullReport, in, model, projectName)
}

// WriteShortReport writes the report of at most five pages as short_report.md.
func (r *Runner) WriteShortReport(ctx context.Context, in ReportInputs, model, projectName string) (documents.Document, error) {
	return r.report(ctx, prompts.WriteShortReport, documents.FileShortReport, in, model, projectName)
}

func (r *Runner) report(ctx context.Context, task, file string, in ReportInputs, model, projectName string) (documents.Document, error) {
	req, err := r.request(task, model, prompts.Params{ProjectName: projectName}, in.context())
	if err != nil {
		return documents.Document{}, err
	}

	content, err := r.text(ctx, req)
	if err != nil {
		return documents.Document{}, err
	}
	return newDocument(documents.FinalReport, file, content)
}
