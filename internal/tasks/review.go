package tasks

import (
	"context"

	"github.com/Lllllllleong/researchpipeline/internal/documents"
	"github.com/Lllllllleong/researchpipeline/internal/llm"
	"github.com/Lllllllleong/researchpipeline/internal/models"
	"github.com/Lllllllleong/researchpipeline/internal/prompts"
	"github.com/Lllllllleong/researchpipeline/internal/retry"
)

// GenerateFindings produces exactly five risks, opportunities and questions
// and splits them into risks.json, opportunities.json and questions.json.
// A response with the wrong cardinality is retried.
func (r *Runner) GenerateFindings(ctx context.Context, standardized documents.Collection, summary documents.Document, model, projectName string) (documents.Collection, error) {
	shared := append(llm.Docs(standardized), llm.Doc(summary))
	req, err := r.request(prompts.GenerateFindings, model, prompts.Params{ProjectName: projectName}, shared)
	if err != nil {
		return nil, err
	}

	findings, err := structured[models.Findings](ctx, r, req, findingsSchema)
	if err != nil {
		return nil, err
	}

	parts := []struct {
		name string
		v    any
	}{
		{documents.FileRisks, models.RisksFile{Risks: findings.Risks}},
		{documents.FileOpportunities, models.OpportunitiesFile{Opportunities: findings.Opportunities}},
		{documents.FileQuestions, models.QuestionsFile{Questions: findings.Questions}},
	}

	out := make(documents.Collection, 0, len(parts))
	for _, p := range parts {
		d, err := documents.NewJSON(documents.ReviewFinding, p.name, p.v)
		if err != nil {
			return nil, retry.Permanent(err)
		}
		out = append(out, d)
	}
	return out, nil
}
