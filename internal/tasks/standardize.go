package tasks

import (
	"context"

	"github.com/Lllllllleong/researchpipeline/internal/documents"
	"github.com/Lllllllleong/researchpipeline/internal/llm"
	"github.com/Lllllllleong/researchpipeline/internal/models"
	"github.com/Lllllllleong/researchpipeline/internal/prompts"
	"github.com/Lllllllleong/researchpipeline/internal/retry"
)

// ExtractMetadata produces <slug>.yaml for one input document, using the
// initial summary as context.
func (r *Runner) ExtractMetadata(ctx context.Context, doc, summary documents.Document, model, projectName string) (documents.Document, error) {
	p := prompts.Params{ProjectName: projectName, FileName: doc.Name()}
	req, err := r.request(prompts.ExtractMetadata, model, p, []llm.Message{llm.Doc(summary), llm.Doc(doc)})
	if err != nil {
		return documents.Document{}, err
	}

	meta, err := structured[models.DocumentMetadata](ctx, r, req, metadataSchema)
	if err != nil {
		return documents.Document{}, err
	}
	meta.OriginalFilename = doc.Name()

	out, err := documents.NewYAML(documents.StandardizedFile, documents.Slugify(doc.Name())+".yaml", meta)
	if err != nil {
		return documents.Document{}, retry.Permanent(err)
	}
	r.logger.Debug("Extracted metadata.", "source", doc.Name(), "output", out.Name())
	return out, nil
}

// StandardizeContent converts one input document to English Markdown as
// <slug>.md, using its extracted metadata as context.
func (r *Runner) StandardizeContent(ctx context.Context, doc, metadata documents.Document, model, projectName string) (documents.Document, error) {
	p := prompts.Params{ProjectName: projectName, FileName: doc.Name()}
	req, err := r.request(prompts.StandardizeContent, model, p, []llm.Message{llm.Doc(metadata), llm.Doc(doc)})
	if err != nil {
		return documents.Document{}, err
	}

	content, err := r.text(ctx, req)
	if err != nil {
		return documents.Document{}, err
	}

	out, err := newDocument(documents.StandardizedFile, documents.Slugify(doc.Name())+".md", content)
	if err != nil {
		return documents.Document{}, err
	}
	r.logger.Debug("Standardized content.", "source", doc.Name(), "output", out.Name())
	return out, nil
}
