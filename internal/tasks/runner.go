// Package tasks wraps each model interaction of the pipeline in a retried
// unit of work that maps the model output to documents.
package tasks

import (
	"context"
	"log/slog"

	"github.com/Lllllllleong/researchpipeline/internal/documents"
	"github.com/Lllllllleong/researchpipeline/internal/llm"
	"github.com/Lllllllleong/researchpipeline/internal/prompts"
	"github.com/Lllllllleong/researchpipeline/internal/retry"
)

// Runner executes tasks against a generator with a shared retry policy.
type Runner struct {
	llm    llm.Generator
	policy retry.Policy
	logger *slog.Logger
}

func NewRunner(g llm.Generator, policy retry.Policy, logger *slog.Logger) *Runner {
	return &Runner{llm: g, policy: policy, logger: logger}
}

// request renders the named prompt and frames it after the shared context.
func (r *Runner) request(name, model string, p prompts.Params, shared []llm.Message) (llm.Request, error) {
	prompt, err := prompts.Render(name, p)
	if err != nil {
		return llm.Request{}, retry.Permanent(err)
	}
	return llm.Request{
		Name:     name,
		Model:    model,
		Context:  shared,
		Messages: []llm.Message{llm.Text(prompt)},
	}, nil
}

// text runs a free-text generation under the retry policy.
func (r *Runner) text(ctx context.Context, req llm.Request) (string, error) {
	logCtx := r.logger.With("task", req.Name, "model", req.Model)
	return retry.Value(ctx, r.policy, logCtx, req.Name, func(ctx context.Context) (string, error) {
		resp, err := r.llm.Generate(ctx, req)
		if err != nil {
			return "", err
		}
		return resp.Content, nil
	})
}

// structured runs a schema-constrained generation under the retry policy.
// Schema violations are retried like any other failure.
func structured[T llm.Validator](ctx context.Context, r *Runner, req llm.Request, schema *llm.Schema) (T, error) {
	logCtx := r.logger.With("task", req.Name, "model", req.Model)
	return retry.Value(ctx, r.policy, logCtx, req.Name, func(ctx context.Context) (T, error) {
		return llm.Structured[T](ctx, r.llm, req, schema)
	})
}

// newDocument builds an output document; construction failures are not
// worth retrying.
func newDocument(f documents.Family, name, content string) (documents.Document, error) {
	d, err := documents.New(f, name, []byte(content))
	if err != nil {
		return documents.Document{}, retry.Permanent(err)
	}
	return d, nil
}
