package tasks

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/researchpipeline/internal/documents"
	"github.com/Lllllllleong/researchpipeline/internal/llm"
	"github.com/Lllllllleong/researchpipeline/internal/llm/llmtest"
	"github.com/Lllllllleong/researchpipeline/internal/models"
	"github.com/Lllllllleong/researchpipeline/internal/prompts"
	"github.com/Lllllllleong/researchpipeline/internal/retry"
)

func newRunner(g llm.Generator, attempts int) *Runner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRunner(g, retry.Policy{Attempts: attempts}, logger)
}

func doc(t *testing.T, f documents.Family, name, content string) documents.Document {
	t.Helper()
	d, err := documents.New(f, name, []byte(content))
	require.NoError(t, err)
	return d
}

func TestCreateInitialSummary(t *testing.T) {
	fake := llmtest.New()
	r := newRunner(fake, 1)
	inputs := documents.Collection{
		doc(t, documents.UserInput, "pitch.md", "# Pitch"),
		doc(t, documents.UserInput, "notes.txt", "notes"),
	}

	out, err := r.CreateInitialSummary(context.Background(), inputs, "gemini-2.5-flash", "acme")
	require.NoError(t, err)
	assert.Equal(t, documents.InitialSummary, out.Family())
	assert.Equal(t, documents.FileInitialSummary, out.Name())

	var summary models.InitialSummary
	require.NoError(t, out.DecodeJSON(&summary))
	assert.Len(t, summary.Sources, 2)

	calls := fake.CallsNamed(prompts.CreateInitialSummary)
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Structured)
	assert.Equal(t, "gemini-2.5-flash", calls[0].Request.Model)
	assert.Len(t, calls[0].Request.Context, 2)
	assert.Contains(t, calls[0].Request.Messages[0].Text, "acme")
}

func TestDescriptions(t *testing.T) {
	fake := llmtest.New()
	r := newRunner(fake, 1)
	summary := doc(t, documents.InitialSummary, documents.FileInitialSummary, `{"project_name":"acme"}`)

	short, err := r.CreateShortDescription(context.Background(), summary, "small")
	require.NoError(t, err)
	assert.Equal(t, documents.FileShortDescription, short.Name())

	long, err := r.CreateLongDescription(context.Background(), summary, "small")
	require.NoError(t, err)
	assert.Equal(t, documents.FileLongDescription, long.Name())
	assert.Contains(t, long.Text(), prompts.CreateLongDescription)
}

func TestStandardization_NamesFollowSlug(t *testing.T) {
	fake := llmtest.New()
	r := newRunner(fake, 1)
	summary := doc(t, documents.InitialSummary, documents.FileInitialSummary, `{}`)
	input := doc(t, documents.UserInput, "My Deck v2.PDF", "%PDF-1.7")

	meta, err := r.ExtractMetadata(context.Background(), input, summary, "core", "acme")
	require.NoError(t, err)
	assert.Equal(t, "my-deck-v2.yaml", meta.Name())
	assert.Equal(t, "application/yaml", meta.MimeType())
	assert.Contains(t, meta.Text(), "original_filename: My Deck v2.PDF")

	md, err := r.StandardizeContent(context.Background(), input, meta, "core", "acme")
	require.NoError(t, err)
	assert.Equal(t, "my-deck-v2.md", md.Name())
	assert.Equal(t, documents.StandardizedFile, md.Family())

	calls := fake.CallsNamed(prompts.StandardizeContent)
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Request.Context, 2)
	assert.Equal(t, "my-deck-v2.yaml", calls[0].Request.Context[0].Document.Name())
}

func TestGenerateFindings_SplitsIntoThreeFiles(t *testing.T) {
	fake := llmtest.New()
	r := newRunner(fake, 1)
	summary := doc(t, documents.InitialSummary, documents.FileInitialSummary, `{}`)
	standardized := documents.Collection{doc(t, documents.StandardizedFile, "pitch.md", "# Pitch")}

	out, err := r.GenerateFindings(context.Background(), standardized, summary, "core", "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{documents.FileRisks, documents.FileOpportunities, documents.FileQuestions}, out.Names())

	var risks models.RisksFile
	d, err := out.GetByName(documents.FileRisks)
	require.NoError(t, err)
	require.NoError(t, d.DecodeJSON(&risks))
	assert.Len(t, risks.Risks, models.FindingsPerKind)
}

func TestGenerateFindings_RetriesWrongCardinality(t *testing.T) {
	fake := llmtest.New()
	short, err := json.Marshal(llmtest.Findings(4))
	require.NoError(t, err)
	fake.Script(prompts.GenerateFindings, string(short))

	r := newRunner(fake, 3)
	summary := doc(t, documents.InitialSummary, documents.FileInitialSummary, `{}`)

	out, err := r.GenerateFindings(context.Background(), nil, summary, "core", "acme")
	require.NoError(t, err)
	assert.Len(t, out, 3)
	assert.Len(t, fake.CallsNamed(prompts.GenerateFindings), 2)
}

func TestGenerateFindings_ExhaustedRetriesSurfaceSchemaViolation(t *testing.T) {
	fake := llmtest.New()
	short, err := json.Marshal(llmtest.Findings(6))
	require.NoError(t, err)
	fake.Script(prompts.GenerateFindings, string(short), string(short))

	r := newRunner(fake, 2)
	summary := doc(t, documents.InitialSummary, documents.FileInitialSummary, `{}`)

	_, err = r.GenerateFindings(context.Background(), nil, summary, "core", "acme")
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrSchemaViolation)
	assert.ErrorIs(t, err, models.ErrInvalidPayload)
}

func TestReports_ShareContextOrder(t *testing.T) {
	fake := llmtest.New()
	r := newRunner(fake, 1)
	in := ReportInputs{
		Standardized: documents.Collection{doc(t, documents.StandardizedFile, "a.md", "a")},
		Summary:       doc(t, documents.InitialSummary, documents.FileInitialSummary, `{}`),
		Risks:         doc(t, documents.ReviewFinding, documents.FileRisks, `{}`),
		Opportunities: doc(t, documents.ReviewFinding, documents.FileOpportunities, `{}`),
		Questions:     doc(t, documents.ReviewFinding, documents.FileQuestions, `{}`),
	}

	full, err := r.WriteFullReport(context.Background(), in, "core", "acme")
	require.NoError(t, err)
	assert.Equal(t, documents.FileFullReport, full.Name())

	short, err := r.WriteShortReport(context.Background(), in, "core", "acme")
	require.NoError(t, err)
	assert.Equal(t, documents.FileShortReport, short.Name())

	names := func(c llmtest.Call) []string {
		var out []string
		for _, m := range c.Request.Context {
			out = append(out, m.Document.Name())
		}
		return out
	}
	fullCall := fake.CallsNamed(prompts.WriteFullReport)[0]
	shortCall := fake.CallsNamed(prompts.WriteShortReport)[0]
	assert.Equal(t, names(fullCall), names(shortCall))
	assert.Equal(t, []string{"a.md", documents.FileInitialSummary, documents.FileRisks, documents.FileOpportunities, documents.FileQuestions}, names(fullCall))
}
