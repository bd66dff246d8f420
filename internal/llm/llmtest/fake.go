// Package llmtest provides a scripted llm.Generator for tests.
package llmtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Lllllllleong/researchpipeline/internal/llm"
	"github.com/Lllllllleong/researchpipeline/internal/models"
	"github.com/Lllllllleong/researchpipeline/internal/prompts"
)

// Call records one request seen by the fake.
type Call struct {
	Request    llm.Request
	Structured bool
	Schema     *llm.Schema
}

// HandlerFunc produces the raw response text for a request.
type HandlerFunc func(ctx context.Context, req llm.Request, structured bool) (string, error)

// Fake answers requests by name. Scripted responses are consumed in order;
// when a name has no scripted response left the Handler is used.
type Fake struct {
	Handler HandlerFunc

	mu       sync.Mutex
	scripted map[string][]string
	calls    []Call
}

// New returns a fake that answers every pipeline task with valid output.
func New() *Fake {
	return &Fake{Handler: DefaultHandler, scripted: map[string][]string{}}
}

// Script queues responses for requests named name.
func (f *Fake) Script(name string, responses ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scripted == nil {
		f.scripted = map[string][]string{}
	}
	f.scripted[name] = append(f.scripted[name], responses...)
}

// Calls returns a snapshot of the recorded requests.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsNamed returns the recorded requests with the given name.
func (f *Fake) CallsNamed(name string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Request.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return f.respond(ctx, req, nil)
}

func (f *Fake) GenerateStructured(ctx context.Context, req llm.Request, schema *llm.Schema) (*llm.Response, error) {
	return f.respond(ctx, req, schema)
}

func (f *Fake) respond(ctx context.Context, req llm.Request, schema *llm.Schema) (*llm.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.calls = append(f.calls, Call{Request: req, Structured: schema != nil, Schema: schema})
	var content string
	scripted := false
	if queue := f.scripted[req.Name]; len(queue) > 0 {
		content, f.scripted[req.Name] = queue[0], queue[1:]
		scripted = true
	}
	f.mu.Unlock()

	if !scripted {
		if f.Handler == nil {
			return nil, fmt.Errorf("llmtest: no response for %s", req.Name)
		}
		var err error
		content, err = f.Handler(ctx, req, schema != nil)
		if err != nil {
			return nil, err
		}
	}
	return &llm.Response{Content: content, Model: req.Model}, nil
}

// DefaultHandler returns schema-valid JSON for structured tasks and a short
// Markdown body naming the task for free-text ones.
func DefaultHandler(_ context.Context, req llm.Request, structured bool) (string, error) {
	if !structured {
		return fmt.Sprintf("# %s\n\nGenerated text for %s.", req.Name, req.Name), nil
	}

	var v any
	switch req.Name {
	case prompts.CreateInitialSummary:
		v = InitialSummary(req)
	case prompts.ExtractMetadata:
		v = Metadata(req)
	case prompts.GenerateFindings:
		v = Findings(models.FindingsPerKind)
	default:
		return "", fmt.Errorf("llmtest: no structured response for %s", req.Name)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// InitialSummary describes every document in the request context.
func InitialSummary(req llm.Request) models.InitialSummary {
	s := models.InitialSummary{
		ProjectName:  "project",
		ShortSummary: "A short summary.",
		LongSummary:  "A long summary.",
	}
	for _, m := range req.Context {
		if m.Document != nil {
			s.Sources = append(s.Sources, models.FileDescriptor{
				Name:             m.Document.Name(),
				DetectedType:     "other",
				DetectedLanguage: "en",
				ShortSummary:     "About " + m.Document.Name(),
			})
		}
	}
	return s
}

// Metadata names the last document in the request context.
func Metadata(req llm.Request) models.DocumentMetadata {
	name := "unknown"
	for _, m := range req.Context {
		if m.Document != nil {
			name = m.Document.Name()
		}
	}
	return models.DocumentMetadata{
		Title:            "Title of " + name,
		OriginalFilename: name,
		DocType:          "other",
		LanguageDetected: "en",
		SummaryImproved:  "Improved summary.",
		KeyClaims:        []string{"claim"},
		ProvenanceNotes:  "generated by llmtest",
	}
}

// Findings builds n risks, opportunities and questions.
func Findings(n int) models.Findings {
	var f models.Findings
	for i := 1; i <= n; i++ {
		cite := []models.Citation{{File: "pitch.md", Quote: "quote"}}
		f.Risks = append(f.Risks, models.Risk{
			ID:          fmt.Sprintf("R%d", i), Title: "Risk", Category: models.CategoryMarket,
			Severity:    models.SeverityMedium, Horizon: models.HorizonShort,
			Description: "desc", Evidence: cite, Mitigation: []string{"mitigate"}, Confidence: 0.6,
		})
		f.Opportunities = append(f.Opportunities, models.Opportunity{
			ID:       fmt.Sprintf("O%d", i), Title: "Opportunity", Category: models.CategoryProduct,
			Impact:   models.ImpactHigh, Description: "desc", Prerequisites: []string{"funding"},
			Evidence: cite, Confidence: 0.7,
		})
		f.Questions = append(f.Questions, models.Question{
			ID:             fmt.Sprintf("Q%d", i), Question: "Why now?", Rationale: "timing",
			ExpectedSignal: "evidence of demand", Evidence: cite,
		})
	}
	return f
}
