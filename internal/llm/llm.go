// Package llm defines the narrow generation contract the pipeline consumes
// and its Vertex AI Gemini implementation.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Lllllllleong/researchpipeline/internal/documents"
)

// Message is one ordered item of a conversation: either plain text or a
// document.
type Message struct {
	Text     string
	Document *documents.Document
}

// Text wraps s as a message.
func Text(s string) Message {
	return Message{Text: s}
}

// Doc wraps d as a message.
func Doc(d documents.Document) Message {
	return Message{Document: &d}
}

// Docs wraps every document of c, in order.
func Docs(c documents.Collection) []Message {
	out := make([]Message, len(c))
	for i, d := range c {
		out[i] = Doc(d)
	}
	return out
}

// Request is a single generation call. Context holds the part of the
// conversation shared across sibling calls so the provider can cache it;
// Messages holds the call-specific instructions and always follows Context.
type Request struct {
	Name     string
	Model    string
	Context  []Message
	Messages []Message
}

type Response struct {
	Content string
	Model   string
}

// Generator produces free text or schema-constrained JSON.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	GenerateStructured(ctx context.Context, req Request, schema *Schema) (*Response, error)
}

// Validator is implemented by structured payloads that check their own
// invariants after decoding.
type Validator interface {
	Validate() error
}

// Structured runs a schema-constrained generation and decodes the result
// into T. Decode and validation failures wrap ErrSchemaViolation.
func Structured[T Validator](ctx context.Context, g Generator, req Request, schema *Schema) (T, error) {
	var out T
	resp, err := g.GenerateStructured(ctx, req, schema)
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal([]byte(StripFences(resp.Content)), &out); err != nil {
		return out, fmt.Errorf("%w: %s: decode: %w", ErrSchemaViolation, req.Name, err)
	}
	if err := out.Validate(); err != nil {
		return out, fmt.Errorf("%w: %s: %w", ErrSchemaViolation, req.Name, err)
	}
	return out, nil
}

// StripFences removes a surrounding Markdown code fence, with or without a
// language tag, and trims whitespace.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], " {[") {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"as a large language model",
}

// refusalWindow bounds how much of the response is scanned for refusals;
// long reports may quote these phrases legitimately.
const refusalWindow = 300

// CheckRefusal reports ErrRefusal when the opening of content matches a
// known refusal phrase.
func CheckRefusal(content string) error {
	head := strings.ToLower(content)
	if len(head) > refusalWindow {
		head = head[:refusalWindow]
	}
	for _, phrase := range refusalPhrases {
		if strings.Contains(head, phrase) {
			return fmt.Errorf("%w: response starts with %q", ErrRefusal, phrase)
		}
	}
	return nil
}
