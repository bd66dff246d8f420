package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// VertexConfig configures the Gemini client.
type VertexConfig struct {
	ProjectID         string
	Region            string
	SystemInstruction string
	Temperature       float32
}

// Vertex implements Generator on Vertex AI Gemini models.
type Vertex struct {
	client *genai.Client
	config VertexConfig
	logger *slog.Logger
}

// NewVertex creates a Gemini client for the configured project and region.
func NewVertex(ctx context.Context, cfg VertexConfig, logger *slog.Logger) (*Vertex, error) {
	if cfg.ProjectID == "" || cfg.Region == "" {
		return nil, fmt.Errorf("NewVertex: projectID and region cannot be empty")
	}

	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	return &Vertex{client: client, config: cfg, logger: logger}, nil
}

func (v *Vertex) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}

func (v *Vertex) Generate(ctx context.Context, req Request) (*Response, error) {
	return v.generate(ctx, req, nil)
}

func (v *Vertex) GenerateStructured(ctx context.Context, req Request, schema *Schema) (*Response, error) {
	if schema == nil {
		return nil, fmt.Errorf("%s: structured generation requires a schema", req.Name)
	}
	return v.generate(ctx, req, schema)
}

func (v *Vertex) generate(ctx context.Context, req Request, schema *Schema) (*Response, error) {
	modelName := ModelID(req.Model)
	logCtx := v.logger.With("task", req.Name, "model", modelName)

	model := v.model(modelName, schema)
	parts := toParts(req.Context)
	parts = append(parts, toParts(req.Messages)...)

	logCtx.Debug("Calling Gemini.", "contextParts", len(req.Context), "messageParts", len(req.Messages), "structured", schema != nil)
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return nil, fmt.Errorf("%w: %s: %v", ErrBlocked, req.Name, blocked)
		}
		logCtx.Error("Gemini call failed.", "error", err)
		return nil, fmt.Errorf("failed to generate content from gemini: %w", err)
	}

	content := extractText(resp, logCtx)
	if content == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResponse, req.Name)
	}
	if err := CheckRefusal(content); err != nil {
		logCtx.Warn("Gemini response indicates refusal.", "error", err)
		return nil, err
	}

	return &Response{Content: content, Model: modelName}, nil
}

func (v *Vertex) model(name string, schema *Schema) *genai.GenerativeModel {
	model := v.client.GenerativeModel(name)
	if v.config.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(v.config.SystemInstruction)},
		}
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr(v.config.Temperature),
	}
	if schema != nil {
		model.GenerationConfig.ResponseMIMEType = "application/json"
		model.GenerationConfig.ResponseSchema = schema.toGenai()
	}
	return model
}

// ModelID normalizes provider-prefixed model names such as
// "google/gemini-2.5-flash".
func ModelID(name string) string {
	return strings.TrimPrefix(name, "google/")
}

func toParts(msgs []Message) []genai.Part {
	parts := make([]genai.Part, 0, len(msgs))
	for _, m := range msgs {
		switch {
		case m.Document == nil:
			parts = append(parts, genai.Text(m.Text))
		case m.Document.IsText():
			parts = append(parts, genai.Text(fmt.Sprintf("<document name=%q family=%q>\n%s\n</document>",
				m.Document.Name(), m.Document.Family().CanonicalName(), m.Document.Text())))
		default:
			parts = append(parts,
				genai.Text(fmt.Sprintf("<document name=%q family=%q mime_type=%q />",
					m.Document.Name(), m.Document.Family().CanonicalName(), m.Document.MimeType())),
				genai.Blob{MIMEType: m.Document.MimeType(), Data: m.Document.Content()},
			)
		}
	}
	return parts
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse, logCtx *slog.Logger) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}

	var sb strings.Builder
	var textParts int
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
			textParts++
		}
	}
	if textParts > 1 {
		logCtx.Warn("Gemini response contained multiple text parts; they have been concatenated.", "parts", textParts)
	}

	return StripFences(sb.String())
}
