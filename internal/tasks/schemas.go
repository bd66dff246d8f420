package tasks

import (
	"github.com/Lllllllleong/researchpipeline/internal/llm"
	"github.com/Lllllllleong/researchpipeline/internal/models"
)

func enumValues[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

var initialSummarySchema = llm.Object(map[string]*llm.Schema{
	"project_name":  llm.String("Project name"),
	"short_summary": llm.String("Two or three sentence overview"),
	"long_summary":  llm.String("Thorough overview of the project"),
	"sources": llm.Array(llm.Object(map[string]*llm.Schema{
		"name":                      llm.String("Source file name"),
		"detected_type":             llm.Enum("Document type", "pitch_deck", "whitepaper", "blog", "other"),
		"detected_language":         llm.String("ISO 639-1 language code"),
		"published_or_version_date": llm.NullableString("YYYY-MM-DD if any"),
		"key_claims":                llm.Array(llm.String("")),
		"data_points":               llm.Array(llm.String("Numbers, metrics, TAM/SAM/SOM, KPIs")),
		"caveats":                   llm.Array(llm.String("Limits or uncertainties")),
		"short_summary":             llm.String("One or two sentences"),
	}, "name", "detected_type", "detected_language", "published_or_version_date", "key_claims", "data_points", "caveats", "short_summary")),
}, "project_name", "short_summary", "long_summary", "sources")

var metadataSchema = llm.Object(map[string]*llm.Schema{
	"title":                     llm.String("Precise, descriptive title from document content"),
	"original_filename":         llm.String("Original file name"),
	"doc_type":                  llm.Enum("Document type", "pitch_deck", "whitepaper", "blog", "spec", "other"),
	"published_or_version_date": llm.NullableString("YYYY-MM-DD format if found"),
	"language_detected":         llm.String("Original language code (e.g., en, es, fr)"),
	"summary_improved":          llm.String("3-6 sentence improved summary capturing key points"),
	"key_claims":                llm.Array(llm.String("Main claim or assertion")),
	"sources":                   llm.Array(llm.String("Internal reference, link or citation")),
	"provenance_notes":          llm.String("Brief explanation of how the document was processed"),
}, "title", "original_filename", "doc_type", "published_or_version_date", "language_detected", "summary_improved", "key_claims", "sources", "provenance_notes")

var citationSchema = llm.Object(map[string]*llm.Schema{
	"file":  llm.String("Standardized file name"),
	"quote": llm.String("Verbatim short snippet or bullet"),
}, "file", "quote")

var findingsSchema = func() *llm.Schema {
	category := llm.Enum("Review category", enumValues(models.Categories)...)
	confidence := llm.Number("Confidence between 0 and 1")

	risk := llm.Object(map[string]*llm.Schema{
		"id":          llm.String("R1..R5"),
		"title":       llm.String(""),
		"category":    category,
		"severity":    llm.Enum("Risk severity", enumValues(models.Severities)...),
		"horizon":     llm.Enum("Time horizon", enumValues(models.Horizons)...),
		"description": llm.String(""),
		"evidence":    llm.Array(citationSchema),
		"mitigation":  llm.Array(llm.String("Mitigating action")),
		"confidence":  confidence,
	}, "id", "title", "category", "severity", "horizon", "description", "evidence", "mitigation", "confidence")

	opportunity := llm.Object(map[string]*llm.Schema{
		"id":            llm.String("O1..O5"),
		"title":         llm.String(""),
		"category":      category,
		"impact":        llm.Enum("Opportunity impact", enumValues(models.Impacts)...),
		"description":   llm.String(""),
		"prerequisites": llm.Array(llm.String("Prerequisite")),
		"evidence":      llm.Array(citationSchema),
		"confidence":    confidence,
	}, "id", "title", "category", "impact", "description", "prerequisites", "evidence", "confidence")

	question := llm.Object(map[string]*llm.Schema{
		"id":              llm.String("Q1..Q5"),
		"question":        llm.String(""),
		"rationale":       llm.String(""),
		"expected_signal": llm.String("What a good answer would show"),
		"evidence":        llm.Array(citationSchema),
	}, "id", "question", "rationale", "expected_signal", "evidence")

	n := int64(models.FindingsPerKind)
	return llm.Object(map[string]*llm.Schema{
		"risks":         llm.ExactArray(risk, n),
		"opportunities": llm.ExactArray(opportunity, n),
		"questions":     llm.ExactArray(question, n),
	}, "risks", "opportunities", "questions")
}()
