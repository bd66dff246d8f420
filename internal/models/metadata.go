package models

import (
	"errors"
	"fmt"
)

// DocumentMetadata is extracted per source file and stored as <slug>.yaml
// next to the standardized markdown.
type DocumentMetadata struct {
	Title                  string   `json:"title" yaml:"title"`
	OriginalFilename       string   `json:"original_filename" yaml:"original_filename"`
	DocType                string   `json:"doc_type" yaml:"doc_type"`
	PublishedOrVersionDate *string  `json:"published_or_version_date" yaml:"published_or_version_date"`
	LanguageDetected       string   `json:"language_detected" yaml:"language_detected"`
	SummaryImproved        string   `json:"summary_improved" yaml:"summary_improved"`
	KeyClaims              []string `json:"key_claims" yaml:"key_claims"`
	Sources                []string `json:"sources" yaml:"sources"`
	ProvenanceNotes        string   `json:"provenance_notes" yaml:"provenance_notes"`
}

func (m DocumentMetadata) Validate() error {
	var errs []error
	if m.Title == "" {
		errs = append(errs, fmt.Errorf("%w: empty title", ErrInvalidPayload))
	}
	if m.OriginalFilename == "" {
		errs = append(errs, fmt.Errorf("%w: empty original_filename", ErrInvalidPayload))
	}
	if m.LanguageDetected == "" {
		errs = append(errs, fmt.Errorf("%w: empty language_detected", ErrInvalidPayload))
	}
	if m.SummaryImproved == "" {
		errs = append(errs, fmt.Errorf("%w: empty summary_improved", ErrInvalidPayload))
	}
	return errors.Join(errs...)
}
