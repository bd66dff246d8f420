package models

import (
	"errors"
	"fmt"
)

// FileDescriptor describes one source file as seen by the summary stage.
type FileDescriptor struct {
	Name                   string   `json:"name"`
	DetectedType           string   `json:"detected_type"`
	DetectedLanguage       string   `json:"detected_language"`
	PublishedOrVersionDate *string  `json:"published_or_version_date"`
	KeyClaims              []string `json:"key_claims"`
	DataPoints             []string `json:"data_points"`
	Caveats                []string `json:"caveats"`
	ShortSummary           string   `json:"short_summary"`
}

// InitialSummary is the structured overview written to initial_summary.json.
type InitialSummary struct {
	ProjectName  string           `json:"project_name"`
	ShortSummary string           `json:"short_summary"`
	LongSummary  string           `json:"long_summary"`
	Sources      []FileDescriptor `json:"sources"`
}

func (s InitialSummary) Validate() error {
	var errs []error
	if s.ProjectName == "" {
		errs = append(errs, fmt.Errorf("%w: empty project_name", ErrInvalidPayload))
	}
	if s.ShortSummary == "" {
		errs = append(errs, fmt.Errorf("%w: empty short_summary", ErrInvalidPayload))
	}
	if s.LongSummary == "" {
		errs = append(errs, fmt.Errorf("%w: empty long_summary", ErrInvalidPayload))
	}
	if len(s.Sources) == 0 {
		errs = append(errs, fmt.Errorf("%w: no sources described", ErrInvalidPayload))
	}
	for i, src := range s.Sources {
		if src.Name == "" {
			errs = append(errs, fmt.Errorf("%w: sources[%d]: empty name", ErrInvalidPayload, i))
		}
	}
	return errors.Join(errs...)
}
