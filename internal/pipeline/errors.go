package pipeline

import "errors"

var (
	// ErrNoFilename means a downloaded input had no usable name in its
	// Content-Disposition header or URL path.
	ErrNoFilename = errors.New("no filename for downloaded document")

	ErrHTTPStatus    = errors.New("unexpected http status")
	ErrInputFamilies = errors.New("first stage must declare exactly one input family")
	ErrStagePanic    = errors.New("stage panicked")
	ErrNoStages      = errors.New("no stages to run")
)
