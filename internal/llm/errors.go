package llm

import "errors"

var (
	// ErrSchemaViolation indicates structured output that does not decode
	// into, or does not validate as, the requested type.
	ErrSchemaViolation = errors.New("structured output violates schema")
	// ErrRefusal indicates the model declined to answer.
	ErrRefusal = errors.New("model refused the request")
	// ErrEmptyResponse indicates a response with no text.
	ErrEmptyResponse = errors.New("model returned an empty response")
	// ErrBlocked indicates the prompt or response was blocked by safety filters.
	ErrBlocked = errors.New("model response blocked")
)
