package flows

import "errors"

var (
	// ErrContractViolation reports a stage output that does not match the
	// stage's declared output family. It is never retried.
	ErrContractViolation = errors.New("flow contract violation")

	ErrInvalidOptions = errors.New("invalid flow options")
	ErrUnknownStage   = errors.New("unknown stage")
)
