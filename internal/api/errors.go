package api

import (
	"errors"
	"net/http"

	"github.com/Lllllllleong/researchpipeline/internal/flows"
	"github.com/Lllllllleong/researchpipeline/internal/runs"
)

var (
	ErrUnauthorized        = errors.New("invalid api key")
	ErrKeyNotConfigured    = errors.New("api key not configured")
	ErrDeploymentNotFound  = errors.New("deployment not found")
	ErrAmbiguousDeployment = errors.New("deployment name is ambiguous")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrLaunchFailed        = errors.New("failed to launch run")
)

// MapHTTPStatus maps domain errors to response codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrKeyNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrDeploymentNotFound), errors.Is(err, runs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAmbiguousDeployment), errors.Is(err, runs.ErrExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, flows.ErrInvalidOptions), errors.Is(err, flows.ErrUnknownStage):
		return http.StatusBadRequest
	case errors.Is(err, ErrLaunchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
