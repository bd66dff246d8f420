package storage

import "errors"

var (
	// ErrNotFound indicates the requested object does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrEmptyKey indicates an empty storage key was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the storage key contains a path traversal segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
	// ErrUnsupportedScheme indicates a base URI no backend can serve.
	ErrUnsupportedScheme = errors.New("unsupported storage scheme")
	// ErrBackendUnavailable indicates the backend for a URI was not configured.
	ErrBackendUnavailable = errors.New("storage backend not configured")
)
