package documents

import "errors"

var (
	// ErrInvalidName indicates a document name that is empty or would escape
	// its family folder.
	ErrInvalidName = errors.New("invalid document name")
	// ErrUnknownFile indicates a name outside a fixed family's file set.
	ErrUnknownFile = errors.New("file name not allowed for family")
	// ErrInvalidContent indicates structured content that does not parse.
	ErrInvalidContent = errors.New("invalid document content")
	// ErrUnknownFamily indicates an unrecognized family or canonical name.
	ErrUnknownFamily = errors.New("unknown document family")

	// ErrLookup is returned by the GetBy* lookups. It is always joined with
	// ErrNoMatch or ErrAmbiguous.
	ErrLookup    = errors.New("document lookup failed")
	ErrNoMatch   = errors.New("no matching document")
	ErrAmbiguous = errors.New("more than one matching document")
)
