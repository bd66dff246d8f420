package models

import "errors"

// ErrInvalidPayload is wrapped by every Validate failure in this package.
var ErrInvalidPayload = errors.New("invalid payload")
