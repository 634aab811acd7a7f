// Package common defines sentinel errors shared by the alias registry, its
// repositories and the client. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")

	// Service-level errors.
	ErrorInternal    = errors.New("internal error")
	ErrorValidation  = errors.New("validation error")
	ErrorUnavailable = errors.New("service unavailable")
)
