// Package adapters converts external receipt shapes into the validated
// internal model.
//
// Two source shapes exist: a flat document produced by a request/response
// API, and normalized row records produced by a real-time sync layer. Both
// become the identical models.Receipt, and all shape validation happens
// here — the calculation engine assumes a valid model and never re-checks.
// Floating point money crosses into decimal exactly once, at this boundary.
package adapters

import (
	"fmt"
)

// ValidationError describes a required field that is missing or malformed
// in an external receipt shape.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid receipt: %s %s", e.Field, e.Reason)
}

func invalidf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
