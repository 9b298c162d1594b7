package api

import "fmt"

// ValidationError reports a request field the API rejected. The engine
// assumes validated input, so nothing invalid may pass this boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
