package shared

import (
	"fmt"
	"strings"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Lookup errors. Each wraps [ErrNotFound] so callers can match the family.
	ErrNotFound            = fmt.Errorf("not found")
	ErrTrackNotFound       = fmt.Errorf("track %w", ErrNotFound)
	ErrPlaylistNotFound    = fmt.Errorf("playlist %w", ErrNotFound)
	ErrInteractionNotFound = fmt.Errorf("interaction %w", ErrNotFound)
	ErrPreferencesNotFound = fmt.Errorf("preferences %w", ErrNotFound)

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports malformed or missing input along with per-field detail.
//
// It unwraps to [ErrInvalidInput].
type ValidationError struct {
	Message string       `json:"message"`
	Fields  []FieldError `json:"errors,omitempty"`
}

// NewValidationError builds a [ValidationError] with optional field detail.
func NewValidationError(message string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
