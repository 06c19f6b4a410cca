package summarizer

import (
	"errors"
	"fmt"
)

var (
	// ErrSummaryUnavailable matches every failure returned by SummarizeReviews.
	ErrSummaryUnavailable = errors.New("review summary unavailable")
	// ErrGeneration means the hosted model call did not complete.
	ErrGeneration = fmt.Errorf("%w: generation failed", ErrSummaryUnavailable)
	// ErrSchemaValidation means the model answered with output that does not
	// match the pros/cons schema.
	ErrSchemaValidation = fmt.Errorf("%w: output does not match schema", ErrSummaryUnavailable)
)

// GenerationError wraps a provider failure: network, timeout, non-2xx status
// or an empty answer.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (provider = %s): %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{ErrGeneration, e.Err}
}

// SchemaValidationError reports why raw model output was rejected.
type SchemaValidationError struct {
	Field  string
	Reason string
}

func (e *SchemaValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("schema validation failed for %q: %s", e.Field, e.Reason)
}

func (e *SchemaValidationError) Unwrap() error {
	return ErrSchemaValidation
}
