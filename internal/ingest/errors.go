package ingest

import "entmatch/internal/services"

// ValidationError reports a file that cannot be turned into a name list.
// Index is the offending element position for structured files and -1
// otherwise.
type ValidationError struct {
	Message string
	Index   int
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets callers match any ingestion failure with services.ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == services.ErrValidation
}

func invalid(message string) *ValidationError {
	return &ValidationError{Message: message, Index: -1}
}
