package matcher

import (
	"fmt"

	"entmatch/internal/services"
)

// Fallback message when neither the response nor the transport says anything useful.
const unexpectedErrorMessage = "An unexpected error occurred"

// ErrEmptyQuery is returned when MatchSingle receives blank text. No request is sent.
var ErrEmptyQuery = fmt.Errorf("%w: query must not be empty", services.ErrValidation)

// ErrNoNames is returned when MatchBatch receives an empty name list.
var ErrNoNames = fmt.Errorf("%w: batch must contain at least one name", services.ErrValidation)

// TransportError is the single error shape every failed remote call takes.
// Status is zero when no response arrived.
type TransportError struct {
	Message string
	Status  int
	Err     error
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is lets callers match any remote failure with services.ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == services.ErrTransport
}
