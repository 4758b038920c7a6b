/*
errors.go - Error types for the generic primitives

PURPOSE:
  The core computations are total functions and never fail. Errors only
  appear at the edges, where strings coming from storage, configuration or
  HTTP bodies are turned into dates and periods.

SEE ALSO:
  - schedule/errors.go: shift validation errors
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when a date string is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DateError reports the input that failed to parse.
type DateError struct {
	Input string
	Err   error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("invalid date %q: %v", e.Input, e.Err)
}

func (e *DateError) Unwrap() error {
	return ErrInvalidDate
}

// ValidatePeriod returns ErrInvalidPeriod when p ends before it starts.
func ValidatePeriod(p Period) error {
	if p.IsEmpty() {
		return fmt.Errorf("%w: %s", ErrInvalidPeriod, p)
	}
	return nil
}
