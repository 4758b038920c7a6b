/*
errors.go - Error types for the schedule package

PURPOSE:
  The Shift Validator is the only part of the core that reports failure.
  It returns these errors inside a ValidationResult rather than failing, so
  an interactive caller can show a guided correction.

USAGE:
  res := schedule.DefaultValidator().Validate(candidates, existing, contract, week, day)
  for _, err := range res.Errors {
      var cw *schedule.ContractWindowError
      if errors.As(err, &cw) {
          // cw.Boundary, cw.Date
      }
  }

SEE ALSO:
  - validator.go: produces these errors
*/
package schedule

import (
	"errors"
	"fmt"

	"github.com/warp/roster-engine/generic"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrShiftOverlap is returned when two working intervals on the same day overlap.
	ErrShiftOverlap = errors.New("shifts overlap")

	// ErrTooManyShifts is returned when a day would hold more working shifts than allowed.
	ErrTooManyShifts = errors.New("too many shifts on the same day")

	// ErrOutsideContract is returned when a shift falls outside the employment contract.
	ErrOutsideContract = errors.New("shift outside contract period")

	// ErrUnknownStatus is returned when a status name is not part of the closed set.
	ErrUnknownStatus = errors.New("unknown status")

	// ErrNegativeHours is returned for a negative weekly contract figure.
	ErrNegativeHours = errors.New("weekly contract hours must not be negative")

	// ErrInvalidDay is returned when a day index is outside 0..6.
	ErrInvalidDay = errors.New("day must be between 0 (Monday) and 6 (Sunday)")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OverlapError names the two conflicting shifts.
type OverlapError struct {
	First  Shift
	Second Shift
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("shift %s-%s overlaps shift %s-%s",
		e.First.Start, e.First.End, e.Second.Start, e.Second.End)
}

func (e *OverlapError) Unwrap() error {
	return ErrShiftOverlap
}

// ShiftLimitError reports the attempted and allowed shift counts for a day.
type ShiftLimitError struct {
	EmployeeID EmployeeID
	Day        int
	Count      int
	Max        int
}

func (e *ShiftLimitError) Error() string {
	return fmt.Sprintf("%d working shifts on day %d, at most %d allowed", e.Count, e.Day, e.Max)
}

func (e *ShiftLimitError) Unwrap() error {
	return ErrTooManyShifts
}

// Boundary identifies which end of a contract was crossed.
type Boundary string

const (
	BoundaryStart Boundary = "start"
	BoundaryEnd   Boundary = "end"
)

// ContractWindowError reports which contract boundary a shift date crosses.
type ContractWindowError struct {
	ShiftDate generic.TimePoint
	Boundary  Boundary
	Date      generic.TimePoint // the boundary date itself
}

func (e *ContractWindowError) Error() string {
	if e.Boundary == BoundaryStart {
		return fmt.Sprintf("shift on %s is before contract start %s", e.ShiftDate, e.Date)
	}
	return fmt.Sprintf("shift on %s is after contract end %s", e.ShiftDate, e.Date)
}

func (e *ContractWindowError) Unwrap() error {
	return ErrOutsideContract
}
