/*
validator.go - Shift placement validation

PURPOSE:
  Checks a candidate set of shifts for one employee and one day before an
  upstream caller accepts them. This is the only check in the core that
  reports failure; it does so in a ValidationResult, never by panicking, so
  an interactive form can surface a guided correction.

RULES:
  1. Overlap:        after sorting by start, a shift ending after the next
                     one starts is rejected
  2. Shifts per day: at most two working shifts per employee and day
  3. Contract:       the shift date (week Monday + day) must be inside
                     [contract start, contract end]; the error names the
                     boundary and its date

SIDE EFFECTS:
  None. The caller decides whether a failed result blocks the save or is
  shown as a warning.

SEE ALSO:
  - errors.go: OverlapError, ShiftLimitError, ContractWindowError
  - compliance/evaluator.go: the contract rule evaluated roster-wide
*/
package schedule

import (
	"github.com/warp/roster-engine/generic"
)

// DefaultMaxShiftsPerDay is the split-shift ceiling.
const DefaultMaxShiftsPerDay = 2

// ValidationResult is the outcome of a validation. OK is true when Errors is
// empty.
type ValidationResult struct {
	OK     bool
	Errors []error
}

// Messages returns the error strings, for callers that only display them.
func (r ValidationResult) Messages() []string {
	out := make([]string, len(r.Errors))
	for i, err := range r.Errors {
		out[i] = err.Error()
	}
	return out
}

// Validator validates shift placement.
type Validator struct {
	// MaxShiftsPerDay defaults to 2 when zero.
	MaxShiftsPerDay int
}

// DefaultValidator returns a validator with the standard ceiling.
func DefaultValidator() *Validator {
	return &Validator{MaxShiftsPerDay: DefaultMaxShiftsPerDay}
}

func (v *Validator) maxPerDay() int {
	if v == nil || v.MaxShiftsPerDay <= 0 {
		return DefaultMaxShiftsPerDay
	}
	return v.MaxShiftsPerDay
}

// Validate checks candidates against the employee's existing shifts for the
// same day. existing must not contain the candidates themselves; a shift
// being edited should be removed from existing by the caller.
func (v *Validator) Validate(candidates, existing []Shift, c Contract, weekAnchor generic.TimePoint, day int) ValidationResult {
	var errs []error

	if !ValidDay(day) {
		return ValidationResult{OK: false, Errors: []error{ErrInvalidDay}}
	}

	all := make([]Shift, 0, len(existing)+len(candidates))
	all = append(all, existing...)
	all = append(all, candidates...)

	// Rule 2: ceiling on working shifts.
	working := WorkingShifts(all)
	if limit := v.maxPerDay(); len(working) > limit {
		var emp EmployeeID
		if len(candidates) > 0 {
			emp = candidates[0].EmployeeID
		}
		errs = append(errs, &ShiftLimitError{EmployeeID: emp, Day: day, Count: len(working), Max: limit})
	}

	// Rule 1: overlap between consecutive intervals.
	errs = append(errs, overlaps(working)...)

	// Rule 3: contract window.
	if len(candidates) > 0 {
		if err := contractWindow(c, generic.DateOf(weekAnchor, day)); err != nil {
			errs = append(errs, err)
		}
	}

	return ValidationResult{OK: len(errs) == 0, Errors: errs}
}

// Validate runs the default validator.
func Validate(candidates, existing []Shift, c Contract, weekAnchor generic.TimePoint, day int) ValidationResult {
	return DefaultValidator().Validate(candidates, existing, c, weekAnchor, day)
}

// overlaps compares each shift with the next one in start order. An
// overnight shift ends after midnight and therefore after any later start.
func overlaps(shifts []Shift) []error {
	sorted := sortedWorking(shifts)
	var errs []error
	for i := 1; i < len(sorted); i++ {
		prev, next := sorted[i-1], sorted[i]
		prevEnd := prev.startMinutes() + prev.Minutes()
		if prevEnd > next.startMinutes() {
			errs = append(errs, &OverlapError{First: prev, Second: next})
		}
	}
	return errs
}

func contractWindow(c Contract, date generic.TimePoint) error {
	if date.Before(c.Start) {
		return &ContractWindowError{ShiftDate: date, Boundary: BoundaryStart, Date: c.Start}
	}
	if c.End != nil && date.After(*c.End) {
		return &ContractWindowError{ShiftDate: date, Boundary: BoundaryEnd, Date: *c.End}
	}
	return nil
}
