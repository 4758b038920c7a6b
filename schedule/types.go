// Package schedule implements the roster time-accounting core: shifts, daily
// statuses, employment contracts, contract pro-ration, weekly summaries,
// split-shift gaps and shift placement validation.
//
// Everything in this package is a pure function of its arguments. Callers
// supply plain data (shift lists, contract fields, a week anchor) and get
// fresh values back; nothing is cached and no shift is ever mutated.
package schedule

import (
	"fmt"

	"github.com/warp/roster-engine/generic"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type ShiftID string

// =============================================================================
// STATUS - Closed set of daily designations
// =============================================================================

// Status marks a day as non-working (or specially paid). The zero value means
// an ordinary shift with clock times.
type Status uint8

const (
	StatusNone Status = iota
	StatusWeeklyRest
	StatusPaidLeave // "CP", congé payé
	StatusPublicHoliday
	StatusSickLeave
	StatusAccident // accident du travail
	StatusAbsence  // unspecified absence

	statusCount
)

var statusNames = [statusCount]string{
	StatusNone:          "",
	StatusWeeklyRest:    "weekly_rest",
	StatusPaidLeave:     "CP",
	StatusPublicHoliday: "public_holiday",
	StatusSickLeave:     "sick_leave",
	StatusAccident:      "accident",
	StatusAbsence:       "absence",
}

func (s Status) String() string {
	if s >= statusCount {
		return fmt.Sprintf("status(%d)", uint8(s))
	}
	return statusNames[s]
}

// ParseStatus maps the wire name of a status to its value. The empty string
// is StatusNone.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return StatusNone, fmt.Errorf("%w: %q", ErrUnknownStatus, name)
}

// Statuses lists every non-empty status, in declaration order.
func Statuses() []Status {
	out := make([]Status, 0, statusCount-1)
	for s := StatusWeeklyRest; s < statusCount; s++ {
		out = append(out, s)
	}
	return out
}

func (s Status) MarshalText() ([]byte, error) {
	if s >= statusCount {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, uint8(s))
	}
	return []byte(statusNames[s]), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// =============================================================================
// SHIFT
// =============================================================================

// Shift is one scheduled interval or one status designation for an employee
// on a day of the week (0 = Monday ... 6 = Sunday).
//
// A shift either carries Start/End (a working interval) or a Status. When a
// Status is set the clock times are ignored for working-time purposes.
type Shift struct {
	ID         ShiftID    `json:"id"`
	EmployeeID EmployeeID `json:"employee_id"`
	Day        int        `json:"day"`
	Start      string     `json:"start,omitempty"`
	End        string     `json:"end,omitempty"`
	Position   string     `json:"position,omitempty"`
	Type       string     `json:"type,omitempty"`
	Status     Status     `json:"status,omitempty"`
}

// IsWorking reports whether the shift is a working interval: no status and
// both clock times present.
func (s Shift) IsWorking() bool {
	return s.Status == StatusNone && s.Start != "" && s.End != ""
}

// Minutes is the gross scheduled duration. Status shifts last 0 minutes.
func (s Shift) Minutes() int {
	if !s.IsWorking() {
		return 0
	}
	return generic.IntervalMinutes(s.Start, s.End)
}

// Hours is Minutes in hours.
func (s Shift) Hours() generic.Amount {
	return generic.HoursFromMinutes(s.Minutes())
}

// startMinutes returns minutes since midnight of the start, or -1.
func (s Shift) startMinutes() int {
	c, ok := generic.ParseClock(s.Start)
	if !ok {
		return -1
	}
	return c.Minutes()
}

// ValidDay reports whether d is a Monday-based day index.
func ValidDay(d int) bool {
	return d >= 0 && d < generic.DaysPerWeek
}

// ForEmployee returns the shifts belonging to id, preserving order.
func ForEmployee(shifts []Shift, id EmployeeID) []Shift {
	var out []Shift
	for _, s := range shifts {
		if s.EmployeeID == id {
			out = append(out, s)
		}
	}
	return out
}

// ByDay groups shifts by day index. Shifts with an out-of-range day are
// dropped.
func ByDay(shifts []Shift) [generic.DaysPerWeek][]Shift {
	var days [generic.DaysPerWeek][]Shift
	for _, s := range shifts {
		if !ValidDay(s.Day) {
			continue
		}
		days[s.Day] = append(days[s.Day], s)
	}
	return days
}

// DayStatus returns the status governing a day: the first status-bearing
// shift in input order, or StatusNone.
func DayStatus(dayShifts []Shift) Status {
	for _, s := range dayShifts {
		if s.Status != StatusNone {
			return s.Status
		}
	}
	return StatusNone
}

// WorkingShifts filters to working intervals.
func WorkingShifts(shifts []Shift) []Shift {
	var out []Shift
	for _, s := range shifts {
		if s.IsWorking() {
			out = append(out, s)
		}
	}
	return out
}
