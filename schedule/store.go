/*
store.go - Persistence interface for the roster

PURPOSE:
  The engine never defines a storage schema; it only needs employees (with
  their contract fields) and the shifts of a week. These interfaces are the
  contract with whatever persistence layer supplies them.

KEY INTERFACES:
  Roster:      read side used by summaries, compliance sweeps and the scheduler
  RosterStore: Roster plus the writes the HTTP layer performs

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - store/memory/memory.go: in-memory for tests and development

WEEKS:
  Shifts carry a day index only. Storage keys them by the Monday of their
  week; every method takes the week anchor and normalises it to that Monday.
*/
package schedule

import (
	"context"
	"errors"

	"github.com/warp/roster-engine/generic"
)

var (
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrShiftNotFound is returned when a referenced shift doesn't exist.
	ErrShiftNotFound = errors.New("shift not found")
)

// Roster is the read side of the persistence collaborator.
type Roster interface {
	// ListEmployees returns every employee, ordered by name.
	ListEmployees(ctx context.Context) ([]Employee, error)

	// GetEmployee returns ErrEmployeeNotFound when id is unknown.
	GetEmployee(ctx context.Context, id EmployeeID) (Employee, error)

	// ListShifts returns the shifts of the anchor's week. An empty employee
	// id returns the whole roster.
	ListShifts(ctx context.Context, weekAnchor generic.TimePoint, employeeID EmployeeID) ([]Shift, error)
}

// RosterStore adds the writes.
type RosterStore interface {
	Roster

	SaveEmployee(ctx context.Context, emp Employee) error

	// DeleteEmployee removes the employee and every shift they hold. It
	// returns ErrEmployeeNotFound when id is unknown.
	DeleteEmployee(ctx context.Context, id EmployeeID) error

	SaveShift(ctx context.Context, weekAnchor generic.TimePoint, shift Shift) error

	// DeleteShift returns ErrShiftNotFound when id is unknown.
	DeleteShift(ctx context.Context, id ShiftID) error
}
