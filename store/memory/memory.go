// Package memory provides an in-memory schedule.RosterStore (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/schedule"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type storedShift struct {
	week  string // Monday, YYYY-MM-DD
	shift schedule.Shift
}

type Memory struct {
	mu        sync.RWMutex
	employees map[schedule.EmployeeID]schedule.Employee
	shifts    map[schedule.ShiftID]storedShift
	order     []schedule.ShiftID // insertion order, for stable listings
}

var _ schedule.RosterStore = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		employees: make(map[schedule.EmployeeID]schedule.Employee),
		shifts:    make(map[schedule.ShiftID]storedShift),
	}
}

func (m *Memory) SaveEmployee(_ context.Context, emp schedule.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id schedule.EmployeeID) (schedule.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	emp, ok := m.employees[id]
	if !ok {
		return schedule.Employee{}, schedule.ErrEmployeeNotFound
	}
	return emp, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]schedule.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schedule.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) DeleteEmployee(_ context.Context, id schedule.EmployeeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[id]; !ok {
		return schedule.ErrEmployeeNotFound
	}
	delete(m.employees, id)
	kept := m.order[:0]
	for _, sid := range m.order {
		if m.shifts[sid].shift.EmployeeID == id {
			delete(m.shifts, sid)
			continue
		}
		kept = append(kept, sid)
	}
	m.order = kept
	return nil
}

func (m *Memory) SaveShift(_ context.Context, weekAnchor generic.TimePoint, s schedule.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.shifts[s.ID]; !exists {
		m.order = append(m.order, s.ID)
	}
	m.shifts[s.ID] = storedShift{week: generic.WeekStart(weekAnchor).String(), shift: s}
	return nil
}

func (m *Memory) DeleteShift(_ context.Context, id schedule.ShiftID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shifts[id]; !ok {
		return schedule.ErrShiftNotFound
	}
	delete(m.shifts, id)
	for i, sid := range m.order {
		if sid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) ListShifts(_ context.Context, weekAnchor generic.TimePoint, employeeID schedule.EmployeeID) ([]schedule.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	week := generic.WeekStart(weekAnchor).String()
	var out []schedule.Shift
	for _, id := range m.order {
		st := m.shifts[id]
		if st.week != week {
			continue
		}
		if employeeID != "" && st.shift.EmployeeID != employeeID {
			continue
		}
		out = append(out, st.shift)
	}
	return out, nil
}

// Reset drops everything.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = make(map[schedule.EmployeeID]schedule.Employee)
	m.shifts = make(map[schedule.ShiftID]storedShift)
	m.order = nil
	return nil
}
