package compliance

import (
	"time"

	"github.com/warp/roster-engine/generic"
)

// RunStatus is the lifecycle of a recorded sweep.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run records one roster-wide sweep for audit and display.
type Run struct {
	ID             string
	WeekStart      generic.TimePoint
	Status         RunStatus
	ViolationCount int
	CriticalCount  int
	Violations     []Violation
	Error          string
	StartedAt      time.Time
	CompletedAt    *time.Time
}

// Complete fills the counts from vs and marks the run completed at t.
func (r *Run) Complete(vs []Violation, t time.Time) {
	r.Status = RunCompleted
	r.Violations = vs
	r.ViolationCount = len(vs)
	r.CriticalCount = CountBySeverity(vs)[SeverityCritical]
	r.CompletedAt = &t
}

// Fail marks the run failed at t.
func (r *Run) Fail(err error, t time.Time) {
	r.Status = RunFailed
	r.Error = err.Error()
	r.CompletedAt = &t
}
