// Package compliance evaluates a week's roster against labor-law limits and
// reports typed violations. It is advisory: it never blocks shift creation,
// it only reports for display in a compliance panel.
package compliance

import (
	"github.com/warp/roster-engine/schedule"
)

// =============================================================================
// VIOLATION MODEL
// =============================================================================

type ViolationType string

const (
	ViolationDailyRest       ViolationType = "daily_rest"
	ViolationWeeklyRest      ViolationType = "weekly_rest"
	ViolationMaxDailyHours   ViolationType = "max_daily_hours"
	ViolationMaxWeeklyHours  ViolationType = "max_weekly_hours"
	ViolationConsecutiveDays ViolationType = "consecutive_days"
	ViolationContractPeriod  ViolationType = "contract_period"
)

type Severity string

const (
	SeverityCritical Severity = "critical" // hard legal breach
	SeverityWarning  Severity = "warning"  // soft threshold
	SeverityInfo     Severity = "info"     // advisory
)

// Legal references, Code du travail.
const (
	RefDailyRest       = "Code du travail, art. L3131-1"
	RefWeeklyRest      = "Code du travail, art. L3132-2"
	RefMaxDailyHours   = "Code du travail, art. L3121-18"
	RefMaxWeeklyHours  = "Code du travail, art. L3121-20"
	RefAvgWeeklyHours  = "Code du travail, art. L3121-22"
	RefConsecutiveDays = "Code du travail, art. L3132-1"
	RefContractPeriod  = "Code du travail, art. L1221-1"
)

// Violation is produced fresh by every evaluation and never persisted by the
// engine itself.
type Violation struct {
	Type           ViolationType       `json:"type"`
	Severity       Severity            `json:"severity"`
	EmployeeID     schedule.EmployeeID `json:"employee_id"`
	EmployeeName   string              `json:"employee_name"`
	Day            *int                `json:"day,omitempty"`
	Message        string              `json:"message"`
	Suggestion     string              `json:"suggestion"`
	AffectedShifts []schedule.ShiftID  `json:"affected_shifts"`
	LegalReference string              `json:"legal_reference"`
}

// CountBySeverity tallies violations per severity.
func CountBySeverity(vs []Violation) map[Severity]int {
	out := make(map[Severity]int, 3)
	for _, v := range vs {
		out[v.Severity]++
	}
	return out
}

// HasCritical reports whether any violation is critical.
func HasCritical(vs []Violation) bool {
	for _, v := range vs {
		if v.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

func dayPtr(d int) *int { return &d }
