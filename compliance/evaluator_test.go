package compliance_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/roster-engine/compliance"
	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/schedule"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var week = generic.MustParseDate("2025-03-10")

func employee(id, name string) schedule.Employee {
	return schedule.Employee{
		ID:       schedule.EmployeeID(id),
		Name:     name,
		Contract: schedule.NewContract(week.AddDays(-60)),
	}
}

func work(empID string, day int, start, end string) schedule.Shift {
	return schedule.Shift{
		ID:         schedule.ShiftID(fmt.Sprintf("%s-%d-%s", empID, day, start)),
		EmployeeID: schedule.EmployeeID(empID),
		Day:        day,
		Start:      start,
		End:        end,
	}
}

func mark(empID string, day int, st schedule.Status) schedule.Shift {
	return schedule.Shift{
		ID:         schedule.ShiftID(fmt.Sprintf("%s-%d-%s", empID, day, st)),
		EmployeeID: schedule.EmployeeID(empID),
		Day:        day,
		Status:     st,
	}
}

// weekdays schedules start-end Monday to Friday.
func weekdays(empID, start, end string) []schedule.Shift {
	var out []schedule.Shift
	for d := 0; d < 5; d++ {
		out = append(out, work(empID, d, start, end))
	}
	return out
}

func ofType(vs []compliance.Violation, t compliance.ViolationType) []compliance.Violation {
	var out []compliance.Violation
	for _, v := range vs {
		if v.Type == t {
			out = append(out, v)
		}
	}
	return out
}

func evaluate(emp schedule.Employee, shifts []schedule.Shift) []compliance.Violation {
	return compliance.NewEvaluator(compliance.DefaultRules()).Evaluate([]schedule.Employee{emp}, shifts, week)
}

// =============================================================================
// CLEAN WEEK
// =============================================================================

func TestEvaluate_CompliantWeek(t *testing.T) {
	// GIVEN: 09:00-17:00 Monday to Friday, weekend off
	emp := employee("e1", "Camille")
	shifts := append(weekdays("e1", "09:00", "17:00"),
		mark("e1", 5, schedule.StatusWeeklyRest),
		mark("e1", 6, schedule.StatusWeeklyRest),
	)

	// THEN: nothing to report
	assert.Empty(t, evaluate(emp, shifts))
}

func TestEvaluate_EmptyWeek(t *testing.T) {
	assert.Empty(t, evaluate(employee("e1", "Camille"), nil))
}

// =============================================================================
// DAILY REST
// =============================================================================

func TestEvaluate_DailyRest(t *testing.T) {
	// GIVEN: closing Monday at 23:30, opening Tuesday at 07:00
	emp := employee("e1", "Hugo")
	shifts := []schedule.Shift{
		work("e1", 0, "16:00", "23:30"),
		work("e1", 1, "07:00", "12:00"),
	}

	vs := ofType(evaluate(emp, shifts), compliance.ViolationDailyRest)

	require.Len(t, vs, 1)
	v := vs[0]
	assert.Equal(t, compliance.SeverityCritical, v.Severity)
	require.NotNil(t, v.Day)
	assert.Equal(t, 1, *v.Day)
	assert.Contains(t, v.Message, "7h30")
	assert.Equal(t, []schedule.ShiftID{"e1-0-16:00", "e1-1-07:00"}, v.AffectedShifts)
	assert.Equal(t, compliance.RefDailyRest, v.LegalReference)
	assert.NotEmpty(t, v.Suggestion)
	assert.Equal(t, "Hugo", v.EmployeeName)
}

func TestEvaluate_DailyRestAfterOvernightShift(t *testing.T) {
	// GIVEN: Monday 19:00-02:00 (ends Tuesday), Tuesday 12:00
	emp := employee("e1", "Hugo")
	shifts := []schedule.Shift{
		work("e1", 0, "19:00", "02:00"),
		work("e1", 1, "12:00", "15:00"),
	}

	vs := ofType(evaluate(emp, shifts), compliance.ViolationDailyRest)

	// THEN: 10h of rest
	require.Len(t, vs, 1)
	assert.Contains(t, vs[0].Message, "10h")
}

func TestEvaluate_DailyRestSkipsDaysOff(t *testing.T) {
	// Monday late, Wednesday early: the gap spans Tuesday.
	emp := employee("e1", "Hugo")
	shifts := []schedule.Shift{
		work("e1", 0, "16:00", "23:30"),
		work("e1", 2, "07:00", "12:00"),
	}
	assert.Empty(t, ofType(evaluate(emp, shifts), compliance.ViolationDailyRest))
}

// =============================================================================
// WEEKLY REST & CONSECUTIVE DAYS
// =============================================================================

func TestEvaluate_SevenDaysInARow(t *testing.T) {
	emp := employee("e1", "Léa")
	var shifts []schedule.Shift
	for d := 0; d < 7; d++ {
		shifts = append(shifts, work("e1", d, "09:00", "17:00"))
	}

	vs := evaluate(emp, shifts)

	weekly := ofType(vs, compliance.ViolationWeeklyRest)
	require.Len(t, weekly, 1)
	assert.Equal(t, compliance.SeverityCritical, weekly[0].Severity)
	assert.Nil(t, weekly[0].Day)
	assert.Len(t, weekly[0].AffectedShifts, 7)

	consecutive := ofType(vs, compliance.ViolationConsecutiveDays)
	require.Len(t, consecutive, 1)
	assert.Equal(t, compliance.SeverityCritical, consecutive[0].Severity)
	assert.Contains(t, consecutive[0].Message, "7 consecutive days")
	require.NotNil(t, consecutive[0].Day)
	assert.Equal(t, 6, *consecutive[0].Day)

	// 56h
	weeklyHours := ofType(vs, compliance.ViolationMaxWeeklyHours)
	require.Len(t, weeklyHours, 1)
	assert.Equal(t, compliance.SeverityCritical, weeklyHours[0].Severity)
	assert.Equal(t, compliance.RefMaxWeeklyHours, weeklyHours[0].LegalReference)
}

func TestEvaluate_SundayRestAfterSixDays(t *testing.T) {
	// GIVEN: Monday to Saturday 09:00-14:00 and Sunday marked as weekly rest
	emp := employee("e1", "Léa")
	var shifts []schedule.Shift
	for d := 0; d < 6; d++ {
		shifts = append(shifts, work("e1", d, "09:00", "14:00"))
	}
	shifts = append(shifts, mark("e1", 6, schedule.StatusWeeklyRest))

	// THEN: Saturday 14:00 to Monday 09:00 is 43h of rest
	vs := evaluate(emp, shifts)
	assert.Empty(t, ofType(vs, compliance.ViolationWeeklyRest))
	assert.Empty(t, ofType(vs, compliance.ViolationConsecutiveDays))
}

func TestEvaluate_WeeklyRestWrapsWeekEdges(t *testing.T) {
	// GIVEN: Saturday closes at 23:00 and Monday opens at 06:00. The rest
	// across the week boundary is 25h + 6h = 31h.
	emp := employee("e1", "Léa")
	shifts := []schedule.Shift{work("e1", 0, "06:00", "14:00")}
	for d := 1; d < 5; d++ {
		shifts = append(shifts, work("e1", d, "09:00", "14:00"))
	}
	shifts = append(shifts, work("e1", 5, "14:00", "23:00"))

	vs := ofType(evaluate(emp, shifts), compliance.ViolationWeeklyRest)
	require.Len(t, vs, 1)
	assert.Contains(t, vs[0].Message, "31h")

	// WHEN: Monday opens at 10:00 instead
	shifts[0] = work("e1", 0, "10:00", "14:00")

	// THEN: 25h + 10h = 35h, compliant
	assert.Empty(t, ofType(evaluate(emp, shifts), compliance.ViolationWeeklyRest))
}

func TestEvaluate_RestStatusBreaksRun(t *testing.T) {
	emp := employee("e1", "Léa")
	var shifts []schedule.Shift
	for d := 0; d < 7; d++ {
		if d == 3 {
			shifts = append(shifts, mark("e1", d, schedule.StatusSickLeave))
			continue
		}
		shifts = append(shifts, work("e1", d, "09:00", "13:00"))
	}
	assert.Empty(t, ofType(evaluate(emp, shifts), compliance.ViolationConsecutiveDays))
}

// =============================================================================
// HOUR CEILINGS
// =============================================================================

func TestEvaluate_MaxDailyHours(t *testing.T) {
	emp := employee("e1", "Sarah")
	shifts := []schedule.Shift{
		work("e1", 2, "09:00", "14:00"),
		work("e1", 2, "15:00", "21:00"),
	}

	vs := ofType(evaluate(emp, shifts), compliance.ViolationMaxDailyHours)

	require.Len(t, vs, 1)
	assert.Equal(t, compliance.SeverityWarning, vs[0].Severity)
	assert.Equal(t, 2, *vs[0].Day)
	assert.Contains(t, vs[0].Message, "11")
	assert.Len(t, vs[0].AffectedShifts, 2)
}

func TestEvaluate_WeeklyHoursAlert(t *testing.T) {
	// 5 x 9h = 45h: above the 44h alert, below the 48h ceiling
	emp := employee("e1", "Sarah")
	vs := ofType(evaluate(emp, weekdays("e1", "09:00", "18:00")), compliance.ViolationMaxWeeklyHours)

	require.Len(t, vs, 1)
	assert.Equal(t, compliance.SeverityWarning, vs[0].Severity)
	assert.Equal(t, compliance.RefAvgWeeklyHours, vs[0].LegalReference)
}

func TestEvaluate_CustomRules(t *testing.T) {
	// GIVEN: an 11h daily ceiling and no weekly alert
	rules := compliance.DefaultRules()
	rules.MaxDailyHours = decimal.NewFromInt(11)
	rules.WeeklyHoursAlert = decimal.Zero
	rules.MinDailyRest = 0
	ev := compliance.NewEvaluator(rules)

	emp := employee("e1", "Sarah")
	shifts := append(weekdays("e1", "08:00", "17:00"), work("e1", 0, "18:00", "20:00"))

	vs := ev.Evaluate([]schedule.Employee{emp}, shifts, week)

	assert.Empty(t, ofType(vs, compliance.ViolationMaxDailyHours))
	assert.Empty(t, ofType(vs, compliance.ViolationMaxWeeklyHours))
}

func TestEvaluate_UnpaidBreaksLowerWorkedHours(t *testing.T) {
	// 10.5h raw, 10h after the break: at the ceiling, not above
	rules := compliance.DefaultRules()
	rules.Breaks = schedule.UnpaidBreaks()
	ev := compliance.NewEvaluator(rules)

	emp := employee("e1", "Sarah")
	vs := ev.Evaluate([]schedule.Employee{emp}, []schedule.Shift{work("e1", 0, "08:00", "18:30")}, week)

	assert.Empty(t, ofType(vs, compliance.ViolationMaxDailyHours))
}

// =============================================================================
// CONTRACT PERIOD
// =============================================================================

func TestEvaluate_ContractPeriod(t *testing.T) {
	// GIVEN: contract ending Wednesday, a shift on Friday, rest on Saturday
	emp := employee("e1", "Inès")
	end := week.AddDays(2)
	emp.Contract.End = &end
	shifts := []schedule.Shift{
		work("e1", 1, "09:00", "17:00"),
		work("e1", 4, "09:00", "17:00"),
		mark("e1", 5, schedule.StatusWeeklyRest),
	}

	vs := ofType(evaluate(emp, shifts), compliance.ViolationContractPeriod)

	require.Len(t, vs, 2)
	assert.Equal(t, 4, *vs[0].Day)
	assert.Equal(t, compliance.SeverityCritical, vs[0].Severity)
	assert.Contains(t, vs[0].Message, "after the contract ended on 2025-03-12")
	assert.Equal(t, 5, *vs[1].Day)
	assert.Equal(t, compliance.SeverityInfo, vs[1].Severity)
}

func TestEvaluate_BeforeContractStart(t *testing.T) {
	emp := employee("e1", "Inès")
	emp.Contract.Start = week.AddDays(3)

	vs := ofType(evaluate(emp, []schedule.Shift{work("e1", 0, "09:00", "17:00")}), compliance.ViolationContractPeriod)

	require.Len(t, vs, 1)
	assert.Contains(t, vs[0].Message, "before the contract starts on 2025-03-13")
}

// =============================================================================
// ROSTER
// =============================================================================

func TestEvaluate_GroupsByEmployeeInRosterOrder(t *testing.T) {
	a := employee("a", "Alice")
	b := employee("b", "Bruno")
	shifts := []schedule.Shift{
		work("b", 0, "16:00", "23:30"),
		work("a", 0, "16:00", "23:30"),
		work("b", 1, "07:00", "12:00"),
		work("a", 1, "07:00", "12:00"),
		work("ghost", 0, "09:00", "17:00"),
	}

	vs := compliance.NewEvaluator(compliance.DefaultRules()).Evaluate([]schedule.Employee{a, b}, shifts, week)

	require.Len(t, vs, 2)
	assert.Equal(t, schedule.EmployeeID("a"), vs[0].EmployeeID)
	assert.Equal(t, schedule.EmployeeID("b"), vs[1].EmployeeID)
	assert.Equal(t, map[compliance.Severity]int{compliance.SeverityCritical: 2}, compliance.CountBySeverity(vs))
	assert.True(t, compliance.HasCritical(vs))
}

func TestDefaultRules(t *testing.T) {
	r := compliance.DefaultRules()
	assert.Equal(t, 11*time.Hour, r.MinDailyRest)
	assert.Equal(t, 35*time.Hour, r.MinWeeklyRest)
	assert.Equal(t, 6, r.MaxConsecutiveDays)
	assert.False(t, r.Breaks.DeductUnpaid)
}

// =============================================================================
// SWEEP
// =============================================================================

func TestSweep_MatchesEvaluate(t *testing.T) {
	ev := compliance.NewEvaluator(compliance.DefaultRules())

	var employees []schedule.Employee
	var shifts []schedule.Shift
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("e%02d", i)
		employees = append(employees, employee(id, id))
		for d := 0; d < 4+i%4; d++ {
			shifts = append(shifts, work(id, d, "08:00", fmt.Sprintf("%02d:00", 16+i%5)))
		}
	}

	want := ev.Evaluate(employees, shifts, week)
	for _, workers := range []int{0, 1, 4} {
		got, err := ev.Sweep(context.Background(), employees, shifts, week, workers)
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d", workers)
	}
}

func TestSweep_CancelledContext(t *testing.T) {
	ev := compliance.NewEvaluator(compliance.DefaultRules())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ev.Sweep(ctx, []schedule.Employee{employee("e1", "x")}, nil, week, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// RUNS
// =============================================================================

func TestRun_Complete(t *testing.T) {
	run := compliance.Run{ID: "run-1", WeekStart: week, Status: compliance.RunRunning}
	vs := []compliance.Violation{
		{Severity: compliance.SeverityCritical},
		{Severity: compliance.SeverityWarning},
	}
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	run.Complete(vs, now)

	assert.Equal(t, compliance.RunCompleted, run.Status)
	assert.Equal(t, 2, run.ViolationCount)
	assert.Equal(t, 1, run.CriticalCount)
	require.NotNil(t, run.CompletedAt)
	assert.Equal(t, now, *run.CompletedAt)
}
