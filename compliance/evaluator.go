/*
evaluator.go - Labor-law compliance evaluation

PURPOSE:
  Walks a week's shifts for every employee and emits one Violation per
  detected condition. Worked hours come from schedule.Summarize so the panel
  and the weekly summary never disagree.

CHECKS:
  daily_rest        gap between the last end of a worked day and the first
                    start of the next worked day < MinDailyRest      critical
  weekly_rest       longest rest window in the week < MinWeeklyRest  critical
                    (the week wraps: the rest after the last shift
                    joins the rest before the first one)
  max_daily_hours   a day's worked hours > MaxDailyHours              warning
  max_weekly_hours  TotalWorkedHours > MaxWeeklyHours                 critical
                    TotalWorkedHours > WeeklyHoursAlert               warning
  consecutive_days  longest run of worked days > MaxConsecutiveDays   critical
  contract_period   a record dated outside the contract               critical
                    (info when the record is a status, not a shift)

  A worked day is a day whose hours count as worked in the summary: no
  status (or public_holiday) and some scheduled hours. Weekly rest, CP and
  absences break a run of consecutive days.

FAILURE MODEL:
  The evaluator never fails. A check that panics for one employee is
  logged and skipped; the remaining checks and employees are still
  evaluated. An employee whose week cannot be derived at all is logged
  and yields no violations.

SEE ALSO:
  - rules.go: thresholds
  - sweep.go: concurrent roster-wide evaluation
  - schedule/summary.go: per-day worked hours
*/
package compliance

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/schedule"
)

// Evaluator evaluates rosters against Rules.
type Evaluator struct {
	Rules Rules

	// derive builds the per-employee view; nil means newEmployeeWeek.
	derive func(schedule.Employee, []schedule.Shift, generic.TimePoint, schedule.BreakPolicy) *employeeWeek
}

// NewEvaluator creates an evaluator with the given rules.
func NewEvaluator(rules Rules) *Evaluator {
	return &Evaluator{Rules: rules}
}

// Evaluate checks every employee against the shifts of the anchor's week.
// Violations are grouped by employee in roster order.
func (e *Evaluator) Evaluate(employees []schedule.Employee, shifts []schedule.Shift, weekAnchor generic.TimePoint) []Violation {
	byEmployee := groupByEmployee(shifts)
	var out []Violation
	for _, emp := range employees {
		out = append(out, e.EvaluateEmployee(emp, byEmployee[emp.ID], weekAnchor)...)
	}
	return out
}

// EvaluateEmployee checks one employee. shifts must already be filtered to
// that employee.
func (e *Evaluator) EvaluateEmployee(emp schedule.Employee, shifts []schedule.Shift, weekAnchor generic.TimePoint) []Violation {
	w, ok := e.deriveWeek(emp, shifts, weekAnchor)
	if !ok {
		return nil
	}

	checks := []struct {
		name string
		run  func(*employeeWeek) []Violation
	}{
		{"daily_rest", e.checkDailyRest},
		{"weekly_rest", e.checkWeeklyRest},
		{"max_daily_hours", e.checkMaxDailyHours},
		{"max_weekly_hours", e.checkMaxWeeklyHours},
		{"consecutive_days", e.checkConsecutiveDays},
		{"contract_period", e.checkContractPeriod},
	}

	var out []Violation
	for _, c := range checks {
		out = append(out, safely(c.name, emp.ID, w, c.run)...)
	}
	return out
}

func (e *Evaluator) deriveWeek(emp schedule.Employee, shifts []schedule.Shift, weekAnchor generic.TimePoint) (w *employeeWeek, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Compliance] employee %s skipped: %v", emp.ID, r)
			w, ok = nil, false
		}
	}()
	derive := e.derive
	if derive == nil {
		derive = newEmployeeWeek
	}
	return derive(emp, shifts, weekAnchor, e.Rules.Breaks), true
}

func safely(name string, id schedule.EmployeeID, w *employeeWeek, run func(*employeeWeek) []Violation) (vs []Violation) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Compliance] check %s skipped for %s: %v", name, id, r)
			vs = nil
		}
	}()
	return run(w)
}

// =============================================================================
// EMPLOYEE WEEK - Derived data shared by every check
// =============================================================================

type interval struct {
	id    schedule.ShiftID
	start time.Time
	end   time.Time
}

type employeeWeek struct {
	emp     schedule.Employee
	week    generic.Period
	days    [generic.DaysPerWeek][]schedule.Shift
	summary schedule.WeeklySummary
	// worked intervals per day, sorted by start; empty for non-worked days
	intervals [generic.DaysPerWeek][]interval
}

func newEmployeeWeek(emp schedule.Employee, shifts []schedule.Shift, weekAnchor generic.TimePoint, breaks schedule.BreakPolicy) *employeeWeek {
	w := &employeeWeek{
		emp:     emp,
		week:    generic.WeekOf(weekAnchor),
		days:    schedule.ByDay(shifts),
		summary: schedule.Summarize(shifts, emp.Contract, weekAnchor, breaks),
	}
	for d := 0; d < generic.DaysPerWeek; d++ {
		if !w.summary.Days[d].Worked {
			continue
		}
		date := w.week.Start.AddDays(d)
		for _, s := range schedule.WorkingShifts(w.days[d]) {
			c, ok := generic.ParseClock(s.Start)
			if !ok {
				continue
			}
			start := date.At(c.Minutes())
			w.intervals[d] = append(w.intervals[d], interval{
				id:    s.ID,
				start: start,
				end:   start.Add(time.Duration(s.Minutes()) * time.Minute),
			})
		}
		sort.Slice(w.intervals[d], func(i, j int) bool {
			return w.intervals[d][i].start.Before(w.intervals[d][j].start)
		})
	}
	return w
}

func (w *employeeWeek) violation(t ViolationType, sev Severity, ref string) Violation {
	return Violation{
		Type:           t,
		Severity:       sev,
		EmployeeID:     w.emp.ID,
		EmployeeName:   w.emp.Name,
		LegalReference: ref,
	}
}

func (w *employeeWeek) workedShiftIDs() []schedule.ShiftID {
	var ids []schedule.ShiftID
	for _, d := range w.summary.Days {
		if d.Worked {
			ids = append(ids, d.Shifts...)
		}
	}
	return ids
}

func (w *employeeWeek) allIntervals() []interval {
	var all []interval
	for _, day := range w.intervals {
		all = append(all, day...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].start.Before(all[j].start) })
	return all
}

// lastEnding returns the interval of a day that ends last; overnight shifts
// can end after a later-starting one.
func lastEnding(day []interval) interval {
	last := day[0]
	for _, iv := range day[1:] {
		if iv.end.After(last.end) {
			last = iv
		}
	}
	return last
}

// =============================================================================
// CHECKS
// =============================================================================

func (e *Evaluator) checkDailyRest(w *employeeWeek) []Violation {
	if e.Rules.MinDailyRest <= 0 {
		return nil
	}
	var out []Violation
	prev := -1
	for d := 0; d < generic.DaysPerWeek; d++ {
		if len(w.intervals[d]) == 0 {
			continue
		}
		if prev >= 0 {
			last := lastEnding(w.intervals[prev])
			first := w.intervals[d][0]
			rest := first.start.Sub(last.end)
			if rest < e.Rules.MinDailyRest {
				v := w.violation(ViolationDailyRest, SeverityCritical, RefDailyRest)
				v.Day = dayPtr(d)
				v.Message = fmt.Sprintf("%s rests only %s between day %d and day %d (minimum %s)",
					w.emp.Name, formatDuration(rest), prev, d, formatDuration(e.Rules.MinDailyRest))
				v.Suggestion = fmt.Sprintf("Start day %d later or finish day %d earlier to leave at least %s of rest",
					d, prev, formatDuration(e.Rules.MinDailyRest))
				v.AffectedShifts = []schedule.ShiftID{last.id, first.id}
				out = append(out, v)
			}
		}
		prev = d
	}
	return out
}

func (e *Evaluator) checkWeeklyRest(w *employeeWeek) []Violation {
	if e.Rules.MinWeeklyRest <= 0 {
		return nil
	}
	all := w.allIntervals()
	if len(all) == 0 {
		return nil
	}

	weekStart := w.week.Start.At(0)
	weekEnd := w.week.Start.AddDays(generic.DaysPerWeek).At(0)
	cursor := all[0].end
	var longest time.Duration
	for _, iv := range all[1:] {
		if gap := iv.start.Sub(cursor); gap > longest {
			longest = gap
		}
		if iv.end.After(cursor) {
			cursor = iv.end
		}
	}
	// Rest after the last shift continues into next Monday. A Sunday night
	// shift spilling past weekEnd eats into Monday's head rest.
	wrap := all[0].start.Sub(weekStart) + weekEnd.Sub(cursor)
	if wrap > longest {
		longest = wrap
	}

	if longest >= e.Rules.MinWeeklyRest {
		return nil
	}
	v := w.violation(ViolationWeeklyRest, SeverityCritical, RefWeeklyRest)
	v.Message = fmt.Sprintf("%s has no weekly rest: longest break this week is %s (minimum %s)",
		w.emp.Name, formatDuration(longest), formatDuration(e.Rules.MinWeeklyRest))
	v.Suggestion = fmt.Sprintf("Give %s a weekly rest day adjacent to a full night to reach %s without work",
		w.emp.Name, formatDuration(e.Rules.MinWeeklyRest))
	v.AffectedShifts = w.workedShiftIDs()
	return []Violation{v}
}

func (e *Evaluator) checkMaxDailyHours(w *employeeWeek) []Violation {
	if !e.Rules.MaxDailyHours.IsPositive() {
		return nil
	}
	var out []Violation
	for _, d := range w.summary.Days {
		if !d.Worked || !d.Hours.Value.GreaterThan(e.Rules.MaxDailyHours) {
			continue
		}
		v := w.violation(ViolationMaxDailyHours, SeverityWarning, RefMaxDailyHours)
		v.Day = dayPtr(d.Day)
		v.Message = fmt.Sprintf("%s works %sh on day %d (maximum %sh)",
			w.emp.Name, d.Hours.Round(2).Value, d.Day, e.Rules.MaxDailyHours)
		v.Suggestion = "Shorten or split the day's shifts, or move hours to another day"
		v.AffectedShifts = append([]schedule.ShiftID(nil), d.Shifts...)
		out = append(out, v)
	}
	return out
}

func (e *Evaluator) checkMaxWeeklyHours(w *employeeWeek) []Violation {
	worked := w.summary.TotalWorkedHours.Value

	var v Violation
	switch {
	case e.Rules.MaxWeeklyHours.IsPositive() && worked.GreaterThan(e.Rules.MaxWeeklyHours):
		v = w.violation(ViolationMaxWeeklyHours, SeverityCritical, RefMaxWeeklyHours)
		v.Message = fmt.Sprintf("%s works %sh this week (absolute maximum %sh)",
			w.emp.Name, worked.Round(2), e.Rules.MaxWeeklyHours)
	case e.Rules.WeeklyHoursAlert.IsPositive() && worked.GreaterThan(e.Rules.WeeklyHoursAlert):
		v = w.violation(ViolationMaxWeeklyHours, SeverityWarning, RefAvgWeeklyHours)
		v.Message = fmt.Sprintf("%s works %sh this week (above %sh, check the 12-week average)",
			w.emp.Name, worked.Round(2), e.Rules.WeeklyHoursAlert)
	default:
		return nil
	}
	v.Suggestion = "Move shifts to colleagues with remaining contract hours"
	v.AffectedShifts = w.workedShiftIDs()
	return []Violation{v}
}

func (e *Evaluator) checkConsecutiveDays(w *employeeWeek) []Violation {
	if e.Rules.MaxConsecutiveDays <= 0 {
		return nil
	}
	bestStart, bestLen := 0, 0
	runStart, runLen := 0, 0
	for d, day := range w.summary.Days {
		if !day.Worked {
			runLen = 0
			continue
		}
		if runLen == 0 {
			runStart = d
		}
		runLen++
		if runLen > bestLen {
			bestStart, bestLen = runStart, runLen
		}
	}
	if bestLen <= e.Rules.MaxConsecutiveDays {
		return nil
	}

	last := bestStart + bestLen - 1
	v := w.violation(ViolationConsecutiveDays, SeverityCritical, RefConsecutiveDays)
	v.Day = dayPtr(last)
	v.Message = fmt.Sprintf("%s works %d consecutive days (maximum %d)", w.emp.Name, bestLen, e.Rules.MaxConsecutiveDays)
	v.Suggestion = fmt.Sprintf("Mark one of days %d-%d as weekly rest", bestStart, last)
	for d := bestStart; d <= last; d++ {
		v.AffectedShifts = append(v.AffectedShifts, w.summary.Days[d].Shifts...)
	}
	return []Violation{v}
}

func (e *Evaluator) checkContractPeriod(w *employeeWeek) []Violation {
	c := w.emp.Contract
	var out []Violation
	for d, dayShifts := range w.days {
		if len(dayShifts) == 0 {
			continue
		}
		date := w.week.Start.AddDays(d)
		if c.Covers(date) {
			continue
		}

		sev := SeverityInfo
		if len(schedule.WorkingShifts(dayShifts)) > 0 {
			sev = SeverityCritical
		}
		v := w.violation(ViolationContractPeriod, sev, RefContractPeriod)
		v.Day = dayPtr(d)
		if date.Before(c.Start) {
			v.Message = fmt.Sprintf("%s is scheduled on %s, before the contract starts on %s", w.emp.Name, date, c.Start)
			v.Suggestion = fmt.Sprintf("Remove the entries before %s or move the contract start date", c.Start)
		} else {
			v.Message = fmt.Sprintf("%s is scheduled on %s, after the contract ended on %s", w.emp.Name, date, *c.End)
			v.Suggestion = fmt.Sprintf("Remove the entries after %s or extend the contract", *c.End)
		}
		for _, s := range dayShifts {
			v.AffectedShifts = append(v.AffectedShifts, s.ID)
		}
		out = append(out, v)
	}
	return out
}

// =============================================================================
// HELPERS
// =============================================================================

func groupByEmployee(shifts []schedule.Shift) map[schedule.EmployeeID][]schedule.Shift {
	out := make(map[schedule.EmployeeID][]schedule.Shift)
	for _, s := range shifts {
		out[s.EmployeeID] = append(out[s.EmployeeID], s)
	}
	return out
}

// formatDuration renders 11h, 9h30 or -1h15.
func formatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	if m == 0 {
		return fmt.Sprintf("%s%dh", sign, h)
	}
	return fmt.Sprintf("%s%dh%02d", sign, h, m)
}
