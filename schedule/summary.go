/*
summary.go - Weekly summary aggregation

PURPOSE:
  Turns one employee's shifts for one week into the figures shown on the
  roster and printed on exports: hours worked, hours assimilated from paid
  leave, public-holiday hours, and the signed difference against the
  pro-rated contract.

STATUS RULES (a day's status overrides its scheduled hours):
  weekly_rest            nothing counts, no shift count
  CP (paid leave)        + dailyContractHours to assimilated, no shift count
  public_holiday         scheduled hours count as worked AND as holiday hours,
                         each working shift counts
  sick_leave / accident  nothing counts (uncovered deficit day)
  absence                nothing counts (uncovered deficit day)
  (none)                 scheduled hours count as worked, each working shift counts

  dailyContractHours = proRatedContractHours / 6

SIGN CONVENTION:
  HoursDiff = covered - proRated. Positive is a surplus (overtime), negative
  a shortfall. Export collaborators rely on this sign.

BREAKS:
  BreakPolicy's zero value pays breaks. UnpaidBreaks() deducts a flat 0.5h
  from every single shift longer than 6h. On a split day each shift is
  judged on its own.

SEE ALSO:
  - proration.go: the weekly target
  - coupure.go: per-day split-shift gaps reported in DaySummary
  - compliance/evaluator.go: reuses the per-day breakdown
*/
package schedule

import (
	"github.com/shopspring/decimal"
	"github.com/warp/roster-engine/generic"
)

// =============================================================================
// BREAK POLICY
// =============================================================================

// BreakPolicy decides whether a legal break is deducted from long shifts.
type BreakPolicy struct {
	// DeductUnpaid enables the deduction. False means breaks are paid.
	DeductUnpaid bool
	// Threshold is the raw shift duration above which the break applies.
	Threshold generic.Amount
	// Deduction is the break length.
	Deduction generic.Amount
}

// PaidBreaks is the default policy: nothing is deducted.
func PaidBreaks() BreakPolicy { return BreakPolicy{} }

// UnpaidBreaks deducts 0.5h from each shift longer than 6h.
func UnpaidBreaks() BreakPolicy {
	return BreakPolicy{
		DeductUnpaid: true,
		Threshold:    generic.Hours(6),
		Deduction:    generic.Hours(0.5),
	}
}

// Apply returns the paid duration of a single shift.
func (bp BreakPolicy) Apply(raw generic.Amount) generic.Amount {
	if !bp.DeductUnpaid {
		return raw
	}
	threshold, deduction := bp.Threshold, bp.Deduction
	if threshold.Value.IsZero() && deduction.Value.IsZero() {
		def := UnpaidBreaks()
		threshold, deduction = def.Threshold, def.Deduction
	}
	if raw.GreaterThan(threshold) {
		return raw.Sub(deduction)
	}
	return raw
}

// =============================================================================
// WEEKLY SUMMARY
// =============================================================================

// DaySummary is the per-day breakdown behind a WeeklySummary.
type DaySummary struct {
	Day    int
	Date   generic.TimePoint
	Status Status
	// Hours is the paid duration of the day's working shifts, before status
	// rules are applied.
	Hours generic.Amount
	// Worked is true when Hours count towards TotalWorkedHours.
	Worked bool
	// Shifts are the working shifts of the day.
	Shifts []ShiftID
	// CoupureMinutes is the split-shift gap between the day's working shifts.
	CoupureMinutes int
}

// WeeklySummary is recomputed from scratch on every call.
type WeeklySummary struct {
	Week                    generic.Period
	TotalWorkedHours        generic.Amount
	TotalAssimilatedHours   generic.Amount
	TotalPublicHolidayHours generic.Amount
	TotalCoveredHours       generic.Amount
	ProRatedContractHours   generic.Amount
	HoursDiff               generic.Amount
	ShiftCount              int
	Days                    [generic.DaysPerWeek]DaySummary
}

// Summarize aggregates one employee's shifts for the week containing
// weekAnchor. Shifts for other employees must be filtered out by the caller.
func Summarize(shifts []Shift, c Contract, weekAnchor generic.TimePoint, breaks BreakPolicy) WeeklySummary {
	week := generic.WeekOf(weekAnchor)
	proRated := ProRatedHours(c, weekAnchor)
	daily := DailyContractHours(proRated)

	sum := WeeklySummary{
		Week:                    week,
		TotalWorkedHours:        generic.ZeroHours(),
		TotalAssimilatedHours:   generic.ZeroHours(),
		TotalPublicHolidayHours: generic.ZeroHours(),
		ProRatedContractHours:   proRated,
	}

	for day, dayShifts := range ByDay(shifts) {
		ds := summarizeDay(day, week.Start.AddDays(day), dayShifts, breaks)

		switch ds.Status {
		case StatusWeeklyRest:
			// excluded from every total
		case StatusPaidLeave:
			sum.TotalAssimilatedHours = sum.TotalAssimilatedHours.Add(daily)
		case StatusPublicHoliday:
			if ds.Hours.IsPositive() {
				ds.Worked = true
				sum.TotalWorkedHours = sum.TotalWorkedHours.Add(ds.Hours)
				sum.TotalPublicHolidayHours = sum.TotalPublicHolidayHours.Add(ds.Hours)
				sum.ShiftCount += len(ds.Shifts)
			}
		case StatusSickLeave, StatusAccident, StatusAbsence:
			// uncovered deficit day
		case StatusNone:
			if ds.Hours.IsPositive() {
				ds.Worked = true
				sum.TotalWorkedHours = sum.TotalWorkedHours.Add(ds.Hours)
				sum.ShiftCount += len(ds.Shifts)
			}
		default:
			// unknown values cannot come out of ParseStatus; count nothing
		}
		sum.Days[day] = ds
	}

	sum.TotalCoveredHours = sum.TotalWorkedHours.Add(sum.TotalAssimilatedHours)
	sum.HoursDiff = sum.TotalCoveredHours.Sub(proRated)
	return sum
}

// summarizeDay sums the day's working shifts. A public-holiday day keeps the
// clock times of its other records, so working shifts are collected even
// when a status is present.
func summarizeDay(day int, date generic.TimePoint, dayShifts []Shift, breaks BreakPolicy) DaySummary {
	ds := DaySummary{
		Day:    day,
		Date:   date,
		Status: DayStatus(dayShifts),
		Hours:  generic.ZeroHours(),
	}
	working := WorkingShifts(dayShifts)
	for _, s := range working {
		ds.Hours = ds.Hours.Add(breaks.Apply(s.Hours()))
		ds.Shifts = append(ds.Shifts, s.ID)
	}
	ds.CoupureMinutes = CoupureMinutes(working)
	return ds
}

// =============================================================================
// DISPLAY
// =============================================================================

// Rounded returns a copy with every total rounded to places. The per-day
// breakdown is left untouched.
func (s WeeklySummary) Rounded(places int32) WeeklySummary {
	out := s
	out.TotalWorkedHours = s.TotalWorkedHours.Round(places)
	out.TotalAssimilatedHours = s.TotalAssimilatedHours.Round(places)
	out.TotalPublicHolidayHours = s.TotalPublicHolidayHours.Round(places)
	out.TotalCoveredHours = s.TotalCoveredHours.Round(places)
	out.ProRatedContractHours = s.ProRatedContractHours.Round(places)
	out.HoursDiff = s.HoursDiff.Round(places)
	return out
}

// IsSurplus reports whether the employee covered more than the contract.
func (s WeeklySummary) IsSurplus() bool {
	return s.HoursDiff.Value.GreaterThan(decimal.Zero)
}
