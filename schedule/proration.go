/*
proration.go - Weekly contract pro-ration

PURPOSE:
  When a contract starts or ends inside a week, the employee does not owe the
  full weekly figure. This file scales the weekly contract hours down to the
  days of the week actually under contract.

REFERENCE PATTERN:
  The reference week is six working days, Monday to Saturday. Sunday never
  counts, whatever the contract dates say. One day is worth weekly/6 hours.

ALGORITHM:
  1. week        = Monday..Sunday containing the anchor
  2. working     = [max(contractStart, weekStart), min(contractEnd|weekEnd, weekEnd)]
  3. working empty                  => 0
  4. days        = non-Sunday days in working
  5. result      = weekly * days / 6

  Multiplying before dividing keeps a full week exact: 35 * 6 / 6 = 35.

EXAMPLES (35h contract):
  Contract since last year             -> 35
  Contract starting Thursday           -> 3 days  -> 17.5
  Contract starting Saturday           -> 1 day   -> 5.8333...
  Contract starting Sunday             -> 0 days  -> 0
  Contract ended the previous Friday   -> 0

SEE ALSO:
  - summary.go: uses the pro-rated figure as the weekly target
  - generic/period.go: period intersection
*/
package schedule

import (
	"github.com/shopspring/decimal"
	"github.com/warp/roster-engine/generic"
)

// ReferenceWorkDays is the number of working days in the reference week.
const ReferenceWorkDays = 6

var referenceWorkDays = decimal.NewFromInt(ReferenceWorkDays)

// ProRatedHours returns the hours owed under c for the week containing
// weekAnchor.
func ProRatedHours(c Contract, weekAnchor generic.TimePoint) generic.Amount {
	return ProRate(c.Start, c.End, weekAnchor, c.Weekly())
}

// ProRate returns weeklyHours scaled to the contract days of the anchor's
// week. contractEnd == nil means open-ended.
func ProRate(contractStart generic.TimePoint, contractEnd *generic.TimePoint, weekAnchor generic.TimePoint, weeklyHours decimal.Decimal) generic.Amount {
	days := ContractDaysInWeek(contractStart, contractEnd, weekAnchor)
	if days == 0 {
		return generic.ZeroHours()
	}
	return generic.Amount{
		Value: weeklyHours.Mul(decimal.NewFromInt(int64(days))).Div(referenceWorkDays),
		Unit:  generic.UnitHours,
	}
}

// ContractDaysInWeek counts the non-Sunday days of the anchor's week that lie
// inside the contract.
func ContractDaysInWeek(contractStart generic.TimePoint, contractEnd *generic.TimePoint, weekAnchor generic.TimePoint) int {
	working := Contract{Start: contractStart, End: contractEnd}.Period(generic.WeekOf(weekAnchor))
	if working.IsEmpty() {
		return 0
	}
	return working.CountDays(func(d generic.TimePoint) bool { return !d.IsSunday() })
}

// DailyContractHours is the value of one reference day for the pro-rated
// weekly figure, as used for paid-leave assimilation.
func DailyContractHours(proRated generic.Amount) generic.Amount {
	return proRated.Div(referenceWorkDays)
}
