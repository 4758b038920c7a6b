package compliance

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/roster-engine/schedule"
)

// Rules are the thresholds the evaluator applies. None of them is hard-coded
// in the checks; DefaultRules carries the usual French legal values.
type Rules struct {
	// MinDailyRest between the last shift of a day and the first of the next.
	MinDailyRest time.Duration
	// MinWeeklyRest is the longest uninterrupted rest required in the week
	// (24h weekly rest + 11h daily rest).
	MinWeeklyRest time.Duration
	// MaxDailyHours per day.
	MaxDailyHours decimal.Decimal
	// MaxWeeklyHours is the absolute weekly ceiling (critical).
	MaxWeeklyHours decimal.Decimal
	// WeeklyHoursAlert is a lower weekly threshold reported as a warning.
	// Zero disables it.
	WeeklyHoursAlert decimal.Decimal
	// MaxConsecutiveDays of work before a rest day is required.
	MaxConsecutiveDays int
	// Breaks is the break policy used when summing worked hours.
	Breaks schedule.BreakPolicy
}

// DefaultRules returns the general French labor-code limits.
func DefaultRules() Rules {
	return Rules{
		MinDailyRest:       11 * time.Hour,
		MinWeeklyRest:      35 * time.Hour,
		MaxDailyHours:      decimal.NewFromInt(10),
		MaxWeeklyHours:     decimal.NewFromInt(48),
		WeeklyHoursAlert:   decimal.NewFromInt(44),
		MaxConsecutiveDays: 6,
		Breaks:             schedule.PaidBreaks(),
	}
}
