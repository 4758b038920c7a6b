/*
Package generic provides the domain-agnostic time primitives of the roster engine.

PURPOSE:
  This package contains the value types every other package computes with:
  amounts of time, calendar dates, inclusive periods, week boundaries and
  clock-time intervals. Nothing here knows about shifts, contracts or
  labor law; the schedule and compliance packages build on these types.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 7.5 hours, 240 minutes)
  - Unit:   hours or minutes

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so 35/6 hours stays exact enough to sum
     back to the contract figure
  2. Immutability: every arithmetic method returns a new Amount
  3. Rounding happens only at the display boundary (Round)

USAGE:
  worked := generic.Hours(8)
  daily := generic.Hours(35).Div(decimal.NewFromInt(6))
  covered := worked.Add(daily)

SEE ALSO:
  - clock.go: HH:MM parsing and interval durations
  - time.go: TimePoint and week helpers
  - period.go: inclusive date ranges
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit (always time-based for this system)
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitHours   Unit = "hours"
	UnitMinutes Unit = "minutes"
)

var (
	sixty = decimal.NewFromInt(60)
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

// Hours is shorthand for NewAmount(h, UnitHours).
func Hours(h float64) Amount { return NewAmount(h, UnitHours) }

// ZeroHours returns 0 hours.
func ZeroHours() Amount { return Amount{Value: decimal.Zero, Unit: UnitHours} }

// HoursFromMinutes converts a minute count into an hour amount.
func HoursFromMinutes(minutes int) Amount {
	return Amount{Value: decimal.NewFromInt(int64(minutes)).Div(sixty), Unit: UnitHours}
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) Div(s decimal.Decimal) Amount { return Amount{Value: a.Value.Div(s), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }

// Round returns the amount rounded half away from zero to the given places.
// Only presentation code should call this; totals are kept at full precision.
func (a Amount) Round(places int32) Amount {
	return Amount{Value: a.Value.Round(places), Unit: a.Unit}
}

// Float64 returns the value as a float, dropping the exactness flag.
func (a Amount) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

// InHours converts minute amounts to hours; hour amounts are returned as-is.
func (a Amount) InHours() Amount {
	if a.Unit == UnitMinutes {
		return Amount{Value: a.Value.Div(sixty), Unit: UnitHours}
	}
	return a
}

func (a Amount) String() string {
	return a.Value.String() + " " + string(a.Unit)
}
