package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/roster-engine/generic"
)

// =============================================================================
// CONTRACT - The slice of employee data the engine depends on
// =============================================================================

// ContractType classifies an employment contract. It drives business rules
// outside the core; hour arithmetic does not depend on it.
type ContractType string

const (
	ContractCDI   ContractType = "CDI"   // permanent
	ContractCDD   ContractType = "CDD"   // fixed-term
	ContractExtra ContractType = "Extra" // casual
)

// DefaultWeeklyHours is the French legal working week.
var DefaultWeeklyHours = decimal.NewFromInt(35)

// Contract holds the employment window and weekly hour figure.
// End == nil means open-ended.
type Contract struct {
	Type        ContractType
	Start       generic.TimePoint
	End         *generic.TimePoint
	WeeklyHours decimal.Decimal
}

// NewContract returns an open-ended CDI starting on start with the default
// 35h week.
func NewContract(start generic.TimePoint) Contract {
	return Contract{Type: ContractCDI, Start: start, WeeklyHours: DefaultWeeklyHours}
}

// Weekly returns the contract hours, defaulting to 35 when unset.
func (c Contract) Weekly() decimal.Decimal {
	if c.WeeklyHours.IsZero() {
		return DefaultWeeklyHours
	}
	return c.WeeklyHours
}

// Covers reports whether date falls inside [Start, End].
func (c Contract) Covers(date generic.TimePoint) bool {
	if date.Before(c.Start) {
		return false
	}
	return c.End == nil || !date.After(*c.End)
}

// Period returns the contract window clipped to bound. An open-ended
// contract is treated as running until bound.End.
func (c Contract) Period(bound generic.Period) generic.Period {
	end := bound.End
	if c.End != nil {
		end = *c.End
	}
	return generic.Period{Start: c.Start, End: end}.Intersect(bound)
}

// Validate checks the invariants upstream callers must guarantee before
// handing a contract to the engine.
func (c Contract) Validate() error {
	if c.WeeklyHours.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeHours, c.WeeklyHours)
	}
	if c.End != nil {
		if err := generic.ValidatePeriod(generic.Period{Start: c.Start, End: *c.End}); err != nil {
			return fmt.Errorf("contract: %w", err)
		}
	}
	return nil
}

// Employee is an employee as seen by the engine.
type Employee struct {
	ID       EmployeeID
	Name     string
	Contract Contract
}
