package generic

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

// Period is an inclusive [Start, End] range of calendar dates.
//
// Examples:
//   - Week of 2025-03-10: Mon 2025-03-10 .. Sun 2025-03-16
//   - Contract: hire date .. termination date
type Period struct {
	Start TimePoint
	End   TimePoint
}

// IsEmpty reports whether End is before Start.
func (p Period) IsEmpty() bool {
	return p.End.Before(p.Start)
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Intersect returns the overlap of two periods. The result is empty
// (IsEmpty() == true) when they do not overlap.
func (p Period) Intersect(other Period) Period {
	start := p.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := p.End
	if other.End.Before(end) {
		end = other.End
	}
	return Period{Start: start, End: end}
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// CountDays returns how many days of the period satisfy keep.
func (p Period) CountDays(keep func(TimePoint) bool) int {
	n := 0
	for _, d := range p.Days() {
		if keep(d) {
			n++
		}
	}
	return n
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
