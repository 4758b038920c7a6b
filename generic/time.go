package generic

import (
	"time"
)

// =============================================================================
// TIME POINT - Concrete calendar date (day granularity)
// =============================================================================

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// TimePoint is a calendar date. All roster arithmetic is day-granular; clock
// times inside a day are handled by ClockTime.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates t to its calendar date in t's own location.
func FromTime(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint {
	return FromTime(time.Now())
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, &DateError{Input: s, Err: err}
	}
	return FromTime(t), nil
}

// MustParseDate panics on malformed input. Tests and presets only.
func MustParseDate(s string) TimePoint {
	tp, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return tp
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.normalize().AddDate(0, 0, n)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsSunday() bool        { return tp.Weekday() == time.Sunday }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

// At returns the instant at the given clock time on this date. Minutes past
// 24h roll into the following day, which is how overnight shift ends are placed.
func (tp TimePoint) At(minutesFromMidnight int) time.Time {
	return tp.normalize().Add(time.Duration(minutesFromMidnight) * time.Minute)
}

func (tp TimePoint) String() string {
	return tp.Time.Format(DateLayout)
}

// MarshalText encodes the date as YYYY-MM-DD.
func (tp TimePoint) MarshalText() ([]byte, error) {
	return []byte(tp.String()), nil
}

// UnmarshalText decodes a YYYY-MM-DD date.
func (tp *TimePoint) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

// =============================================================================
// WEEK HELPERS
// =============================================================================
// Weeks run Monday to Sunday. Day indexes used by shifts follow the same
// convention: 0 = Monday ... 6 = Sunday.

const DaysPerWeek = 7

// WeekStart returns the Monday of the week containing tp.
func WeekStart(tp TimePoint) TimePoint {
	return tp.AddDays(-DayIndex(tp))
}

// WeekOf returns the inclusive Monday..Sunday period containing anchor.
func WeekOf(anchor TimePoint) Period {
	start := WeekStart(anchor)
	return Period{Start: start, End: start.AddDays(DaysPerWeek - 1)}
}

// DayIndex returns the Monday-based index (0..6) of tp.
func DayIndex(tp TimePoint) int {
	return (int(tp.Weekday()) + 6) % 7
}

// DateOf returns the date of the day-th day (Monday = 0) of the anchor's week.
func DateOf(anchor TimePoint, day int) TimePoint {
	return WeekStart(anchor).AddDays(day)
}
