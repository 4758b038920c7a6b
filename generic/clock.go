/*
clock.go - Clock times and interval durations

PURPOSE:
  Converts "HH:MM" pairs into durations. Shifts are recorded as a start and
  an end clock time on a given day; everything the engine knows about how
  long someone worked starts here.

WRAPAROUND:
  An end earlier than the start means the interval crosses midnight:

    22:00 -> 02:00   = 4h
    23:50 -> 23:10   = 23h20   (same hour, earlier minute: still overnight)
    09:00 -> 09:00   = 0h      (equal times are an empty interval, not 24h)
    18:00 -> 24:00   = 6h      (24:00 is the midnight that ends the day)

  The comparison is made on whole minutes, so a shift never produces a
  negative duration.

GROSS DURATION:
  The result is the scheduled duration. Unpaid breaks are a separate policy
  applied by the weekly aggregation (schedule.BreakPolicy).

SEE ALSO:
  - schedule/summary.go: sums interval durations per day
  - schedule/coupure.go: gaps between intervals on the same day
*/
package generic

import (
	"fmt"
	"strconv"
	"strings"
)

const MinutesPerDay = 24 * 60

// ClockTime is a time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses a 24-hour "HH:MM" string. "24:00" is accepted as the end
// of the day (1440 minutes). Empty or malformed input returns false.
func ParseClock(s string) (ClockTime, bool) {
	s = strings.TrimSpace(s)
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return ClockTime{}, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 24 {
		return ClockTime{}, false
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return ClockTime{}, false
	}
	if hour == 24 && minute != 0 {
		return ClockTime{}, false
	}
	return ClockTime{Hour: hour, Minute: minute}, true
}

// Minutes returns minutes since midnight.
func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// IntervalMinutes returns the duration of [start, end) in minutes, crossing
// midnight when end is earlier than start. Empty or unparsable bounds yield 0.
func IntervalMinutes(start, end string) int {
	s, ok := ParseClock(start)
	if !ok {
		return 0
	}
	e, ok := ParseClock(end)
	if !ok {
		return 0
	}
	d := e.Minutes() - s.Minutes()
	if d < 0 {
		d += MinutesPerDay
	}
	return d
}

// IntervalHours is IntervalMinutes expressed in hours.
func IntervalHours(start, end string) Amount {
	return HoursFromMinutes(IntervalMinutes(start, end))
}

// GapMinutes returns the minutes from an interval ending at prevEnd to one
// starting at nextStart, adding a day when the difference is negative.
func GapMinutes(prevEnd, nextStart ClockTime) int {
	gap := nextStart.Minutes() - prevEnd.Minutes()
	if gap < 0 {
		gap += MinutesPerDay
	}
	return gap
}
