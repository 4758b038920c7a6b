package schedule

import (
	"sort"

	"github.com/warp/roster-engine/generic"
)

// CoupureMinutes returns the total split-shift gap ("coupure") between the
// working shifts of one employee on one day. Shifts are ordered by start
// time and the gap from each end to the next start is summed; a negative gap
// crosses midnight and gets a day added. Fewer than two working shifts give 0.
func CoupureMinutes(shifts []Shift) int {
	working := sortedWorking(shifts)
	if len(working) < 2 {
		return 0
	}
	total := 0
	for i := 1; i < len(working); i++ {
		prevEnd, _ := generic.ParseClock(working[i-1].End)
		nextStart, _ := generic.ParseClock(working[i].Start)
		total += generic.GapMinutes(prevEnd, nextStart)
	}
	return total
}

// CoupuresByDay returns the coupure of every day that has one, for a single
// employee's week.
func CoupuresByDay(shifts []Shift) map[int]int {
	out := make(map[int]int)
	for day, dayShifts := range ByDay(shifts) {
		if m := CoupureMinutes(dayShifts); m > 0 {
			out[day] = m
		}
	}
	return out
}

// sortedWorking returns the working shifts with a parsable start, ordered by
// start time. Ties keep input order.
func sortedWorking(shifts []Shift) []Shift {
	var out []Shift
	for _, s := range shifts {
		if s.IsWorking() && s.startMinutes() >= 0 {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].startMinutes() < out[j].startMinutes()
	})
	return out
}
