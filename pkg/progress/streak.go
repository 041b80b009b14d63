// Package progress computes routine streaks, completion rates and
// collection-wide statistics. "Today" is always passed in; nothing here
// reads the wall clock.
package progress

import "github.com/harrisonrobin/habitask/pkg/model"

// Streak counts consecutive completed days walking backward from today.
// It stops at the first missing day, so a routine not done today has a
// streak of 0. Dates after today are never visited.
func Streak(completed []model.Date, today model.Date) int {
	if len(completed) == 0 {
		return 0
	}
	days := dateSet(completed)
	streak := 0
	for day := today; ; day = day.AddDays(-1) {
		if _, ok := days[day.String()]; !ok {
			return streak
		}
		streak++
	}
}

// CompletedOn reports whether r was done on day.
func CompletedOn(r model.Routine, day model.Date) bool {
	for _, d := range r.CompletedDates {
		if d.Equal(day) {
			return true
		}
	}
	return false
}

func dateSet(dates []model.Date) map[string]struct{} {
	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[d.String()] = struct{}{}
	}
	return set
}
