package progress

import (
	"slices"

	"github.com/harrisonrobin/habitask/pkg/model"
)

// CompletionRate is completions over target as a percentage. It is not
// capped: 12 completions against a target of 10 is 120. A routine with a
// non-positive target contributes 0.
func CompletionRate(r model.Routine) float64 {
	if r.TargetDays <= 0 {
		return 0
	}
	return float64(r.Completions()) / float64(r.TargetDays) * 100
}

// Finished reports whether the routine reached its target.
func Finished(r model.Routine) bool {
	return r.TargetDays > 0 && r.Completions() >= r.TargetDays
}

// Active returns the routines that have not reached their target yet, in
// input order.
func Active(routines []model.Routine) []model.Routine {
	out := make([]model.Routine, 0, len(routines))
	for _, r := range routines {
		if !Finished(r) {
			out = append(out, r)
		}
	}
	return out
}

// Toggle marks day done if it is not, and undone if it is. The returned
// routine owns a fresh completedDates slice; r is not modified.
func Toggle(r model.Routine, day model.Date) model.Routine {
	dates := make([]model.Date, 0, len(r.CompletedDates)+1)
	found := false
	for _, d := range r.CompletedDates {
		if d.Equal(day) {
			found = true
			continue
		}
		dates = append(dates, d)
	}
	if !found {
		dates = append(dates, day)
	}
	r.CompletedDates = slices.Clip(dates)
	return r
}
