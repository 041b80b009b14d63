package progress

import "github.com/harrisonrobin/habitask/pkg/model"

// CategoryStats is the per-category rollup.
type CategoryStats struct {
	Count       int `json:"count"`
	Completions int `json:"completions"`
}

// RoutineProgress is one routine's row in the stats view.
type RoutineProgress struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Completions int     `json:"completions"`
	TargetDays  int     `json:"targetDays"`
	Rate        float64 `json:"rate"`
	Streak      int     `json:"streak"`
	Finished    bool    `json:"finished"`
}

// Stats summarizes a routine collection as of a given day.
type Stats struct {
	TotalRoutines         int                      `json:"totalRoutines"`
	TotalCompletions      int                      `json:"totalCompletions"`
	AverageCompletionRate float64                  `json:"averageCompletionRate"`
	Best                  *model.Routine           `json:"best,omitempty"`
	LongestStreak         int                      `json:"longestStreak"`
	PerCategory           map[string]CategoryStats `json:"perCategory"`
	Routines              []RoutineProgress        `json:"routines"`
}

// Aggregate computes Stats for routines as of today. Identical inputs
// always give identical output.
//
// Best is the routine with the strictly highest completion rate; the first
// one wins a tie. A routine with rate 0 is never picked, so Best is nil when
// every rate is 0 even if routines is non-empty. Categories are grouped
// verbatim, the empty category included.
func Aggregate(routines []model.Routine, today model.Date) Stats {
	s := Stats{
		TotalRoutines: len(routines),
		PerCategory:   make(map[string]CategoryStats),
		Routines:      make([]RoutineProgress, 0, len(routines)),
	}

	var rateSum, bestRate float64
	bestIdx := -1
	for i, r := range routines {
		rate := CompletionRate(r)
		streak := Streak(r.CompletedDates, today)

		s.TotalCompletions += r.Completions()
		rateSum += rate
		if rate > bestRate {
			bestRate = rate
			bestIdx = i
		}
		if streak > s.LongestStreak {
			s.LongestStreak = streak
		}

		c := s.PerCategory[r.Category]
		c.Count++
		c.Completions += r.Completions()
		s.PerCategory[r.Category] = c

		s.Routines = append(s.Routines, RoutineProgress{
			ID:          r.ID,
			Name:        r.Name,
			Category:    r.Category,
			Completions: r.Completions(),
			TargetDays:  r.TargetDays,
			Rate:        rate,
			Streak:      streak,
			Finished:    Finished(r),
		})
	}

	if len(routines) > 0 {
		s.AverageCompletionRate = rateSum / float64(len(routines))
	}
	if bestIdx >= 0 {
		best := model.CloneRoutines(routines[bestIdx : bestIdx+1])[0]
		s.Best = &best
	}
	return s
}

// Overview is today's progress over the active routines.
type Overview struct {
	Day            model.Date `json:"day"`
	Active         int        `json:"active"`
	CompletedToday int        `json:"completedToday"`
	Rate           float64    `json:"rate"`
}

// Today counts how many active routines were done on today. Rate is 0
// when no routine is active.
func Today(routines []model.Routine, today model.Date) Overview {
	active := Active(routines)
	o := Overview{Day: today, Active: len(active)}
	for _, r := range active {
		if CompletedOn(r, today) {
			o.CompletedToday++
		}
	}
	if o.Active > 0 {
		o.Rate = float64(o.CompletedToday) / float64(o.Active) * 100
	}
	return o
}
