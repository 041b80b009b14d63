package model

import "time"

// DefaultTargetDays is the target a new routine gets when none is given.
const DefaultTargetDays = 30

// Routine is a recurring habit goal tracked by the set of days it was done.
type Routine struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Category       string    `json:"category"`
	TargetDays     int       `json:"targetDays"`
	Color          string    `json:"color,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	CompletedDates []Date    `json:"completedDates"`
}

// Completions is the number of distinct days the routine was done.
func (r Routine) Completions() int {
	return len(r.CompletedDates)
}

// CloneRoutines copies the slice and every completedDates slice.
func CloneRoutines(routines []Routine) []Routine {
	if routines == nil {
		return nil
	}
	out := make([]Routine, len(routines))
	for i, r := range routines {
		if r.CompletedDates != nil {
			r.CompletedDates = append(make([]Date, 0, len(r.CompletedDates)), r.CompletedDates...)
		}
		out[i] = r
	}
	return out
}

// FindRoutine returns the index of the routine with the given id, or -1.
func FindRoutine(routines []Routine, id string) int {
	for i := range routines {
		if routines[i].ID == id {
			return i
		}
	}
	return -1
}
