package model

import "time"

const (
	MinScore = 0
	MaxScore = 100
)

// Task is a one-off work item prioritized by independent importance and
// urgency scores.
type Task struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Importance  int       `json:"importance"`
	Urgency     int       `json:"urgency"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	DueDate     *Date     `json:"dueDate,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// HasDueDate reports whether the task carries a due date.
func (t Task) HasDueDate() bool {
	return t.DueDate != nil && !t.DueDate.IsZero()
}

// ClampScore pins a score into [MinScore, MaxScore].
func ClampScore(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// CheckScore reports ErrInvalidRange for a score outside [0,100]. Input
// parsing uses it to warn; the engine itself clamps.
func CheckScore(v int) error {
	if v < MinScore || v > MaxScore {
		return ErrInvalidRange
	}
	return nil
}

// NormalizeTask returns t with its scores clamped.
func NormalizeTask(t Task) Task {
	t.Importance = ClampScore(t.Importance)
	t.Urgency = ClampScore(t.Urgency)
	return t
}

// CloneTasks returns a shallow copy of the slice with tag slices copied, so
// the result can be modified without touching the caller's collection.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		if t.Tags != nil {
			t.Tags = append([]string(nil), t.Tags...)
		}
		if t.DueDate != nil {
			d := *t.DueDate
			t.DueDate = &d
		}
		out[i] = t
	}
	return out
}

// FindTask returns the index of the task with the given id, or -1.
func FindTask(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
