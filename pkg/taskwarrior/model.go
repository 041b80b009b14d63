package taskwarrior

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/harrisonrobin/habitask/pkg/model"
)

const (
	PENDING   = "pending"
	COMPLETED = "completed"
	WAITING   = "waiting"
	DELETED   = "deleted"
)

type CustomTime struct {
	time.Time
}

const taskwarriorTimeLayout = "20060102T150405Z" // YYYYMMDDTHHMMSSZ, 'Z' indicates UTC

// UnmarshalJSON implements the json.Unmarshaler interface for CustomTime.
func (ct *CustomTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "0" {
		ct.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(taskwarriorTimeLayout, s)
	if err != nil {
		return fmt.Errorf("failed to parse Taskwarrior time string '%s': %w", s, err)
	}
	ct.Time = t
	return nil
}

// MarshalJSON implements the json.Marshaler interface for CustomTime.
func (ct CustomTime) MarshalJSON() ([]byte, error) {
	if ct.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + ct.Time.Format(taskwarriorTimeLayout) + `"`), nil
}

type Annotation struct {
	Description string      `json:"description"`
	Entry       *CustomTime `json:"entry"`
}

// Task is one record of `task export`.
type Task struct {
	UUID        string       `json:"uuid"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	Entry       *CustomTime  `json:"entry,omitempty"`
	Due         *CustomTime  `json:"due,omitempty"`
	Project     string       `json:"project,omitempty"`
	Priority    string       `json:"priority,omitempty"`
	Urgency     float64      `json:"urgency"`
	Tags        []string     `json:"tags,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Importance by Taskwarrior priority. No priority counts as medium.
var priorityImportance = map[string]int{
	"H": 75,
	"M": 50,
	"L": 25,
	"":  50,
}

// ToTask maps a Taskwarrior record onto a task. Due dates are read as the
// calendar day they fall on in loc. Taskwarrior urgency is scaled by ten
// and clamped.
func ToTask(tw Task, loc *time.Location) model.Task {
	importance, ok := priorityImportance[strings.ToUpper(tw.Priority)]
	if !ok {
		importance = 50
	}

	task := model.Task{
		ID:         tw.UUID,
		Name:       strings.TrimSpace(tw.Description),
		Importance: importance,
		Urgency:    model.ClampScore(int(math.Round(tw.Urgency * 10))),
		Completed:  tw.Status == COMPLETED,
	}
	if tw.Entry != nil && !tw.Entry.IsZero() {
		task.CreatedAt = tw.Entry.Time.UTC()
	}
	if tw.Due != nil && !tw.Due.IsZero() {
		due := model.DateOf(tw.Due.Time, loc)
		task.DueDate = &due
	}

	var notes []string
	for _, a := range tw.Annotations {
		notes = append(notes, a.Description)
	}
	task.Description = strings.Join(notes, "\n")

	task.Tags = append(task.Tags, tw.Tags...)
	if tw.Project != "" {
		task.Tags = append(task.Tags, "project:"+tw.Project)
	}
	return task
}

// ToTasks maps every record that is not deleted.
func ToTasks(tws []Task, loc *time.Location) []model.Task {
	tasks := make([]model.Task, 0, len(tws))
	for _, tw := range tws {
		if tw.Status == DELETED {
			continue
		}
		tasks = append(tasks, ToTask(tw, loc))
	}
	return tasks
}
