package google

import (
	"fmt"
	"strings"

	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/habitask/pkg/matrix"
	"github.com/harrisonrobin/habitask/pkg/model"
)

// PropertyKey is the private extended property carrying the entity key.
const PropertyKey = "habitask_id"

const (
	prefixDone    = "✓"
	prefixOverdue = "!"
)

// Calendar color ids per quadrant: Tomato, Tangerine, Blueberry, Graphite.
var quadrantColors = map[matrix.Quadrant]string{
	matrix.UrgentImportant:       "11",
	matrix.UrgentNotImportant:    "6",
	matrix.NotUrgentImportant:    "9",
	matrix.NotUrgentNotImportant: "8",
}

// TaskSummary is the event title for a task as of today.
func TaskSummary(task model.Task, today model.Date) string {
	q := matrix.ClassifyTask(task)
	title := fmt.Sprintf("[%s] %s", strings.ToUpper(q.Tag()), task.Name)
	switch {
	case task.Completed:
		return prefixDone + " " + title
	case task.HasDueDate() && task.DueDate.Before(today):
		return prefixOverdue + " " + title
	}
	return title
}

// OverdueSummary marks an already published summary as overdue.
func OverdueSummary(summary string) string {
	if strings.HasPrefix(summary, prefixOverdue+" ") {
		return summary
	}
	return prefixOverdue + " " + summary
}

// TaskEvent converts a task with a due date into an all-day event.
func TaskEvent(task model.Task, today model.Date, key string) (*calendar.Event, error) {
	if !task.HasDueDate() {
		return nil, fmt.Errorf("task %s has no due date", task.ID)
	}
	q := matrix.ClassifyTask(task)

	var desc strings.Builder
	if len(task.Tags) > 0 {
		for _, tag := range task.Tags {
			desc.WriteString("#" + tag + " ")
		}
		desc.WriteString("\n\n")
	}
	if task.Description != "" {
		desc.WriteString(task.Description + "\n\n")
	}
	fmt.Fprintf(&desc, "Quadrant: %s\n", q.Title())
	fmt.Fprintf(&desc, "Importance: %d\n", task.Importance)
	fmt.Fprintf(&desc, "Urgency: %d\n", task.Urgency)
	fmt.Fprintf(&desc, "ID: %s\n", task.ID)

	return &calendar.Event{
		Summary:     TaskSummary(task, today),
		Description: desc.String(),
		ColorId:     quadrantColors[q],
		Start:       &calendar.EventDateTime{Date: task.DueDate.String()},
		End:         &calendar.EventDateTime{Date: task.DueDate.AddDays(1).String()},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{PropertyKey: key},
		},
	}, nil
}

// CheckInEvent is the all-day event for a routine done on day.
func CheckInEvent(r model.Routine, day model.Date, streak int, colorID, key string) *calendar.Event {
	summary := prefixDone + " " + r.Name
	if streak > 1 {
		summary = fmt.Sprintf("%s (%d-day streak)", summary, streak)
	}

	var desc strings.Builder
	if r.Category != "" {
		fmt.Fprintf(&desc, "Category: %s\n", r.Category)
	}
	fmt.Fprintf(&desc, "Progress: %d/%d days\n", r.Completions(), r.TargetDays)
	fmt.Fprintf(&desc, "ID: %s\n", r.ID)

	return &calendar.Event{
		Summary:      summary,
		Description:  desc.String(),
		ColorId:      colorID,
		Transparency: "transparent",
		Start:        &calendar.EventDateTime{Date: day.String()},
		End:          &calendar.EventDateTime{Date: day.AddDays(1).String()},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{PropertyKey: key},
		},
	}
}

// EventNeedsUpdate returns a patch with the fields of target that differ
// from existing, or nil when they already match.
func EventNeedsUpdate(existing, target *calendar.Event) *calendar.Event {
	patch := &calendar.Event{}
	needsUpdate := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		needsUpdate = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		needsUpdate = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		needsUpdate = true
	}
	if eventDate(existing.Start) != eventDate(target.Start) || eventDate(existing.End) != eventDate(target.End) {
		patch.Start = target.Start
		patch.End = target.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch
	}
	return nil
}

func eventDate(dt *calendar.EventDateTime) string {
	if dt == nil {
		return ""
	}
	if dt.Date != "" {
		return dt.Date
	}
	return dt.DateTime
}
