package taskwarrior

import (
	"strings"
	"testing"
	"time"
)

func TestParseTask(t *testing.T) {
	input := `{
		"uuid": "f45a05b3-c12e-42e5-9c9c-333333333333",
		"description": "Buy milk",
		"status": "pending",
		"entry": "20221230T090000Z",
		"due": "20230101T120000Z",
		"project": "Groceries",
		"priority": "H",
		"urgency": 8.2,
		"tags": ["buy", "food"],
		"annotations": [
			{"entry": "20230101T120500Z", "description": "Don't forget almond milk"}
		]
	}`

	client := NewClient()
	task, err := client.ParseTask(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTask failed: %v", err)
	}

	if task.UUID != "f45a05b3-c12e-42e5-9c9c-333333333333" {
		t.Errorf("Expected UUID f45a05b3-c12e-42e5-9c9c-333333333333, got %s", task.UUID)
	}
	if task.Description != "Buy milk" {
		t.Errorf("Expected Description 'Buy milk', got '%s'", task.Description)
	}
	if task.Project != "Groceries" {
		t.Errorf("Expected Project 'Groceries', got '%s'", task.Project)
	}
	if len(task.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %d", len(task.Tags))
	}
	if len(task.Annotations) != 1 {
		t.Errorf("Expected 1 annotation, got %d", len(task.Annotations))
	}
	expectedDue, _ := time.Parse(time.RFC3339, "2023-01-01T12:00:00Z")
	if !task.Due.Time.Equal(expectedDue) {
		t.Errorf("Expected Due %v, got %v", expectedDue, task.Due.Time)
	}
	if task.Urgency != 8.2 {
		t.Errorf("Expected Urgency 8.2, got %v", task.Urgency)
	}
}

func TestParseTasksArrayAndStream(t *testing.T) {
	client := NewClient()

	array := ` [{"uuid":"a","description":"one","status":"pending"},{"uuid":"b","description":"two","status":"pending"}]`
	tasks, err := client.ParseTasks(strings.NewReader(array))
	if err != nil {
		t.Fatalf("ParseTasks(array) failed: %v", err)
	}
	if len(tasks) != 2 || tasks[1].UUID != "b" {
		t.Errorf("Expected 2 tasks ending in b, got %+v", tasks)
	}

	stream := "{\"uuid\":\"a\",\"description\":\"one\"}\n{\"uuid\":\"b\",\"description\":\"two\"}\n"
	tasks, err = client.ParseTasks(strings.NewReader(stream))
	if err != nil {
		t.Fatalf("ParseTasks(stream) failed: %v", err)
	}
	if len(tasks) != 2 || tasks[0].UUID != "a" {
		t.Errorf("Expected 2 tasks starting with a, got %+v", tasks)
	}

	tasks, err = client.ParseTasks(strings.NewReader("  \n"))
	if err != nil {
		t.Fatalf("ParseTasks(empty) failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Expected no tasks, got %d", len(tasks))
	}

	if _, err := client.ParseTasks(strings.NewReader(`[{"uuid":`)); err == nil {
		t.Error("Expected an error for truncated input")
	}
}

func TestToTask(t *testing.T) {
	due := &CustomTime{time.Date(2023, 1, 1, 23, 30, 0, 0, time.UTC)}
	entry := &CustomTime{time.Date(2022, 12, 30, 9, 0, 0, 0, time.UTC)}
	tw := Task{
		UUID:        "u1",
		Description: " Buy milk ",
		Status:      PENDING,
		Entry:       entry,
		Due:         due,
		Project:     "Groceries",
		Priority:    "H",
		Urgency:     8.26,
		Tags:        []string{"food"},
		Annotations: []Annotation{{Description: "almond"}, {Description: "oat"}},
	}

	task := ToTask(tw, time.UTC)
	if task.ID != "u1" || task.Name != "Buy milk" {
		t.Errorf("Unexpected identity: %+v", task)
	}
	if task.Importance != 75 {
		t.Errorf("Expected importance 75 for priority H, got %d", task.Importance)
	}
	if task.Urgency != 83 {
		t.Errorf("Expected urgency 83, got %d", task.Urgency)
	}
	if task.DueDate == nil || task.DueDate.String() != "2023-01-01" {
		t.Errorf("Expected due 2023-01-01, got %v", task.DueDate)
	}
	if !task.CreatedAt.Equal(entry.Time) {
		t.Errorf("Expected createdAt %v, got %v", entry.Time, task.CreatedAt)
	}
	if task.Description != "almond\noat" {
		t.Errorf("Expected annotations as description, got %q", task.Description)
	}
	if len(task.Tags) != 2 || task.Tags[1] != "project:Groceries" {
		t.Errorf("Expected project tag, got %v", task.Tags)
	}

	// A zone east of UTC moves a late-evening due time to the next day.
	tokyo := time.FixedZone("JST", 9*3600)
	if got := ToTask(tw, tokyo).DueDate.String(); got != "2023-01-02" {
		t.Errorf("Expected 2023-01-02 in JST, got %s", got)
	}
}

func TestToTaskPriorities(t *testing.T) {
	cases := map[string]int{"H": 75, "M": 50, "L": 25, "": 50, "x": 50}
	for priority, want := range cases {
		if got := ToTask(Task{UUID: "u", Description: "d", Priority: priority}, time.UTC).Importance; got != want {
			t.Errorf("priority %q: expected %d, got %d", priority, want, got)
		}
	}
	if got := ToTask(Task{UUID: "u", Description: "d", Urgency: 42}, time.UTC).Urgency; got != 100 {
		t.Errorf("Expected urgency clamped to 100, got %d", got)
	}
}

func TestToTasksSkipsDeleted(t *testing.T) {
	tasks := ToTasks([]Task{
		{UUID: "a", Description: "keep", Status: PENDING},
		{UUID: "b", Description: "gone", Status: DELETED},
		{UUID: "c", Description: "done", Status: COMPLETED},
	}, time.UTC)
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}
	if !tasks[1].Completed {
		t.Error("Expected completed status to map to Completed")
	}
}
