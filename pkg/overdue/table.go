// Package overdue tracks published open tasks that have a due date so a
// cheap daily sweep can flag the ones whose day has passed.
package overdue

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/harrisonrobin/habitask/pkg/model"
)

type Entry struct {
	TaskID  string     `json:"task_id"`
	EventID string     `json:"event_id"`
	Summary string     `json:"summary"`
	Due     model.Date `json:"due"`
}

type Table struct {
	Entries map[string]Entry `json:"entries"`
	Path    string           `json:"-"`
	dirty   bool
}

func NewTable(path string) (*Table, error) {
	t := &Table{
		Path:    path,
		Entries: make(map[string]Entry),
	}

	if _, err := os.Stat(path); err == nil {
		if err := t.Load(); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Table) Load() error {
	f, err := os.Open(t.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(t)
}

func (t *Table) Save() error {
	if !t.dirty {
		return nil
	}
	dir := filepath.Dir(t.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	f, err := os.Create(t.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	err = encoder.Encode(t)
	if err == nil {
		t.dirty = false
	}
	return err
}

// Update records a published task that is due on or after today. A task
// already past due is dropped instead, since its event was published with
// the overdue marker.
func (t *Table) Update(taskID, eventID, summary string, due, today model.Date) {
	if due.IsZero() || due.Before(today) {
		t.Remove(taskID)
		return
	}
	old, exists := t.Entries[taskID]
	if !exists || !old.Due.Equal(due) || old.EventID != eventID || old.Summary != summary {
		t.Entries[taskID] = Entry{
			TaskID:  taskID,
			EventID: eventID,
			Summary: summary,
			Due:     due,
		}
		t.dirty = true
	}
}

func (t *Table) Remove(taskID string) {
	if _, exists := t.Entries[taskID]; exists {
		delete(t.Entries, taskID)
		t.dirty = true
	}
}

// Sweep returns the entries whose due day is before today and removes them.
func (t *Table) Sweep(today model.Date) []Entry {
	var swept []Entry
	for id, entry := range t.Entries {
		if entry.Due.Before(today) {
			swept = append(swept, entry)
			delete(t.Entries, id)
			t.dirty = true
		}
	}
	return swept
}

// Restore puts a swept entry back, for an event that could not be marked.
func (t *Table) Restore(e Entry) {
	t.Entries[e.TaskID] = e
	t.dirty = true
}
