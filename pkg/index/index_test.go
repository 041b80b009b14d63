package index

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEventIndexPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")

	idx, err := NewEventIndex(path)
	if err != nil {
		t.Fatalf("NewEventIndex failed: %v", err)
	}
	idx.Set(TaskKey("t1"), "evt-1")
	idx.Set(CheckInKey("r1", "2024-01-01"), "evt-2")
	if err := idx.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reopened, err := NewEventIndex(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if got := reopened.Get(TaskKey("t1")); got != "evt-1" {
		t.Errorf("Expected evt-1, got %q", got)
	}
	if got := reopened.Get("checkin:r1@2024-01-01"); got != "evt-2" {
		t.Errorf("Expected evt-2, got %q", got)
	}
	if reopened.Len() != 2 {
		t.Errorf("Expected 2 mappings, got %d", reopened.Len())
	}
}

func TestEventIndexSaveSkipsWhenClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	idx, err := NewEventIndex(path)
	if err != nil {
		t.Fatalf("NewEventIndex failed: %v", err)
	}
	if err := idx.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected no file for a clean index, stat err = %v", err)
	}

	idx.Set("k", "v")
	idx.Remove("k")
	if idx.Get("k") != "" {
		t.Error("Expected removed key to be empty")
	}
}
