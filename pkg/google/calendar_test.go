package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/harrisonrobin/habitask/pkg/colors"
	"github.com/harrisonrobin/habitask/pkg/index"
	"github.com/harrisonrobin/habitask/pkg/model"
)

// fakeCalendar serves the handful of Events endpoints the client uses.
type fakeCalendar struct {
	mu      sync.Mutex
	events  map[string]*calendar.Event
	nextID  int
	inserts int
	patches int
	deletes int
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// calendars/{calendarId}/events[/{eventId}]
	if len(parts) < 3 || parts[0] != "calendars" || parts[2] != "events" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 3 {
		switch r.Method {
		case http.MethodGet:
			f.list(w, r)
		case http.MethodPost:
			var ev calendar.Event
			if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			f.nextID++
			ev.Id = fmt.Sprintf("evt-%d", f.nextID)
			f.events[ev.Id] = &ev
			f.inserts++
			writeJSON(w, &ev)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	ev, ok := f.events[parts[3]]
	if !ok {
		writeAPIError(w, http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, ev)
	case http.MethodPatch:
		var patch calendar.Event
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if patch.Summary != "" {
			ev.Summary = patch.Summary
		}
		if patch.Description != "" {
			ev.Description = patch.Description
		}
		if patch.ColorId != "" {
			ev.ColorId = patch.ColorId
		}
		if patch.Start != nil {
			ev.Start = patch.Start
		}
		if patch.End != nil {
			ev.End = patch.End
		}
		f.patches++
		writeJSON(w, ev)
	case http.MethodDelete:
		delete(f.events, ev.Id)
		f.deletes++
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (f *fakeCalendar) list(w http.ResponseWriter, r *http.Request) {
	var key string
	if prop := r.URL.Query().Get("privateExtendedProperty"); prop != "" {
		key = strings.TrimPrefix(prop, PropertyKey+"=")
	}
	items := []*calendar.Event{}
	for _, ev := range f.events {
		if key == "" || (ev.ExtendedProperties != nil && ev.ExtendedProperties.Private[PropertyKey] == key) {
			items = append(items, ev)
		}
	}
	writeJSON(w, &calendar.Events{Items: items})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"code":%d,"message":"%s"}}`, code, http.StatusText(code))
}

func newTestClient(t *testing.T) (*CalendarClient, *fakeCalendar) {
	t.Helper()
	fake := &fakeCalendar{events: make(map[string]*calendar.Event)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	svc, err := calendar.NewService(ctx, option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("calendar.NewService failed: %v", err)
	}
	dir := t.TempDir()
	idx, err := index.NewEventIndex(filepath.Join(dir, "events.json"))
	if err != nil {
		t.Fatalf("NewEventIndex failed: %v", err)
	}
	cache, err := colors.NewColorCache(filepath.Join(dir, "category_colors.json"))
	if err != nil {
		t.Fatalf("NewColorCache failed: %v", err)
	}
	return NewCalendarClient(svc, "primary", idx, cache), fake
}

func TestSyncTaskInsertsThenPatches(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()
	today := model.MustParseDate("2024-03-10")
	task := model.Task{ID: "t1", Name: "Report", Importance: 80, Urgency: 80, DueDate: due("2024-03-12")}

	id, err := client.SyncTask(ctx, task, today)
	if err != nil {
		t.Fatalf("SyncTask failed: %v", err)
	}
	if fake.inserts != 1 {
		t.Fatalf("Expected 1 insert, got %d", fake.inserts)
	}

	again, err := client.SyncTask(ctx, task, today)
	if err != nil {
		t.Fatalf("second SyncTask failed: %v", err)
	}
	if again != id || fake.inserts != 1 || fake.patches != 0 {
		t.Errorf("Expected unchanged task to be a no-op, got id=%s inserts=%d patches=%d", again, fake.inserts, fake.patches)
	}

	task.DueDate = due("2024-03-15")
	if _, err := client.SyncTask(ctx, task, today); err != nil {
		t.Fatalf("third SyncTask failed: %v", err)
	}
	if fake.patches != 1 {
		t.Errorf("Expected 1 patch after moving the due date, got %d", fake.patches)
	}
	if got := fake.events[id].Start.Date; got != "2024-03-15" {
		t.Errorf("Expected start 2024-03-15, got %s", got)
	}
}

func TestSyncTaskFindsEventWithoutIndex(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()
	today := model.MustParseDate("2024-03-10")
	task := model.Task{ID: "t1", Name: "Report", Importance: 80, Urgency: 80, DueDate: due("2024-03-12")}

	id, err := client.SyncTask(ctx, task, today)
	if err != nil {
		t.Fatalf("SyncTask failed: %v", err)
	}
	client.index.Remove(index.TaskKey("t1"))

	found, err := client.SyncTask(ctx, task, today)
	if err != nil {
		t.Fatalf("SyncTask failed: %v", err)
	}
	if found != id || fake.inserts != 1 {
		t.Errorf("Expected lookup by property to reuse %s, got %s with %d inserts", id, found, fake.inserts)
	}
	if client.index.Get(index.TaskKey("t1")) != id {
		t.Error("Expected index to be repopulated")
	}
}

func TestRemoveTaskToleratesMissingEvent(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()
	today := model.MustParseDate("2024-03-10")
	task := model.Task{ID: "t1", Name: "Report", DueDate: due("2024-03-12")}

	id, err := client.SyncTask(ctx, task, today)
	if err != nil {
		t.Fatalf("SyncTask failed: %v", err)
	}
	delete(fake.events, id)

	if err := client.RemoveTask(ctx, "t1"); err != nil {
		t.Fatalf("Expected a vanished event to be ignored, got %v", err)
	}
	if client.index.Get(index.TaskKey("t1")) != "" {
		t.Error("Expected index entry to be dropped")
	}
	if err := client.RemoveTask(ctx, "never-published"); err != nil {
		t.Errorf("Expected unknown task to be a no-op, got %v", err)
	}
}

func TestRemoveTaskFindsEventWithoutIndex(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()
	today := model.MustParseDate("2024-03-10")
	for _, id := range []string{"t1", "t2"} {
		task := model.Task{ID: id, Name: "Report " + id, DueDate: due("2024-03-12")}
		if _, err := client.SyncTask(ctx, task, today); err != nil {
			t.Fatalf("SyncTask(%s) failed: %v", id, err)
		}
	}

	// A client with no local index at all.
	bare := NewCalendarClient(client.srv, client.calendarID, nil, nil)
	if err := bare.RemoveTask(ctx, "t1"); err != nil {
		t.Fatalf("RemoveTask without index failed: %v", err)
	}
	if fake.deletes != 1 || len(fake.events) != 1 {
		t.Fatalf("Expected 1 delete and 1 event left, got %d deletes and %d events", fake.deletes, len(fake.events))
	}

	// An index that never saw the key, as on a second machine.
	client.index.Remove(index.TaskKey("t2"))
	if err := client.RemoveTask(ctx, "t2"); err != nil {
		t.Fatalf("RemoveTask with stale index failed: %v", err)
	}
	if fake.deletes != 2 || len(fake.events) != 0 {
		t.Errorf("Expected 2 deletes and no events, got %d deletes and %d events", fake.deletes, len(fake.events))
	}

	if err := bare.RemoveTask(ctx, "never-published"); err != nil {
		t.Errorf("Expected unknown task to be a no-op, got %v", err)
	}
	if fake.deletes != 2 {
		t.Errorf("Expected no extra delete, got %d", fake.deletes)
	}
}

func TestSyncAndRemoveCheckIn(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()
	day := model.MustParseDate("2024-03-10")
	r := model.Routine{ID: "r1", Name: "Run", Category: "fitness", TargetDays: 30, CompletedDates: []model.Date{day}}

	if err := client.SyncCheckIn(ctx, r, day, 1); err != nil {
		t.Fatalf("SyncCheckIn failed: %v", err)
	}
	if len(fake.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(fake.events))
	}
	for _, ev := range fake.events {
		if ev.ColorId != "1" {
			t.Errorf("Expected category color 1, got %q", ev.ColorId)
		}
	}

	if err := client.RemoveCheckIn(ctx, "r1", day); err != nil {
		t.Fatalf("RemoveCheckIn failed: %v", err)
	}
	if len(fake.events) != 0 || fake.deletes != 1 {
		t.Errorf("Expected the event to be deleted, got %d events and %d deletes", len(fake.events), fake.deletes)
	}
}

func TestMarkOverdue(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()
	today := model.MustParseDate("2024-03-10")
	task := model.Task{ID: "t1", Name: "Report", Importance: 80, Urgency: 80, DueDate: due("2024-03-12")}

	id, err := client.SyncTask(ctx, task, today)
	if err != nil {
		t.Fatalf("SyncTask failed: %v", err)
	}
	if err := client.MarkOverdue(ctx, id, "[Q1] Report"); err != nil {
		t.Fatalf("MarkOverdue failed: %v", err)
	}
	if got := fake.events[id].Summary; got != "! [Q1] Report" {
		t.Errorf("Expected overdue summary, got %q", got)
	}
}

func TestSaveStatePersistsIndex(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()
	task := model.Task{ID: "t1", Name: "Report", DueDate: due("2024-03-12")}
	if _, err := client.SyncTask(ctx, task, model.MustParseDate("2024-03-10")); err != nil {
		t.Fatalf("SyncTask failed: %v", err)
	}
	if err := client.SaveState(); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}
	reopened, err := index.NewEventIndex(client.index.Path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reopened.Get(index.TaskKey("t1")) == "" {
		t.Error("Expected saved index to contain the task")
	}
}
