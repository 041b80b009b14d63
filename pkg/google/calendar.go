package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/harrisonrobin/habitask/pkg/colors"
	"github.com/harrisonrobin/habitask/pkg/index"
	"github.com/harrisonrobin/habitask/pkg/model"
)

// CalendarClient publishes tasks and routine check-ins to one calendar.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	index      *index.EventIndex
	colors     *colors.ColorCache
}

// NewCalendarClient wraps an authenticated service. idx and cache may be nil.
func NewCalendarClient(srv *calendar.Service, calendarID string, idx *index.EventIndex, cache *colors.ColorCache) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID, index: idx, colors: cache}
}

// SyncTask creates or updates the event for a task with a due date and
// returns its id.
func (c *CalendarClient) SyncTask(ctx context.Context, task model.Task, today model.Date) (string, error) {
	key := index.TaskKey(task.ID)
	event, err := TaskEvent(task, today, key)
	if err != nil {
		return "", err
	}
	synced, err := c.upsert(ctx, key, event)
	if err != nil {
		return "", fmt.Errorf("sync task %s: %w", task.ID, err)
	}
	return synced.Id, nil
}

// RemoveTask deletes the task's event if one was published.
func (c *CalendarClient) RemoveTask(ctx context.Context, taskID string) error {
	return c.remove(ctx, index.TaskKey(taskID))
}

// SyncCheckIn publishes one completed day of a routine.
func (c *CalendarClient) SyncCheckIn(ctx context.Context, r model.Routine, day model.Date, streak int) error {
	key := index.CheckInKey(r.ID, day.String())
	colorID := ""
	if c.colors != nil {
		colorID = c.colors.ColorID(r.Category)
	}
	if _, err := c.upsert(ctx, key, CheckInEvent(r, day, streak, colorID, key)); err != nil {
		return fmt.Errorf("sync check-in %s: %w", key, err)
	}
	return nil
}

// RemoveCheckIn deletes the event for a day that is no longer completed.
func (c *CalendarClient) RemoveCheckIn(ctx context.Context, routineID string, day model.Date) error {
	return c.remove(ctx, index.CheckInKey(routineID, day.String()))
}

// MarkOverdue prefixes an event's summary with the overdue marker.
func (c *CalendarClient) MarkOverdue(ctx context.Context, eventID, summary string) error {
	_, err := c.PatchEvent(ctx, eventID, &calendar.Event{Summary: OverdueSummary(summary)})
	return err
}

func (c *CalendarClient) upsert(ctx context.Context, key string, event *calendar.Event) (*calendar.Event, error) {
	var existing *calendar.Event
	var err error
	// 1. Try local index first
	if c.index != nil {
		if eventID := c.index.Get(key); eventID != "" {
			existing, err = c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
			if err != nil {
				existing = nil
			}
		}
	}

	// 2. Fall back to searching by extended property
	if existing == nil {
		existing, err = c.FindEvent(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("error searching for event: %w", err)
		}
	}

	if existing != nil {
		result := existing
		if patch := EventNeedsUpdate(existing, event); patch != nil {
			result, err = c.PatchEvent(ctx, existing.Id, patch)
			if err != nil {
				return nil, err
			}
		}
		c.remember(key, result.Id)
		return result, nil
	}

	created, err := c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	c.remember(key, created.Id)
	return created, nil
}

func (c *CalendarClient) remove(ctx context.Context, key string) error {
	var eventID string
	if c.index != nil {
		eventID = c.index.Get(key)
	}
	if eventID == "" {
		// Not indexed here; the event may still exist from another machine.
		existing, err := c.FindEvent(ctx, key)
		if err != nil {
			return fmt.Errorf("find %s: %w", key, err)
		}
		if existing == nil {
			return nil
		}
		eventID = existing.Id
	}
	if err := c.DeleteEvent(ctx, eventID); err != nil && !isGone(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if c.index != nil {
		c.index.Remove(key)
	}
	return nil
}

func (c *CalendarClient) remember(key, eventID string) {
	if c.index != nil {
		c.index.Set(key, eventID)
	}
}

// PatchEvent performs a partial update on an event.
func (c *CalendarClient) PatchEvent(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	return c.srv.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
}

// DeleteEvent deletes an event from the calendar.
func (c *CalendarClient) DeleteEvent(ctx context.Context, eventID string) error {
	return c.srv.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
}

// FindEvent searches for the event carrying key in its private properties.
func (c *CalendarClient) FindEvent(ctx context.Context, key string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", PropertyKey, key)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

// SaveState flushes the index and color cache.
func (c *CalendarClient) SaveState() error {
	var errs []error
	if c.index != nil {
		errs = append(errs, c.index.Save())
	}
	if c.colors != nil {
		errs = append(errs, c.colors.Save())
	}
	return errors.Join(errs...)
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}
