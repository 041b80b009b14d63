package tracker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/harrisonrobin/habitask/pkg/google"
	"github.com/harrisonrobin/habitask/pkg/model"
	"github.com/harrisonrobin/habitask/pkg/overdue"
	"github.com/harrisonrobin/habitask/pkg/progress"
)

// Publisher mirrors tasks and check-ins to an external calendar.
// *google.CalendarClient implements it.
type Publisher interface {
	SyncTask(ctx context.Context, task model.Task, today model.Date) (string, error)
	RemoveTask(ctx context.Context, taskID string) error
	SyncCheckIn(ctx context.Context, r model.Routine, day model.Date, streak int) error
	RemoveCheckIn(ctx context.Context, routineID string, day model.Date) error
	MarkOverdue(ctx context.Context, eventID, summary string) error
}

// PublishReport counts what a Publish run did.
type PublishReport struct {
	Tasks    int `json:"tasks"`
	Removed  int `json:"removed"`
	CheckIns int `json:"checkIns"`
	Failed   int `json:"failed"`
}

// Publish pushes open tasks with a due date and the check-ins of the last
// windowDays days. Completed or undated tasks lose their event. Failures on
// single items are logged and joined into the returned error; the run
// continues past them.
func (s *Service) Publish(ctx context.Context, pub Publisher, table *overdue.Table, windowDays int) (PublishReport, error) {
	var report PublishReport
	var errs []error
	today := s.Today()

	tasks, err := s.store.Tasks(ctx)
	if err != nil {
		return report, fmt.Errorf("load tasks: %w", err)
	}
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if task.Completed || !task.HasDueDate() {
			if err := pub.RemoveTask(ctx, task.ID); err != nil {
				s.logger.Warn("remove task event failed", zap.String("id", task.ID), zap.Error(err))
				errs = append(errs, err)
				report.Failed++
				continue
			}
			if table != nil {
				table.Remove(task.ID)
			}
			report.Removed++
			continue
		}

		eventID, err := pub.SyncTask(ctx, task, today)
		if err != nil {
			s.logger.Warn("sync task failed", zap.String("id", task.ID), zap.Error(err))
			errs = append(errs, err)
			report.Failed++
			continue
		}
		if table != nil {
			table.Update(task.ID, eventID, google.TaskSummary(task, today), *task.DueDate, today)
		}
		report.Tasks++
	}

	routines, err := s.store.Routines(ctx)
	if err != nil {
		return report, fmt.Errorf("load routines: %w", err)
	}
	if windowDays < 1 {
		windowDays = 1
	}
	for _, r := range routines {
		for offset := windowDays - 1; offset >= 0; offset-- {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			day := today.AddDays(-offset)
			if !progress.CompletedOn(r, day) {
				if err := pub.RemoveCheckIn(ctx, r.ID, day); err != nil {
					s.logger.Warn("remove check-in failed", zap.String("routine", r.ID), zap.Stringer("day", day), zap.Error(err))
					errs = append(errs, err)
					report.Failed++
				}
				continue
			}
			if err := pub.SyncCheckIn(ctx, r, day, progress.Streak(r.CompletedDates, day)); err != nil {
				s.logger.Warn("sync check-in failed", zap.String("routine", r.ID), zap.Stringer("day", day), zap.Error(err))
				errs = append(errs, err)
				report.Failed++
				continue
			}
			report.CheckIns++
		}
	}

	s.logger.Info("publish finished",
		zap.Int("tasks", report.Tasks),
		zap.Int("removed", report.Removed),
		zap.Int("checkins", report.CheckIns),
		zap.Int("failed", report.Failed))
	return report, errors.Join(errs...)
}

// SweepOverdue marks the events of tasks whose due day has passed since the
// last publish. Entries that fail to update stay in the table for the next
// sweep.
func (s *Service) SweepOverdue(ctx context.Context, pub Publisher, table *overdue.Table) (int, error) {
	today := s.Today()
	var errs []error
	marked := 0
	for _, entry := range table.Sweep(today) {
		if err := pub.MarkOverdue(ctx, entry.EventID, entry.Summary); err != nil {
			s.logger.Warn("mark overdue failed", zap.String("event", entry.EventID), zap.Error(err))
			errs = append(errs, err)
			table.Restore(entry)
			continue
		}
		marked++
	}
	s.logger.Info("overdue sweep finished", zap.Int("marked", marked))
	return marked, errors.Join(errs...)
}
