// Package tracker is the calling layer around the matrix and progress
// engines. It reads snapshots from a store, supplies "today" from a clock,
// runs the pure computations and writes the results back.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harrisonrobin/habitask/pkg/matrix"
	"github.com/harrisonrobin/habitask/pkg/model"
	"github.com/harrisonrobin/habitask/pkg/progress"
	"github.com/harrisonrobin/habitask/pkg/store"
)

type Service struct {
	store  store.Store
	clock  Clock
	loc    *time.Location
	matrix matrix.Config
	logger *zap.Logger
	newID  func() string
}

// Option configures a Service.
type Option func(*Service)

func WithClock(c Clock) Option              { return func(s *Service) { s.clock = c } }
func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }
func WithMatrixConfig(c matrix.Config) Option {
	return func(s *Service) { s.matrix = c }
}
func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.logger = l } }

// WithIDGenerator replaces uuid generation, for deterministic tests.
func WithIDGenerator(fn func() string) Option { return func(s *Service) { s.newID = fn } }

func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		clock:  SystemClock{},
		loc:    time.Local,
		matrix: matrix.DefaultConfig(),
		logger: zap.NewNop(),
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Today is the current calendar day in the service's zone.
func (s *Service) Today() model.Date {
	return model.DateOf(s.clock.Now(), s.loc)
}

// NewTask describes a task to create.
type NewTask struct {
	Name        string
	Description string
	Importance  int
	Urgency     int
	DueDate     *model.Date
	Tags        []string
}

// AddTask creates a task with a fresh id and creation time.
func (s *Service) AddTask(ctx context.Context, in NewTask) (model.Task, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.Task{}, model.ErrEmptyName
	}
	for _, score := range []int{in.Importance, in.Urgency} {
		if err := model.CheckScore(score); err != nil {
			s.logger.Warn("clamping task score", zap.String("name", in.Name), zap.Int("score", score))
		}
	}

	tasks, err := s.store.Tasks(ctx)
	if err != nil {
		return model.Task{}, fmt.Errorf("load tasks: %w", err)
	}
	task := model.NormalizeTask(model.Task{
		ID:          s.newID(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Importance:  in.Importance,
		Urgency:     in.Urgency,
		CreatedAt:   s.clock.Now().UTC(),
		DueDate:     in.DueDate,
		Tags:        in.Tags,
	})
	if err := s.store.ReplaceTasks(ctx, append(tasks, task)); err != nil {
		return model.Task{}, fmt.Errorf("save tasks: %w", err)
	}
	s.logger.Info("task added",
		zap.String("id", task.ID),
		zap.Stringer("quadrant", matrix.ClassifyTask(task)))
	return task, nil
}

// CompleteTask flips the completed flag.
func (s *Service) CompleteTask(ctx context.Context, id string) (model.Task, error) {
	tasks, err := s.store.Tasks(ctx)
	if err != nil {
		return model.Task{}, fmt.Errorf("load tasks: %w", err)
	}
	i := model.FindTask(tasks, id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("complete task %q: %w", id, model.ErrNotFound)
	}
	updated, err := s.store.PatchTask(ctx, model.TaskPatch{ID: id, Completed: model.Bool(!tasks[i].Completed)})
	if err != nil {
		return model.Task{}, err
	}
	s.logger.Info("task toggled", zap.String("id", id), zap.Bool("completed", updated.Completed))
	return updated, nil
}

// Tasks returns the stored tasks in insertion order.
func (s *Service) Tasks(ctx context.Context) ([]model.Task, error) {
	return s.store.Tasks(ctx)
}

// Matrix partitions the open tasks into quadrants.
func (s *Service) Matrix(ctx context.Context) (matrix.Buckets, error) {
	tasks, err := s.store.Tasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	b := matrix.Partition(tasks, s.matrix)
	s.logger.Debug("matrix partitioned", zap.Int("open", b.Total()), zap.Int("all", len(tasks)))
	return b, nil
}

// SortTasks returns every task ordered by opt.
func (s *Service) SortTasks(ctx context.Context, opt matrix.SortOption) ([]model.Task, error) {
	tasks, err := s.store.Tasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return matrix.Sort(tasks, opt), nil
}

// Reassign moves a task to target and persists the new scores.
func (s *Service) Reassign(ctx context.Context, id string, target matrix.Quadrant) (model.Task, error) {
	tasks, err := s.store.Tasks(ctx)
	if err != nil {
		return model.Task{}, fmt.Errorf("load tasks: %w", err)
	}
	patch, err := matrix.ReassignPatch(tasks, id, target)
	if err != nil {
		return model.Task{}, err
	}
	updated, err := s.store.PatchTask(ctx, patch)
	if err != nil {
		return model.Task{}, err
	}
	s.logger.Info("task reassigned",
		zap.String("id", id),
		zap.Stringer("quadrant", target),
		zap.Int("importance", updated.Importance),
		zap.Int("urgency", updated.Urgency))
	return updated, nil
}

// ImportTasks upserts tasks by id. Imported tasks keep their own ids and
// creation times; a missing creation time is set to now.
func (s *Service) ImportTasks(ctx context.Context, imported []model.Task) (added, updated int, err error) {
	tasks, err := s.store.Tasks(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("load tasks: %w", err)
	}
	for _, t := range imported {
		if t.ID == "" {
			t.ID = s.newID()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = s.clock.Now().UTC()
		}
		if i := model.FindTask(tasks, t.ID); i >= 0 {
			tasks[i] = t
			updated++
			continue
		}
		tasks = append(tasks, t)
		added++
	}
	if err := s.store.ReplaceTasks(ctx, tasks); err != nil {
		return 0, 0, fmt.Errorf("save tasks: %w", err)
	}
	s.logger.Info("tasks imported", zap.Int("added", added), zap.Int("updated", updated))
	return added, updated, nil
}

// NewRoutine describes a routine to create.
type NewRoutine struct {
	Name        string
	Description string
	Category    string
	TargetDays  int
	Color       string
}

// AddRoutine creates a routine. A target below one day is rejected with
// model.ErrInvalidTarget; callers supply model.DefaultTargetDays themselves.
func (s *Service) AddRoutine(ctx context.Context, in NewRoutine) (model.Routine, error) {
	routine := model.Routine{
		ID:             s.newID(),
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Category:       in.Category,
		TargetDays:     in.TargetDays,
		Color:          in.Color,
		CreatedAt:      s.clock.Now().UTC(),
		CompletedDates: []model.Date{},
	}
	if err := model.ValidateRoutine(routine); err != nil {
		return model.Routine{}, err
	}

	routines, err := s.store.Routines(ctx)
	if err != nil {
		return model.Routine{}, fmt.Errorf("load routines: %w", err)
	}
	if err := s.store.ReplaceRoutines(ctx, append(routines, routine)); err != nil {
		return model.Routine{}, fmt.Errorf("save routines: %w", err)
	}
	s.logger.Info("routine added", zap.String("id", routine.ID), zap.String("category", routine.Category))
	return routine, nil
}

// Routines returns the stored routines.
func (s *Service) Routines(ctx context.Context) ([]model.Routine, error) {
	return s.store.Routines(ctx)
}

// ToggleRoutine flips completion for day, or for today when day is nil.
func (s *Service) ToggleRoutine(ctx context.Context, id string, day *model.Date) (model.Routine, error) {
	on := s.Today()
	if day != nil {
		on = *day
	}
	routines, err := s.store.Routines(ctx)
	if err != nil {
		return model.Routine{}, fmt.Errorf("load routines: %w", err)
	}
	i := model.FindRoutine(routines, id)
	if i < 0 {
		return model.Routine{}, fmt.Errorf("toggle routine %q: %w", id, model.ErrNotFound)
	}
	toggled := progress.Toggle(routines[i], on)
	updated, err := s.store.PatchRoutine(ctx, model.RoutinePatch{ID: id, CompletedDates: toggled.CompletedDates})
	if err != nil {
		return model.Routine{}, err
	}
	s.logger.Info("routine toggled",
		zap.String("id", id),
		zap.Stringer("day", on),
		zap.Bool("done", progress.CompletedOn(updated, on)),
		zap.Int("streak", progress.Streak(updated.CompletedDates, s.Today())))
	return updated, nil
}

// Stats aggregates every routine as of today.
func (s *Service) Stats(ctx context.Context) (progress.Stats, error) {
	routines, err := s.store.Routines(ctx)
	if err != nil {
		return progress.Stats{}, fmt.Errorf("load routines: %w", err)
	}
	return progress.Aggregate(routines, s.Today()), nil
}

// Overview reports today's progress over active routines.
func (s *Service) Overview(ctx context.Context) (progress.Overview, error) {
	routines, err := s.store.Routines(ctx)
	if err != nil {
		return progress.Overview{}, fmt.Errorf("load routines: %w", err)
	}
	return progress.Today(routines, s.Today()), nil
}
