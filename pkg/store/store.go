// Package store persists task and routine collections. The engine never
// talks to a store; the tracker service reads snapshots from one and hands
// back replacements or single-entity patches.
package store

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/habitask/pkg/config"
	"github.com/harrisonrobin/habitask/pkg/model"
)

// Store is the persistence collaborator.
type Store interface {
	Tasks(ctx context.Context) ([]model.Task, error)
	Routines(ctx context.Context) ([]model.Routine, error)
	// ReplaceTasks validates and writes the whole collection. Nothing is
	// written when validation fails.
	ReplaceTasks(ctx context.Context, tasks []model.Task) error
	ReplaceRoutines(ctx context.Context, routines []model.Routine) error
	// PatchTask applies p to the task with p.ID and returns the stored
	// result. A missing id yields model.ErrNotFound.
	PatchTask(ctx context.Context, p model.TaskPatch) (model.Task, error)
	PatchRoutine(ctx context.Context, p model.RoutinePatch) (model.Routine, error)
	Close() error
}

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Open returns the backend selected by cfg.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store {
	case "", BackendFile:
		path, err := cfg.DataPath()
		if err != nil {
			return nil, err
		}
		return NewFileStore(path)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

func prepareTasks(tasks []model.Task) ([]model.Task, error) {
	out := model.CloneTasks(tasks)
	if out == nil {
		out = []model.Task{}
	}
	for i := range out {
		out[i] = model.NormalizeTask(out[i])
	}
	if err := model.ValidateTasks(out); err != nil {
		return nil, err
	}
	return out, nil
}

func prepareRoutines(routines []model.Routine) ([]model.Routine, error) {
	out := model.CloneRoutines(routines)
	if out == nil {
		out = []model.Routine{}
	}
	if err := model.ValidateRoutines(out); err != nil {
		return nil, err
	}
	return out, nil
}

// patchTasks applies p to a copy of tasks and returns the patched copy
// together with the updated task.
func patchTasks(tasks []model.Task, p model.TaskPatch) ([]model.Task, model.Task, error) {
	i := model.FindTask(tasks, p.ID)
	if i < 0 {
		return nil, model.Task{}, fmt.Errorf("patch task %q: %w", p.ID, model.ErrNotFound)
	}
	out := model.CloneTasks(tasks)
	out[i] = p.Apply(out[i])
	if err := model.ValidateTask(out[i]); err != nil {
		return nil, model.Task{}, err
	}
	return out, out[i], nil
}

func patchRoutines(routines []model.Routine, p model.RoutinePatch) ([]model.Routine, model.Routine, error) {
	i := model.FindRoutine(routines, p.ID)
	if i < 0 {
		return nil, model.Routine{}, fmt.Errorf("patch routine %q: %w", p.ID, model.ErrNotFound)
	}
	out := model.CloneRoutines(routines)
	out[i] = p.Apply(out[i])
	if err := model.ValidateRoutine(out[i]); err != nil {
		return nil, model.Routine{}, err
	}
	return out, out[i], nil
}
