package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/harrisonrobin/habitask/pkg/model"
)

type snapshot struct {
	Tasks    []model.Task    `json:"tasks"`
	Routines []model.Routine `json:"routines"`
}

// FileStore keeps both collections in one JSON document on disk.
type FileStore struct {
	Path string

	mu   sync.RWMutex
	data snapshot
}

// NewFileStore opens the document at path, starting empty if it does not
// exist yet.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		Path: path,
		data: snapshot{Tasks: []model.Task{}, Routines: []model.Routine{}},
	}
	if _, err := os.Stat(path); err == nil {
		if err := s.Load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Load rereads the document from disk.
func (s *FileStore) Load() error {
	f, err := os.Open(s.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	var data snapshot
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return err
	}
	tasks, err := prepareTasks(data.Tasks)
	if err != nil {
		return fmt.Errorf("invalid document %s: %w", s.Path, err)
	}
	routines, err := prepareRoutines(data.Routines)
	if err != nil {
		return fmt.Errorf("invalid document %s: %w", s.Path, err)
	}
	data = snapshot{Tasks: tasks, Routines: routines}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

func (s *FileStore) Tasks(ctx context.Context) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneTasks(s.data.Tasks), nil
}

func (s *FileStore) Routines(ctx context.Context) ([]model.Routine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneRoutines(s.data.Routines), nil
}

func (s *FileStore) ReplaceTasks(ctx context.Context, tasks []model.Task) error {
	prepared, err := prepareTasks(tasks)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.data
	next.Tasks = prepared
	return s.commit(next)
}

func (s *FileStore) ReplaceRoutines(ctx context.Context, routines []model.Routine) error {
	prepared, err := prepareRoutines(routines)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.data
	next.Routines = prepared
	return s.commit(next)
}

func (s *FileStore) PatchTask(ctx context.Context, p model.TaskPatch) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks, updated, err := patchTasks(s.data.Tasks, p)
	if err != nil {
		return model.Task{}, err
	}
	next := s.data
	next.Tasks = tasks
	if err := s.commit(next); err != nil {
		return model.Task{}, err
	}
	return updated, nil
}

func (s *FileStore) PatchRoutine(ctx context.Context, p model.RoutinePatch) (model.Routine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	routines, updated, err := patchRoutines(s.data.Routines, p)
	if err != nil {
		return model.Routine{}, err
	}
	next := s.data
	next.Routines = routines
	if err := s.commit(next); err != nil {
		return model.Routine{}, err
	}
	return updated, nil
}

func (s *FileStore) Close() error { return nil }

// commit writes next to disk and only then swaps it in. Callers hold mu.
func (s *FileStore) commit(next snapshot) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".habitask-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(next); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return err
	}
	s.data = next
	return nil
}
