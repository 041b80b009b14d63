package matrix

import (
	"fmt"

	"github.com/harrisonrobin/habitask/pkg/model"
)

// Config holds the sort applied inside each quadrant.
type Config map[Quadrant]SortOption

// DefaultConfig sorts the urgent quadrants by urgency and the others by
// importance, both descending.
func DefaultConfig() Config {
	return Config{
		UrgentImportant:       {Key: ByUrgency, Direction: Desc},
		UrgentNotImportant:    {Key: ByUrgency, Direction: Desc},
		NotUrgentImportant:    {Key: ByImportance, Direction: Desc},
		NotUrgentNotImportant: {Key: ByImportance, Direction: Desc},
	}
}

// With returns a copy of c with overrides applied on top.
func (c Config) With(overrides map[Quadrant]SortOption) Config {
	out := make(Config, len(c)+len(overrides))
	for q, o := range c {
		out[q] = o
	}
	for q, o := range overrides {
		if q.Valid() {
			out[q] = o
		}
	}
	return out
}

func (c Config) option(q Quadrant) SortOption {
	if o, ok := c[q]; ok {
		return o
	}
	return DefaultConfig()[q]
}

// Buckets maps every quadrant to its ordered tasks. All four keys are
// always present.
type Buckets map[Quadrant][]model.Task

// Partition drops completed tasks, classifies the rest and sorts each
// quadrant with its configured option.
func Partition(tasks []model.Task, cfg Config) Buckets {
	grouped := make(map[Quadrant][]model.Task, len(Quadrants))
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		q := ClassifyTask(t)
		grouped[q] = append(grouped[q], t)
	}

	out := make(Buckets, len(Quadrants))
	for _, q := range Quadrants {
		out[q] = Sort(grouped[q], cfg.option(q))
	}
	return out
}

// Counts returns the number of tasks in each quadrant.
func Counts(b Buckets) map[Quadrant]int {
	out := make(map[Quadrant]int, len(Quadrants))
	for _, q := range Quadrants {
		out[q] = len(b[q])
	}
	return out
}

// Total is the number of tasks across all buckets.
func (b Buckets) Total() int {
	n := 0
	for _, ts := range b {
		n += len(ts)
	}
	return n
}

// Reassign moves the task with the given id into target by overwriting its
// scores with the quadrant's canonical pair. The input slice is never
// modified; the caller persists the returned task. A task already in
// target keeps its scores, so a drop onto the same quadrant changes nothing.
func Reassign(tasks []model.Task, id string, target Quadrant) (model.Task, error) {
	scores, ok := Canonical(target)
	if !ok {
		return model.Task{}, fmt.Errorf("reassign %q: unknown quadrant %d", id, int(target))
	}
	i := model.FindTask(tasks, id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("reassign task %q: %w", id, model.ErrNotFound)
	}
	updated := model.NormalizeTask(model.CloneTasks(tasks[i : i+1])[0])
	if ClassifyTask(updated) == target {
		return updated, nil
	}
	updated.Importance = scores.Importance
	updated.Urgency = scores.Urgency
	return updated, nil
}

// ReassignPatch is Reassign expressed as a store patch.
func ReassignPatch(tasks []model.Task, id string, target Quadrant) (model.TaskPatch, error) {
	updated, err := Reassign(tasks, id, target)
	if err != nil {
		return model.TaskPatch{}, err
	}
	return model.TaskPatch{
		ID:         updated.ID,
		Importance: model.Int(updated.Importance),
		Urgency:    model.Int(updated.Urgency),
	}, nil
}
