package model

import (
	"fmt"
	"strings"
)

// ValidateTasks reports the first contract violation in a task collection.
// Out-of-range scores are not violations; they are clamped on write.
func ValidateTasks(tasks []Task) error {
	seen := make(map[string]struct{}, len(tasks))
	for i, t := range tasks {
		if err := ValidateTask(t); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("task %q: %w", t.ID, ErrDuplicateID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

// ValidateTask checks a single task.
func ValidateTask(t Task) error {
	if t.ID == "" {
		return fmt.Errorf("missing id")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("task %q: %w", t.ID, ErrEmptyName)
	}
	return nil
}

// ValidateRoutines reports the first contract violation in a routine
// collection. A non-positive targetDays is surfaced, never corrected.
func ValidateRoutines(routines []Routine) error {
	seen := make(map[string]struct{}, len(routines))
	for i, r := range routines {
		if err := ValidateRoutine(r); err != nil {
			return fmt.Errorf("routine %d: %w", i, err)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("routine %q: %w", r.ID, ErrDuplicateID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

// ValidateRoutine checks a single routine.
func ValidateRoutine(r Routine) error {
	if r.ID == "" {
		return fmt.Errorf("missing id")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("routine %q: %w", r.ID, ErrEmptyName)
	}
	if r.TargetDays <= 0 {
		return fmt.Errorf("routine %q has target %d: %w", r.ID, r.TargetDays, ErrInvalidTarget)
	}
	days := make(map[string]struct{}, len(r.CompletedDates))
	for _, d := range r.CompletedDates {
		if d.IsZero() {
			return fmt.Errorf("routine %q: %w", r.ID, ErrInvalidDate)
		}
		key := d.String()
		if _, dup := days[key]; dup {
			return fmt.Errorf("routine %q on %s: %w", r.ID, key, ErrDuplicateDate)
		}
		days[key] = struct{}{}
	}
	return nil
}
