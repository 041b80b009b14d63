package model

// TaskPatch is a single-entity update handed back to the store. Nil fields
// are left unchanged.
type TaskPatch struct {
	ID           string
	Name         *string
	Description  *string
	Importance   *int
	Urgency      *int
	Completed    *bool
	DueDate      *Date
	ClearDueDate bool
	Tags         []string
}

// Apply returns t with the patch applied. The id is never changed and
// scores are clamped.
func (p TaskPatch) Apply(t Task) Task {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Importance != nil {
		t.Importance = *p.Importance
	}
	if p.Urgency != nil {
		t.Urgency = *p.Urgency
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.Tags != nil {
		t.Tags = append([]string(nil), p.Tags...)
	}
	return NormalizeTask(t)
}

// RoutinePatch is the routine counterpart of TaskPatch.
type RoutinePatch struct {
	ID             string
	Name           *string
	Description    *string
	Category       *string
	TargetDays     *int
	Color          *string
	CompletedDates []Date
}

// Apply returns r with the patch applied.
func (p RoutinePatch) Apply(r Routine) Routine {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.TargetDays != nil {
		r.TargetDays = *p.TargetDays
	}
	if p.Color != nil {
		r.Color = *p.Color
	}
	if p.CompletedDates != nil {
		r.CompletedDates = append(make([]Date, 0, len(p.CompletedDates)), p.CompletedDates...)
	}
	return r
}

// Int returns a pointer to v, for building patches.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
