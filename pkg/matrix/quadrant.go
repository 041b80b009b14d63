// Package matrix classifies tasks into the four importance/urgency quadrants,
// orders them within a quadrant and moves them between quadrants.
//
// Every function here is pure: collections are taken by value and new
// collections are returned, so callers may invoke them concurrently.
package matrix

import (
	"fmt"
	"strings"

	"github.com/harrisonrobin/habitask/pkg/model"
)

// Midpoint splits each axis. A score above it is high; at or below it is low.
const Midpoint = 50

// Quadrant is one of the four priority categories.
type Quadrant int

const (
	UrgentImportant Quadrant = iota
	UrgentNotImportant
	NotUrgentImportant
	NotUrgentNotImportant
)

// Quadrants lists every quadrant in display order.
var Quadrants = []Quadrant{UrgentImportant, UrgentNotImportant, NotUrgentImportant, NotUrgentNotImportant}

var quadrantNames = map[Quadrant]string{
	UrgentImportant:       "urgent-important",
	UrgentNotImportant:    "urgent-not-important",
	NotUrgentImportant:    "not-urgent-important",
	NotUrgentNotImportant: "not-urgent-not-important",
}

// Short tags follow the classic numbering: do first, schedule, delegate, eliminate.
var quadrantTags = map[Quadrant]string{
	UrgentImportant:       "q1",
	NotUrgentImportant:    "q2",
	UrgentNotImportant:    "q3",
	NotUrgentNotImportant: "q4",
}

var quadrantTitles = map[Quadrant]string{
	UrgentImportant:       "Urgent & Important",
	UrgentNotImportant:    "Urgent, Not Important",
	NotUrgentImportant:    "Important, Not Urgent",
	NotUrgentNotImportant: "Neither Urgent nor Important",
}

func (q Quadrant) String() string {
	if name, ok := quadrantNames[q]; ok {
		return name
	}
	return fmt.Sprintf("quadrant(%d)", int(q))
}

// Tag returns the short q1..q4 alias.
func (q Quadrant) Tag() string {
	return quadrantTags[q]
}

// Title is the human readable heading.
func (q Quadrant) Title() string {
	return quadrantTitles[q]
}

// Valid reports whether q is one of the four quadrants.
func (q Quadrant) Valid() bool {
	_, ok := quadrantNames[q]
	return ok
}

// ParseQuadrant accepts either the long name or the q1..q4 alias.
func ParseQuadrant(s string) (Quadrant, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for q, name := range quadrantNames {
		if s == name || s == quadrantTags[q] {
			return q, nil
		}
	}
	return 0, fmt.Errorf("unknown quadrant %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (q Quadrant) MarshalText() ([]byte, error) {
	if !q.Valid() {
		return nil, fmt.Errorf("unknown quadrant %d", int(q))
	}
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Quadrant) UnmarshalText(b []byte) error {
	parsed, err := ParseQuadrant(string(b))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Classify maps a score pair to its quadrant. Scores are clamped first, so
// every input lands in exactly one quadrant.
func Classify(importance, urgency int) Quadrant {
	important := model.ClampScore(importance) > Midpoint
	urgent := model.ClampScore(urgency) > Midpoint
	switch {
	case urgent && important:
		return UrgentImportant
	case urgent:
		return UrgentNotImportant
	case important:
		return NotUrgentImportant
	default:
		return NotUrgentNotImportant
	}
}

// ClassifyTask is Classify over a task's scores.
func ClassifyTask(t model.Task) Quadrant {
	return Classify(t.Importance, t.Urgency)
}

// Scores is an importance/urgency pair.
type Scores struct {
	Importance int
	Urgency    int
}

var canonical = map[Quadrant]Scores{
	UrgentImportant:       {Importance: 75, Urgency: 75},
	UrgentNotImportant:    {Importance: 25, Urgency: 75},
	NotUrgentImportant:    {Importance: 75, Urgency: 25},
	NotUrgentNotImportant: {Importance: 25, Urgency: 25},
}

// Canonical returns the midpoint scores a task receives when moved into q.
func Canonical(q Quadrant) (Scores, bool) {
	s, ok := canonical[q]
	return s, ok
}
