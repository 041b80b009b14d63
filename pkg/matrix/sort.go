package matrix

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/harrisonrobin/habitask/pkg/model"
)

// SortKey selects the primary ordering field.
type SortKey string

const (
	ByDueDate    SortKey = "due"
	ByImportance SortKey = "importance"
	ByUrgency    SortKey = "urgency"
	ByCreatedAt  SortKey = "created"
	ByName       SortKey = "name"
)

// Direction of the primary comparison.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortOption pairs a key with a direction. It marshals as "<key>-<dir>",
// e.g. "urgency-desc".
type SortOption struct {
	Key       SortKey
	Direction Direction
}

func (o SortOption) String() string {
	return string(o.Key) + "-" + string(o.Direction)
}

// ParseSortOption parses "<key>-<dir>". A bare key gets its natural
// direction: ascending for due and name, descending otherwise.
func ParseSortOption(s string) (SortOption, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	key, dir, hasDir := strings.Cut(s, "-")
	opt := SortOption{Key: SortKey(key)}
	switch opt.Key {
	case ByDueDate, ByName:
		opt.Direction = Asc
	case ByImportance, ByUrgency, ByCreatedAt:
		opt.Direction = Desc
	default:
		return SortOption{}, fmt.Errorf("unknown sort key %q", key)
	}
	if hasDir {
		switch Direction(dir) {
		case Asc, Desc:
			opt.Direction = Direction(dir)
		default:
			return SortOption{}, fmt.Errorf("unknown sort direction %q", dir)
		}
	}
	return opt, nil
}

// MarshalText implements encoding.TextMarshaler.
func (o SortOption) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *SortOption) UnmarshalText(b []byte) error {
	parsed, err := ParseSortOption(string(b))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Sort returns a new slice ordered by opt. The input is not modified and
// equal elements keep their input order.
//
// Ties on importance break by urgency descending. Ties on urgency break by
// importance descending, ties on due date by urgency descending. The
// tie-break ignores opt.Direction. Tasks without a due date sort last
// under either direction.
func Sort(tasks []model.Task, opt SortOption) []model.Task {
	out := model.CloneTasks(tasks)
	if out == nil {
		out = []model.Task{}
	}
	slices.SortStableFunc(out, comparator(opt))
	return out
}

func comparator(opt SortOption) func(a, b model.Task) int {
	sign := 1
	if opt.Direction == Desc {
		sign = -1
	}
	switch opt.Key {
	case ByImportance:
		return func(a, b model.Task) int {
			if c := cmp.Compare(a.Importance, b.Importance); c != 0 {
				return sign * c
			}
			return cmp.Compare(b.Urgency, a.Urgency)
		}
	case ByUrgency:
		return func(a, b model.Task) int {
			if c := cmp.Compare(a.Urgency, b.Urgency); c != 0 {
				return sign * c
			}
			return cmp.Compare(b.Importance, a.Importance)
		}
	case ByDueDate:
		return func(a, b model.Task) int {
			aHas, bHas := a.HasDueDate(), b.HasDueDate()
			switch {
			case aHas && !bHas:
				return -1
			case !aHas && bHas:
				return 1
			case aHas && bHas:
				if c := a.DueDate.Compare(b.DueDate.Time); c != 0 {
					return sign * c
				}
			}
			return cmp.Compare(b.Urgency, a.Urgency)
		}
	case ByCreatedAt:
		return func(a, b model.Task) int {
			return sign * a.CreatedAt.Compare(b.CreatedAt)
		}
	case ByName:
		col := collate.New(language.Und)
		return func(a, b model.Task) int {
			return sign * col.CompareString(a.Name, b.Name)
		}
	default:
		return func(a, b model.Task) int { return 0 }
	}
}
