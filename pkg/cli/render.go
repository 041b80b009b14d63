package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harrisonrobin/habitask/pkg/matrix"
	"github.com/harrisonrobin/habitask/pkg/model"
	"github.com/harrisonrobin/habitask/pkg/progress"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	quadrantStyles = map[matrix.Quadrant]lipgloss.Style{
		matrix.UrgentImportant:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		matrix.NotUrgentImportant:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		matrix.UrgentNotImportant:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		matrix.NotUrgentNotImportant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8")),
	}
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func taskLine(t model.Task, today model.Date) string {
	var b strings.Builder
	switch {
	case t.Completed:
		b.WriteString(doneStyle.Render("✓ "))
	case t.HasDueDate() && t.DueDate.Before(today):
		b.WriteString(overdueStyle.Render("! "))
	default:
		b.WriteString("  ")
	}
	fmt.Fprintf(&b, "%s  I%-3d U%-3d", t.Name, t.Importance, t.Urgency)
	if t.HasDueDate() {
		fmt.Fprintf(&b, " due %s", t.DueDate)
	}
	if len(t.Tags) > 0 {
		b.WriteString(" #" + strings.Join(t.Tags, " #"))
	}
	b.WriteString("  " + mutedStyle.Render(t.ID))
	return b.String()
}

func renderTasks(w io.Writer, tasks []model.Task, today model.Date) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  (none)"))
		return
	}
	for _, t := range tasks {
		fmt.Fprintln(w, taskLine(t, today))
	}
}

func renderMatrix(w io.Writer, b matrix.Buckets, today model.Date) {
	for i, q := range matrix.Quadrants {
		if i > 0 {
			fmt.Fprintln(w)
		}
		heading := fmt.Sprintf("%s  %s (%d)", strings.ToUpper(q.Tag()), q.Title(), len(b[q]))
		fmt.Fprintln(w, quadrantStyles[q].Render(heading))
		renderTasks(w, b[q], today)
	}
}

func routineLine(p progress.RoutineProgress) string {
	mark := "  "
	if p.Finished {
		mark = doneStyle.Render("✓ ")
	}
	category := p.Category
	if category == "" {
		category = "-"
	}
	return fmt.Sprintf("%s%s  [%s] %d/%d days (%.0f%%) streak %d  %s",
		mark, p.Name, category, p.Completions, p.TargetDays, p.Rate, p.Streak, mutedStyle.Render(p.ID))
}

func renderStats(w io.Writer, s progress.Stats) {
	fmt.Fprintln(w, headingStyle.Render("Routines"))
	if len(s.Routines) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  (none)"))
	}
	for _, p := range s.Routines {
		fmt.Fprintln(w, routineLine(p))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("Summary"))
	fmt.Fprintf(w, "  routines:          %d\n", s.TotalRoutines)
	fmt.Fprintf(w, "  completions:       %d\n", s.TotalCompletions)
	fmt.Fprintf(w, "  average rate:      %.1f%%\n", s.AverageCompletionRate)
	fmt.Fprintf(w, "  longest streak:    %d\n", s.LongestStreak)
	if s.Best != nil {
		fmt.Fprintf(w, "  best:              %s\n", s.Best.Name)
	}

	if len(s.PerCategory) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("Categories"))
	for _, name := range slices.Sorted(maps.Keys(s.PerCategory)) {
		c := s.PerCategory[name]
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(w, "  %-18s %d routines, %d completions\n", name, c.Count, c.Completions)
	}
}

func renderOverview(w io.Writer, o progress.Overview) {
	fmt.Fprintln(w, headingStyle.Render("Today "+o.Day.String()))
	fmt.Fprintf(w, "  %d of %d active routines done (%.0f%%)\n", o.CompletedToday, o.Active, o.Rate)
}
