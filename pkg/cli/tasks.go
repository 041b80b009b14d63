package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/habitask/pkg/matrix"
	"github.com/harrisonrobin/habitask/pkg/model"
	"github.com/harrisonrobin/habitask/pkg/tracker"
)

func (a *app) taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Add, complete and list tasks",
	}
	cmd.AddCommand(a.taskAddCmd(), a.taskDoneCmd(), a.taskListCmd())
	return cmd
}

func (a *app) taskAddCmd() *cobra.Command {
	var (
		in  tracker.NewTask
		due string
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a task",
		Long: `Adds a task with importance and urgency scores from 0 to 100. Scores
above 50 count as important or urgent. Out-of-range scores are clamped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			if due != "" {
				d, err := model.ParseDate(due)
				if err != nil {
					return err
				}
				in.DueDate = &d
			}

			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			task, err := s.svc.AddTask(cmd.Context(), in)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.out(cmd), task)
			}
			fmt.Fprintf(a.out(cmd), "Added %s to %s\n", task.ID, matrix.ClassifyTask(task).Title())
			return nil
		},
	}
	cmd.Flags().IntVarP(&in.Importance, "importance", "i", 50, "importance score (0-100)")
	cmd.Flags().IntVarP(&in.Urgency, "urgency", "u", 50, "urgency score (0-100)")
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "longer description")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVarP(&in.Tags, "tag", "t", nil, "tag (repeatable)")
	return cmd
}

func (a *app) taskDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			task, err := s.svc.CompleteTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.out(cmd), task)
			}
			state := "open"
			if task.Completed {
				state = "completed"
			}
			fmt.Fprintf(a.out(cmd), "%s is now %s\n", task.Name, state)
			return nil
		},
	}
}

func (a *app) taskListCmd() *cobra.Command {
	var sortBy string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every task, completed ones included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := matrix.ParseSortOption(sortBy)
			if err != nil {
				return err
			}
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			tasks, err := s.svc.SortTasks(cmd.Context(), opt)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.out(cmd), tasks)
			}
			renderTasks(a.out(cmd), tasks, s.svc.Today())
			return nil
		},
	}
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "created-desc", "sort option <due|importance|urgency|created|name>[-asc|-desc]")
	return cmd
}

func (a *app) matrixCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "matrix",
		Short: "Show open tasks by quadrant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			b, err := s.svc.Matrix(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.out(cmd), b)
			}
			renderMatrix(a.out(cmd), b, s.svc.Today())
			return nil
		},
	}
}

func (a *app) reassignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reassign <id> <quadrant>",
		Short: "Move a task to another quadrant",
		Long: `Moves a task by overwriting its scores with the quadrant's canonical pair.
The quadrant is q1..q4 or its name (urgent-important, not-urgent-important,
urgent-not-important, not-urgent-not-important). A task already in the
quadrant is left unchanged.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := matrix.ParseQuadrant(args[1])
			if err != nil {
				return err
			}
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			task, err := s.svc.Reassign(cmd.Context(), args[0], target)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.out(cmd), task)
			}
			fmt.Fprintf(a.out(cmd), "%s is now in %s (importance %d, urgency %d)\n",
				task.Name, target.Title(), task.Importance, task.Urgency)
			return nil
		},
	}
}
