package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/habitask/pkg/model"
	"github.com/harrisonrobin/habitask/pkg/progress"
	"github.com/harrisonrobin/habitask/pkg/tracker"
)

func (a *app) routineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routine",
		Short: "Add, check off and list daily routines",
	}
	cmd.AddCommand(a.routineAddCmd(), a.routineToggleCmd(), a.routineListCmd())
	return cmd
}

func (a *app) routineAddCmd() *cobra.Command {
	var in tracker.NewRoutine
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a routine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := s.svc.AddRoutine(cmd.Context(), in)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.out(cmd), r)
			}
			fmt.Fprintf(a.out(cmd), "Added routine %s (%d days)\n", r.ID, r.TargetDays)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Category, "category", "c", "", "category")
	cmd.Flags().IntVar(&in.TargetDays, "target", model.DefaultTargetDays, "number of days to complete")
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "longer description")
	cmd.Flags().StringVar(&in.Color, "color", "", "display color")
	return cmd
}

func (a *app) routineToggleCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark or unmark a routine as done for a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var day *model.Date
			if date != "" {
				d, err := model.ParseDate(date)
				if err != nil {
					return err
				}
				day = &d
			}
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			r, err := s.svc.ToggleRoutine(cmd.Context(), args[0], day)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.out(cmd), r)
			}
			on := s.svc.Today()
			if day != nil {
				on = *day
			}
			state := "not done"
			if progress.CompletedOn(r, on) {
				state = "done"
			}
			fmt.Fprintf(a.out(cmd), "%s %s on %s, streak %d\n",
				r.Name, state, on, progress.Streak(r.CompletedDates, s.svc.Today()))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to toggle (YYYY-MM-DD), today when empty")
	return cmd
}

func (a *app) routineListCmd() *cobra.Command {
	var activeOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List routines with their progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			routines, err := s.svc.Routines(cmd.Context())
			if err != nil {
				return err
			}
			if activeOnly {
				routines = progress.Active(routines)
			}
			rows := progress.Aggregate(routines, s.svc.Today()).Routines
			if a.jsonOut {
				return writeJSON(a.out(cmd), rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(a.out(cmd), mutedStyle.Render("  (none)"))
			}
			for _, row := range rows {
				fmt.Fprintln(a.out(cmd), routineLine(row))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "hide finished routines")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize routine progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			stats, err := s.svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.out(cmd), stats)
			}
			renderStats(a.out(cmd), stats)
			return nil
		},
	}
}

func (a *app) todayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's routine progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			overview, err := s.svc.Overview(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.out(cmd), overview)
			}
			renderOverview(a.out(cmd), overview)
			return nil
		},
	}
}
