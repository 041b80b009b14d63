package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harrisonrobin/habitask/pkg/auth"
	"github.com/harrisonrobin/habitask/pkg/colors"
	"github.com/harrisonrobin/habitask/pkg/config"
	"github.com/harrisonrobin/habitask/pkg/google"
	"github.com/harrisonrobin/habitask/pkg/index"
	"github.com/harrisonrobin/habitask/pkg/overdue"
)

const (
	eventIndexFile  = "events.json"
	colorCacheFile  = "category_colors.json"
	overdueFileName = "pending_tasks.json"
)

// calendarState holds the local side tables kept next to the config.
type calendarState struct {
	index  *index.EventIndex
	colors *colors.ColorCache
	table  *overdue.Table
}

// openCalendarState loads the side tables. An unreadable index or color
// cache is skipped with a warning; it only costs extra API lookups.
func (a *app) openCalendarState(dir string) (*calendarState, error) {
	st := &calendarState{}
	var err error
	if st.index, err = index.NewEventIndex(filepath.Join(dir, eventIndexFile)); err != nil {
		a.log().Warn("failed to initialize event index", zap.Error(err))
		st.index = nil
	}
	if st.colors, err = colors.NewColorCache(filepath.Join(dir, colorCacheFile)); err != nil {
		a.log().Warn("failed to initialize color cache", zap.Error(err))
		st.colors = nil
	}
	if st.table, err = overdue.NewTable(filepath.Join(dir, overdueFileName)); err != nil {
		return nil, fmt.Errorf("failed to initialize overdue table: %w", err)
	}
	return st, nil
}

func (a *app) saveCalendarState(client *google.CalendarClient, st *calendarState) {
	if err := client.SaveState(); err != nil {
		a.log().Warn("failed to save calendar state", zap.Error(err))
	}
	if err := st.table.Save(); err != nil {
		a.log().Warn("failed to save overdue table", zap.Error(err))
	}
}

func (a *app) syncCmd() *cobra.Command {
	var calendarName string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Publish dated tasks and recent check-ins to Google Calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			dir, err := config.Dir()
			if err != nil {
				return err
			}
			if calendarName == "" {
				calendarName = s.cfg.Calendar
			}
			state, err := a.openCalendarState(dir)
			if err != nil {
				return err
			}
			client, err := google.NewClient(ctx, dir, calendarName, state.index, state.colors, a.log())
			if err != nil {
				return fmt.Errorf("error creating Google Calendar client: %w", err)
			}
			defer a.saveCalendarState(client, state)

			report, err := s.svc.Publish(ctx, client, state.table, s.cfg.CheckInWindowDays)
			if a.jsonOut {
				if jerr := writeJSON(a.out(cmd), report); jerr != nil {
					return jerr
				}
			} else {
				fmt.Fprintf(a.out(cmd), "Synced %d tasks and %d check-ins to %q, removed %d events\n",
					report.Tasks, report.CheckIns, calendarName, report.Removed)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&calendarName, "calendar", "", "calendar name (overrides config)")
	return cmd
}

func (a *app) sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mark published tasks whose due day has passed as overdue",
		Long: `Marks the calendar events of tasks that became overdue since the last sync.
Only the local overdue table is read, so this is cheap enough for a daily
cron job.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			dir, err := config.Dir()
			if err != nil {
				return err
			}
			state, err := a.openCalendarState(dir)
			if err != nil {
				return err
			}
			if len(state.table.Entries) == 0 {
				fmt.Fprintln(a.out(cmd), "Nothing to sweep")
				return nil
			}
			client, err := google.NewClient(ctx, dir, s.cfg.Calendar, state.index, state.colors, a.log())
			if err != nil {
				return fmt.Errorf("error creating Google Calendar client: %w", err)
			}
			defer a.saveCalendarState(client, state)

			marked, err := s.svc.SweepOverdue(ctx, client, state.table)
			fmt.Fprintf(a.out(cmd), "Marked %d tasks overdue\n", marked)
			return err
		},
	}
}

func (a *app) authCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Calendar",
		Long: `Removes any stored token and runs the browser authorization flow. Put the
OAuth client credentials.json from the Google Cloud console in the config
directory first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			if err := auth.ResetToken(dir); err != nil {
				return err
			}
			if _, err := auth.GetCalendarService(cmd.Context(), dir, a.log()); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Fprintf(a.out(cmd), "Authentication successful! Token saved to %s\n", filepath.Join(dir, auth.TokenFile))
			return nil
		},
	}
}
