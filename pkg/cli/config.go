package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/habitask/pkg/config"
	"github.com/harrisonrobin/habitask/pkg/matrix"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration",
	}
	cmd.AddCommand(a.configShowCmd(), a.configSetCalendarCmd(), a.configSetSortCmd())
	return cmd
}

func (a *app) configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			if !a.jsonOut {
				fmt.Fprintln(a.out(cmd), headingStyle.Render(path))
			}
			return writeJSON(a.out(cmd), cfg)
		},
	}
}

func (a *app) configSetCalendarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-calendar <name>",
		Short: "Set the Google Calendar to publish to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfig(func(cfg *config.Config) error {
				cfg.Calendar = args[0]
				fmt.Fprintf(a.out(cmd), "Default calendar set to: %s\n", args[0])
				return nil
			})
		},
	}
}

func (a *app) configSetSortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-sort <quadrant> <option>",
		Short: "Set how a quadrant orders its tasks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := matrix.ParseQuadrant(args[0])
			if err != nil {
				return err
			}
			opt, err := matrix.ParseSortOption(args[1])
			if err != nil {
				return err
			}
			return updateConfig(func(cfg *config.Config) error {
				if cfg.Sort == nil {
					cfg.Sort = make(map[matrix.Quadrant]matrix.SortOption)
				}
				cfg.Sort[q] = opt
				fmt.Fprintf(a.out(cmd), "%s now sorts by %s\n", q.Title(), opt)
				return nil
			})
		},
	}
}

// updateConfig loads the stored file, applies fn and saves it back.
func updateConfig(fn func(cfg *config.Config) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}
	return nil
}
