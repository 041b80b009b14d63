package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/habitask/pkg/model"
	"github.com/harrisonrobin/habitask/pkg/orgmode"
	"github.com/harrisonrobin/habitask/pkg/taskwarrior"
)

func (a *app) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import tasks from Taskwarrior or Org-mode",
	}
	cmd.AddCommand(a.importTaskwarriorCmd(), a.importOrgCmd())
	return cmd
}

func (a *app) importTaskwarriorCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "taskwarrior [filter...]",
		Short: "Import tasks from `task export`",
		Long: `Imports tasks by running "task <filter> export", or from an export file
with --file ("-" reads stdin). Tasks are matched by uuid, so importing
again updates instead of duplicating. Deleted tasks are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := taskwarrior.NewClient()

			var tws []taskwarrior.Task
			var err error
			switch file {
			case "":
				tws, err = client.GetTasks(ctx, args)
			case "-":
				tws, err = client.ParseTasks(cmd.InOrStdin())
			default:
				tws, err = parseTaskwarriorFile(client, file)
			}
			if err != nil {
				return err
			}

			s, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()
			loc, err := s.cfg.Location()
			if err != nil {
				return err
			}
			return a.reportImport(cmd, s, taskwarrior.ToTasks(tws, loc))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read an export file instead of running task")
	return cmd
}

func parseTaskwarriorFile(client *taskwarrior.Client, path string) ([]taskwarrior.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return client.ParseTasks(f)
}

func (a *app) importOrgCmd() *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "org <file>...",
		Short: "Import TODO headings from Org-mode files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			tasks, err := orgmode.ParseFiles(args, s.svc.Today())
			if err != nil {
				return err
			}
			if tag != "" {
				tasks = orgmode.FilterTasks(tasks, tag)
			}
			return a.reportImport(cmd, s, tasks)
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "only import headings with this tag")
	return cmd
}

func (a *app) reportImport(cmd *cobra.Command, s *session, tasks []model.Task) error {
	added, updated, err := s.svc.ImportTasks(cmd.Context(), tasks)
	if err != nil {
		return err
	}
	if a.jsonOut {
		return writeJSON(a.out(cmd), map[string]int{"added": added, "updated": updated})
	}
	fmt.Fprintf(a.out(cmd), "Imported %d new and %d updated tasks\n", added, updated)
	return nil
}
