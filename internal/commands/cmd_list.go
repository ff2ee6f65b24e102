package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/query"
	"github.com/nhle/todolist/internal/source"
	"github.com/nhle/todolist/internal/store"
	"github.com/nhle/todolist/pkg/iojson"
)

type ListCmd struct {
	flags *Flags
	app   *App

	// flags
	sortBy     string
	order      string
	filter     string
	search     string
	jsonOutput bool
}

// NewListCmd creates a new list command
func NewListCmd(flags *Flags, app *App) *ListCmd {
	return &ListCmd{flags: flags, app: app}
}

// Register adds the list command to the application
func (cmd *ListCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List tasks",
		UsageText: "todolist list [--sort date|title] [--order asc|desc] [--filter all|done|undone] [--search TEXT] [--json]",
		Description: `Displays tasks from the local database.

On the first run the remote task list is imported once before listing.
Sort, order and filter default to the display section of the config file.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "sort",
				Aliases:     []string{"s"},
				Usage:       "sort field (date, title)",
				Destination: &cmd.sortBy,
			},
			&cli.StringFlag{
				Name:        "order",
				Aliases:     []string{"o"},
				Usage:       "sort order (asc, desc)",
				Destination: &cmd.order,
			},
			&cli.StringFlag{
				Name:        "filter",
				Aliases:     []string{"f"},
				Usage:       "completion filter (all, done, undone)",
				Destination: &cmd.filter,
			},
			&cli.StringFlag{
				Name:        "search",
				Aliases:     []string{"q"},
				Usage:       "case and accent insensitive text to match in title or description",
				Destination: &cmd.search,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ListCmd) run(ctx context.Context, c *cli.Command) error {
	spec, err := cmd.spec()
	if err != nil {
		return err
	}
	cmd.app.Tasks.SetSpec(spec)

	tasks, err := cmd.app.Tasks.Refresh(ctx, false)
	if err := reportRefreshError(errWriter(c), err, cmd.jsonOutput); err != nil {
		return err
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, t := range tasks {
			if err := iojson.WriteLine(out, t); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	}

	if len(tasks) == 0 {
		fmt.Fprintf(errWriter(c), "No tasks found\n")
		return nil
	}

	return printTasks(out, tasks)
}

func (cmd *ListCmd) spec() (query.Spec, error) {
	spec := cmd.app.Tasks.Spec()

	var err error
	if cmd.sortBy != "" {
		if spec.SortField, err = query.ParseSortField(cmd.sortBy); err != nil {
			return spec, err
		}
	}
	if cmd.order != "" {
		if spec.SortOrder, err = query.ParseSortOrder(cmd.order); err != nil {
			return spec, err
		}
	}
	if cmd.filter != "" {
		if spec.Filter, err = query.ParseFilter(cmd.filter); err != nil {
			return spec, err
		}
	}
	spec.SearchText = cmd.search

	return spec.Normalize(), nil
}

// reportRefreshError returns err if the local read failed. Remote failures
// are written to w as a warning since the local list is still valid; with
// asJSON the warning is a JSON error document.
func reportRefreshError(w io.Writer, err error, asJSON bool) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrReadFailed) {
		return fmt.Errorf("read tasks: %w", err)
	}

	offline := source.IsNetworkError(err)
	msg := "remote import failed, it will be retried on the next run"
	if offline {
		msg = "remote unreachable, import will be retried on the next run"
	}

	if asJSON {
		return iojson.WriteError(w, msg, map[string]any{
			"offline": offline,
			"error":   err.Error(),
		})
	}
	_, werr := fmt.Fprintf(w, "warning: %s: %v\n", msg, err)
	return werr
}

func printTasks(out io.Writer, tasks []model.Task) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDONE\tTITLE\tCREATED")

	for _, t := range tasks {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			shortID(t.ID), checkbox(t.Completed), displayTitle(t), t.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func displayTitle(t model.Task) string {
	if t.Title == "" {
		return "(untitled)"
	}
	return t.Title
}
