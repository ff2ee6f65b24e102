package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type DeleteCmd struct {
	flags *Flags
	app   *App
}

// NewDeleteCmd creates a new delete command
func NewDeleteCmd(flags *Flags, app *App) *DeleteCmd {
	return &DeleteCmd{flags: flags, app: app}
}

// Register adds the delete command to the application
func (cmd *DeleteCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete tasks",
		UsageText: "todolist delete ID...",
		Description: `Deletes all given tasks in one transaction. Either every task is
removed or none is.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *DeleteCmd) run(ctx context.Context, c *cli.Command) error {
	tasks, err := cmd.app.ResolveTasks(ctx, c.Args().Slice())
	if err != nil {
		return err
	}

	if err := cmd.app.Tasks.Remove(ctx, tasks...); err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}

	_, err = fmt.Fprintf(c.Root().Writer, "Deleted %d task(s)\n", len(tasks))
	return err
}
