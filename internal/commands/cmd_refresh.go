package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/nhle/todolist/internal/query"
)

type RefreshCmd struct {
	flags *Flags
	app   *App

	// flags
	remote bool
	reset  bool
}

// NewRefreshCmd creates a new refresh command
func NewRefreshCmd(flags *Flags, app *App) *RefreshCmd {
	return &RefreshCmd{flags: flags, app: app}
}

// Register adds the refresh command to the application
func (cmd *RefreshCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "refresh",
		Usage:     "Run the remote import if it is still pending",
		UsageText: "todolist refresh [--remote] [--reset]",
		Description: `Imports the remote task list if no import has succeeded yet, then
reports the number of local tasks.

--remote fetches and appends the remote list even if it was imported before.
--reset marks the import as pending again so the next refresh imports.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "remote",
				Usage:       "force a remote fetch and import",
				Destination: &cmd.remote,
			},
			&cli.BoolFlag{
				Name:        "reset",
				Usage:       "mark the remote import as pending before refreshing",
				Destination: &cmd.reset,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RefreshCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.reset {
		if err := cmd.app.Store.ResetRemoteImport(ctx); err != nil {
			return fmt.Errorf("reset import flag: %w", err)
		}
	}

	before, err := cmd.app.Store.CountTasks(ctx, query.DefaultSpec())
	if err != nil {
		return fmt.Errorf("count tasks: %w", err)
	}

	if _, err := cmd.app.Tasks.Refresh(ctx, cmd.remote); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	after, err := cmd.app.Store.CountTasks(ctx, query.DefaultSpec())
	if err != nil {
		return fmt.Errorf("count tasks: %w", err)
	}

	snap := cmd.app.Tasks.Snapshot()
	_, err = fmt.Fprintf(c.Root().Writer, "Imported %d task(s), %d total, state %s\n",
		after-before, after, snap.State)
	return err
}
