package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"
)

type SeedCmd struct {
	flags *Flags
	app   *App

	// flags
	count int
}

// NewSeedCmd creates a new seed command
func NewSeedCmd(flags *Flags, app *App) *SeedCmd {
	return &SeedCmd{flags: flags, app: app}
}

// Register adds the seed command to the application
func (cmd *SeedCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "seed",
		Usage:     "Insert sample tasks",
		UsageText: "todolist seed [--count N]",
		Description: `Inserts N sample tasks with random completion state in one
transaction. Useful for trying out the list views without network access.
The remote import flag is not affected.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "count",
				Aliases:     []string{"n"},
				Usage:       "number of tasks to insert",
				Value:       10,
				Destination: &cmd.count,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SeedCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.count <= 0 {
		return errors.New("--count must be positive")
	}

	tasks, err := cmd.app.Store.SeedDemoTasks(ctx, cmd.count)
	if err != nil {
		return fmt.Errorf("seed tasks: %w", err)
	}

	_, err = fmt.Fprintf(c.Root().Writer, "Inserted %d sample task(s)\n", len(tasks))
	return err
}
