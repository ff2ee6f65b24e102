package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"
)

type EditCmd struct {
	flags *Flags
	app   *App

	// flags
	title       string
	description string
}

// NewEditCmd creates a new edit command
func NewEditCmd(flags *Flags, app *App) *EditCmd {
	return &EditCmd{flags: flags, app: app}
}

// Register adds the edit command to the application
func (cmd *EditCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "edit",
		Usage:     "Change a task's title or description",
		UsageText: "todolist edit ID [--title T] [--description D]",
		Description: `Updates the given fields of a task. Fields that are not passed keep
their current value. ID may be a unique prefix of at least 4 characters.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "new title",
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "new description",
				Destination: &cmd.description,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *EditCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return errors.New("edit takes exactly one task id")
	}
	if !c.IsSet("title") && !c.IsSet("description") {
		return errors.New("nothing to change: pass --title and/or --description")
	}

	task, err := cmd.app.ResolveTask(ctx, c.Args().First())
	if err != nil {
		return err
	}

	if c.IsSet("title") {
		task.Title = cmd.title
	}
	if c.IsSet("description") {
		task.Description = cmd.description
	}

	if err := cmd.app.Tasks.Save(ctx, task); err != nil {
		return fmt.Errorf("save task: %w", err)
	}

	_, err = fmt.Fprintf(c.Root().Writer, "Updated %s\n", shortID(task.ID))
	return err
}
