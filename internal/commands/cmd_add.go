package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/nhle/todolist/pkg/iojson"
)

type AddCmd struct {
	flags *Flags
	app   *App

	// flags
	title       string
	description string
	jsonOutput  bool
}

// NewAddCmd creates a new add command
func NewAddCmd(flags *Flags, app *App) *AddCmd {
	return &AddCmd{flags: flags, app: app}
}

// Register adds the add command to the application
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Create a task",
		UsageText: "todolist add [--title T] [--description D] [title words...]",
		Description: `Creates a new task and prints its id.

The title can be given with --title or as positional arguments. Without
either an empty task is created, matching the "new" action of the TUI.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "task title",
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "task description",
				Destination: &cmd.description,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the created task as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	title := cmd.title
	if title == "" && c.Args().Len() > 0 {
		title = joinArgs(c.Args().Slice())
	}

	task, err := cmd.app.Tasks.AddNew(ctx)
	if err != nil && task.ID == "" {
		return fmt.Errorf("create task: %w", err)
	}

	if title != "" || cmd.description != "" {
		task.Title = title
		task.Description = cmd.description
		if err := cmd.app.Tasks.Save(ctx, task); err != nil {
			return fmt.Errorf("save task: %w", err)
		}
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, task)
	}
	_, err = fmt.Fprintln(out, task.ID)
	return err
}
