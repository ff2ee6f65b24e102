package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// CompleteCmd registers both "complete" and "reopen"; they differ only in
// the completion state they write.
type CompleteCmd struct {
	flags *Flags
	app   *App
}

// NewCompleteCmd creates the complete and reopen commands
func NewCompleteCmd(flags *Flags, app *App) *CompleteCmd {
	return &CompleteCmd{flags: flags, app: app}
}

// Register adds the complete and reopen commands to the application
func (cmd *CompleteCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "complete",
			Aliases:   []string{"done"},
			Usage:     "Mark tasks as completed",
			UsageText: "todolist complete ID...",
			Action:    cmd.setCompleted(true),
		},
		&cli.Command{
			Name:      "reopen",
			Aliases:   []string{"undone"},
			Usage:     "Mark tasks as not completed",
			UsageText: "todolist reopen ID...",
			Action:    cmd.setCompleted(false),
		},
	)

	return app
}

func (cmd *CompleteCmd) setCompleted(done bool) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		tasks, err := cmd.app.ResolveTasks(ctx, c.Args().Slice())
		if err != nil {
			return err
		}

		out := c.Root().Writer
		for _, t := range tasks {
			t.Completed = done
			if err := cmd.app.Tasks.Save(ctx, t); err != nil {
				return fmt.Errorf("save task %s: %w", shortID(t.ID), err)
			}
			_, _ = fmt.Fprintf(out, "%s %s\n", checkbox(done), displayTitle(t))
		}
		return nil
	}
}
