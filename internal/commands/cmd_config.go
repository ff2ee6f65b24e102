package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/pkg/iojson"
)

type ConfigCmd struct {
	flags *Flags
	app   *App

	// flags
	force bool
}

// NewConfigCmd creates a new config command
func NewConfigCmd(flags *Flags, app *App) *ConfigCmd {
	return &ConfigCmd{flags: flags, app: app}
}

// Register adds the config command to the application
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Inspect or create the config file",
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Write the default config file",
				UsageText: "todolist config init [--force]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "force",
						Usage:       "overwrite an existing config file",
						Destination: &cmd.force,
					},
				},
				Action: cmd.runInit,
			},
			{
				Name:      "show",
				Usage:     "Print the effective configuration as JSON",
				UsageText: "todolist config show",
				Action:    cmd.runShow,
			},
		},
	})

	return app
}

func (cmd *ConfigCmd) runInit(_ context.Context, c *cli.Command) error {
	path := cmd.flags.ConfigPath

	if !cmd.force {
		_, err := os.Stat(path)
		if err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat config: %w", err)
		}
	}

	if err := model.SaveConfig(path, model.DefaultAppConfig()); err != nil {
		return err
	}

	_, err := fmt.Fprintf(c.Root().Writer, "Wrote %s\n", path)
	return err
}

func (cmd *ConfigCmd) runShow(_ context.Context, c *cli.Command) error {
	cfg := cmd.app.Config
	if cfg == nil {
		cfg = model.DefaultAppConfig()
	}

	return iojson.WriteWith(c.Root().Writer, errWriter(c), map[string]any{
		"config_path":   cmd.flags.ConfigPath,
		"data_dir":      cmd.flags.DataDir,
		"database_path": cfg.DatabasePath(cmd.flags.DataDir),
		"remote": map[string]any{
			"url":     cfg.Remote.URL,
			"timeout": cfg.Remote.Timeout.String(),
		},
		"display": map[string]any{
			"sort_by": cfg.Display.SortBy,
			"order":   cfg.Display.Order,
			"filter":  cfg.Display.Filter,
		},
		"log": map[string]any{
			"level": cfg.Log.Level,
			"file":  cfg.Log.File,
		},
	})
}
