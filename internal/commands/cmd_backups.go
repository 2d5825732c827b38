package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tusk-sh/tusk/internal/tusk"
	"github.com/tusk-sh/tusk/pkg/iojson"
)

type BackupsCmd struct {
	flags *Flags
	app   *tusk.App

	// flags
	jsonOutput bool
}

// NewBackupsCmd creates a new backups command
func NewBackupsCmd(flags *Flags, app *tusk.App) *BackupsCmd {
	return &BackupsCmd{flags: flags, app: app}
}

// Register adds the backups command to the application
func (cmd *BackupsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "backups",
		Usage:       "List backup archives",
		UsageText:   "tusk backups [--json]",
		Description: `Lists backup archives newest first. Restore one with 'tusk rollback <id>'.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *BackupsCmd) run(ctx context.Context, c *cli.Command) error {
	archives, err := cmd.app.Rollback.ListBackups()
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}

	if cmd.jsonOutput {
		return iojson.Write(archives)
	}

	cmd.app.Console.ShowBackups(archives)
	return nil
}
