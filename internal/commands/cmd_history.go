package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tusk-sh/tusk/internal/tusk"
	"github.com/tusk-sh/tusk/pkg/iojson"
)

type HistoryCmd struct {
	flags *Flags
	app   *tusk.App

	// flags
	jsonOutput bool
}

// NewHistoryCmd creates a new history command
func NewHistoryCmd(flags *Flags, app *tusk.App) *HistoryCmd {
	return &HistoryCmd{flags: flags, app: app}
}

// Register adds the history command to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "Show or clear the execution ledger",
		UsageText: "tusk history [--json] [clear]",
		Description: `Lists executed plans newest first, including the commands that ran
and the backup archive that can reverse them.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.list,
		Commands: []*cli.Command{
			{
				Name:   "clear",
				Usage:  "Remove all recorded executions",
				Action: cmd.clear,
			},
		},
	})

	return app
}

func (cmd *HistoryCmd) list(ctx context.Context, c *cli.Command) error {
	entries, err := cmd.app.Ledger.List()
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	if cmd.jsonOutput {
		return iojson.Write(entries)
	}

	cmd.app.Console.ShowHistory(entries)
	return nil
}

func (cmd *HistoryCmd) clear(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Ledger.Clear(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	cmd.app.Console.Infof("Execution history cleared")
	return nil
}
