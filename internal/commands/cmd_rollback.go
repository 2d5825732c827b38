package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/tusk-sh/tusk/internal/console"
	"github.com/tusk-sh/tusk/internal/core/rollback"
	"github.com/tusk-sh/tusk/internal/tusk"
)

type RollbackCmd struct {
	flags *Flags
	app   *tusk.App
}

// NewRollbackCmd creates a new rollback command
func NewRollbackCmd(flags *Flags, app *tusk.App) *RollbackCmd {
	return &RollbackCmd{flags: flags, app: app}
}

// Register adds the rollback command to the application
func (cmd *RollbackCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rollback",
		Usage:     "Restore files from a backup archive",
		UsageText: "tusk rollback [backup-id]",
		Description: `Restores the files captured in a backup archive to their original
locations, overwriting current contents.

With no argument, restores the backup of the most recent execution.
Pass a backup id (see 'tusk backups') to restore a specific archive.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *RollbackCmd) run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()

	target := "the last execution's backup"
	if id != "" {
		target = id
	}
	ok, err := cmd.confirm(target)
	if err != nil {
		return err
	}
	if !ok {
		cmd.app.Console.Infof("Rollback cancelled")
		return nil
	}

	if id == "" {
		err = cmd.app.Rollback.RollbackLast()
	} else {
		err = cmd.app.Rollback.RollbackTo(id)
	}

	switch {
	case errors.Is(err, rollback.ErrNoBackup):
		return fmt.Errorf("the last execution has no backup to restore")
	case err != nil:
		return fmt.Errorf("rollback: %w", err)
	}

	cmd.app.Console.Infof("Rollback complete")
	return nil
}

// confirm asks before overwriting files. --yes skips the prompt;
// non-interactive sessions without --yes refuse rather than guess.
func (cmd *RollbackCmd) confirm(target string) (bool, error) {
	if cmd.flags.Yes {
		return true, nil
	}
	if !console.IsInteractive() {
		return false, tusk.ErrConfirmationUnavailable
	}

	var ok bool
	err := huh.NewConfirm().
		Title("Restore " + target + "?").
		Description("Files will be overwritten with their backed-up contents.").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}
