package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tusk-sh/tusk/internal/tusk"
)

type AskCmd struct {
	flags *Flags
	app   *tusk.App
}

// NewAskCmd creates a new ask command
func NewAskCmd(flags *Flags, app *tusk.App) *AskCmd {
	return &AskCmd{flags: flags, app: app}
}

// Register adds the ask command to the application
func (cmd *AskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ask",
		Usage:     "Run a single natural-language request",
		UsageText: "tusk ask [--dry-run] [--yes] <request>",
		Description: `Generates a plan for the request, shows it, and executes it after
confirmation. Requests that already look like shell commands run as-is.

Examples:
  tusk ask "find files larger than 100MB"
  tusk ask --dry-run "clean up my downloads folder"`,
		Action: cmd.run,
	})

	return app
}

func (cmd *AskCmd) run(ctx context.Context, c *cli.Command) error {
	request := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if request == "" {
		return fmt.Errorf("nothing to do. Run 'tusk ask \"<request>\"'")
	}

	result, err := cmd.app.RunRequest(ctx, request, tusk.RunOptions{
		DryRun: cmd.flags.DryRun,
		Yes:    cmd.flags.Yes,
	})
	if err != nil {
		return err
	}

	if result.Executed && !result.Succeeded() {
		return fmt.Errorf("one or more actions failed")
	}
	return nil
}
