package commands

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tusk-sh/tusk/internal/tusk"
)

// Repl is the interactive loop entered when tusk runs with no
// subcommand. Each line goes through the same pipeline as 'tusk ask'.
type Repl struct {
	flags *Flags
	app   *tusk.App
}

// NewRepl creates the interactive session loop
func NewRepl(flags *Flags, app *tusk.App) *Repl {
	return &Repl{flags: flags, app: app}
}

// Run reads requests until EOF, Ctrl-C, or an exit command.
func (r *Repl) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tusk> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".tusk_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer func() { _ = rl.Close() }()

	r.app.Console.Markdown("# tusk\n" +
		"Describe what you want to do, or type a command directly.\n\n" +
		"`exit` or `Ctrl-C` to quit.")

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			r.app.Console.Errorf("read input: %v", err)
			continue
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return nil
		}

		if _, err := r.app.RunRequest(ctx, input, tusk.RunOptions{
			DryRun: r.flags.DryRun,
			Yes:    r.flags.Yes,
		}); err != nil {
			r.app.Console.Errorf("%v", err)
		}
	}
}
