// Package console renders plans, results, and archives for the terminal,
// and collects interactive confirmations.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/tusk-sh/tusk/internal/core/backup"
	"github.com/tusk-sh/tusk/internal/core/history"
	"github.com/tusk-sh/tusk/internal/core/plan"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7"))
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e"))
)

// IsInteractive reports whether stdin is attached to a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Console writes formatted output to a single destination. It implements
// the executor's Display interface.
type Console struct {
	out io.Writer
}

// New returns a console writing to out. Pass os.Stdout in the CLI.
func New(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// ShowPlan renders the plan summary, its actions, and backup metadata.
func (c *Console) ShowPlan(p *plan.Plan) {
	c.printf("\n%s\n", titleStyle.Render("Plan: "+p.Explanation))
	for i, a := range p.Actions {
		c.printf("  %d. %s\n", i+1, commandStyle.Render(a.Content))
		if a.Explanation != "" {
			c.printf("     %s\n", mutedStyle.Render(a.Explanation))
		}
		if a.Fallback != "" {
			c.printf("     %s\n", mutedStyle.Render("fallback: "+a.Fallback))
		}
	}
	if p.RequiresBackup {
		if len(p.BackupPaths) > 0 {
			c.printf("  %s\n", warnStyle.Render("Backup: "+strings.Join(p.BackupPaths, ", ")))
		} else {
			c.printf("  %s\n", warnStyle.Render("Backup: paths inferred from commands"))
		}
	}
}

// ShowActionResult renders a single action outcome as it completes.
func (c *Console) ShowActionResult(index int, res plan.ActionResult) {
	switch {
	case res.Note != "":
		c.printf("%s %s\n", warnStyle.Render("~"), res.Note)
	case res.Success:
		c.printf("%s %s\n", successStyle.Render("✓"), res.Command)
	default:
		c.printf("%s %s (exit %d)\n", errorStyle.Render("✗"), res.Command, res.ReturnCode)
	}
	if out := strings.TrimRight(res.Stdout, "\n"); out != "" {
		c.printf("%s\n", out)
	}
	if errOut := strings.TrimRight(res.Stderr, "\n"); errOut != "" && !res.Success {
		c.printf("%s\n", errorStyle.Render(errOut))
	}
}

// ShowExecutionResult renders the wrap-up line after a plan finishes.
func (c *Console) ShowExecutionResult(res plan.ExecutionResult) {
	switch {
	case !res.Executed:
		c.printf("%s\n", warnStyle.Render("Not executed: "+res.Reason))
	case res.Succeeded():
		c.printf("%s\n", successStyle.Render("All actions completed"))
	default:
		c.printf("%s\n", errorStyle.Render("Completed with failures"))
	}
	if res.BackupID != "" {
		c.printf("%s\n", mutedStyle.Render("backup: "+res.BackupID))
	}
}

// ShowHistory renders ledger entries newest first.
func (c *Console) ShowHistory(entries []history.Entry) {
	if len(entries) == 0 {
		c.printf("%s\n", mutedStyle.Render("No execution history"))
		return
	}
	for _, e := range entries {
		status := successStyle.Render("ok")
		if !e.Success {
			status = errorStyle.Render("failed")
		}
		c.printf("%s  %s  %s\n", mutedStyle.Render(e.Timestamp.Format("2006-01-02 15:04:05")), status, e.Explanation)
		for _, cmd := range e.Commands {
			c.printf("    %s\n", commandStyle.Render(cmd))
		}
		if e.BackupID != "" {
			c.printf("    %s\n", mutedStyle.Render("backup: "+e.BackupID))
		}
	}
}

// ShowBackups renders a backup archive listing.
func (c *Console) ShowBackups(archives []backup.Archive) {
	if len(archives) == 0 {
		c.printf("%s\n", mutedStyle.Render("No backups"))
		return
	}
	for _, a := range archives {
		c.printf("%s  %s  %s\n",
			titleStyle.Render(a.ID),
			mutedStyle.Render(a.CreatedAt.Format("2006-01-02 15:04:05")),
			mutedStyle.Render(humanize.Bytes(uint64(a.Size))))
	}
}

// Infof prints an informational line.
func (c *Console) Infof(format string, args ...any) {
	c.printf("%s\n", fmt.Sprintf(format, args...))
}

// Warnf prints a warning line.
func (c *Console) Warnf(format string, args ...any) {
	c.printf("%s\n", warnStyle.Render(fmt.Sprintf(format, args...)))
}

// Errorf prints an error line.
func (c *Console) Errorf(format string, args ...any) {
	c.printf("%s\n", errorStyle.Render(fmt.Sprintf(format, args...)))
}

// Markdown renders md with glamour when possible, falling back to the
// raw text on renderer errors.
func (c *Console) Markdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		c.printf("%s\n", md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		c.printf("%s\n", md)
		return
	}
	c.printf("%s", out)
}
