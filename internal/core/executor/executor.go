// Package executor orchestrates plan execution: confirmation, backup,
// per-action isolation, and result aggregation. No action runs without
// passing the confirmation step for its owning plan, and no action runs
// past a required backup that failed to write.
package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tusk-sh/tusk/internal/core/backup"
	"github.com/tusk-sh/tusk/internal/core/logging"
	"github.com/tusk-sh/tusk/internal/core/plan"
	"github.com/tusk-sh/tusk/internal/core/safety"
	"github.com/tusk-sh/tusk/pkg/executil"
)

// Cancellation and failure reasons surfaced on ExecutionResult.
const (
	ReasonDryRun    = "dry-run mode"
	ReasonCancelled = "cancelled by user"
	ReasonNoActions = "plan has no actions"
)

// Confirmer is the user-confirmation channel. Implementations block on
// interactive input; tests substitute canned answers.
type Confirmer interface {
	// ConfirmPlan asks for the primary yes/no decision on a plan.
	ConfirmPlan(p *plan.Plan) (bool, error)
	// ConfirmDelete asks for secondary confirmation of a destructive
	// delete, showing the items it would affect. items may be empty
	// when no preview was possible.
	ConfirmDelete(command string, items []string) (bool, error)
}

// Display renders plans and results for user review. Rendering must
// happen before confirmation; the executor guarantees the ordering,
// the implementation owns the formatting.
type Display interface {
	ShowPlan(p *plan.Plan)
	ShowActionResult(index int, res plan.ActionResult)
}

// Options configure a single executor instance.
type Options struct {
	// DryRun auto-declines confirmation and never spawns subprocesses.
	DryRun bool
	// AutoConfirm answers yes to every prompt, including delete
	// previews. Intended for scripted runs.
	AutoConfirm bool
	// StopOnError halts the plan at the first failing action instead
	// of continuing through the remainder (the default).
	StopOnError bool
	// Interpreter runs interpreted_code actions. Defaults to python3.
	Interpreter string
}

// Executor runs one plan at a time, synchronously.
type Executor struct {
	opts      Options
	archiver  *backup.Archiver
	runner    executil.Runner
	confirmer Confirmer
	display   Display
	log       zerolog.Logger
}

// New creates a plan executor.
func New(opts Options, archiver *backup.Archiver, runner executil.Runner, confirmer Confirmer, display Display) *Executor {
	if opts.Interpreter == "" {
		opts.Interpreter = "python3"
	}
	return &Executor{
		opts:      opts,
		archiver:  archiver,
		runner:    runner,
		confirmer: confirmer,
		display:   display,
		log:       logging.Component("executor"),
	}
}

// ExecutePlan drives a plan through display, confirmation, backup, and
// action execution, in that order. workDir is the working directory for
// every action; path resolution never relies on ambient process state
// beyond it. The returned result is well formed on every path.
func (e *Executor) ExecutePlan(ctx context.Context, p *plan.Plan, workDir string) plan.ExecutionResult {
	if len(p.Actions) == 0 {
		return plan.Cancelled(ReasonNoActions)
	}

	e.display.ShowPlan(p)

	// Dry-run declines before any confirmation is even asked, so a
	// dry-run invocation can never spawn a subprocess.
	if e.opts.DryRun {
		return plan.Cancelled(ReasonDryRun)
	}

	if p.RequiresConfirmation && !e.opts.AutoConfirm {
		ok, err := e.confirmer.ConfirmPlan(p)
		if err != nil {
			return plan.Cancelled(fmt.Sprintf("confirmation unavailable: %v", err))
		}
		if !ok {
			return plan.Cancelled(ReasonCancelled)
		}
	}

	var backupID string
	if p.RequiresBackup {
		arch, err := e.createBackup(p, workDir)
		if err != nil {
			e.log.Error().Err(err).Msg("backup failed; aborting plan")
			return plan.Cancelled(fmt.Sprintf("backup failed: %v", err))
		}
		backupID = arch.ID
	}

	result := plan.ExecutionResult{Executed: true, BackupID: backupID}
	for i, action := range p.Actions {
		res := e.runAction(ctx, action, workDir)
		result.Outputs = append(result.Outputs, res)
		e.display.ShowActionResult(i, res)

		if !res.Success && e.opts.StopOnError {
			e.log.Warn().Int("action", i).Msg("stopping plan at first failure")
			break
		}
	}

	return result
}

// createBackup resolves the target path set and writes the archive.
// Plan-provided paths win; an empty set falls back to inference over
// the plan's shell commands. Relative paths are anchored at workDir,
// the same directory the actions will run in.
func (e *Executor) createBackup(p *plan.Plan, workDir string) (*backup.Archive, error) {
	paths := p.BackupPaths
	if len(paths) == 0 {
		paths = safety.InferBackupPaths(p.ShellCommands())
	}

	arch, err := e.archiver.Create(workDir, paths)
	if err != nil {
		return nil, err
	}

	e.log.Info().Str("backup", arch.ID).Int("paths", len(arch.Paths)).Msg("backup created")
	return arch, nil
}

func (e *Executor) runAction(ctx context.Context, action plan.Action, workDir string) plan.ActionResult {
	if err := action.Validate(); err != nil {
		return plan.ActionResult{
			Command:    action.Content,
			Success:    false,
			Stderr:     fmt.Sprintf("invalid action: %v", err),
			ReturnCode: -1,
		}
	}

	switch action.Kind {
	case plan.KindShellCommand:
		return e.runShellAction(ctx, action, workDir)
	case plan.KindInterpretedCode:
		return e.runCodeAction(ctx, action, workDir)
	}

	// Unreachable: Validate rejects unknown kinds.
	return plan.ActionResult{Command: action.Content, Success: false, Stderr: "unhandled action kind", ReturnCode: -1}
}

func (e *Executor) runShellAction(ctx context.Context, action plan.Action, workDir string) plan.ActionResult {
	if skip, res := e.deletePreview(ctx, action.Content, workDir); skip {
		return res
	}

	res := e.runCommand(ctx, action.Content, workDir)
	if res.Success || action.Fallback == "" {
		return res
	}

	e.log.Warn().
		Str("command", action.Content).
		Int("return_code", res.ReturnCode).
		Str("fallback", action.Fallback).
		Msg("primary command failed; attempting fallback")

	fb := e.runCommand(ctx, action.Fallback, workDir)
	e.log.Info().Str("fallback", action.Fallback).Bool("success", fb.Success).Msg("fallback finished")
	return fb
}

// deletePreview runs the preview-then-confirm sub-step for destructive
// deletes. Returns skip=true with a recorded no-op when the user
// declines; the rest of the plan continues.
func (e *Executor) deletePreview(ctx context.Context, command, workDir string) (bool, plan.ActionResult) {
	if e.opts.AutoConfirm || !safety.IsDestructive(command) || !safety.IsDelete(command) {
		return false, plan.ActionResult{}
	}

	var items []string
	if gen := safety.PreviewFor(command); gen != nil {
		out, err := e.runner.RunShell(ctx, workDir, gen.PreviewCommand(command))
		if err == nil && out.Success() {
			for _, line := range strings.Split(out.Stdout, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					items = append(items, line)
				}
			}
		}
	}

	ok, err := e.confirmer.ConfirmDelete(command, items)
	if err != nil {
		e.log.Warn().Err(err).Msg("delete confirmation unavailable; skipping action")
		ok = false
	}
	if ok {
		return false, plan.ActionResult{}
	}

	return true, plan.ActionResult{
		Command: command,
		Success: true,
		Note:    "skipped: delete declined after preview",
	}
}

func (e *Executor) runCommand(ctx context.Context, command, workDir string) plan.ActionResult {
	out, err := e.runner.RunShell(ctx, workDir, command)
	if err != nil {
		return plan.ActionResult{
			Command:    command,
			Success:    false,
			Stderr:     err.Error(),
			ReturnCode: out.ReturnCode,
		}
	}

	return plan.ActionResult{
		Command:    command,
		Success:    out.Success(),
		Stdout:     out.Stdout,
		Stderr:     out.Stderr,
		ReturnCode: out.ReturnCode,
	}
}

// runCodeAction writes the code body to a temporary file, executes it
// with the configured interpreter, and removes the file on every path.
func (e *Executor) runCodeAction(ctx context.Context, action plan.Action, workDir string) plan.ActionResult {
	tmp, err := os.CreateTemp("", scriptPattern(e.opts.Interpreter))
	if err != nil {
		return plan.ActionResult{
			Command:    action.Content,
			Success:    false,
			Stderr:     fmt.Sprintf("create temp script: %v", err),
			ReturnCode: -1,
		}
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(action.Content); err != nil {
		_ = tmp.Close()
		return plan.ActionResult{
			Command:    action.Content,
			Success:    false,
			Stderr:     fmt.Sprintf("write temp script: %v", err),
			ReturnCode: -1,
		}
	}
	if err := tmp.Close(); err != nil {
		return plan.ActionResult{
			Command:    action.Content,
			Success:    false,
			Stderr:     fmt.Sprintf("close temp script: %v", err),
			ReturnCode: -1,
		}
	}

	out, err := e.runner.RunArgs(ctx, workDir, e.opts.Interpreter, tmp.Name())
	if err != nil {
		return plan.ActionResult{
			Command:    action.Content,
			Success:    false,
			Stderr:     err.Error(),
			ReturnCode: out.ReturnCode,
		}
	}

	return plan.ActionResult{
		Command:    action.Content,
		Success:    out.Success(),
		Stdout:     out.Stdout,
		Stderr:     out.Stderr,
		ReturnCode: out.ReturnCode,
	}
}

// scriptPattern picks a temp-file pattern whose suffix matches the
// interpreter, so tooling that keys off the extension behaves.
func scriptPattern(interpreter string) string {
	base := filepath.Base(interpreter)
	switch {
	case strings.HasPrefix(base, "python"):
		return "tusk-*.py"
	case strings.HasPrefix(base, "ruby"):
		return "tusk-*.rb"
	case strings.HasPrefix(base, "node"):
		return "tusk-*.js"
	case base == "sh" || base == "bash" || base == "zsh":
		return "tusk-*.sh"
	default:
		return "tusk-*"
	}
}
