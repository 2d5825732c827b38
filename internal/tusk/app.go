// Package tusk wires the core components into the request pipeline the
// commands drive: gather context, generate a plan, execute it, record it.
package tusk

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/tusk-sh/tusk/internal/console"
	"github.com/tusk-sh/tusk/internal/core/agent"
	"github.com/tusk-sh/tusk/internal/core/backup"
	"github.com/tusk-sh/tusk/internal/core/config"
	"github.com/tusk-sh/tusk/internal/core/executor"
	"github.com/tusk-sh/tusk/internal/core/history"
	"github.com/tusk-sh/tusk/internal/core/logging"
	"github.com/tusk-sh/tusk/internal/core/plan"
	"github.com/tusk-sh/tusk/internal/core/rollback"
	"github.com/tusk-sh/tusk/internal/core/termctx"
	"github.com/tusk-sh/tusk/internal/store/jsonfile"
	"github.com/tusk-sh/tusk/pkg/executil"
)

// ErrConfirmationUnavailable is returned when a plan needs interactive
// confirmation but stdin is not a terminal and --yes was not given.
var ErrConfirmationUnavailable = errors.New("not a terminal: pass --yes to run without confirmation")

// App bundles the long-lived services behind the CLI commands. It is
// populated once in the root command's Before hook.
type App struct {
	Config   config.Config
	Console  *console.Console
	Agent    agent.Generator
	Runner   executil.Runner
	Archiver *backup.Archiver
	Ledger   history.Store
	Rollback *rollback.Manager

	gatherer *termctx.Gatherer
	log      zerolog.Logger
}

// NewApp assembles the pipeline from loaded configuration.
func NewApp(cfg config.Config, con *console.Console, gen agent.Generator) *App {
	runner := &executil.ShellRunner{Timeout: cfg.CommandTimeout}
	ledger := jsonfile.NewLedger(cfg.LedgerPath())

	return &App{
		Config:   cfg,
		Console:  con,
		Agent:    gen,
		Runner:   runner,
		Archiver: backup.NewArchiver(cfg.BackupDir()),
		Ledger:   ledger,
		Rollback: rollback.NewManager(cfg.BackupDir(), ledger),
		gatherer: termctx.NewGatherer(runner),
		log:      logging.Component("app"),
	}
}

// RunOptions are the per-invocation execution switches.
type RunOptions struct {
	// DryRun shows the plan without executing anything.
	DryRun bool
	// Yes auto-confirms every prompt.
	Yes bool
}

// RunRequest drives one request through the full pipeline and records
// the outcome in the ledger. The returned result is well formed even
// when the plan was cancelled.
func (a *App) RunRequest(ctx context.Context, request string, opts RunOptions) (plan.ExecutionResult, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return plan.ExecutionResult{}, fmt.Errorf("resolve working directory: %w", err)
	}

	snapshot := a.gatherer.Gather(ctx, workDir)
	p, err := a.Agent.GeneratePlan(ctx, request, &snapshot)
	if err != nil {
		return plan.ExecutionResult{}, err
	}

	// No terminal to ask on and no standing yes: degrade to showing
	// the plan rather than running unconfirmed.
	if !opts.Yes && !opts.DryRun && p.RequiresConfirmation && !console.IsInteractive() {
		a.Console.Warnf("stdin is not a terminal; showing the plan only (pass --yes to execute)")
		opts.DryRun = true
	}

	confirmer := a.confirmer(opts)

	exec := executor.New(executor.Options{
		DryRun:      opts.DryRun,
		AutoConfirm: opts.Yes,
		StopOnError: a.Config.StopOnError,
		Interpreter: a.Config.Interpreter,
	}, a.Archiver, a.Runner, confirmer, a.Console)

	result := exec.ExecutePlan(ctx, p, workDir)
	a.Console.ShowExecutionResult(result)

	if result.Executed {
		if err := a.record(p, result, workDir); err != nil {
			// The plan already ran; a ledger write failure must not
			// surface as an execution failure.
			a.log.Error().Err(err).Msg("recording execution failed")
			a.Console.Warnf("could not record execution: %v", err)
		}
	}

	return result, nil
}

// confirmer picks the confirmation channel for this invocation. DryRun
// needs none: the executor declines before asking.
func (a *App) confirmer(opts RunOptions) executor.Confirmer {
	if opts.Yes || opts.DryRun || !console.IsInteractive() {
		return console.AutoConfirmer{}
	}
	return console.NewPrompter()
}

func (a *App) record(p *plan.Plan, result plan.ExecutionResult, workDir string) error {
	backupPath := ""
	if result.BackupID != "" {
		arch, err := backup.Find(a.Config.BackupDir(), result.BackupID)
		if err != nil {
			a.log.Warn().Err(err).Str("backup", result.BackupID).Msg("backup missing from store")
		} else {
			backupPath = arch.Path
		}
	}

	entry := history.NewEntry(p, result, workDir, backupPath)
	return a.Ledger.Append(entry, a.Config.Retention)
}
