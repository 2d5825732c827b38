// Package plan defines the action plan domain types shared by the
// generator, executor, and history components.
package plan

import (
	"errors"
	"fmt"
	"strings"
)

// ActionKind identifies how an action's content should be executed.
type ActionKind string

// Supported action kinds.
const (
	KindShellCommand    ActionKind = "shell_command"
	KindInterpretedCode ActionKind = "interpreted_code"
)

// Sentinel errors returned by action validation.
var (
	ErrEmptyContent      = errors.New("action content is empty")
	ErrUnknownActionKind = errors.New("unknown action kind")
)

// Action is one executable step of a plan.
type Action struct {
	Kind        ActionKind `json:"kind"`
	Content     string     `json:"content"`
	Explanation string     `json:"explanation,omitempty"`
	// Fallback is an alternate command attempted if the primary fails.
	Fallback string `json:"fallback,omitempty"`
}

// Validate reports whether the action can be executed. Unknown kinds and
// empty content are rejected up front rather than skipped at run time.
func (a Action) Validate() error {
	if strings.TrimSpace(a.Content) == "" {
		return ErrEmptyContent
	}

	switch a.Kind {
	case KindShellCommand, KindInterpretedCode:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownActionKind, a.Kind)
	}
}

// Plan is an ordered sequence of actions plus safety metadata. It is
// constructed by the plan generator and consumed exactly once by the
// executor; execution order is list order.
type Plan struct {
	Explanation          string   `json:"explanation"`
	Actions              []Action `json:"actions"`
	RequiresConfirmation bool     `json:"requires_confirmation"`
	RequiresBackup       bool     `json:"requires_backup"`
	BackupPaths          []string `json:"backup_paths,omitempty"`
}

// New returns a plan with confirmation required, the safe default.
func New(explanation string, actions ...Action) *Plan {
	return &Plan{
		Explanation:          explanation,
		Actions:              actions,
		RequiresConfirmation: true,
	}
}

// ShellCommands returns the content of every shell command action, in
// plan order. Used for backup path inference.
func (p *Plan) ShellCommands() []string {
	cmds := make([]string, 0, len(p.Actions))
	for _, a := range p.Actions {
		if a.Kind == KindShellCommand {
			cmds = append(cmds, a.Content)
		}
	}
	return cmds
}

// ActionResult is the recorded outcome of one attempted action.
type ActionResult struct {
	Command    string `json:"command"`
	Success    bool   `json:"success"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	ReturnCode int    `json:"return_code"`
	// Note carries explanatory text for skipped or rejected actions,
	// e.g. a declined destructive delete recorded as a no-op.
	Note string `json:"note,omitempty"`
}

// ExecutionResult is the outcome of running a plan.
type ExecutionResult struct {
	// Executed is false when the plan was cancelled or blocked before
	// any action ran. It stays true even if every action failed;
	// callers must inspect Outputs for per-action success.
	Executed bool   `json:"executed"`
	Reason   string `json:"reason,omitempty"`
	// Outputs holds one entry per attempted action, in plan order.
	// len(Outputs) <= len(Actions) when stop-on-error halts early.
	Outputs  []ActionResult `json:"outputs,omitempty"`
	BackupID string         `json:"backup_id,omitempty"`
}

// Succeeded reports whether every attempted action reported success.
// Returns false if nothing was executed.
func (r *ExecutionResult) Succeeded() bool {
	if !r.Executed {
		return false
	}
	for _, out := range r.Outputs {
		if !out.Success {
			return false
		}
	}
	return true
}

// Cancelled builds a terminal result for a plan that never ran.
func Cancelled(reason string) ExecutionResult {
	return ExecutionResult{Executed: false, Reason: reason}
}
