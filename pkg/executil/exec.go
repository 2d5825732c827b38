// Package executil provides shell execution utilities.
package executil

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Output captures everything a finished command produced.
type Output struct {
	Stdout     string
	Stderr     string
	ReturnCode int
}

// Success reports whether the command exited zero.
func (o Output) Success() bool { return o.ReturnCode == 0 }

// Runner executes command strings through a shell. The executor depends
// on this interface so tests can substitute a recorder.
type Runner interface {
	// RunShell executes cmd via `sh -c` in dir (empty means inherit
	// cwd), capturing stdout, stderr, and the exit status. A non-zero
	// exit is reported through Output, not an error; the error return
	// covers failures to start or a cancelled context.
	RunShell(ctx context.Context, dir, cmd string) (Output, error)

	// RunArgs executes a program with explicit arguments, same capture
	// semantics as RunShell. Used for interpreted code files where the
	// content must not pass through shell quoting.
	RunArgs(ctx context.Context, dir string, name string, args ...string) (Output, error)
}

// ShellRunner runs real subprocesses.
type ShellRunner struct {
	// Timeout bounds each command. Zero means no bound beyond ctx.
	Timeout time.Duration
}

var _ Runner = (*ShellRunner)(nil)

// RunShell executes a command string via `sh -c`.
func (r *ShellRunner) RunShell(ctx context.Context, dir, cmd string) (Output, error) {
	return r.run(ctx, dir, "sh", "-c", cmd)
}

// RunArgs executes a program with explicit arguments.
func (r *ShellRunner) RunArgs(ctx context.Context, dir string, name string, args ...string) (Output, error) {
	return r.run(ctx, dir, name, args...)
}

func (r *ShellRunner) run(ctx context.Context, dir, name string, args ...string) (Output, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		c.Dir = dir
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	out := Output{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		// A killed process still surfaces as an ExitError; report the
		// deadline instead so callers see why it died.
		if ctxErr := ctx.Err(); ctxErr != nil {
			out.ReturnCode = -1
			return out, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ReturnCode = exitErr.ExitCode()
			return out, nil
		}
		out.ReturnCode = -1
		return out, err
	}

	return out, nil
}
