package console

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tusk-sh/tusk/internal/core/backup"
	"github.com/tusk-sh/tusk/internal/core/history"
	"github.com/tusk-sh/tusk/internal/core/plan"
)

func TestShowPlan(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	p := plan.New("clean up temp files",
		plan.Action{Kind: plan.KindShellCommand, Content: "rm /tmp/junk", Explanation: "remove junk", Fallback: "sudo rm /tmp/junk"},
	)
	p.RequiresBackup = true
	p.BackupPaths = []string{"/tmp/junk"}

	c.ShowPlan(p)
	out := buf.String()
	assert.Contains(t, out, "clean up temp files")
	assert.Contains(t, out, "rm /tmp/junk")
	assert.Contains(t, out, "remove junk")
	assert.Contains(t, out, "fallback: sudo rm /tmp/junk")
	assert.Contains(t, out, "Backup: /tmp/junk")
}

func TestShowActionResult(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	c.ShowActionResult(0, plan.ActionResult{Command: "echo hi", Success: true, Stdout: "hi\n"})
	c.ShowActionResult(1, plan.ActionResult{Command: "false", Success: false, ReturnCode: 1, Stderr: "boom"})
	c.ShowActionResult(2, plan.ActionResult{Command: "rm x", Success: true, Note: "skipped: delete declined after preview"})

	out := buf.String()
	assert.Contains(t, out, "echo hi")
	assert.Contains(t, out, "hi")
	assert.Contains(t, out, "(exit 1)")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "skipped: delete declined after preview")
}

func TestShowExecutionResult(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	c.ShowExecutionResult(plan.Cancelled("dry-run mode"))
	assert.Contains(t, buf.String(), "Not executed: dry-run mode")

	buf.Reset()
	c.ShowExecutionResult(plan.ExecutionResult{
		Executed: true,
		Outputs:  []plan.ActionResult{{Success: true}},
		BackupID: "backup_20260101_120000",
	})
	assert.Contains(t, buf.String(), "All actions completed")
	assert.Contains(t, buf.String(), "backup_20260101_120000")

	buf.Reset()
	c.ShowExecutionResult(plan.ExecutionResult{
		Executed: true,
		Outputs:  []plan.ActionResult{{Success: false}},
	})
	assert.Contains(t, buf.String(), "Completed with failures")
}

func TestShowHistory(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	c.ShowHistory(nil)
	assert.Contains(t, buf.String(), "No execution history")

	buf.Reset()
	c.ShowHistory([]history.Entry{{
		Timestamp:   time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC),
		Explanation: "list files",
		Commands:    []string{"ls -la"},
		Success:     true,
		BackupID:    "backup_20260801_103000",
	}})
	out := buf.String()
	assert.Contains(t, out, "2026-08-01 10:30:00")
	assert.Contains(t, out, "list files")
	assert.Contains(t, out, "ls -la")
	assert.Contains(t, out, "backup_20260801_103000")
}

func TestShowBackups(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	c.ShowBackups(nil)
	assert.Contains(t, buf.String(), "No backups")

	buf.Reset()
	c.ShowBackups([]backup.Archive{{
		ID:        "backup_20260801_103000",
		CreatedAt: time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC),
		Size:      2048,
	}})
	out := buf.String()
	assert.Contains(t, out, "backup_20260801_103000")
	assert.Contains(t, out, "2026-08-01 10:30:00")
}
