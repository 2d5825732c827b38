package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusk-sh/tusk/internal/core/plan"
)

func TestNewEntry(t *testing.T) {
	p := plan.New("reorganize files",
		plan.Action{Kind: plan.KindShellCommand, Content: "mv a b"},
		plan.Action{Kind: plan.KindShellCommand, Content: "ls b"},
	)
	result := plan.ExecutionResult{
		Executed: true,
		Outputs: []plan.ActionResult{
			{Command: "mv a b", Success: true},
			{Command: "ls b", Success: true},
		},
		BackupID: "backup_20260801_103000",
	}

	entry := NewEntry(p, result, "/home/user", "/data/backups/backup_20260801_103000.tar.gz")

	require.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())
	assert.Equal(t, "/home/user", entry.WorkDir)
	assert.Equal(t, "reorganize files", entry.Explanation)
	assert.Equal(t, []string{"mv a b", "ls b"}, entry.Commands)
	assert.Equal(t, "backup_20260801_103000", entry.BackupID)
	assert.True(t, entry.Success)
}

func TestNewEntryFailedAction(t *testing.T) {
	p := plan.New("remove file", plan.Action{Kind: plan.KindShellCommand, Content: "rm x"})
	result := plan.ExecutionResult{
		Executed: true,
		Outputs:  []plan.ActionResult{{Command: "rm x", Success: false, ReturnCode: 1}},
	}

	entry := NewEntry(p, result, "/tmp", "")

	assert.False(t, entry.Success)
	assert.Empty(t, entry.BackupID)
	assert.Empty(t, entry.BackupPath)
}
