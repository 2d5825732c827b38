package tusk

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusk-sh/tusk/internal/console"
	"github.com/tusk-sh/tusk/internal/core/config"
	"github.com/tusk-sh/tusk/internal/core/plan"
	"github.com/tusk-sh/tusk/internal/core/termctx"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

type stubGenerator struct {
	plan *plan.Plan
	err  error
}

func (s *stubGenerator) GeneratePlan(_ context.Context, _ string, _ *termctx.Snapshot) (*plan.Plan, error) {
	return s.plan, s.err
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.CommandTimeout = 10 * time.Second
	return cfg
}

func TestRunRequestRecordsExecution(t *testing.T) {
	var buf bytes.Buffer
	gen := &stubGenerator{plan: plan.New("say hello",
		plan.Action{Kind: plan.KindShellCommand, Content: "echo hello"},
	)}
	app := NewApp(testConfig(t), console.New(&buf), gen)

	result, err := app.RunRequest(context.Background(), "say hello", RunOptions{Yes: true})
	require.NoError(t, err)
	assert.True(t, result.Succeeded())

	entries, err := app.Ledger.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "say hello", entries[0].Explanation)
	assert.Equal(t, []string{"echo hello"}, entries[0].Commands)
	assert.True(t, entries[0].Success)
	assert.Contains(t, buf.String(), "All actions completed")
}

func TestRunRequestDryRunRecordsNothing(t *testing.T) {
	var buf bytes.Buffer
	gen := &stubGenerator{plan: plan.New("say hello",
		plan.Action{Kind: plan.KindShellCommand, Content: "echo hello"},
	)}
	app := NewApp(testConfig(t), console.New(&buf), gen)

	result, err := app.RunRequest(context.Background(), "say hello", RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.False(t, result.Executed)

	entries, err := app.Ledger.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Contains(t, buf.String(), "echo hello")
}

func TestRunRequestGeneratorError(t *testing.T) {
	var buf bytes.Buffer
	gen := &stubGenerator{err: assert.AnError}
	app := NewApp(testConfig(t), console.New(&buf), gen)

	_, err := app.RunRequest(context.Background(), "do something", RunOptions{Yes: true})
	assert.Error(t, err)
}

func TestRunRequestBackupRecordedInLedger(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "data.txt")
	require.NoError(t, writeFile(target, "payload"))

	var buf bytes.Buffer
	p := plan.New("touch data",
		plan.Action{Kind: plan.KindShellCommand, Content: "true"},
	)
	p.RequiresBackup = true
	p.BackupPaths = []string{target}
	gen := &stubGenerator{plan: p}
	app := NewApp(testConfig(t), console.New(&buf), gen)

	result, err := app.RunRequest(context.Background(), "touch data", RunOptions{Yes: true})
	require.NoError(t, err)
	require.NotEmpty(t, result.BackupID)

	last, err := app.Ledger.Last()
	require.NoError(t, err)
	assert.Equal(t, result.BackupID, last.BackupID)
	assert.NotEmpty(t, last.BackupPath)
}
