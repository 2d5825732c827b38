package rollback

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusk-sh/tusk/internal/core/backup"
	"github.com/tusk-sh/tusk/internal/core/history"
)

// memLedger is an in-memory history.Store for tests.
type memLedger struct {
	entries []history.Entry
}

func (m *memLedger) Append(e history.Entry, maxEntries int) error {
	m.entries = append([]history.Entry{e}, m.entries...)
	if maxEntries > 0 && len(m.entries) > maxEntries {
		m.entries = m.entries[:maxEntries]
	}
	return nil
}

func (m *memLedger) List() ([]history.Entry, error) { return m.entries, nil }

func (m *memLedger) Last() (history.Entry, error) {
	if len(m.entries) == 0 {
		return history.Entry{}, history.ErrNotFound
	}
	return m.entries[0], nil
}

func (m *memLedger) Clear() error {
	m.entries = nil
	return nil
}

func TestRestoreRoundTrip(t *testing.T) {
	src := t.TempDir()
	fileA := filepath.Join(src, "a.txt")
	sub := filepath.Join(src, "sub")
	fileB := filepath.Join(sub, "b.txt")
	require.NoError(t, os.WriteFile(fileA, []byte("original A"), 0o644))
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(fileB, []byte("original B"), 0o644))

	store := t.TempDir()
	arch, err := backup.NewArchiver(store).Create("", []string{fileA, sub})
	require.NoError(t, err)

	// Simulate the destructive plan: one file mangled, one deleted.
	require.NoError(t, os.WriteFile(fileA, []byte("clobbered"), 0o644))
	require.NoError(t, os.Remove(fileB))

	m := NewManager(store, &memLedger{})
	require.NoError(t, m.Restore(arch.Path))

	gotA, err := os.ReadFile(fileA)
	require.NoError(t, err)
	gotB, err := os.ReadFile(fileB)
	require.NoError(t, err)

	assert.Equal(t, "original A", string(gotA))
	assert.Equal(t, "original B", string(gotB))
}

func TestRestoreUnderAlternateRoot(t *testing.T) {
	src := t.TempDir()
	file := filepath.Join(src, "data.txt")
	require.NoError(t, os.WriteFile(file, []byte("payload"), 0o644))

	store := t.TempDir()
	arch, err := backup.NewArchiver(store).Create("", []string{file})
	require.NoError(t, err)

	root := t.TempDir()
	m := NewManager(store, &memLedger{})
	m.restoreRoot = root
	require.NoError(t, m.Restore(arch.Path))

	// The live file stays untouched; the copy lands under root at the
	// original absolute path.
	got, err := os.ReadFile(filepath.Join(root, file))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	live, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(live))
}

func TestRestorePartialFailureSurfaced(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	src := t.TempDir()
	fileA := filepath.Join(src, "a.txt")
	require.NoError(t, os.WriteFile(fileA, []byte("content"), 0o644))

	store := t.TempDir()
	arch, err := backup.NewArchiver(store).Create("", []string{fileA})
	require.NoError(t, err)

	// Make the destination directory unwritable so the copy-back fails.
	require.NoError(t, os.Remove(fileA))
	require.NoError(t, os.Chmod(src, 0o555))
	t.Cleanup(func() { _ = os.Chmod(src, 0o755) })

	m := NewManager(store, &memLedger{})
	err = m.Restore(arch.Path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "restored 0 of 1")
}

func TestRollbackLast(t *testing.T) {
	src := t.TempDir()
	file := filepath.Join(src, "data.txt")
	require.NoError(t, os.WriteFile(file, []byte("before"), 0o644))

	store := t.TempDir()
	arch, err := backup.NewArchiver(store).Create("", []string{file})
	require.NoError(t, err)

	ledger := &memLedger{}
	require.NoError(t, ledger.Append(history.Entry{
		ID:         "e1",
		BackupID:   arch.ID,
		BackupPath: arch.Path,
	}, history.DefaultRetention))

	require.NoError(t, os.WriteFile(file, []byte("after"), 0o644))

	m := NewManager(store, ledger)
	require.NoError(t, m.RollbackLast())

	got, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "before", string(got))
}

func TestRollbackLastNoBackup(t *testing.T) {
	ledger := &memLedger{}
	require.NoError(t, ledger.Append(history.Entry{ID: "e1"}, history.DefaultRetention))

	m := NewManager(t.TempDir(), ledger)
	assert.ErrorIs(t, m.RollbackLast(), ErrNoBackup)
}

func TestRollbackLastEmptyLedger(t *testing.T) {
	m := NewManager(t.TempDir(), &memLedger{})
	assert.ErrorIs(t, m.RollbackLast(), history.ErrNotFound)
}

func TestRollbackLastArchiveGone(t *testing.T) {
	ledger := &memLedger{}
	require.NoError(t, ledger.Append(history.Entry{
		ID:         "e1",
		BackupPath: filepath.Join(t.TempDir(), "backup_20240101_000000.tar.gz"),
	}, history.DefaultRetention))

	m := NewManager(t.TempDir(), ledger)
	assert.ErrorIs(t, m.RollbackLast(), backup.ErrNotFound)
}

func TestRollbackTo(t *testing.T) {
	src := t.TempDir()
	file := filepath.Join(src, "data.txt")
	require.NoError(t, os.WriteFile(file, []byte("v1"), 0o644))

	store := t.TempDir()
	arch, err := backup.NewArchiver(store).Create("", []string{file})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(file, []byte("v2"), 0o644))

	m := NewManager(store, &memLedger{})

	t.Run("unknown id", func(t *testing.T) {
		assert.ErrorIs(t, m.RollbackTo("backup_19700101_000000"), backup.ErrNotFound)
	})

	t.Run("valid id", func(t *testing.T) {
		require.NoError(t, m.RollbackTo(arch.ID))
		got, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Equal(t, "v1", string(got))
	})
}

func TestListBackups(t *testing.T) {
	store := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(store, "backup_20240102_000000.tar.gz"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store, "backup_20240101_000000.tar.gz"), []byte("x"), 0o644))

	m := NewManager(store, &memLedger{})
	archives, err := m.ListBackups()
	require.NoError(t, err)

	require.Len(t, archives, 2)
	assert.Equal(t, "backup_20240102_000000", archives[0].ID)
}

func TestGetLastExecution(t *testing.T) {
	ledger := &memLedger{}
	require.NoError(t, ledger.Append(history.Entry{ID: "older"}, history.DefaultRetention))
	require.NoError(t, ledger.Append(history.Entry{ID: "newer"}, history.DefaultRetention))

	m := NewManager(t.TempDir(), ledger)
	entry, err := m.GetLastExecution()
	require.NoError(t, err)
	assert.Equal(t, "newer", entry.ID)
}
