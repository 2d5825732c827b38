// Package rollback restores filesystem state from backup archives and
// answers questions about the execution ledger.
package rollback

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"

	"github.com/tusk-sh/tusk/internal/core/backup"
	"github.com/tusk-sh/tusk/internal/core/history"
	"github.com/tusk-sh/tusk/internal/core/logging"
)

// ErrNoBackup is returned when the last execution has no backup to
// roll back to.
var ErrNoBackup = errors.New("no backup associated with the last execution")

// Manager reverses prior backups. It shares the archive format and the
// ledger with the executor but is otherwise independent of it.
type Manager struct {
	backupDir string
	ledger    history.Store
	log       zerolog.Logger

	// restoreRoot is the filesystem root files are copied back under.
	// Production code leaves it at "/"; tests point it elsewhere.
	restoreRoot string
}

// NewManager creates a rollback manager over the given backup store and
// ledger.
func NewManager(backupDir string, ledger history.Store) *Manager {
	return &Manager{
		backupDir:   backupDir,
		ledger:      ledger,
		log:         logging.Component("rollback"),
		restoreRoot: string(filepath.Separator),
	}
}

// ListBackups returns the metadata of every archive in the backup
// store, newest first.
func (m *Manager) ListBackups() ([]backup.Archive, error) {
	return backup.List(m.backupDir)
}

// GetLastExecution returns the most recent ledger entry.
func (m *Manager) GetLastExecution() (history.Entry, error) {
	return m.ledger.Last()
}

// RollbackLast restores the backup associated with the most recent
// execution. Fails with a clear error when the last execution has no
// backup or the archive file is gone.
func (m *Manager) RollbackLast() error {
	entry, err := m.ledger.Last()
	if err != nil {
		return fmt.Errorf("read last execution: %w", err)
	}

	if entry.BackupPath == "" {
		return ErrNoBackup
	}

	if _, err := os.Stat(entry.BackupPath); err != nil {
		return fmt.Errorf("%w: %s", backup.ErrNotFound, entry.BackupPath)
	}

	return m.Restore(entry.BackupPath)
}

// RollbackTo restores a specific archive by identifier, validating that
// it exists first.
func (m *Manager) RollbackTo(id string) error {
	arch, err := backup.Find(m.backupDir, id)
	if err != nil {
		return err
	}
	return m.Restore(arch.Path)
}

// Restore extracts the archive into a temporary staging area, then
// copies every regular file back over its original absolute path,
// creating intermediate directories as needed. An error is returned
// unless every file was restored; partial restores are surfaced, never
// hidden.
func (m *Manager) Restore(archivePath string) error {
	staging, err := os.MkdirTemp("", "tusk-restore-*")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	files, err := m.extract(archivePath, staging)
	if err != nil {
		return fmt.Errorf("extract %s: %w", archivePath, err)
	}

	var restored, failed int
	var errs []error
	for _, rel := range files {
		dest := filepath.Join(m.restoreRoot, rel)
		if err := copyFile(filepath.Join(staging, rel), dest); err != nil {
			failed++
			errs = append(errs, fmt.Errorf("restore %s: %w", dest, err))
			m.log.Error().Str("path", dest).Err(err).Msg("failed to restore file")
			continue
		}
		restored++
	}

	m.log.Info().
		Str("archive", filepath.Base(archivePath)).
		Int("restored", restored).
		Int("failed", failed).
		Msg("restore finished")

	if failed > 0 {
		return fmt.Errorf("restored %d of %d files: %w", restored, restored+failed, errors.Join(errs...))
	}
	return nil
}

// extract unpacks the archive into dir and returns the relative paths
// of the regular files it contained. Entries attempting to escape the
// staging area are rejected.
func (m *Manager) extract(archivePath, dir string) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)

	var files []string
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		rel := filepath.Clean(hdr.Name)
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
			return nil, fmt.Errorf("archive entry escapes staging area: %s", hdr.Name)
		}
		target := filepath.Join(dir, rel)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, fs.FileMode(hdr.Mode)|0o700); err != nil {
				return nil, err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nil, err
			}
			out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fs.FileMode(hdr.Mode))
			if err != nil {
				return nil, err
			}
			if _, err := io.Copy(out, tr); err != nil {
				_ = out.Close()
				return nil, err
			}
			if err := out.Close(); err != nil {
				return nil, err
			}
			files = append(files, rel)
		default:
			// Symlinks and specials are skipped; restore covers
			// regular file content only.
			m.log.Warn().Str("entry", hdr.Name).Msg("skipping non-regular archive entry")
		}
	}

	return files, nil
}

func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
