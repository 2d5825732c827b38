// Package jsonfile implements file-backed stores using JSON documents.
package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/tusk-sh/tusk/internal/core/history"
)

// LedgerFile is the root JSON structure stored on disk.
type LedgerFile struct {
	Entries []history.Entry `json:"entries"`
}

// Ledger implements history.Store using a JSON file for persistence.
// The file is a single-writer resource; concurrent external writers are
// an accepted limitation.
type Ledger struct {
	path string
	mu   sync.RWMutex
}

var _ history.Store = (*Ledger)(nil)

// NewLedger creates a new JSON file ledger at the given path.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

// Append records a new entry, pruning old entries to stay within
// maxEntries. Appending strictly follows execution; callers invoke
// this only after a plan has completed.
func (l *Ledger) Append(entry history.Entry, maxEntries int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := l.load()
	if err != nil {
		return err
	}

	// Prepend new entry (newest first)
	file.Entries = append([]history.Entry{entry}, file.Entries...)

	if maxEntries > 0 && len(file.Entries) > maxEntries {
		file.Entries = file.Entries[:maxEntries]
	}

	return l.save(file)
}

// List returns all entries, newest first.
func (l *Ledger) List() ([]history.Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	file, err := l.load()
	if err != nil {
		return nil, err
	}

	return file.Entries, nil
}

// Last returns the most recent entry. Returns ErrNotFound if the
// ledger is empty.
func (l *Ledger) Last() (history.Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	file, err := l.load()
	if err != nil {
		return history.Entry{}, err
	}

	if len(file.Entries) == 0 {
		return history.Entry{}, history.ErrNotFound
	}

	return file.Entries[0], nil
}

// Clear removes all entries.
func (l *Ledger) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.save(LedgerFile{Entries: []history.Entry{}})
}

// load reads the ledger file from disk.
// Returns an empty LedgerFile if the file doesn't exist.
func (l *Ledger) load() (LedgerFile, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return LedgerFile{}, nil
		}
		return LedgerFile{}, err
	}

	if len(data) == 0 {
		return LedgerFile{}, nil
	}

	var file LedgerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return LedgerFile{}, err
	}

	return file, nil
}

// save writes the ledger file to disk atomically.
func (l *Ledger) save(file LedgerFile) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, l.path)
}
