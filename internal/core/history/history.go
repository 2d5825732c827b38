// Package history defines the execution ledger domain types and
// interfaces. Entries are append-only and never mutated.
package history

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tusk-sh/tusk/internal/core/plan"
)

// ErrNotFound is returned when no entry matches a lookup.
var ErrNotFound = errors.New("history entry not found")

// DefaultRetention caps the ledger at the most recent entries; older
// records are silently dropped on append.
const DefaultRetention = 20

// Entry records one executed plan: what ran, where, whether it all
// succeeded, and which backup (if any) can reverse it.
type Entry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	WorkDir     string    `json:"work_dir"`
	Explanation string    `json:"explanation,omitempty"`
	Commands    []string  `json:"commands"`
	BackupID    string    `json:"backup_id,omitempty"`
	BackupPath  string    `json:"backup_path,omitempty"`
	// Success is true only if every attempted action reported success.
	Success bool `json:"success"`
}

// NewEntry builds a ledger entry from a consumed plan and its result.
func NewEntry(p *plan.Plan, result plan.ExecutionResult, workDir, backupPath string) Entry {
	commands := make([]string, 0, len(result.Outputs))
	for _, out := range result.Outputs {
		commands = append(commands, out.Command)
	}

	return Entry{
		ID:          uuid.NewString(),
		Timestamp:   time.Now(),
		WorkDir:     workDir,
		Explanation: p.Explanation,
		Commands:    commands,
		BackupID:    result.BackupID,
		BackupPath:  backupPath,
		Success:     result.Succeeded(),
	}
}

// Store persists the execution ledger.
type Store interface {
	// Append records an entry, pruning old entries beyond maxEntries.
	Append(entry Entry, maxEntries int) error
	// List returns all entries, newest first.
	List() ([]Entry, error)
	// Last returns the most recent entry. Returns ErrNotFound when the
	// ledger is empty.
	Last() (Entry, error)
	// Clear removes all entries.
	Clear() error
}
