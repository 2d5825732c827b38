package backup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tusk-sh/tusk/internal/core/logging"
)

// List scans the backup store and returns archive metadata, newest
// first. Files that do not parse as archive identifiers are skipped
// with a warning rather than failing the scan. A missing store
// directory yields an empty list.
func List(dir string) ([]Archive, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	log := logging.Component("backup")

	var archives []Archive
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ts, ok := ParseArchiveName(entry.Name())
		if !ok {
			log.Warn().Str("file", entry.Name()).Msg("ignoring unrecognized file in backup dir")
			continue
		}

		info, err := entry.Info()
		if err != nil {
			log.Warn().Str("file", entry.Name()).Err(err).Msg("ignoring unreadable archive")
			continue
		}

		archives = append(archives, Archive{
			ID:        IDFromName(entry.Name()),
			Path:      filepath.Join(dir, entry.Name()),
			CreatedAt: ts,
			Size:      info.Size(),
		})
	}

	sortNewestFirst(archives)
	return archives, nil
}

// Find returns the archive with the given ID from the store. The ID may
// be given with or without the archive extension.
func Find(dir, id string) (Archive, error) {
	archives, err := List(dir)
	if err != nil {
		return Archive{}, err
	}

	want := IDFromName(id)
	for _, a := range archives {
		if a.ID == want {
			return a, nil
		}
	}

	return Archive{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}
