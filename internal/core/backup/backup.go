// Package backup creates and catalogs restorable snapshots of
// filesystem paths, taken before a risky plan executes.
package backup

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned when an archive ID has no file in the store.
var ErrNotFound = errors.New("backup archive not found")

// Archive is a persisted, timestamped snapshot. Immutable once written.
type Archive struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Paths     []string  `json:"paths,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size"`
}

const (
	archivePrefix = "backup_"
	archiveExt    = ".tar.gz"
	// stampLayout renders timestamps that sort lexicographically by
	// creation order.
	stampLayout = "20060102_150405"
)

var archiveNameRe = regexp.MustCompile(`^backup_(\d{8}_\d{6})(?:_\d+)?\.tar\.gz$`)

// ParseArchiveName extracts the creation time from an archive filename.
// Returns false for names that are not valid archive identifiers.
func ParseArchiveName(name string) (time.Time, bool) {
	m := archiveNameRe.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(stampLayout, m[1], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// IDFromName strips the archive extension from a filename.
func IDFromName(name string) string {
	return strings.TrimSuffix(name, archiveExt)
}

// sortNewestFirst orders archives by creation time descending, with the
// ID as a tiebreaker so same-second archives have a stable order.
func sortNewestFirst(archives []Archive) {
	sort.Slice(archives, func(i, j int) bool {
		if !archives[i].CreatedAt.Equal(archives[j].CreatedAt) {
			return archives[i].CreatedAt.After(archives[j].CreatedAt)
		}
		return archives[i].ID > archives[j].ID
	})
}

func archiveName(ts time.Time, collision int) string {
	base := archivePrefix + ts.Format(stampLayout)
	if collision > 0 {
		base = fmt.Sprintf("%s_%d", base, collision)
	}
	return base + archiveExt
}
