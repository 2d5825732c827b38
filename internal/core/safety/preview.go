package safety

import (
	"regexp"
	"strings"
)

// A PreviewGenerator turns a destructive delete command into a
// non-destructive enumeration of what it would remove, so the user can
// confirm against the actual file list before anything is deleted.
type PreviewGenerator interface {
	// Matches reports whether this generator handles the command.
	Matches(command string) bool
	// PreviewCommand returns a command that lists the affected items
	// without removing them.
	PreviewCommand(command string) string
}

// findDeletePreview handles `find ... -delete` by re-running the find
// without the -delete flag.
type findDeletePreview struct{}

var findDeleteFlag = regexp.MustCompile(`\s+-delete\b`)

func (findDeletePreview) Matches(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 || fields[0] != "find" {
		return false
	}
	return findDeleteFlag.MatchString(command)
}

func (findDeletePreview) PreviewCommand(command string) string {
	return findDeleteFlag.ReplaceAllString(command, "")
}

// rmPreview handles rm/rmdir/unlink by listing the path arguments.
type rmPreview struct{}

func (rmPreview) Matches(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "rm", "rmdir", "unlink":
		return true
	}
	return false
}

func (rmPreview) PreviewCommand(command string) string {
	var args []string
	for _, f := range strings.Fields(command)[1:] {
		if strings.HasPrefix(f, "-") {
			continue
		}
		args = append(args, f)
	}
	if len(args) == 0 {
		return "true"
	}
	return "ls -d " + strings.Join(args, " ")
}

// previewGenerators is consulted in order; first match wins.
var previewGenerators = []PreviewGenerator{
	findDeletePreview{},
	rmPreview{},
}

// PreviewFor returns a preview generator for the command, or nil when no
// family matches and the executor should fall back to a plain
// confirmation without a file listing.
func PreviewFor(command string) PreviewGenerator {
	for _, g := range previewGenerators {
		if g.Matches(command) {
			return g
		}
	}
	return nil
}
