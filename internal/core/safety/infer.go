package safety

import (
	"regexp"
	"strings"
)

// Extraction patterns for path arguments of file-mutating commands.
// Best effort: commands that match nothing contribute no paths.
var (
	rmPattern       = regexp.MustCompile(`\brm\s+(?:-[a-zA-Z]+\s+)*([^\s;|&]+)`)
	mvPattern       = regexp.MustCompile(`\bmv\s+(?:-[a-zA-Z]+\s+)*([^\s;|&]+)\s+([^\s;|&]+)`)
	cpPattern       = regexp.MustCompile(`\bcp\s+(?:-[a-zA-Z]+\s+)*([^\s;|&]+)\s+([^\s;|&]+)`)
	redirectPattern = regexp.MustCompile(`>{1,2}\s*([^\s;|&]+)`)
	sedPattern      = regexp.MustCompile(`\bsed\s+-i\S*\s+.*\s([^\s;|&]+)\s*$`)
	truncatePattern = regexp.MustCompile(`\btruncate\s+(?:-\S+\s+)*([^\s;|&]+)`)
)

// InferBackupPaths extracts filesystem paths that the given commands are
// likely to mutate, for backup targeting. It may under- or
// over-approximate and never fails on malformed input. The result is
// deduplicated and ordered by first appearance, so identical input
// yields identical output.
func InferBackupPaths(commands []string) []string {
	seen := make(map[string]struct{})
	var paths []string

	add := func(p string) {
		p = strings.Trim(p, `"'`)
		if p == "" || strings.HasPrefix(p, "-") || p == "/dev/null" {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}

	for _, cmd := range commands {
		for _, m := range rmPattern.FindAllStringSubmatch(cmd, -1) {
			add(m[1])
		}
		for _, m := range mvPattern.FindAllStringSubmatch(cmd, -1) {
			add(m[1])
			add(m[2])
		}
		for _, m := range cpPattern.FindAllStringSubmatch(cmd, -1) {
			// Only the target of a copy is overwritten.
			add(m[2])
		}
		for _, m := range redirectPattern.FindAllStringSubmatch(cmd, -1) {
			add(m[1])
		}
		for _, m := range truncatePattern.FindAllStringSubmatch(cmd, -1) {
			add(m[1])
		}
		if m := sedPattern.FindStringSubmatch(cmd); m != nil {
			add(m[1])
		}
	}

	return paths
}
