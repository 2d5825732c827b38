// Package safety classifies shell commands by risk and infers which
// filesystem paths a command set is about to mutate.
package safety

import (
	"strings"
)

// destructiveVerbs are command tokens considered capable of irreversible
// filesystem change. Matched only as standalone whitespace tokens so that
// words merely containing a verb (e.g. "firmware") never trigger.
var destructiveVerbs = map[string]struct{}{
	"rm":       {},
	"rmdir":    {},
	"unlink":   {},
	"mv":       {},
	"dd":       {},
	"mkfs":     {},
	"fdisk":    {},
	"format":   {},
	"shutdown": {},
	"reboot":   {},
	"del":      {},
	"truncate": {},
	"tee":      {},
	"sed":      {},
	">":        {},
	">>":       {},
}

// deleteVerbs are the subset of destructive verbs whose effect is
// removal. Commands matching these get a preview-then-confirm step.
var deleteVerbs = map[string]struct{}{
	"rm":     {},
	"rmdir":  {},
	"unlink": {},
	"del":    {},
}

// IsDestructive reports whether the command contains a destructive verb
// as a standalone token, at the start or surrounded by whitespace. The
// bare verb with no arguments still counts. Pure and total: never
// errors, no side effects.
func IsDestructive(command string) bool {
	for _, tok := range strings.Fields(command) {
		if _, ok := destructiveVerbs[strings.ToLower(tok)]; ok {
			return true
		}
	}
	return false
}

// IsDelete reports whether the command's destructive effect is removal:
// either a delete verb token or a find-style -delete flag.
func IsDelete(command string) bool {
	for _, tok := range strings.Fields(command) {
		lower := strings.ToLower(tok)
		if _, ok := deleteVerbs[lower]; ok {
			return true
		}
		if lower == "-delete" {
			return true
		}
	}
	return false
}
