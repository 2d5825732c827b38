package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tusk-sh/tusk/internal/core/plan"
)

// wireAction matches the JSON shape the model is instructed to emit.
// "type" is the documented field; "kind" is accepted as an alias.
type wireAction struct {
	Type        string `json:"type"`
	Kind        string `json:"kind"`
	Content     string `json:"content"`
	Command     string `json:"command"`
	Explanation string `json:"explanation"`
	Fallback    string `json:"fallback"`
}

type wirePlan struct {
	Explanation    string       `json:"explanation"`
	Actions        []wireAction `json:"actions"`
	RequiresBackup bool         `json:"requires_backup"`
	BackupPaths    []string     `json:"backup_paths"`
	// Commands is the legacy response shape: a flat list of shell
	// commands with no per-action metadata.
	Commands []string `json:"commands"`
}

// ParsePlanResponse extracts the first JSON object from a model response
// and converts it into a plan. Prose or markdown fences around the object
// are tolerated; responses with no valid actions are rejected.
func ParsePlanResponse(raw string) (*plan.Plan, error) {
	obj, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var wire wirePlan
	if err := json.Unmarshal([]byte(obj), &wire); err != nil {
		return nil, fmt.Errorf("decoding plan object: %w", err)
	}

	p := plan.New(wire.Explanation)
	p.RequiresBackup = wire.RequiresBackup
	p.BackupPaths = wire.BackupPaths

	for _, wa := range wire.Actions {
		a := plan.Action{
			Kind:        actionKind(wa),
			Content:     firstNonEmpty(wa.Content, wa.Command),
			Explanation: wa.Explanation,
			Fallback:    wa.Fallback,
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("action %q: %w", truncate(a.Content, 60), err)
		}
		p.Actions = append(p.Actions, a)
	}

	for _, cmd := range wire.Commands {
		if strings.TrimSpace(cmd) == "" {
			continue
		}
		p.Actions = append(p.Actions, plan.Action{
			Kind:    plan.KindShellCommand,
			Content: cmd,
		})
	}

	if len(p.Actions) == 0 {
		return nil, fmt.Errorf("plan has no actions")
	}
	return p, nil
}

func actionKind(wa wireAction) plan.ActionKind {
	switch firstNonEmpty(wa.Type, wa.Kind) {
	case string(plan.KindInterpretedCode), "python", "code":
		return plan.KindInterpretedCode
	default:
		return plan.KindShellCommand
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// extractJSONObject returns the first balanced top-level {...} in s,
// respecting string literals and escapes.
func extractJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated JSON object in response")
}

// Common first words of shell invocations. A request starting with one of
// these is executed verbatim instead of being sent to the model.
var commandVerbs = map[string]bool{
	"ls": true, "cd": true, "pwd": true, "cat": true, "cp": true,
	"mv": true, "rm": true, "mkdir": true, "rmdir": true, "touch": true,
	"grep": true, "find": true, "sed": true, "awk": true, "sort": true,
	"head": true, "tail": true, "wc": true, "chmod": true, "chown": true,
	"tar": true, "gzip": true, "gunzip": true, "zip": true, "unzip": true,
	"curl": true, "wget": true, "ssh": true, "scp": true, "rsync": true,
	"git": true, "make": true, "docker": true, "kubectl": true,
	"python": true, "python3": true, "pip": true, "pip3": true,
	"go": true, "npm": true, "node": true, "cargo": true,
	"echo": true, "which": true, "man": true, "ps": true, "kill": true,
	"top": true, "df": true, "du": true, "mount": true, "umount": true,
	"systemctl": true, "journalctl": true, "apt": true, "apt-get": true,
	"brew": true, "yum": true, "dnf": true, "ln": true, "env": true,
	"export": true, "history": true, "clear": true, "date": true,
}

// Phrases that mark a request as natural language even when it starts
// with a known command word ("find my biggest files").
var naturalLanguageMarkers = []string{
	"please", "can you", "could you", "would you", "how do i", "how to",
	"what is", "what are", "show me", "tell me", "help me", "i want",
	"i need", "my ", " me ", " the files", "all of", "everything",
}

// IsDirectCommand reports whether the request should be executed as-is
// rather than interpreted by the model.
func IsDirectCommand(request string) bool {
	trimmed := strings.TrimSpace(request)
	if trimmed == "" {
		return false
	}
	if strings.HasSuffix(trimmed, "?") {
		return false
	}

	lower := strings.ToLower(trimmed)
	for _, marker := range naturalLanguageMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}

	// Shell syntax is a strong signal regardless of the first word.
	for _, tok := range []string{"|", "&&", "||", ">", ">>", ";", "$("} {
		if strings.Contains(trimmed, tok) {
			return true
		}
	}

	fields := strings.Fields(trimmed)
	if !commandVerbs[fields[0]] {
		return false
	}
	// "git commit every hour" is a request, "git commit -m fix" a command.
	for _, f := range fields[1:] {
		if strings.HasPrefix(f, "-") || strings.ContainsAny(f, "/.=*") {
			return true
		}
	}
	return len(fields) <= 3
}
