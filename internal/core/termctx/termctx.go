// Package termctx gathers a snapshot of the terminal environment — the
// working directory, its files, and git state — for path inference and
// plan generation prompts.
package termctx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/tusk-sh/tusk/pkg/executil"
)

const (
	defaultMaxFiles   = 20
	defaultMaxHistory = 5
)

// FileInfo describes one entry of the working directory.
type FileInfo struct {
	Name     string    `json:"name"`
	IsDir    bool      `json:"is_dir"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Snapshot is a serialized view of the terminal environment at a point
// in time. It is immutable once gathered.
type Snapshot struct {
	OS        string     `json:"os"`
	WorkDir   string     `json:"work_dir"`
	Files     []FileInfo `json:"files,omitempty"`
	GitBranch string     `json:"git_branch,omitempty"`
	GitDirty  bool       `json:"git_dirty,omitempty"`
	// History holds the user's most recent shell commands, oldest
	// first, read best-effort from the shell history file.
	History []string `json:"history,omitempty"`
}

// Gatherer collects snapshots.
type Gatherer struct {
	runner     executil.Runner
	maxFiles   int
	maxHistory int
	// homeDir is where shell history files are looked up.
	homeDir string
}

// NewGatherer creates a context gatherer using runner for git queries.
func NewGatherer(runner executil.Runner) *Gatherer {
	home, _ := os.UserHomeDir()
	return &Gatherer{
		runner:     runner,
		maxFiles:   defaultMaxFiles,
		maxHistory: defaultMaxHistory,
		homeDir:    home,
	}
}

// Gather collects a snapshot of workDir. Individual lookups are best
// effort: an unreadable directory or absent git repo simply leaves the
// corresponding fields empty.
func (g *Gatherer) Gather(ctx context.Context, workDir string) Snapshot {
	snap := Snapshot{
		OS:      runtime.GOOS,
		WorkDir: workDir,
		Files:   g.listFiles(workDir),
		History: g.recentCommands(),
	}

	if out, err := g.runner.RunShell(ctx, workDir, "git rev-parse --abbrev-ref HEAD"); err == nil && out.Success() {
		snap.GitBranch = strings.TrimSpace(out.Stdout)

		if status, err := g.runner.RunShell(ctx, workDir, "git status --porcelain"); err == nil && status.Success() {
			snap.GitDirty = strings.TrimSpace(status.Stdout) != ""
		}
	}

	return snap
}

// listFiles returns up to maxFiles entries sorted by modification time,
// most recent first. Hidden files are skipped.
func (g *Gatherer) listFiles(dir string) []FileInfo {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []FileInfo
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:     entry.Name(),
			IsDir:    entry.IsDir(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Modified.After(files[j].Modified)
	})

	if len(files) > g.maxFiles {
		files = files[:g.maxFiles]
	}
	return files
}

// recentCommands returns the tail of the user's shell history, oldest
// first. The first readable history file wins; an unreadable or absent
// file just yields nothing.
func (g *Gatherer) recentCommands() []string {
	if g.homeDir == "" {
		return nil
	}

	for _, name := range []string{".bash_history", ".zsh_history"} {
		data, err := os.ReadFile(filepath.Join(g.homeDir, name))
		if err != nil {
			continue
		}

		var cmds []string
		for _, line := range strings.Split(string(data), "\n") {
			cmd := strings.TrimSpace(line)
			// zsh extended history lines look like ": <ts>:<dur>;cmd".
			if strings.HasPrefix(cmd, ":") {
				if _, rest, ok := strings.Cut(cmd, ";"); ok {
					cmd = strings.TrimSpace(rest)
				}
			}
			if cmd != "" {
				cmds = append(cmds, cmd)
			}
		}
		if len(cmds) == 0 {
			continue
		}
		if len(cmds) > g.maxHistory {
			cmds = cmds[len(cmds)-g.maxHistory:]
		}
		return cmds
	}
	return nil
}

// String renders the snapshot for inclusion in a model prompt.
func (s Snapshot) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "OS: %s\n", s.OS)
	fmt.Fprintf(&b, "Current directory: %s\n", s.WorkDir)

	if s.GitBranch != "" {
		state := "clean"
		if s.GitDirty {
			state = "uncommitted changes"
		}
		fmt.Fprintf(&b, "Git branch: %s (%s)\n", s.GitBranch, state)
	}

	if len(s.Files) > 0 {
		b.WriteString("Files:\n")
		for _, f := range s.Files {
			kind := "file"
			if f.IsDir {
				kind = "dir"
			}
			fmt.Fprintf(&b, "  %s (%s)\n", f.Name, kind)
		}
	}

	if len(s.History) > 0 {
		b.WriteString("Recent commands:\n")
		for _, cmd := range s.History {
			fmt.Fprintf(&b, "  %s\n", cmd)
		}
	}

	return b.String()
}
