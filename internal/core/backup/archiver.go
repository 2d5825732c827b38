package backup

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"

	"github.com/tusk-sh/tusk/internal/core/logging"
)

// Archiver packages path sets into compressed tar archives under a
// dedicated store directory. It never mutates source paths.
type Archiver struct {
	dir string
	now func() time.Time
	log zerolog.Logger
}

// NewArchiver creates an archiver writing into dir.
func NewArchiver(dir string) *Archiver {
	return &Archiver{
		dir: dir,
		now: time.Now,
		log: logging.Component("backup"),
	}
}

// Dir returns the backup store directory.
func (a *Archiver) Dir() string { return a.dir }

// Create snapshots the given paths (files and directories, recursively)
// into a single timestamped tar.gz archive. Relative paths are resolved
// against workDir, the directory the plan's actions run in, never the
// process working directory. Paths that do not exist are skipped; if
// none exist the archive is still written, empty, so the calling flow
// stays uniform. Store I/O errors are returned and must be treated as
// fatal by the caller.
func (a *Archiver) Create(workDir string, paths []string) (*Archive, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	ts := a.now()
	name, err := a.claimName(ts)
	if err != nil {
		return nil, err
	}
	archivePath := filepath.Join(a.dir, name)

	f, err := os.OpenFile(archivePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}

	captured, err := a.writeArchive(f, expandGlobs(resolvePaths(workDir, paths)))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(archivePath)
		return nil, fmt.Errorf("write archive: %w", err)
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	if len(captured) == 0 {
		a.log.Warn().Str("archive", name).Msg("no source paths existed; wrote empty archive")
	}

	return &Archive{
		ID:        IDFromName(name),
		Path:      archivePath,
		Paths:     captured,
		CreatedAt: ts,
		Size:      info.Size(),
	}, nil
}

// claimName resolves same-second ID collisions with a numeric suffix
// rather than overwriting an existing archive.
func (a *Archiver) claimName(ts time.Time) (string, error) {
	for i := 0; ; i++ {
		name := archiveName(ts, i)
		_, err := os.Stat(filepath.Join(a.dir, name))
		if os.IsNotExist(err) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("claim archive name: %w", err)
		}
	}
}

func (a *Archiver) writeArchive(w io.Writer, paths []string) ([]string, error) {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	var captured []string
	for _, p := range paths {
		if _, err := os.Lstat(p); err != nil {
			a.log.Warn().Str("path", p).Msg("skipping missing path")
			continue
		}
		if err := addPath(tw, p); err != nil {
			return nil, err
		}
		captured = append(captured, p)
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	return captured, gz.Close()
}

// addPath writes a file or directory tree into the tar. Entries are
// named relative to the filesystem root so restore can compute original
// absolute paths.
func addPath(tw *tar.Writer, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		var link string
		if info.Mode()&fs.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = strings.TrimPrefix(path, string(filepath.Separator))

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = src.Close() }()

		_, err = io.Copy(tw, src)
		return err
	})
}

// resolvePaths anchors every non-absolute path at workDir and cleans
// the result. An empty workDir falls back to the process working
// directory.
func resolvePaths(workDir string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		switch {
		case filepath.IsAbs(p):
			out = append(out, filepath.Clean(p))
		case workDir != "":
			out = append(out, filepath.Join(workDir, p))
		default:
			if abs, err := filepath.Abs(p); err == nil {
				out = append(out, abs)
			} else {
				out = append(out, p)
			}
		}
	}
	return out
}

// expandGlobs resolves glob patterns in the path set to concrete
// matches. Literal paths pass through untouched so a missing literal is
// still reported as skipped rather than silently dropped.
func expandGlobs(paths []string) []string {
	var out []string
	for _, p := range paths {
		base, pattern := doublestar.SplitPattern(p)
		if pattern == "" || !strings.ContainsAny(pattern, "*?[{") {
			out = append(out, p)
			continue
		}
		matches, err := doublestar.Glob(os.DirFS(base), pattern)
		if err != nil || len(matches) == 0 {
			out = append(out, p)
			continue
		}
		for _, m := range matches {
			out = append(out, filepath.Join(base, m))
		}
	}
	return out
}
