// Package unpack materializes decoded FDL records as files under a directory.
package unpack

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hayeah/fdl/fdl"
)

// ErrUnsafePath is wrapped by WriteError when a record path is absolute,
// climbs out of the destination, or reaches outside it through a symlink.
var ErrUnsafePath = errors.New("path escapes destination")

// WriteError reports a record that could not be written.
type WriteError struct {
	Path string // record path as it appeared in the document
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Options controls Unpack.
type Options struct {
	// FinalNewline appends "\n" to non-empty content that lacks one.
	FinalNewline bool
	// DryRun verifies every record without touching the filesystem.
	DryRun bool
}

// Report lists what Unpack did.
type Report struct {
	Written     []string // record paths written, in document order
	Overwritten []string // subset of Written that replaced an existing file
	Bytes       int64
	Skipped     []*WriteError
}

// Write is a single pending file write.
type Write struct {
	Dest   string
	Record fdl.Record

	target string
}

func (w *Write) Description() string {
	return fmt.Sprintf("write %s (%d bytes)", w.Record.Path, len(w.Record.Content))
}

// Verify resolves the target path and checks that it stays inside Dest,
// following any symlinks already on disk.
func (w *Write) Verify() error {
	target, err := resolve(w.Dest, w.Record.Path)
	if err != nil {
		return err
	}
	if err := checkSymlinks(w.Dest, target); err != nil {
		return err
	}

	info, err := os.Stat(target)
	if err == nil && info.IsDir() {
		return fmt.Errorf("a directory exists at %s", target)
	}
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to check file existence: %w", err)
	}

	w.target = target
	return nil
}

// Apply creates parent directories and writes the file, replacing any
// existing one.
func (w *Write) Apply() error {
	if w.target == "" {
		if err := w.Verify(); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
	}

	dir := filepath.Dir(w.target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(w.target, []byte(w.Record.Content), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Unpack writes records under dest, creating dest if needed. Records that
// cannot be written are skipped and reported. The returned error is non-nil
// only when dest itself is unusable.
func Unpack(dest string, records []fdl.Record, opts Options) (*Report, error) {
	if !opts.DryRun {
		if err := os.MkdirAll(dest, 0755); err != nil {
			return nil, fmt.Errorf("failed to create destination %s: %w", dest, err)
		}
	}

	report := &Report{}
	for _, rec := range records {
		if opts.FinalNewline && rec.Content != "" && !strings.HasSuffix(rec.Content, "\n") {
			rec.Content += "\n"
		}

		w := &Write{Dest: dest, Record: rec}
		if err := w.Verify(); err != nil {
			report.skip(rec.Path, err)
			continue
		}

		existed := fileExists(w.target)
		if !opts.DryRun {
			if err := w.Apply(); err != nil {
				report.skip(rec.Path, err)
				continue
			}
		}
		slog.Debug("unpacked", "path", rec.Path, "bytes", len(rec.Content), "dry_run", opts.DryRun)

		report.Written = append(report.Written, rec.Path)
		if existed {
			report.Overwritten = append(report.Overwritten, rec.Path)
		}
		report.Bytes += int64(len(rec.Content))
	}
	return report, nil
}

func (r *Report) skip(path string, err error) {
	slog.Warn("skipping record", "path", path, "error", err)
	r.Skipped = append(r.Skipped, &WriteError{Path: path, Err: err})
}

// resolve maps a record path onto dest, rejecting absolute paths and any
// path that leaves dest.
func resolve(dest, recordPath string) (string, error) {
	if err := fdl.ValidatePath(recordPath); err != nil {
		return "", err
	}
	if strings.HasPrefix(recordPath, "/") || filepath.IsAbs(recordPath) {
		return "", fmt.Errorf("%w: %s is absolute", ErrUnsafePath, recordPath)
	}

	local := filepath.FromSlash(recordPath)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, recordPath)
	}
	return filepath.Join(dest, local), nil
}

// checkSymlinks resolves the deepest existing part of target and fails if it
// lands outside dest. A dangling symlink on the way is refused outright.
func checkSymlinks(dest, target string) error {
	root, err := filepath.EvalSymlinks(dest)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	for p := target; ; p = filepath.Dir(p) {
		if _, err := os.Lstat(p); errors.Is(err, os.ErrNotExist) {
			if p == dest || p == filepath.Dir(p) {
				return nil
			}
			continue
		} else if err != nil {
			return err
		}

		resolved, err := filepath.EvalSymlinks(p)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnsafePath, p, err)
		}
		rel, err := filepath.Rel(root, resolved)
		if err != nil || !filepath.IsLocal(rel) && rel != "." {
			return fmt.Errorf("%w: %s resolves to %s", ErrUnsafePath, p, resolved)
		}
		return nil
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
