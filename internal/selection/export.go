package selection

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/hayeah/fdl/fdl"
)

// UnreadableFileError reports a selected file whose content could not be
// loaded at export time.
type UnreadableFileError struct {
	Path string
	Err  error
}

func (e *UnreadableFileError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *UnreadableFileError) Unwrap() error { return e.Err }

// File is a selected file. Its content is read only when asked for.
type File struct {
	Path string // relative, slash-separated
	Size int64

	tree *Tree
}

// Content reads the file. Failures are *UnreadableFileError.
func (f File) Content() (string, error) {
	content, err := f.tree.readFile(f.tree.osPath(f.Path))
	if err != nil {
		return "", &UnreadableFileError{Path: f.Path, Err: err}
	}
	return content, nil
}

// SelectedFiles yields the selected files in display order. Content is not
// read. The sequence can be ranged over more than once and reflects the
// selection at the time of ranging.
func (t *Tree) SelectedFiles() iter.Seq[File] {
	return func(yield func(File) bool) {
		var visit func(n *Node) bool
		visit = func(n *Node) bool {
			if !n.IsDir() {
				if n.selected {
					return yield(File{Path: n.Path(), Size: n.Size(), tree: t})
				}
				return true
			}
			if n.selectedCount == 0 {
				return true
			}
			for _, child := range n.children {
				if !visit(child) {
					return false
				}
			}
			return true
		}
		visit(t.root)
	}
}

// ExportReport summarises an export.
type ExportReport struct {
	Files      []string // paths written, in order
	Bytes      int64    // content bytes written
	Skipped    []*UnreadableFileError
	Collisions []string // files with a line that reads as a record marker
}

// Export writes every file in files as a record. Files that cannot be read
// are skipped and reported; only a failure of w aborts the export. Each
// observer sees every record after it is written.
func Export(w *fdl.Writer, files iter.Seq[File], observers ...func(fdl.Record)) (*ExportReport, error) {
	report := &ExportReport{}

	for f := range files {
		if err := fdl.ValidatePath(f.Path); err != nil {
			report.skip(&UnreadableFileError{Path: f.Path, Err: err})
			continue
		}

		content, err := f.Content()
		if err != nil {
			var unreadable *UnreadableFileError
			if errors.As(err, &unreadable) {
				report.skip(unreadable)
				continue
			}
			return report, err
		}

		if fdl.HasCollision(content) {
			slog.Warn("file contains a record marker line and will not round-trip", "path", f.Path)
			report.Collisions = append(report.Collisions, f.Path)
		}

		rec := fdl.Record{Path: f.Path, Content: content}
		if err := w.WriteRecord(rec); err != nil {
			return report, err
		}
		for _, observe := range observers {
			observe(rec)
		}
		report.Files = append(report.Files, f.Path)
		report.Bytes += int64(len(content))
	}

	return report, nil
}

func (r *ExportReport) skip(err *UnreadableFileError) {
	slog.Warn("skipping unreadable file", "path", err.Path, "error", err.Err)
	r.Skipped = append(r.Skipped, err)
}

// Encode exports the current selection to an FDL document.
func (t *Tree) Encode(observers ...func(fdl.Record)) (string, *ExportReport, error) {
	var sb strings.Builder
	w := fdl.NewWriter(&sb)
	report, err := Export(w, t.SelectedFiles(), observers...)
	if err != nil {
		return "", report, err
	}
	if err := w.Close(); err != nil {
		return "", report, err
	}
	return sb.String(), report, nil
}
