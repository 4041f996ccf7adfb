package catalog

import (
	"os"
	"path/filepath"

	"github.com/hayeah/fdl/ignore"
)

// OSWalker walks the real filesystem, honouring the ignore options. Symlinks
// and other non-regular files are skipped.
type OSWalker struct {
	Options ignore.Options
}

// Walk implements Walker.
func (w OSWalker) Walk(root string, fn func(Entry) error) error {
	ig, err := ignore.NewIgnore(root, w.Options)
	if err != nil {
		return err
	}

	return ig.WalkDir(root, func(path string, d os.DirEntry, isDir bool) error {
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		if isDir {
			return fn(Entry{Path: filepath.ToSlash(relPath), Kind: Directory})
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			// removed between listing and stat
			return nil
		}
		return fn(Entry{Path: filepath.ToSlash(relPath), Kind: File, Size: info.Size()})
	})
}
