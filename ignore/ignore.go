package ignore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Options controls which paths are skipped during a walk.
type Options struct {
	Gitignore bool     // honour .gitignore files found below the root
	Exclude   []string // doublestar globs matched against slash-separated relative paths
}

// Ignore encapsulates gitignore pattern matching functionality
type Ignore struct {
	matcher  gitignore.Matcher
	excludes []string
	rootPath string
}

// NewIgnore creates a new Ignore instance for the given root path
func NewIgnore(rootPath string, opts Options) (*Ignore, error) {
	ig := &Ignore{rootPath: rootPath}

	if opts.Gitignore {
		fs := osfs.New(rootPath)
		patterns, err := gitignore.ReadPatterns(fs, []string{})
		if err != nil {
			return nil, fmt.Errorf("failed to read gitignore patterns: %w", err)
		}
		ig.matcher = gitignore.NewMatcher(patterns)
	}

	for _, pattern := range opts.Exclude {
		pattern = strings.TrimPrefix(strings.TrimSpace(pattern), "./")
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern '%s'", pattern)
		}
		ig.excludes = append(ig.excludes, pattern)
	}

	return ig, nil
}

// IsIgnored checks if a path should be skipped. The .git directory is always
// ignored. An exclude pattern without a slash matches at any depth.
func (ig *Ignore) IsIgnored(path string, isDir bool) (bool, error) {
	if isDir && filepath.Base(path) == ".git" {
		return true, nil
	}

	relPath, err := filepath.Rel(ig.rootPath, path)
	if err != nil {
		return false, err
	}
	if relPath == "." {
		return false, nil
	}

	if ig.matcher != nil {
		parts := strings.Split(relPath, string(os.PathSeparator))
		if ig.matcher.Match(parts, isDir) {
			return true, nil
		}
	}

	slashPath := filepath.ToSlash(relPath)
	for _, pattern := range ig.excludes {
		if matchExclude(pattern, slashPath) {
			return true, nil
		}
	}

	return false, nil
}

func matchExclude(pattern, path string) bool {
	if ok, _ := doublestar.Match(pattern, path); ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		ok, _ := doublestar.Match(pattern, filepath.Base(path))
		return ok
	}
	return false
}

// WalkDir walks the file tree rooted at root, calling fn for each file or
// directory in the tree, including root, while respecting the ignore rules.
// Unreadable entries below the root are logged and skipped.
func (ig *Ignore) WalkDir(root string, fn func(path string, d os.DirEntry, isDir bool) error) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root || d == nil {
				return err
			}
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		isDir := d.IsDir()

		ignored, err := ig.IsIgnored(path, isDir)
		if err != nil {
			return err
		}

		if ignored {
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}

		return fn(path, d, isDir)
	})
}
