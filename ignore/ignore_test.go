package ignore

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func walkFiles(t *testing.T, root string, opts Options) []string {
	t.Helper()
	ig, err := NewIgnore(root, opts)
	require.NoError(t, err)

	var files []string
	err = ig.WalkDir(root, func(path string, d os.DirEntry, isDir bool) error {
		if !isDir {
			rel, err := filepath.Rel(root, path)
			require.NoError(t, err)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

func TestWalkDirGitignore(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":       "build/\n*.log\n",
		"main.go":          "package main",
		"debug.log":        "x",
		"build/out.bin":    "x",
		"src/app.go":       "package src",
		"src/.gitignore":   "gen.go\n",
		"src/gen.go":       "package src",
		".git/HEAD":        "ref: refs/heads/main",
		".git/objects/abc": "x",
	})

	assert.Equal(t, []string{".gitignore", "main.go", "src/.gitignore", "src/app.go"}, walkFiles(t, root, Options{Gitignore: true}))

	// .git is skipped even when gitignore handling is off
	assert.Equal(t, []string{
		".gitignore", "build/out.bin", "debug.log", "main.go", "src/.gitignore", "src/app.go", "src/gen.go",
	}, walkFiles(t, root, Options{}))
}

func TestWalkDirExclude(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go":              "package main",
		"vendor/lib/lib.go":    "package lib",
		"docs/guide.md":        "# guide",
		"docs/img/diagram.png": "png",
		"pkg/cache/tmp.cache":  "x",
		"pkg/cache/keep.go":    "package cache",
	})

	files := walkFiles(t, root, Options{Exclude: []string{"vendor", "./docs/**/*.png", "*.cache"}})
	assert.Equal(t, []string{"docs/guide.md", "main.go", "pkg/cache/keep.go"}, files)
}

func TestNewIgnoreInvalidExclude(t *testing.T) {
	_, err := NewIgnore(t.TempDir(), Options{Exclude: []string{"a[b"}})
	assert.ErrorContains(t, err, "invalid exclude pattern")
}

func TestIsIgnoredRoot(t *testing.T) {
	root := t.TempDir()
	ig, err := NewIgnore(root, Options{Exclude: []string{"*"}})
	require.NoError(t, err)

	ignored, err := ig.IsIgnored(root, true)
	require.NoError(t, err)
	assert.False(t, ignored)

	ignored, err = ig.IsIgnored(filepath.Join(root, "x.txt"), false)
	require.NoError(t, err)
	assert.True(t, ignored)
}
