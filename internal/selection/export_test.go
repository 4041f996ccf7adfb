package selection

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hayeah/fdl/fdl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectedFilesIsLazy(t *testing.T) {
	assert := assert.New(t)

	var reads []string
	tree := buildTree(t, map[string]string{
		"a.txt":   "a",
		"b/c.txt": "cc",
		"d.txt":   "ddd",
	}, Options{ReadFile: func(path string) (string, error) {
		reads = append(reads, filepath.Base(path))
		return ReadTextFile(path)
	}})
	tree.Toggle(tree.Lookup("d.txt"), Flip)

	var paths []string
	for f := range tree.SelectedFiles() {
		paths = append(paths, f.Path)
	}
	assert.Equal([]string{"b/c.txt", "a.txt"}, paths)
	assert.Empty(reads)

	// stopping early reads nothing further
	for f := range tree.SelectedFiles() {
		content, err := f.Content()
		require.NoError(t, err)
		assert.Equal("cc", content)
		break
	}
	assert.Equal([]string{"c.txt"}, reads)

	// restartable, and reflects later toggles
	tree.Toggle(tree.Lookup("d.txt"), Flip)
	var count int
	for range tree.SelectedFiles() {
		count++
	}
	assert.Equal(3, count)
}

func TestEncodeSelection(t *testing.T) {
	assert := assert.New(t)

	tree := buildTree(t, map[string]string{
		"src/main.go": "package main\n",
		"README.md":   "# hi",
		"skip.txt":    "skip me",
	}, Options{})
	tree.Toggle(tree.Lookup("skip.txt"), Flip)

	out, report, err := tree.Encode()
	require.NoError(t, err)
	assert.Equal("$$FILE src/main.go\npackage main\n\n$$FILE README.md\n# hi", out)
	assert.Equal([]string{"src/main.go", "README.md"}, report.Files)
	assert.Equal(int64(17), report.Bytes)
	assert.Empty(report.Skipped)

	records, err := fdl.Decode(out)
	require.NoError(t, err)
	assert.Equal([]fdl.Record{
		{Path: "src/main.go", Content: "package main\n"},
		{Path: "README.md", Content: "# hi"},
	}, records)
}

func TestExportSkipsUnreadableFiles(t *testing.T) {
	assert := assert.New(t)

	boom := errors.New("permission denied")
	tree := buildTree(t, map[string]string{
		"a.txt": "a",
		"b.txt": "b",
		"c.txt": "c",
	}, Options{ReadFile: func(path string) (string, error) {
		if filepath.Base(path) == "b.txt" {
			return "", boom
		}
		return ReadTextFile(path)
	}})

	out, report, err := tree.Encode()
	require.NoError(t, err)
	assert.Equal("$$FILE a.txt\na\n$$FILE c.txt\nc", out)
	assert.Equal([]string{"a.txt", "c.txt"}, report.Files)
	require.Len(t, report.Skipped, 1)
	assert.Equal("b.txt", report.Skipped[0].Path)
	assert.ErrorIs(report.Skipped[0], boom)
}

func TestExportFileRemovedAfterScan(t *testing.T) {
	tree := buildTree(t, map[string]string{"gone.txt": "x", "kept.txt": "y"}, Options{})
	require.NoError(t, os.Remove(filepath.Join(tree.RootDir(), "gone.txt")))

	_, report, err := tree.Encode()
	require.NoError(t, err)
	require.Len(t, report.Skipped, 1)
	assert.ErrorIs(t, report.Skipped[0], os.ErrNotExist)
	assert.Equal(t, []string{"kept.txt"}, report.Files)
}

func TestExportReportsCollisions(t *testing.T) {
	tree := buildTree(t, map[string]string{
		"doc.md": "example:\n$$FILE fake.txt\n",
	}, Options{})

	_, report, err := tree.Encode()
	require.NoError(t, err)
	assert.Equal(t, []string{"doc.md"}, report.Collisions)
	assert.Equal(t, []string{"doc.md"}, report.Files)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestExportWriterFailureAborts(t *testing.T) {
	tree := buildTree(t, map[string]string{"a.txt": "a"}, Options{})

	report, err := Export(fdl.NewWriter(failingWriter{}), tree.SelectedFiles())
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, report.Files)
}

func TestExportStreamsToWriter(t *testing.T) {
	tree := buildTree(t, map[string]string{"x.txt": "1\n", "y.txt": "2"}, Options{})

	var sb strings.Builder
	w := fdl.NewWriter(&sb)
	report, err := Export(w, tree.SelectedFiles())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, 2, w.Records())
	assert.Equal(t, int64(sb.Len()), w.Written())
	assert.Equal(t, int64(3), report.Bytes)
}

func TestEncodeObservers(t *testing.T) {
	tree := buildTree(t, map[string]string{"a.txt": "A", "b.txt": "B"}, Options{})

	var seen []fdl.Record
	_, _, err := tree.Encode(func(rec fdl.Record) { seen = append(seen, rec) })
	require.NoError(t, err)
	assert.Equal(t, []fdl.Record{{Path: "a.txt", Content: "A"}, {Path: "b.txt", Content: "B"}}, seen)
}
