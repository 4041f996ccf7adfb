package selection

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hayeah/fdl/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestDirectory(t *testing.T, files map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()

	for relPath, content := range files {
		path := filepath.Join(tempDir, relPath)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return tempDir
}

func buildTree(t *testing.T, files map[string]string, opts Options) *Tree {
	t.Helper()
	root := createTestDirectory(t, files)
	tree, err := Build(root, catalog.OSWalker{}, IsTextFile, opts)
	require.NoError(t, err)
	return tree
}

// checkStats recomputes the selection from the files and compares it with
// the rollup counters.
func checkStats(t *testing.T, tree *Tree) {
	t.Helper()
	var want Stats
	tree.Walk(func(n *Node) bool {
		if !n.IsDir() && n.State() == Selected {
			want.FileCount++
			want.TotalBytes += n.Size()
		}
		return true
	})
	assert.Equal(t, want, tree.Stats())
}

func TestToggleFlipDirectoryCompletesSelection(t *testing.T) {
	assert := assert.New(t)

	tree := buildTree(t, map[string]string{
		"dir/a.txt": "a",
		"dir/b.txt": "bb",
		"dir/c.txt": "ccc",
	}, Options{})

	tree.Toggle(tree.Lookup("dir/c.txt"), Flip)
	dir := tree.Lookup("dir")
	assert.Equal(PartiallySelected, dir.State())

	tree.Toggle(dir, Flip)
	for _, p := range []string{"dir/a.txt", "dir/b.txt", "dir/c.txt"} {
		assert.Equal(Selected, tree.Lookup(p).State(), p)
	}
	assert.Equal(Selected, dir.State())

	// a fully selected directory flips to cleared
	tree.Toggle(dir, Flip)
	assert.Equal(Unselected, dir.State())
	assert.Equal(Stats{}, tree.Stats())
}

func TestSelectionAggregation(t *testing.T) {
	assert := assert.New(t)

	tree := buildTree(t, map[string]string{
		"pkg/one.go":       "1",
		"pkg/sub/two.go":   "22",
		"pkg/sub/three.go": "333",
		"other.txt":        "x",
	}, Options{})

	pkg := tree.Lookup("pkg")
	sub := tree.Lookup("pkg/sub")
	assert.Equal(Selected, pkg.State())
	assert.Equal(Selected, tree.Root().State())

	tree.Toggle(tree.Lookup("pkg/sub/two.go"), DeselectSubtree)
	assert.Equal(PartiallySelected, sub.State())
	assert.Equal(PartiallySelected, pkg.State())
	assert.Equal(PartiallySelected, tree.Root().State())
	checkStats(t, tree)

	tree.Toggle(tree.Lookup("pkg/sub/three.go"), Flip)
	assert.Equal(Unselected, sub.State())
	assert.Equal(PartiallySelected, pkg.State())
	checkStats(t, tree)

	tree.Toggle(tree.Lookup("pkg/one.go"), Flip)
	assert.Equal(Unselected, pkg.State())
	checkStats(t, tree)

	tree.Toggle(pkg, SelectSubtree)
	assert.Equal(Selected, pkg.State())
	assert.Equal(Stats{FileCount: 3, TotalBytes: 6}, pkg.SelectedStats())
	checkStats(t, tree)
}

func TestSelectAllDeselectAll(t *testing.T) {
	assert := assert.New(t)

	tree := buildTree(t, map[string]string{
		"a.txt":     "aaaa",
		"b/c.txt":   "cc",
		"b/img.bin": "\x00\x01\x02",
	}, Options{})

	assert.Equal(Stats{FileCount: 2, TotalBytes: 6}, tree.Totals())
	assert.Equal(tree.Totals(), tree.Stats())

	tree.DeselectAll()
	assert.Equal(Stats{}, tree.Stats())
	assert.Equal(Unselected, tree.Root().State())

	tree.SelectAll()
	assert.Equal(Stats{FileCount: 2, TotalBytes: 6}, tree.Stats())
	assert.Equal(Selected, tree.Root().State())
	checkStats(t, tree)
}

func TestNonTextFilesAreNotSelectable(t *testing.T) {
	assert := assert.New(t)

	tree := buildTree(t, map[string]string{
		"bin/blob.bin": "\x00\x00\x00",
		"main.go":      "package main\n",
	}, Options{})

	blob := tree.Lookup("bin/blob.bin")
	bin := tree.Lookup("bin")
	assert.False(blob.IsText())
	assert.False(blob.Selectable())
	assert.False(bin.Selectable())
	assert.Equal(Unselected, blob.State())

	tree.Toggle(blob, Flip)
	assert.Equal(Unselected, blob.State())
	tree.Toggle(bin, Flip)
	assert.Equal(Unselected, bin.State())

	// binary sizes still count toward the directory
	assert.Equal(int64(3), bin.Size())
	assert.Equal(Selected, tree.Root().State())
	checkStats(t, tree)
}

func TestPreselect(t *testing.T) {
	assert := assert.New(t)

	tree := buildTree(t, map[string]string{
		"go.mod": "module x\n",
		"go.sum": "x v1.0.0 h1:abc\n",
	}, Options{Preselect: func(p string) bool { return !IsLockFile(p) }})

	assert.Equal(Selected, tree.Lookup("go.mod").State())
	assert.Equal(Unselected, tree.Lookup("go.sum").State())
	assert.Equal(PartiallySelected, tree.Root().State())
	assert.True(tree.Lookup("go.sum").Selectable())
}

func TestSetSortKey(t *testing.T) {
	assert := assert.New(t)

	tree := buildTree(t, map[string]string{
		"b.txt":     "bbbbbb",
		"a.txt":     "a",
		"c.txt":     "cc",
		"B.txt":     "cc",
		"zdir/x.go": "x",
	}, Options{})

	names := func() []string {
		var out []string
		for _, n := range tree.Root().Children() {
			out = append(out, n.Name())
		}
		return out
	}

	assert.Equal(SortByName, tree.SortKey())
	assert.Equal([]string{"zdir", "B.txt", "a.txt", "b.txt", "c.txt"}, names())

	tree.SetSortKey(SortBySize)
	// ties on size fall back to case-sensitive name order
	assert.Equal([]string{"zdir", "b.txt", "B.txt", "c.txt", "a.txt"}, names())

	tree.SetSortKey(SortByName)
	assert.Equal([]string{"zdir", "B.txt", "a.txt", "b.txt", "c.txt"}, names())
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("Size")
	require.NoError(t, err)
	assert.Equal(t, SortBySize, k)

	k, err = ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortByName, k)

	_, err = ParseSortKey("mtime")
	assert.Error(t, err)
}

func TestBuildScanError(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "nope"), catalog.OSWalker{}, IsTextFile, Options{})
	var scanErr *catalog.ScanError
	assert.True(t, errors.As(err, &scanErr))
}

func TestSelectMatching(t *testing.T) {
	assert := assert.New(t)

	tree := buildTree(t, map[string]string{
		"cmd/app/main.go":      "package main\n",
		"cmd/app/main_test.go": "package main\n",
		"docs/guide.md":        "# guide\n",
		"logo.png":             "\x89PNG\x00\x00",
	}, Options{})

	matchers, err := ParseMatchersFromString("cmd .go | !_test\n*.md\n**/*.png")
	require.NoError(t, err)

	n, err := tree.SelectMatching(matchers)
	require.NoError(t, err)
	assert.Equal(1, n)
	assert.Equal(Selected, tree.Lookup("cmd/app/main.go").State())
	assert.Equal(Unselected, tree.Lookup("cmd/app/main_test.go").State())
	// "*" does not cross directories
	assert.Equal(Unselected, tree.Lookup("docs/guide.md").State())
	assert.Equal(Unselected, tree.Lookup("logo.png").State())
	checkStats(t, tree)
}
