package unpack

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hayeah/fdl/fdl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestUnpack(t *testing.T) {
	assert := assert.New(t)
	dest := filepath.Join(t.TempDir(), "out")

	records, err := fdl.Decode("$$FILE x/y.txt\nline1\nline2\n$$FILE z.txt\nonly\n$$FILE empty.txt\n")
	require.NoError(t, err)

	report, err := Unpack(dest, records, Options{})
	require.NoError(t, err)

	assert.Equal([]string{"x/y.txt", "z.txt", "empty.txt"}, report.Written)
	assert.Empty(report.Skipped)
	assert.Empty(report.Overwritten)
	assert.Equal(int64(15), report.Bytes)

	assert.Equal("line1\nline2", readFile(t, filepath.Join(dest, "x", "y.txt")))
	assert.Equal("only", readFile(t, filepath.Join(dest, "z.txt")))
	assert.Equal("", readFile(t, filepath.Join(dest, "empty.txt")))

	info, err := os.Stat(filepath.Join(dest, "x"))
	require.NoError(t, err)
	assert.True(info.IsDir())
}

func TestUnpackOverwrites(t *testing.T) {
	assert := assert.New(t)
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "a.txt"), []byte("old"), 0644))

	report, err := Unpack(dest, []fdl.Record{{Path: "a.txt", Content: "new"}}, Options{})
	require.NoError(t, err)
	assert.Equal([]string{"a.txt"}, report.Overwritten)
	assert.Equal("new", readFile(t, filepath.Join(dest, "a.txt")))
}

func TestUnpackFinalNewline(t *testing.T) {
	assert := assert.New(t)
	dest := t.TempDir()

	_, err := Unpack(dest, []fdl.Record{
		{Path: "a.txt", Content: "no newline"},
		{Path: "b.txt", Content: "has newline\n"},
		{Path: "c.txt", Content: ""},
	}, Options{FinalNewline: true})
	require.NoError(t, err)

	assert.Equal("no newline\n", readFile(t, filepath.Join(dest, "a.txt")))
	assert.Equal("has newline\n", readFile(t, filepath.Join(dest, "b.txt")))
	assert.Equal("", readFile(t, filepath.Join(dest, "c.txt")))
}

func TestUnpackRejectsUnsafePaths(t *testing.T) {
	assert := assert.New(t)
	parent := t.TempDir()
	dest := filepath.Join(parent, "dest")

	report, err := Unpack(dest, []fdl.Record{
		{Path: "../escape.txt", Content: "x"},
		{Path: "/etc/passwd", Content: "x"},
		{Path: "a/../../escape.txt", Content: "x"},
		{Path: "ok/../fine.txt", Content: "fine"},
	}, Options{})
	require.NoError(t, err)

	assert.Equal([]string{"ok/../fine.txt"}, report.Written)
	require.Len(t, report.Skipped, 3)
	for _, skipped := range report.Skipped {
		assert.ErrorIs(skipped, ErrUnsafePath, skipped.Path)
	}

	_, err = os.Stat(filepath.Join(parent, "escape.txt"))
	assert.True(errors.Is(err, os.ErrNotExist))
	assert.Equal("fine", readFile(t, filepath.Join(dest, "fine.txt")))
}

func TestUnpackRefusesSymlinkEscape(t *testing.T) {
	assert := assert.New(t)
	parent := t.TempDir()
	dest := filepath.Join(parent, "dest")
	outside := filepath.Join(parent, "outside")
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.NoError(t, os.MkdirAll(outside, 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "real"), 0755))

	require.NoError(t, os.Symlink(outside, filepath.Join(dest, "sub")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "new.txt"), filepath.Join(dest, "dangling.txt")))
	require.NoError(t, os.Symlink("real", filepath.Join(dest, "alias")))

	report, err := Unpack(dest, []fdl.Record{
		{Path: "sub/x.txt", Content: "x"},
		{Path: "sub/deep/y.txt", Content: "y"},
		{Path: "dangling.txt", Content: "z"},
		{Path: "alias/ok.txt", Content: "ok"},
	}, Options{})
	require.NoError(t, err)

	assert.Equal([]string{"alias/ok.txt"}, report.Written)
	require.Len(t, report.Skipped, 3)
	for _, skipped := range report.Skipped {
		assert.ErrorIs(skipped, ErrUnsafePath, skipped.Path)
	}

	entries, err := os.ReadDir(outside)
	require.NoError(t, err)
	assert.Empty(entries)
	assert.Equal("ok", readFile(t, filepath.Join(dest, "real", "ok.txt")))
}

func TestUnpackSkipsConflicts(t *testing.T) {
	assert := assert.New(t)
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "file"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dest, "dir"), 0755))

	report, err := Unpack(dest, []fdl.Record{
		{Path: "file/child.txt", Content: "under a file"},
		{Path: "dir", Content: "over a dir"},
		{Path: "good.txt", Content: "ok"},
	}, Options{})
	require.NoError(t, err)

	assert.Equal([]string{"good.txt"}, report.Written)
	require.Len(t, report.Skipped, 2)
	assert.Equal("file/child.txt", report.Skipped[0].Path)
	assert.Equal("dir", report.Skipped[1].Path)
}

func TestUnpackDryRun(t *testing.T) {
	assert := assert.New(t)
	dest := filepath.Join(t.TempDir(), "never")

	report, err := Unpack(dest, []fdl.Record{
		{Path: "a.txt", Content: "a"},
		{Path: "../b.txt", Content: "b"},
	}, Options{DryRun: true})
	require.NoError(t, err)

	assert.Equal([]string{"a.txt"}, report.Written)
	assert.Len(report.Skipped, 1)
	_, err = os.Stat(dest)
	assert.True(os.IsNotExist(err))
}

func TestUnpackUnusableDestination(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := Unpack(filepath.Join(file, "sub"), []fdl.Record{{Path: "a.txt"}}, Options{})
	assert.Error(t, err)
}

func TestWriteVerify(t *testing.T) {
	w := &Write{Dest: t.TempDir(), Record: fdl.Record{Path: "a/b.txt", Content: "hi"}}
	require.NoError(t, w.Verify())
	assert.Equal(t, "write a/b.txt (2 bytes)", w.Description())
	require.NoError(t, w.Apply())
	assert.Equal(t, "hi", readFile(t, filepath.Join(w.Dest, "a", "b.txt")))
}
