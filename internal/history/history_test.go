package history

import (
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	assert := assert.New(t)
	s := openTestStore(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, kind := range []Kind{KindCopy, KindSave, KindPaste} {
		_, err := s.Record(Transfer{
			Kind:        kind,
			Root:        "/src/project",
			Destination: "clipboard",
			Files:       i + 1,
			Bytes:       int64(100 * (i + 1)),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	recent, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(KindPaste, recent[0].Kind)
	assert.Equal(3, recent[0].Files)
	assert.Equal(int64(300), recent[0].Bytes)
	assert.Equal(KindSave, recent[1].Kind)
	assert.True(recent[1].CreatedAt.Equal(base.Add(time.Minute)))
}

func TestGet(t *testing.T) {
	assert := assert.New(t)
	s := openTestStore(t)

	id, err := s.Record(Transfer{Kind: KindSave, Root: ".", Destination: "out.txt", Files: 2, Bytes: 10, Skipped: 1})
	require.NoError(t, err)

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal("out.txt", got.Destination)
	assert.Equal(1, got.Skipped)
	assert.False(got.CreatedAt.IsZero())

	_, err = s.Get(id + 100)
	assert.ErrorIs(err, sql.ErrNoRows)
}

func TestOpenMigratesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := Open(path, logger)
	require.NoError(t, err)
	_, err = s.Record(Transfer{Kind: KindCopy, Root: ".", Destination: "-"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, logger)
	require.NoError(t, err)
	defer s.Close()

	var applied int
	require.NoError(t, s.DB.Get(&applied, "SELECT COUNT(*) FROM migrations"))
	assert.Equal(t, len(migrations), applied)

	recent, err := s.Recent(10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
