package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDBOperations(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	records := []*Extraction{
		{RunID: "run-1", ArchivePath: "/src/a.vsix", Destination: "/dst", Strategy: "contents", Files: 3, Bytes: 1024, Status: StatusSuccess, ExtractedAt: base},
		{RunID: "run-1", ArchivePath: "/src/b.vsix", Status: StatusFailed, Error: "extract failed", ExtractedAt: base.Add(time.Second)},
		{RunID: "run-2", ArchivePath: "/src/c.vsix", Destination: "/dst/x", Strategy: "extension-dir", Files: 1, Bytes: 7, Status: StatusSuccess, ExtractedAt: base.Add(time.Minute)},
	}

	for _, r := range records {
		require.NoError(t, db.Create(ctx, r))
		assert.NotZero(t, r.ID)
	}

	all, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "/src/c.vsix", all[0].ArchivePath, "newest first")
	assert.True(t, all[0].ExtractedAt.Equal(base.Add(time.Minute)))

	run, err := db.ListByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, run, 2)
	assert.Equal(t, "/src/a.vsix", run[0].ArchivePath)
	assert.Equal(t, 3, run[0].Files)
	assert.Equal(t, int64(1024), run[0].Bytes)
	assert.Equal(t, "contents", run[0].Strategy)
	assert.Equal(t, StatusFailed, run[1].Status)
	assert.Equal(t, "extract failed", run[1].Error)
	assert.Empty(t, run[1].Destination)

	none, err := db.ListByRun(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)

	deleted, err := db.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	all, err = db.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateDefaultsTimestamp(t *testing.T) {
	db := newTestDB(t)

	e := &Extraction{RunID: "r", ArchivePath: "/a.vsix", Status: StatusSuccess}
	require.NoError(t, db.Create(context.Background(), e))
	assert.False(t, e.ExtractedAt.IsZero())
}

func TestApplyMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test_migrations.db")

	// opening twice must not duplicate the version row
	for range 2 {
		db, err := New(ctx, path)
		require.NoError(t, err)
		require.NoError(t, db.Close())
	}

	db, err := New(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	err = db.read.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, path, db.Path())
}
