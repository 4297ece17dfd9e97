package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/sagarc03/confguard"
	"github.com/sagarc03/confguard/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_MigrateAndValidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := sqlite.Connect(ctx, ":memory:", "runs")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, db.Ping(ctx))

	err = db.Validate(ctx)
	require.Error(t, err, "validate before migrate")
	assert.Contains(t, err.Error(), "does not exist")

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx), "migrate is idempotent")
	require.NoError(t, db.Validate(ctx))

	runs, err := db.GetRepo().List(ctx, confguard.RunQuery{Limit: 1})
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, db.Drop(ctx))
	assert.Error(t, db.Validate(ctx))
}

func TestDatabase_ValidateMismatchedSchema(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "history.db")

	raw, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	_, err = raw.ExecContext(ctx, `CREATE TABLE runs (id TEXT NOT NULL PRIMARY KEY, path INTEGER, valid INTEGER NOT NULL)`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	db, err := sqlite.Connect(ctx, dsn, "runs")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	err = db.Validate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checked_at: missing")
	assert.Contains(t, err.Error(), "errors: missing")
	assert.Contains(t, err.Error(), "path: expected text, got integer")
}

func TestDatabase_FileBackedPersists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "history.db")
	run := newRun("/etc/daemon.ini", nil, nowUTC())

	db, err := sqlite.Connect(ctx, dsn, "runs")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.GetRepo().Record(ctx, run))
	require.NoError(t, db.Close())

	db, err = sqlite.Connect(ctx, dsn, "runs")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	got, err := db.GetRepo().Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Path, got.Path)
}
