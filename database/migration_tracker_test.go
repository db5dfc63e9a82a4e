package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRows(t *testing.T, db *DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.conn.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func TestApplyMigrations_AppliesOnceInOrder(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	migrations := []migration{
		{name: "001_notes", statements: []string{`CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`}},
		{name: "002_notes_seed", statements: []string{`INSERT INTO notes (body) VALUES ('первая')`}},
	}

	applied, err := applyMigrations(ctx, db.conn, migrations)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	applied, err = applyMigrations(ctx, db.conn, migrations)
	require.NoError(t, err)
	assert.Equal(t, 0, applied)
	assert.Equal(t, 1, countRows(t, db, "notes"))
	assert.Equal(t, 2, countRows(t, db, migrationsTableName))

	migrations = append(migrations, migration{
		name:       "003_notes_seed_more",
		statements: []string{`INSERT INTO notes (body) VALUES ('вторая')`},
	})
	applied, err = applyMigrations(ctx, db.conn, migrations)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, 2, countRows(t, db, "notes"))
}

func TestApplyMigrations_FailedStepIsRolledBack(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	migrations := []migration{
		{name: "001_notes", statements: []string{`CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL)`}},
		{name: "002_broken", statements: []string{
			`INSERT INTO notes (body) VALUES ('до ошибки')`,
			`INSERT INTO missing_table (body) VALUES ('x')`,
		}},
	}

	applied, err := applyMigrations(ctx, db.conn, migrations)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_broken")
	assert.Equal(t, 1, applied)
	assert.Equal(t, 0, countRows(t, db, "notes"))
	assert.Equal(t, 1, countRows(t, db, migrationsTableName))

	migrations[1].statements = migrations[1].statements[:1]
	applied, err = applyMigrations(ctx, db.conn, migrations)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, countRows(t, db, "notes"))
}

func TestGeocodeCacheMigrations_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	for i := 0; i < 2; i++ {
		db, err := Open(path)
		require.NoError(t, err)
		_, err = NewGeocodeCacheStore(db)
		require.NoError(t, err)
		assert.Equal(t, len(geocodeCacheMigrations), countRows(t, db, migrationsTableName))
		require.NoError(t, db.Close())
	}
}
