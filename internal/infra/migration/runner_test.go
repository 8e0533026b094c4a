//go:build unit

package migration_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"class-booking/internal/infra/migration"
	"class-booking/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func fsOf(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys["sql/"+name] = &fstest.MapFile{Data: []byte(body)}
	}
	return fsys
}

func TestGetCurrentVersion(t *testing.T) {
	ctx := context.Background()
	runner := migration.NewRunner(migration.SQLConn(setupTestDB(t)), fsOf(nil), "sql", nil)

	version, err := runner.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, version)

	require.NoError(t, runner.SetVersion(ctx, 5))
	version, err = runner.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, version)
}

func TestReadMigrationFiles(t *testing.T) {
	t.Run("sorted by version", func(t *testing.T) {
		runner := migration.NewRunner(nil, fsOf(map[string]string{
			"002_second.sql": "SELECT 2;",
			"001_first.sql":  "SELECT 1;",
			"README.md":      "ignored",
		}), "sql", nil)

		got, err := runner.ReadMigrationFiles()
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, migration.Migration{Version: 1, Name: "first", SQL: "SELECT 1;"}, got[0])
		assert.Equal(t, 2, got[1].Version)
	})

	t.Run("duplicate version", func(t *testing.T) {
		runner := migration.NewRunner(nil, fsOf(map[string]string{
			"001_a.sql": "SELECT 1;",
			"001_b.sql": "SELECT 1;",
		}), "sql", nil)

		_, err := runner.ReadMigrationFiles()
		assert.ErrorContains(t, err, "duplicate migration version 1")
	})

	t.Run("bad file name", func(t *testing.T) {
		runner := migration.NewRunner(nil, fsOf(map[string]string{
			"first.sql": "SELECT 1;",
		}), "sql", nil)

		_, err := runner.ReadMigrationFiles()
		assert.Error(t, err)
	})
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	files := map[string]string{
		"001_create.sql": "CREATE TABLE items (id INTEGER PRIMARY KEY);",
		"002_add.sql":    "ALTER TABLE items ADD COLUMN name TEXT;",
	}
	runner := migration.NewRunner(migration.SQLConn(db), fsOf(files), "sql", nil)

	applied, err := runner.Apply(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	applied, err = runner.Apply(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, applied, "already applied migrations are skipped")

	files["003_index.sql"] = "CREATE INDEX items_name ON items (name);"
	runner = migration.NewRunner(migration.SQLConn(db), fsOf(files), "sql", nil)
	applied, err = runner.Apply(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	version, err := runner.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, version)
}

func TestApply_FailureKeepsVersion(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := migration.NewRunner(migration.SQLConn(db), fsOf(map[string]string{
		"001_ok.sql":     "CREATE TABLE ok (id INTEGER);",
		"002_broken.sql": "CREATE TABL broken;",
	}), "sql", nil)

	applied, err := runner.Apply(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, applied)

	version, err := runner.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestEmbeddedSQLiteSchema(t *testing.T) {
	ctx := context.Background()
	runner := migration.NewRunner(migration.SQLConn(setupTestDB(t)), migrations.FS, migrations.SQLiteDir, nil)

	applied, err := runner.Apply(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, applied, 1)
}
