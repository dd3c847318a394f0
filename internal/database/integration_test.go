package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Initialize(filepath.Join(t.TempDir(), "otw.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.PingContext(ctx))

	tables := []string{"users", "readings", "sessions", "user_preferences", "devotionals"}
	for _, table := range tables {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s not found", table)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	require.NoError(t, db.RunMigrations())

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestExecReturningIDAndUpsert(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.ExecReturningID(ctx, "INSERT INTO users (email, name) VALUES (?, ?)", "ana@example.com", "Ana")
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	upsert := db.Dialect.UpsertQuery("readings",
		[]string{"user_id", "date"},
		[]string{"user_id", "date", "title", "is_completed"})

	_, err = db.ExecContext(ctx, upsert, id, "2026-01-01", "Gênesis 1-3", false)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, upsert, id, "2026-01-01", "Gênesis 1-3", true)
	require.NoError(t, err)

	var completed bool
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT is_completed FROM readings WHERE user_id = ? AND date = ?", id, "2026-01-01").Scan(&completed))
	assert.True(t, completed)

	ignore := db.Dialect.InsertIgnoreQuery("readings", []string{"user_id", "date", "title"})
	_, err = db.ExecContext(ctx, ignore, id, "2026-01-01", "other")
	require.NoError(t, err)

	var title string
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT title FROM readings WHERE user_id = ? AND date = ?", id, "2026-01-01").Scan(&title))
	assert.Equal(t, "Gênesis 1-3", title)
}

func TestWithTx(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		err := db.WithTx(ctx, func(tx *Tx) error {
			_, err := tx.ExecReturningID(ctx, "INSERT INTO users (email, name) VALUES (?, ?)", "tx@example.com", "Tx")
			return err
		})
		require.NoError(t, err)

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", "tx@example.com").Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := db.WithTx(ctx, func(tx *Tx) error {
			if _, err := tx.ExecContext(ctx, "INSERT INTO users (email, name) VALUES (?, ?)", "rb@example.com", "Rb"); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", "rb@example.com").Scan(&count))
		assert.Equal(t, 0, count)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, "INSERT INTO users (email, name) VALUES (?, ?)", "dup@example.com", "One")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO users (email, name) VALUES (?, ?)", "dup@example.com", "Two")
	require.Error(t, err)

	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsUniqueViolation(errors.New("other")))
	assert.False(t, IsUniqueViolation(nil))
}
