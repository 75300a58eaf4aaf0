package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, name string, profile DatabaseProfile) *DB {
	t.Helper()

	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrate_CreatesTables(t *testing.T) {
	tests := []struct {
		name    string
		profile DatabaseProfile
		tables  []string
	}{
		{"rollers", ProfileStandard, []string{"rollers", "odds_templates"}},
		{"cache", ProfileCache, []string{"cache"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t, tt.name, tt.profile)
			require.NoError(t, db.Migrate())
			// Re-applying is a no-op
			require.NoError(t, db.Migrate())

			for _, table := range tt.tables {
				var count int
				err := db.Conn().QueryRow(
					"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table,
				).Scan(&count)
				require.NoError(t, err)
				assert.Equal(t, 1, count, "table %s", table)
			}
		})
	}
}

func TestMigrate_UnknownNameIsNoop(t *testing.T) {
	db := newTestDB(t, "scratch", ProfileStandard)
	assert.NoError(t, db.Migrate())
}

func TestNew_AppliesWALMode(t *testing.T) {
	db := newTestDB(t, "rollers", ProfileStandard)

	var mode string
	require.NoError(t, db.Conn().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
	assert.Equal(t, ProfileStandard, db.Profile())
	assert.Equal(t, "rollers", db.Name())
	assert.True(t, filepath.IsAbs(db.Path()))
}

func TestWithTransaction(t *testing.T) {
	db := newTestDB(t, "cache", ProfileCache)
	require.NoError(t, db.Migrate())

	insert := func(tx *sql.Tx, key string) error {
		_, err := tx.Exec("INSERT INTO cache (key, value, expires_at) VALUES (?, ?, 0)", key, []byte("v"))
		return err
	}
	count := func() int {
		var n int
		require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM cache").Scan(&n))
		return n
	}

	t.Run("commits on success", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			return insert(tx, "a")
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			require.NoError(t, insert(tx, "b"))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, count())
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			require.NoError(t, insert(tx, "c"))
			panic("unexpected")
		})
		assert.ErrorContains(t, err, "panic in transaction")
		assert.Equal(t, 1, count())
	})

	t.Run("nil connection", func(t *testing.T) {
		assert.Error(t, WithTransaction(nil, func(*sql.Tx) error { return nil }))
	})
}

func TestMaintenance(t *testing.T) {
	db := newTestDB(t, "rollers", ProfileStandard)
	require.NoError(t, db.Migrate())
	ctx := context.Background()

	assert.NoError(t, db.HealthCheck(ctx))
	assert.NoError(t, db.WALCheckpoint(""))
	assert.NoError(t, db.WALCheckpoint("PASSIVE"))
	assert.Error(t, db.WALCheckpoint("DROP TABLE rollers"))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Positive(t, stats.PageCount)
	assert.Positive(t, stats.PageSize)

	dest := filepath.Join(t.TempDir(), "copy.db")
	require.NoError(t, db.VacuumInto(ctx, dest))
	assert.FileExists(t, dest)
}
