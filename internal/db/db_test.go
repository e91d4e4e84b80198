package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T, key string) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "tallysheet.db")
	database, err := Open(path, key)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, path
}

func TestRunMigrations_Idempotent(t *testing.T) {
	database, _ := openTemp(t, "secret")

	require.NoError(t, database.RunMigrations())
	require.NoError(t, database.RunMigrations())

	v, err := database.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, LatestVersion(), v)

	for _, table := range []string{"users", "clients", "time_entries", "entry_history", "timesheets"} {
		var name string
		err := database.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestOpen_RequiresKey(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "x.db"), "")
	require.Error(t, err)
}

func TestOpen_WrongKey(t *testing.T) {
	database, path := openTemp(t, "right key")
	require.NoError(t, database.RunMigrations())
	require.NoError(t, database.Close())

	_, err := Open(path, "wrong key")
	require.Error(t, err)

	again, err := Open(path, "right key")
	require.NoError(t, err)
	defer again.Close()
	v, err := again.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, LatestVersion(), v)
}

func TestOpen_EncryptsFile(t *testing.T) {
	database, path := openTemp(t, "right key")
	require.NoError(t, database.RunMigrations())
	require.NoError(t, database.Close())

	header := make([]byte, 16)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.Read(header)
	require.NoError(t, err)
	assert.NotEqual(t, "SQLite format 3\x00", string(header))
}

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	database, _ := openTemp(t, "secret")
	require.NoError(t, database.RunMigrations())
	uow := NewUnitOfWork(database)
	ctx := context.Background()

	err := uow.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO users (email, tier, created_at) VALUES ('kept@example.com', 'free', '2024-01-01T00:00:00Z')`)
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = uow.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (email, tier, created_at) VALUES ('gone@example.com', 'free', '2024-01-01T00:00:00Z')`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestUnitOfWork_RollsBackOnPanic(t *testing.T) {
	database, _ := openTemp(t, "secret")
	require.NoError(t, database.RunMigrations())
	uow := NewUnitOfWork(database)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = uow.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO users (email, tier, created_at) VALUES ('panic@example.com', 'free', '2024-01-01T00:00:00Z')`)
			panic("bad")
		})
	})

	var count int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, 0, count)
}
