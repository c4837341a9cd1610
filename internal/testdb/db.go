package testdb

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/lostfound-api/internal/platform/sqlstore"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds the setup operations performed by this package.
const TestTimeout = 10 * time.Second

// DB is a migrated test database and the dialect it speaks.
type DB struct {
	*sql.DB
	Dialect sqlstore.Dialect
}

// New returns a migrated in-memory SQLite database that is closed when
// the test ends.
func New(t testing.TB) *DB {
	t.Helper()
	return open(t, sqlstore.SQLite, ":memory:")
}

// NewPostgres returns a connection to the configured PostgreSQL test
// database with all migrations applied. It skips the test when no server
// is configured.
func NewPostgres(t testing.TB) *DB {
	t.Helper()
	url := GetTestDatabaseURL()
	if url == "" {
		t.Skip("LOSTFOUND_TEST_DATABASE_URL not set - skipping integration test")
	}
	return open(t, sqlstore.Postgres, url)
}

func open(t testing.TB, d sqlstore.Dialect, url string) *DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := sqlstore.Open(ctx, d, url, 4)
	require.NoError(t, err, "failed to open %s test database", d)
	t.Cleanup(func() { CleanupDB(t, db) })

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, sqlstore.Migrate(ctx, db, d, sqlstore.MigrateUp, quiet), "failed to migrate test database")

	return &DB{DB: db, Dialect: d}
}

// CleanupDB closes db, reporting failures without failing the test.
func CleanupDB(t testing.TB, db *sql.DB) {
	t.Helper()
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		t.Logf("warning: failed to close database connection: %v", err)
	}
}

// WithTx runs fn in a transaction that is rolled back afterwards.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("warning: failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
