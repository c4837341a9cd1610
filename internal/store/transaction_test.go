package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/phrazzld/lostfound-api/internal/store"
	"github.com/phrazzld/lostfound-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countCategories(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&n))
	return n
}

func insertCategory(ctx context.Context, tx *sql.Tx, name string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO categories (id, name, position, created_at) VALUES (?, ?, 0, CURRENT_TIMESTAMP)`,
		name+"-id", name)
	return err
}

func TestRunInTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db := testdb.New(t)
		err := store.RunInTransaction(ctx, db.DB, func(ctx context.Context, tx *sql.Tx) error {
			return insertCategory(ctx, tx, "Keys")
		})
		require.NoError(t, err)
		assert.Equal(t, 1, countCategories(t, db.DB))
	})

	t.Run("rolls back and returns the callback error", func(t *testing.T) {
		db := testdb.New(t)
		boom := errors.New("boom")
		err := store.RunInTransaction(ctx, db.DB, func(ctx context.Context, tx *sql.Tx) error {
			require.NoError(t, insertCategory(ctx, tx, "Keys"))
			return boom
		})
		assert.Same(t, boom, err)
		assert.Zero(t, countCategories(t, db.DB))
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		db := testdb.New(t)
		assert.PanicsWithValue(t, "kaboom", func() {
			_ = store.RunInTransaction(ctx, db.DB, func(ctx context.Context, tx *sql.Tx) error {
				require.NoError(t, insertCategory(ctx, tx, "Keys"))
				panic("kaboom")
			})
		})
		assert.Zero(t, countCategories(t, db.DB))
	})
}
