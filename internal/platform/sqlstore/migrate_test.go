package sqlstore_test

import (
	"context"
	"testing"

	"github.com/phrazzld/lostfound-api/internal/platform/logger"
	"github.com/phrazzld/lostfound-api/internal/platform/sqlstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateDownAndUp(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	buf, log := logger.NewBufferLogger()

	require.NoError(t, sqlstore.Migrate(ctx, f.db.DB, f.db.Dialect, sqlstore.MigrateDown, log))
	version, err := sqlstore.SchemaVersion(ctx, f.db.DB, f.db.Dialect)
	require.NoError(t, err)
	assert.Zero(t, version)

	_, err = f.db.Exec(`SELECT COUNT(*) FROM items`)
	assert.Error(t, err, "items table should be dropped")

	require.NoError(t, sqlstore.Migrate(ctx, f.db.DB, f.db.Dialect, sqlstore.MigrateUp, log))
	require.NoError(t, sqlstore.Migrate(ctx, f.db.DB, f.db.Dialect, sqlstore.MigrateStatus, log))
	assert.NotEmpty(t, buf.String())
}

func TestMigrateUnknownCommand(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	err := sqlstore.Migrate(context.Background(), f.db.DB, f.db.Dialect, "sideways", nil)
	assert.ErrorContains(t, err, "sideways")
}
