package sqlstore_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryStore(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.categories.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	var seeded []*domain.Category
	for _, name := range []string{"Pets", "Electronics", "Accessories"} {
		c, err := domain.NewCategory(name)
		require.NoError(t, err)
		seeded = append(seeded, c)
	}
	require.NoError(t, f.categories.CreateMany(ctx, seeded))
	later := f.category(t, "Documents")

	t.Run("list keeps insertion order", func(t *testing.T) {
		list, err := f.categories.List(ctx)
		require.NoError(t, err)
		var names []string
		for _, c := range list {
			names = append(names, c.Name)
		}
		assert.Equal(t, []string{"Pets", "Electronics", "Accessories", "Documents"}, names)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := f.categories.GetByID(ctx, later.ID)
		require.NoError(t, err)
		assert.Equal(t, "Documents", got.Name)

		_, err = f.categories.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrCategoryNotFound)
	})

	t.Run("get by ids skips unknown and duplicates", func(t *testing.T) {
		got, err := f.categories.GetByIDs(ctx, []uuid.UUID{seeded[0].ID, seeded[0].ID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, "Pets", got[seeded[0].ID].Name)

		empty, err := f.categories.GetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("duplicate name", func(t *testing.T) {
		dup, err := domain.NewCategory("Pets")
		require.NoError(t, err)
		assert.ErrorIs(t, f.categories.CreateMany(ctx, []*domain.Category{dup}), store.ErrDuplicate)
	})

	n, err = f.categories.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
