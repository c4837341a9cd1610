package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/domain/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestCategoryAggregate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@example.com")
	electronics := e.category(t, "Electronics")
	documents := e.category(t, "Documents")
	clothing := e.category(t, "Clothing and accessories")

	e.item(t, domain.KindLost, owner, electronics, "Phone", day("2024-06-01"), day("2024-06-02"))
	e.item(t, domain.KindLost, owner, electronics, "Laptop", day("2024-06-20"), day("2024-06-21"))
	e.item(t, domain.KindFound, owner, electronics, "Phone charger", day("2024-06-05"), day("2024-06-06"))
	e.item(t, domain.KindFound, owner, documents, "Passport", day("2024-06-10"), day("2024-06-11"))

	svc, err := NewCategoryService(e.db.DB, e.categories, e.items, 2, nil)
	require.NoError(t, err)

	t.Run("no filter", func(t *testing.T) {
		got, err := svc.Aggregate(ctx, listing.RawParams{})
		require.NoError(t, err)
		assert.Equal(t, []CategorySummary{
			{ID: electronics.ID, Name: "Electronics", LostItemsCount: 2, FoundItemsCount: 1},
			{ID: documents.ID, Name: "Documents", LostItemsCount: 0, FoundItemsCount: 1},
			{ID: clothing.ID, Name: "Clothing and accessories", LostItemsCount: 0, FoundItemsCount: 0},
		}, got)
	})

	t.Run("text and date apply per kind", func(t *testing.T) {
		got, err := svc.Aggregate(ctx, listing.RawParams{Query: "phone", DateFrom: "2024-06-03"})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, 0, got[0].LostItemsCount, "lost phone event date is before dateFrom")
		assert.Equal(t, 1, got[0].FoundItemsCount)
	})

	t.Run("categoryId is ignored", func(t *testing.T) {
		got, err := svc.Aggregate(ctx, listing.RawParams{CategoryID: "not-even-a-uuid"})
		require.NoError(t, err)
		assert.Equal(t, 1, got[1].FoundItemsCount)
	})

	t.Run("invalid dates", func(t *testing.T) {
		_, err := svc.Aggregate(ctx, listing.RawParams{DateTo: "June"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestCategoryAggregateFailsFast(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	categories := &MockCategoryStore{}
	items := &MockItemStore{}
	cats := []*domain.Category{
		{ID: uuid.New(), Name: "A"},
		{ID: uuid.New(), Name: "B"},
		{ID: uuid.New(), Name: "C"},
	}
	categories.On("List", mock.Anything).Return(cats, nil)

	boom := errors.New("connection reset")
	items.On("Count", mock.Anything, mock.MatchedBy(func(f listing.Filter) bool {
		return f.CategoryID != nil && *f.CategoryID == cats[1].ID && f.Kind == domain.KindFound
	})).Return(0, boom)
	items.On("Count", mock.Anything, mock.Anything).Return(3, nil)

	svc, err := NewCategoryService(nil, categories, items, 2, nil)
	require.NoError(t, err)

	got, err := svc.Aggregate(context.Background(), listing.RawParams{})
	assert.Nil(t, got, "no partial result")
	require.ErrorIs(t, err, boom)
	var serviceErr *ServiceError
	assert.ErrorAs(t, err, &serviceErr)
}

func TestCategoryBootstrap(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc, err := NewCategoryService(e.db.DB, e.categories, e.items, 0, nil)
	require.NoError(t, err)

	n, err := svc.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = svc.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "bootstrap is idempotent")

	list, err := svc.List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, c := range list {
		names = append(names, c.Name)
	}
	assert.Equal(t, domain.DefaultCategoryNames, names)
}
