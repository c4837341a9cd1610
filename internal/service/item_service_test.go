package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/phrazzld/lostfound-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItemService(t *testing.T, e *env) ItemService {
	t.Helper()
	svc, err := NewItemService(e.db.DB, e.items, e.categories, e.discarded, e.emitted, nil)
	require.NoError(t, err)
	return svc
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.Fields
}

func TestItemAdd(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@example.com")
	cat := e.category(t, "Electronics")
	svc := newItemService(t, e)

	got, err := svc.Add(ctx, domain.KindLost, owner.ID, ItemInput{
		Name:        strPtr("  Black phone "),
		Description: strPtr("Cracked screen"),
		CategoryID:  strPtr(cat.ID.String()),
		EventDate:   strPtr("2024-06-15"),
		Images:      []string{"img/lost/a.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Black phone", got.Item.Name)
	assert.Equal(t, owner.ID, got.Item.UserID)
	assert.Equal(t, CategoryRef{ID: cat.ID, Name: "Electronics"}, got.Category)
	assert.Equal(t, day("2024-06-15"), got.Item.EventDate)

	stored, err := e.items.GetByID(ctx, domain.KindLost, got.Item.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"img/lost/a.jpg"}, stored.Images)
	assert.Empty(t, e.discarded.Paths())
	assert.Empty(t, e.emitted.ReleasedPaths(t))
}

func TestItemAddValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@example.com")
	cat := e.category(t, "Electronics")
	svc := newItemService(t, e)

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Add(ctx, domain.KindFound, owner.ID, ItemInput{Name: strPtr("  "), Images: []string{"img/found/x.jpg"}})
		require.ErrorIs(t, err, domain.ErrValidation)
		fields := validationFields(t, err)
		assert.Contains(t, fields, "name")
		assert.Contains(t, fields, "categoryId")
		assert.Contains(t, fields, "foundDate")
		assert.Contains(t, e.discarded.Paths(), "img/found/x.jpg")
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := svc.Add(ctx, domain.KindLost, owner.ID, ItemInput{
			Name:       strPtr("Keys"),
			CategoryID: strPtr(uuid.NewString()),
			EventDate:  strPtr("2024-06-15"),
			Images:     []string{"img/lost/y.jpg"},
		})
		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, "Category does not exist.", validationFields(t, err)["categoryId"])
		assert.Contains(t, e.discarded.Paths(), "img/lost/y.jpg")
	})

	t.Run("malformed date", func(t *testing.T) {
		_, err := svc.Add(ctx, domain.KindLost, owner.ID, ItemInput{
			Name:       strPtr("Keys"),
			CategoryID: strPtr(cat.ID.String()),
			EventDate:  strPtr("15.06.2024"),
		})
		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, validationFields(t, err), "lostDate")
	})
}

func TestItemUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@example.com")
	electronics := e.category(t, "Electronics")
	documents := e.category(t, "Documents")
	it := e.item(t, domain.KindLost, owner, electronics, "Phone", day("2024-06-01"), day("2024-06-02"), "img/lost/old1.jpg", "img/lost/old2.jpg")
	svc := newItemService(t, e)

	// Absent fields are kept.
	got, err := svc.Update(ctx, domain.KindLost, owner.ID, it.ID, ItemInput{Description: strPtr("Blue case")})
	require.NoError(t, err)
	assert.Equal(t, "Phone", got.Item.Name)
	assert.Equal(t, "Blue case", got.Item.Description)
	assert.Equal(t, it.Images, got.Item.Images)
	assert.Empty(t, e.emitted.ReleasedPaths(t))

	// An explicitly empty description clears it; new images replace the old ones.
	got, err = svc.Update(ctx, domain.KindLost, owner.ID, it.ID, ItemInput{
		Description: strPtr(""),
		CategoryID:  strPtr(documents.ID.String()),
		Images:      []string{"img/lost/new.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "", got.Item.Description)
	assert.Equal(t, "Documents", got.Category.Name)
	assert.Equal(t, []string{"img/lost/new.jpg"}, got.Item.Images)
	assert.ElementsMatch(t, []string{"img/lost/old1.jpg", "img/lost/old2.jpg"}, e.emitted.ReleasedPaths(t))
	assert.Empty(t, e.discarded.Paths())

	stored, err := e.items.GetByID(ctx, domain.KindLost, it.ID)
	require.NoError(t, err)
	assert.Equal(t, documents.ID, stored.CategoryID)
	assert.Equal(t, []string{"img/lost/new.jpg"}, stored.Images)

	_, err = svc.Update(ctx, domain.KindLost, owner.ID, it.ID, ItemInput{Name: strPtr("")})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, validationFields(t, err), "name")
}

func TestItemUpdateRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@example.com")
	stranger := e.user(t, "stranger@example.com")
	cat := e.category(t, "Electronics")
	it := e.item(t, domain.KindFound, owner, cat, "Wallet", day("2024-06-01"), day("2024-06-02"), "img/found/keep.jpg")
	svc := newItemService(t, e)

	_, err := svc.Update(ctx, domain.KindFound, stranger.ID, it.ID, ItemInput{
		Name:   strPtr("Mine now"),
		Images: []string{"img/found/intruder.jpg"},
	})
	require.ErrorIs(t, err, domain.ErrAccessDenied)
	assert.Equal(t, []string{"img/found/intruder.jpg"}, e.discarded.Paths())
	assert.Empty(t, e.emitted.ReleasedPaths(t))

	stored, err := e.items.GetByID(ctx, domain.KindFound, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wallet", stored.Name)
	assert.Equal(t, []string{"img/found/keep.jpg"}, stored.Images)

	_, err = svc.Update(ctx, domain.KindLost, owner.ID, it.ID, ItemInput{Name: strPtr("x")})
	assert.ErrorIs(t, err, store.ErrItemNotFound, "kind scopes the lookup")
}

func TestItemDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@example.com")
	stranger := e.user(t, "stranger@example.com")
	cat := e.category(t, "Electronics")
	it := e.item(t, domain.KindLost, owner, cat, "Phone", day("2024-06-01"), day("2024-06-02"), "img/lost/a.jpg", "img/lost/b.jpg")
	svc := newItemService(t, e)

	err := svc.Delete(ctx, domain.KindLost, stranger.ID, it.ID)
	require.ErrorIs(t, err, domain.ErrAccessDenied)
	_, err = e.items.GetByID(ctx, domain.KindLost, it.ID)
	require.NoError(t, err, "item survives a non-owner delete")
	assert.Empty(t, e.emitted.ReleasedPaths(t))

	// Scheduling failures never surface to the caller.
	e.emitted.err = errors.New("queue full")
	require.NoError(t, svc.Delete(ctx, domain.KindLost, owner.ID, it.ID))
	assert.ElementsMatch(t, []string{"img/lost/a.jpg", "img/lost/b.jpg"}, e.emitted.ReleasedPaths(t))

	_, err = e.items.GetByID(ctx, domain.KindLost, it.ID)
	assert.ErrorIs(t, err, store.ErrItemNotFound)

	err = svc.Delete(ctx, domain.KindLost, owner.ID, it.ID)
	assert.ErrorIs(t, err, store.ErrItemNotFound)
}
