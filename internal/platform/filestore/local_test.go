package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSaveAndDelete(t *testing.T) {
	base := t.TempDir()
	store, err := NewLocal(filepath.Join(base, "public"))
	require.NoError(t, err)
	ctx := context.Background()

	rel, err := store.Save(ctx, "img/lost", ".jpg", []byte("fake jpeg data"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "img/lost/"), rel)
	assert.True(t, strings.HasSuffix(rel, ".jpg"), rel)
	assert.True(t, store.Exists(rel))

	data, err := os.ReadFile(filepath.Join(store.Dir(), filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake jpeg data"), data)

	require.NoError(t, store.Delete(ctx, rel))
	assert.False(t, store.Exists(rel))

	// Deleting twice is fine.
	assert.NoError(t, store.Delete(ctx, rel))
}

func TestLocalRejectsTraversal(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, rel := range []string{"../secret", "img/../../etc/passwd", "", "."} {
		assert.ErrorIs(t, store.Delete(ctx, rel), ErrInvalidPath, rel)
		assert.False(t, store.Exists(rel))
	}

	_, err = store.Save(ctx, "../outside", ".jpg", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestLocalSaveCancelled(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Save(ctx, "img", ".jpg", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
