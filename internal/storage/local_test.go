package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, "thumbs/a.png", CanonicalKey("/thumbs/a.png"))
	require.Equal(t, "thumbs/a.png", CanonicalKey("thumbs/a.png"))
	require.Equal(t, "thumbs/a.png", CanonicalKey("//thumbs/a.png"))
	require.Equal(t, "", CanonicalKey("/"))
}

func TestLocalStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	// Missing object
	_, err = store.Get(ctx, "/missing.png")
	require.ErrorIs(t, err, ErrNotFound)

	exists, err := store.Exists(ctx, "/missing.png")
	require.NoError(t, err)
	require.False(t, exists)

	// Put into a nested directory and read back
	payload := []byte("payload")
	require.NoError(t, store.Put(ctx, "/thumbs/penguin_mini.png", payload))

	data, err := store.Get(ctx, "/thumbs/penguin_mini.png")
	require.NoError(t, err)
	require.Equal(t, payload, data)

	// Leading separator is not significant
	data, err = store.Get(ctx, "thumbs/penguin_mini.png")
	require.NoError(t, err)
	require.Equal(t, payload, data)

	exists, err = store.Exists(ctx, "/thumbs/penguin_mini.png")
	require.NoError(t, err)
	require.True(t, exists)

	// Put replaces
	require.NoError(t, store.Put(ctx, "/thumbs/penguin_mini.png", []byte("v2")))
	data, err = store.Get(ctx, "/thumbs/penguin_mini.png")
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), data)

	// Delete
	require.NoError(t, store.Delete(ctx, "/thumbs/penguin_mini.png"))
	require.ErrorIs(t, store.Delete(ctx, "/thumbs/penguin_mini.png"), ErrNotFound)
}

func TestLocalStoreList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "/images/b.png", []byte("b")))
	require.NoError(t, store.Put(ctx, "/images/a.png", []byte("a")))
	require.NoError(t, store.Put(ctx, "/images/deep/c.png", []byte("c")))

	// One level only, sorted
	paths, err := store.List(ctx, "/images")
	require.NoError(t, err)
	require.Equal(t, []string{"images/a.png", "images/b.png"}, paths)

	// Missing level lists empty
	paths, err = store.List(ctx, "/nothing")
	require.NoError(t, err)
	require.Empty(t, paths)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "/missing.png")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "/thumbs/a.png", []byte("a")))
	require.NoError(t, store.Put(ctx, "/thumbs/b.png", []byte("b")))
	require.NoError(t, store.Put(ctx, "/thumbs/deep/c.png", []byte("c")))

	exists, err := store.Exists(ctx, "thumbs/a.png")
	require.NoError(t, err)
	require.True(t, exists)

	paths, err := store.List(ctx, "/thumbs")
	require.NoError(t, err)
	require.Equal(t, []string{"thumbs/a.png", "thumbs/b.png"}, paths)

	// Stored bytes are isolated from caller mutations
	payload := []byte("mutable")
	require.NoError(t, store.Put(ctx, "/iso.png", payload))
	payload[0] = 'X'

	data, err := store.Get(ctx, "/iso.png")
	require.NoError(t, err)
	require.Equal(t, []byte("mutable"), data)

	require.NoError(t, store.Delete(ctx, "/thumbs/a.png"))
	require.ErrorIs(t, store.Delete(ctx, "/thumbs/a.png"), ErrNotFound)
	require.Equal(t, 3, store.Len())
}
