package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGet(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	data, err := store.Get(ctx, "7203/missing.pdf")
	require.NoError(t, err)
	require.Nil(t, data)

	payload := []byte("%PDF-1.7 test bytes")
	require.NoError(t, store.Put(ctx, "7203/abc123.pdf", payload))

	data, err = store.Get(ctx, "7203/abc123.pdf")
	require.NoError(t, err)
	require.Equal(t, payload, data)
}

func TestPutOverwrites(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "k", []byte("one")))
	require.NoError(t, store.Put(ctx, "k", []byte("two")))

	data, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("two"), data)
}
