package filestore

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/insightlens/insightlens/internal/config"
)

func newLocalStore(t *testing.T) Store {
	t.Helper()
	store, err := New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)
	return store
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()
	payload := []byte("document body")

	require.NoError(t, store.Save(ctx, "abc123.txt", bytes.NewReader(payload), int64(len(payload))))

	reader, err := store.Open(ctx, "abc123.txt")
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, payload, data)

	require.NoError(t, store.Delete(ctx, "abc123.txt"))
	_, err = store.Open(ctx, "abc123.txt")
	require.Error(t, err)
}

func TestLocalStoreDeleteMissingIsNoop(t *testing.T) {
	store := newLocalStore(t)
	require.NoError(t, store.Delete(context.Background(), "never-existed.txt"))
}

func TestLocalStoreRejectsPathKeys(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()
	require.Error(t, store.Save(ctx, "../escape.txt", bytes.NewReader([]byte("x")), 1))
	_, err := store.Open(ctx, "a/b.txt")
	require.Error(t, err)
	require.Error(t, store.Delete(ctx, "..\\b.txt"))
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "tape"})
	require.Error(t, err)
}

func TestNewRequiresType(t *testing.T) {
	_, err := New(config.FileStoreConfig{})
	require.Error(t, err)
}
