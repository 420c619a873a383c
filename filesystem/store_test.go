package filesystem_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sagarc03/filegate"
	"github.com/sagarc03/filegate/database"
	"github.com/sagarc03/filegate/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bucket = "files"

func newStore(t *testing.T) (*filesystem.Store, string) {
	t.Helper()

	tempDir := t.TempDir()
	dataDir := filepath.Join(tempDir, "data")
	require.NoError(t, os.Mkdir(dataDir, 0o755))

	root, err := os.OpenRoot(dataDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	index, cleanup, err := database.Connect(context.Background(), database.Config{
		Type:  "sqlite",
		DSN:   filepath.Join(tempDir, "index.db"),
		Table: "objects",
	})
	require.NoError(t, err)
	t.Cleanup(cleanup)

	store := filesystem.NewFileStorage(root, index)
	require.NoError(t, store.EnsureBucket(context.Background(), bucket))

	return store, dataDir
}

func handle(key string) filegate.ObjectHandle {
	return filegate.ObjectHandle{Bucket: bucket, Key: key}
}

func TestStore_PutAndGet(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	err := store.PutObject(ctx, handle("docs/report 2024.txt"), bytes.NewReader([]byte("test content")), -1, "text/plain")
	require.NoError(t, err)

	meta, err := store.HeadObject(ctx, handle("docs/report 2024.txt"))
	require.NoError(t, err)
	assert.Equal(t, int64(12), meta.ContentLength)
	assert.Equal(t, "text/plain", meta.ContentType)
	assert.Len(t, meta.ETag, 64) // SHA256 hex length
	assert.False(t, meta.LastModified.IsZero())

	_, rc, err := store.GetObject(ctx, handle("docs/report 2024.txt"))
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, []byte("test content"), data)
}

func TestStore_Overwrite(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutObject(ctx, handle("a.txt"), strings.NewReader("one"), 3, "text/plain"))
	first, err := store.HeadObject(ctx, handle("a.txt"))
	require.NoError(t, err)

	require.NoError(t, store.PutObject(ctx, handle("a.txt"), strings.NewReader("second"), 6, "text/csv"))
	second, err := store.HeadObject(ctx, handle("a.txt"))
	require.NoError(t, err)

	assert.Equal(t, int64(6), second.ContentLength)
	assert.Equal(t, "text/csv", second.ContentType)
	assert.NotEqual(t, first.ETag, second.ETag)
}

func TestStore_KeysAreNotPaths(t *testing.T) {
	store, dataDir := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutObject(ctx, handle("../../escape.txt"), strings.NewReader("x"), 1, "text/plain"))

	_, err := os.Stat(filepath.Join(dataDir, "..", "escape.txt"))
	assert.True(t, os.IsNotExist(err))

	_, rc, err := store.GetObject(ctx, handle("../../escape.txt"))
	require.NoError(t, err)
	_ = rc.Close()
}

func TestStore_NoTempFilesLeft(t *testing.T) {
	store, dataDir := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutObject(ctx, handle("a.txt"), strings.NewReader("abc"), 3, "text/plain"))

	entries, err := os.ReadDir(filepath.Join(dataDir, bucket))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".t"), "temp file left behind: %s", e.Name())
	}
}

func TestStore_PutContextCanceled(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.PutObject(ctx, handle("a.txt"), strings.NewReader("abc"), 3, "text/plain")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.HeadObject(context.Background(), handle("a.txt"))
	assert.ErrorIs(t, err, filegate.ErrNotFound)
}

func TestStore_NotFound(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	_, err := store.HeadObject(ctx, handle("missing"))
	assert.ErrorIs(t, err, filegate.ErrNotFound)

	_, _, err = store.GetObject(ctx, handle("missing"))
	assert.ErrorIs(t, err, filegate.ErrNotFound)

	err = store.DeleteObject(ctx, handle("missing"))
	assert.ErrorIs(t, err, filegate.ErrNotFound)
}

func TestStore_MissingBucket(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	_, err := store.HeadObject(ctx, filegate.ObjectHandle{Bucket: "nope", Key: "a"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, filegate.ErrNotFound)

	_, err = store.ListObjects(ctx, "nope", "", 10)
	assert.Error(t, err)
}

func TestStore_Delete(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutObject(ctx, handle("a.txt"), strings.NewReader("abc"), 3, "text/plain"))
	require.NoError(t, store.DeleteObject(ctx, handle("a.txt")))

	_, _, err := store.GetObject(ctx, handle("a.txt"))
	assert.ErrorIs(t, err, filegate.ErrNotFound)
}

func TestStore_List(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	for _, k := range []string{"c.txt", "a.txt", "docs/x", "b.txt"} {
		require.NoError(t, store.PutObject(ctx, handle(k), strings.NewReader(k), int64(len(k)), "text/plain"))
	}

	first, err := store.ListObjects(ctx, bucket, "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, keys(first))
	require.NotEmpty(t, first.NextCursor)

	second, err := store.ListObjectsContinue(ctx, bucket, "", first.NextCursor, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c.txt", "docs/x"}, keys(second))
	assert.Empty(t, second.NextCursor)

	docs, err := store.ListObjects(ctx, bucket, "docs/", 10)
	require.NoError(t, err)
	require.Len(t, docs.Entries, 1)
	assert.Equal(t, int64(6), docs.Entries[0].Size)
}

func keys(p filegate.ObjectPage) []string {
	out := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = e.Key
	}
	return out
}
