package minio_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sagarc03/filegate"
	"github.com/sagarc03/filegate/minio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
)

const testBucket = "filegate-test"

var (
	sharedStore *minio.Store
	setupOnce   sync.Once
	setupErr    error
)

func getStore(t *testing.T) *minio.Store {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	setupOnce.Do(func() {
		ctx := context.Background()

		container, err := tcminio.Run(ctx, "minio/minio:RELEASE.2024-01-16T16-07-38Z",
			tcminio.WithUsername("minioadmin"),
			tcminio.WithPassword("minioadmin"),
		)
		if err != nil {
			setupErr = fmt.Errorf("start minio container: %w", err)
			return
		}

		hostPort, err := container.ConnectionString(ctx)
		if err != nil {
			setupErr = fmt.Errorf("get connection string: %w", err)
			return
		}

		sharedStore, setupErr = minio.New(minio.Config{
			Endpoint:  hostPort,
			AccessKey: container.Username,
			SecretKey: container.Password,
		})
		if setupErr != nil {
			return
		}

		setupErr = sharedStore.EnsureBucket(ctx, testBucket)
	})

	require.NoError(t, setupErr, "setup minio store")
	return sharedStore
}

func TestStore_ObjectLifecycle(t *testing.T) {
	store := getStore(t)
	ctx := context.Background()
	h := filegate.ObjectHandle{Bucket: testBucket, Key: "lifecycle/a.txt"}

	_, err := store.HeadObject(ctx, h)
	assert.ErrorIs(t, err, filegate.ErrNotFound)

	body := strings.NewReader("hello minio")
	require.NoError(t, store.PutObject(ctx, h, body, int64(body.Len()), "text/plain"))

	meta, err := store.HeadObject(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", meta.ContentType)
	assert.Equal(t, int64(11), meta.ContentLength)
	assert.False(t, meta.LastModified.IsZero())

	_, rc, err := store.GetObject(ctx, h)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello minio", string(data))

	require.NoError(t, store.DeleteObject(ctx, h))
	_, _, err = store.GetObject(ctx, h)
	assert.ErrorIs(t, err, filegate.ErrNotFound)
}

func TestStore_ListPagination(t *testing.T) {
	store := getStore(t)
	ctx := context.Background()

	for _, k := range []string{"page/a.txt", "page/b.txt", "page/c.txt", "other/x.txt"} {
		r := strings.NewReader(k)
		require.NoError(t, store.PutObject(ctx, filegate.ObjectHandle{Bucket: testBucket, Key: k}, r, int64(r.Len()), "text/plain"))
	}

	first, err := store.ListObjects(ctx, testBucket, "page/", 2)
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)
	assert.Equal(t, "page/a.txt", first.Entries[0].Key)
	assert.Equal(t, "page/b.txt", first.Entries[1].Key)
	require.NotEmpty(t, first.NextCursor)

	second, err := store.ListObjectsContinue(ctx, testBucket, "page/", first.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, second.Entries, 1)
	assert.Equal(t, "page/c.txt", second.Entries[0].Key)
	assert.Empty(t, second.NextCursor)
}

func TestStore_MissingBucket(t *testing.T) {
	store := getStore(t)

	_, err := store.HeadObject(context.Background(), filegate.ObjectHandle{Bucket: "does-not-exist", Key: "a"})
	assert.Error(t, err)

	_, err = store.ListObjects(context.Background(), "does-not-exist", "", 10)
	assert.ErrorIs(t, err, filegate.ErrUpstream)
}

func TestStore_ListCancellation(t *testing.T) {
	store := getStore(t)

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := store.ListObjects(ctx, testBucket, "", 10)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("stops after one page", func(t *testing.T) {
		ctx := context.Background()
		for _, k := range []string{"stop/a", "stop/b", "stop/c", "stop/d"} {
			r := strings.NewReader(k)
			require.NoError(t, store.PutObject(ctx, filegate.ObjectHandle{Bucket: testBucket, Key: k}, r, int64(r.Len()), "text/plain"))
		}

		page, err := store.ListObjects(ctx, testBucket, "stop/", 1)
		require.NoError(t, err)
		require.Len(t, page.Entries, 1)
		assert.Equal(t, "stop/a", page.Entries[0].Key)

		after, err := filegate.DecodeKeyCursor(page.NextCursor)
		require.NoError(t, err)
		assert.Equal(t, "stop/a", after)
	})

	t.Run("invalid cursor", func(t *testing.T) {
		_, err := store.ListObjectsContinue(context.Background(), testBucket, "", "!!", 10)
		assert.Error(t, err)
	})
}
