package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sagarc03/filegate"
	"github.com/sagarc03/filegate/database/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Timestamps are truncated to microseconds, the precision of TIMESTAMPTZ.
func meta(key string, size int64) filegate.ObjectMeta {
	return filegate.ObjectMeta{
		Key:           key,
		ContentType:   "text/plain",
		ContentLength: size,
		ETag:          fmt.Sprintf("etag-%s-%d", key, size),
		LastModified:  time.Date(2024, 3, 1, 10, 0, 0, 123456000, time.UTC),
	}
}

func TestRepo_Ping(t *testing.T) {
	repo := setupTestRepo(t)
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestRepo_Upsert(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	created, err := repo.Upsert(ctx, "b1", meta("a.txt", 1))
	require.NoError(t, err)
	assert.True(t, created, "first upsert inserts")

	created, err = repo.Upsert(ctx, "b1", meta("a.txt", 2))
	require.NoError(t, err)
	assert.False(t, created, "second upsert updates")

	got, err := repo.Get(ctx, "b1", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, meta("a.txt", 2), got)
}

func TestRepo_GetDelete(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "b1", "missing")
	assert.ErrorIs(t, err, filegate.ErrNotFound)

	_, err = repo.Upsert(ctx, "b1", meta("a.txt", 1))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "b1", "a.txt"))
	assert.ErrorIs(t, repo.Delete(ctx, "b1", "a.txt"), filegate.ErrNotFound)

	_, err = repo.Get(ctx, "b1", "a.txt")
	assert.ErrorIs(t, err, filegate.ErrNotFound)
}

func TestRepo_List(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	for _, k := range []string{"docs/b", "a", "docs/a", "docsx", "B", "c", "50%_off"} {
		_, err := repo.Upsert(ctx, "b1", meta(k, 1))
		require.NoError(t, err)
	}

	t.Run("byte order", func(t *testing.T) {
		items, more, err := repo.List(ctx, "b1", "", "", 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"50%_off", "B", "a"}, keysOf(items))
		assert.True(t, more)

		items, more, err = repo.List(ctx, "b1", "", "a", 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "docs/a", "docs/b", "docsx"}, keysOf(items))
		assert.False(t, more)
	})

	t.Run("prefix is literal", func(t *testing.T) {
		items, _, err := repo.List(ctx, "b1", "50%", "", 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"50%_off"}, keysOf(items))

		items, _, err = repo.List(ctx, "b1", "%", "", 10)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("prefix", func(t *testing.T) {
		items, more, err := repo.List(ctx, "b1", "docs/", "", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"docs/a", "docs/b"}, keysOf(items))
		assert.False(t, more)
	})
}

func TestMigrate_ValidateSchema(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()
	table := "schema_" + getRandomString(t)

	assert.Error(t, postgres.ValidateSchema(ctx, pool, table))

	require.NoError(t, postgres.Migrate(ctx, pool, table))
	require.NoError(t, postgres.Migrate(ctx, pool, table), "migrate is idempotent")
	assert.NoError(t, postgres.ValidateSchema(ctx, pool, table))

	require.NoError(t, postgres.DropTables(ctx, pool, table))
	assert.Error(t, postgres.ValidateSchema(ctx, pool, table))
}

func keysOf(items []filegate.ObjectMeta) []string {
	out := make([]string, len(items))
	for i, m := range items {
		out[i] = m.Key
	}
	return out
}
