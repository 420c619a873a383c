package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/filegate"
	"github.com/sagarc03/filegate/config"
)

func loadConfig(t *testing.T, provider string) *config.Config {
	t.Helper()
	t.Setenv("FILEGATE_STORAGE_PROVIDER", provider)

	dir := t.TempDir()
	t.Setenv("FILEGATE_STORAGE_LOCAL_PATH", filepath.Join(dir, "data"))
	t.Setenv("FILEGATE_DATABASE_DSN", filepath.Join(dir, "index.db"))

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)
	return cfg
}

func TestNewService(t *testing.T) {
	for _, provider := range []string{config.ProviderMemory, config.ProviderLocal} {
		t.Run(provider, func(t *testing.T) {
			ctx := context.Background()
			cfg := loadConfig(t, provider)

			service, _, cleanup, err := newService(ctx, cfg)
			require.NoError(t, err)
			defer cleanup()

			res, err := service.Put(ctx, filegate.PutObject{
				Key:  "hello.txt",
				Body: strings.NewReader("hi"),
				Size: 2,
			})
			require.NoError(t, err)
			assert.True(t, res.Created)

			page, err := service.List(ctx, filegate.ListQuery{PageSize: 10})
			require.NoError(t, err)
			require.Len(t, page.Files, 1)
			assert.Equal(t, "hello.txt", page.Files[0].Path)
		})
	}
}

func TestOpenStore_EnsureBucketIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := loadConfig(t, config.ProviderLocal)

	store, cleanup, err := openStore(ctx, cfg)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, store.EnsureBucket(ctx, cfg.Storage.Bucket))
	require.NoError(t, store.EnsureBucket(ctx, cfg.Storage.Bucket))
}
