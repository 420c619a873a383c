package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sagarc03/filegate"
	"github.com/sagarc03/filegate/config"
	"github.com/sagarc03/filegate/database"
	"github.com/sagarc03/filegate/filesystem"
	"github.com/sagarc03/filegate/memory"
	"github.com/sagarc03/filegate/minio"
	"github.com/sagarc03/filegate/s3"
)

// backend is an object store that can also create its bucket.
type backend interface {
	filegate.ObjectStore
	filegate.BucketInitializer
}

// openStore builds the backend selected by storage.provider. The returned
// cleanup releases any connection or file handle it holds.
func openStore(ctx context.Context, cfg *config.Config) (backend, func(), error) {
	noop := func() {}

	switch cfg.Storage.Provider {
	case config.ProviderMemory:
		return memory.New(cfg.Storage.Bucket), noop, nil

	case config.ProviderS3:
		store, err := s3.New(ctx, cfg.Storage.S3)
		if err != nil {
			return nil, nil, fmt.Errorf("create s3 store: %w", err)
		}
		return store, noop, nil

	case config.ProviderMinio:
		store, err := minio.New(cfg.Storage.Minio)
		if err != nil {
			return nil, nil, fmt.Errorf("create minio store: %w", err)
		}
		return store, noop, nil

	case config.ProviderLocal:
		return openLocal(ctx, cfg)

	default:
		return nil, nil, fmt.Errorf("unsupported storage provider: %s", cfg.Storage.Provider)
	}
}

func openLocal(ctx context.Context, cfg *config.Config) (backend, func(), error) {
	if err := os.MkdirAll(cfg.Storage.Local.Path, 0o750); err != nil {
		return nil, nil, fmt.Errorf("create storage directory: %w", err)
	}

	root, err := os.OpenRoot(cfg.Storage.Local.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage root: %w", err)
	}

	index, closeDB, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		_ = root.Close()
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	cleanup := func() {
		closeDB()
		_ = root.Close()
	}

	store := filesystem.NewFileStorage(root, index)
	if err := store.EnsureBucket(ctx, cfg.Storage.Bucket); err != nil {
		cleanup()
		return nil, nil, err
	}

	return store, cleanup, nil
}

// newService opens the configured backend and wraps it in a FileService.
func newService(ctx context.Context, cfg *config.Config) (*filegate.FileService, backend, func(), error) {
	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	service, err := filegate.NewFileService(store, filegate.ServiceConfig{
		Bucket: cfg.Storage.Bucket,
		Bounds: cfg.List,
	})
	if err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("create service: %w", err)
	}

	return service, store, cleanup, nil
}
