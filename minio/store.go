// Package minio provides an object store backed by a MinIO server using the
// minio-go client.
package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sagarc03/filegate"
)

// Config holds the MinIO connection settings.
type Config struct {
	// Endpoint is host:port without a scheme.
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

// Store implements filegate.ObjectStore. It is safe for concurrent use.
type Store struct {
	client *miniogo.Client
	region string
}

// New creates a Store. No request is made until the first operation.
func New(cfg Config) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("minio: endpoint is required")
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: create client: %w", err)
	}

	return &Store{client: client, region: cfg.Region}, nil
}

func (s *Store) HeadObject(ctx context.Context, h filegate.ObjectHandle) (filegate.ObjectMeta, error) {
	info, err := s.client.StatObject(ctx, h.Bucket, h.Key, miniogo.StatObjectOptions{})
	if err != nil {
		return filegate.ObjectMeta{}, mapError("minio stat object", err)
	}
	return toMeta(h.Key, info), nil
}

func (s *Store) GetObject(ctx context.Context, h filegate.ObjectHandle) (filegate.ObjectMeta, io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, h.Bucket, h.Key, miniogo.GetObjectOptions{})
	if err != nil {
		return filegate.ObjectMeta{}, nil, mapError("minio get object", err)
	}

	// GetObject is lazy; Stat issues the request and surfaces a missing key.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return filegate.ObjectMeta{}, nil, mapError("minio get object", err)
	}

	return toMeta(h.Key, info), obj, nil
}

func (s *Store) PutObject(ctx context.Context, h filegate.ObjectHandle, body io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, h.Bucket, h.Key, body, size, miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return mapError("minio put object", err)
	}
	return nil
}

func (s *Store) DeleteObject(ctx context.Context, h filegate.ObjectHandle) error {
	if err := s.client.RemoveObject(ctx, h.Bucket, h.Key, miniogo.RemoveObjectOptions{}); err != nil {
		return mapError("minio remove object", err)
	}
	return nil
}

func (s *Store) ListObjects(ctx context.Context, bucket, prefix string, maxKeys int) (filegate.ObjectPage, error) {
	return s.list(ctx, bucket, prefix, "", maxKeys)
}

func (s *Store) ListObjectsContinue(ctx context.Context, bucket, prefix, cursor string, maxKeys int) (filegate.ObjectPage, error) {
	after, err := filegate.DecodeKeyCursor(cursor)
	if err != nil {
		return filegate.ObjectPage{}, err
	}
	return s.list(ctx, bucket, prefix, after, maxKeys)
}

// list reads at most maxKeys entries sorting after the key named by after.
// The cursor is the last returned key, so resuming is a StartAfter request.
// Stopping early cancels the listing goroutine minio-go runs.
func (s *Store) list(ctx context.Context, bucket, prefix, after string, maxKeys int) (filegate.ObjectPage, error) {
	if err := ctx.Err(); err != nil {
		return filegate.ObjectPage{}, err
	}
	if maxKeys < 1 {
		return filegate.ObjectPage{}, fmt.Errorf("minio list objects: invalid max keys %d", maxKeys)
	}

	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := s.client.ListObjects(listCtx, bucket, miniogo.ListObjectsOptions{
		Prefix:     prefix,
		StartAfter: after,
		Recursive:  true,
		MaxKeys:    maxKeys + 1,
	})

	page := filegate.ObjectPage{Entries: make([]filegate.ObjectEntry, 0, maxKeys)}
	for obj := range objects {
		if obj.Err != nil {
			return filegate.ObjectPage{}, mapError("minio list objects", obj.Err)
		}
		if len(page.Entries) == maxKeys {
			page.NextCursor = filegate.EncodeKeyCursor(page.Entries[maxKeys-1].Key)
			break
		}
		page.Entries = append(page.Entries, filegate.ObjectEntry{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}

	// A canceled listing closes the channel without reporting an error.
	if err := ctx.Err(); err != nil {
		return filegate.ObjectPage{}, mapError("minio list objects", err)
	}

	return page, nil
}

// EnsureBucket creates bucket unless it already exists.
func (s *Store) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("minio bucket exists: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, bucket, miniogo.MakeBucketOptions{Region: s.region}); err != nil {
		if miniogo.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
			return nil
		}
		return fmt.Errorf("minio make bucket: %w", err)
	}
	return nil
}

func toMeta(key string, info miniogo.ObjectInfo) filegate.ObjectMeta {
	return filegate.ObjectMeta{
		Key:           key,
		ContentType:   info.ContentType,
		ContentLength: info.Size,
		LastModified:  info.LastModified,
		ETag:          info.ETag,
	}
}

// mapError translates a minio-go error. Missing keys become
// filegate.ErrNotFound; everything else, a missing bucket included, is an
// upstream failure.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return filegate.Upstream(op, err)
	}

	resp := miniogo.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NotFound":
		return fmt.Errorf("%s: %w", op, filegate.ErrNotFound)
	case "NoSuchBucket":
		return filegate.Upstream(op, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, filegate.ErrNotFound)
	}

	return filegate.Upstream(op, err)
}

var (
	_ filegate.ObjectStore       = (*Store)(nil)
	_ filegate.BucketInitializer = (*Store)(nil)
)
