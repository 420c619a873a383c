// Package filesystem provides a local disk backend for filegate.
// Content is written atomically using temp files; metadata and listing order
// come from a filegate.ObjectIndex.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/filegate"
)

// Store keeps each bucket in a directory under root. Object content lives at
// <bucket>/<hh>/<sha256(key)> so that arbitrary keys map to safe file names.
type Store struct {
	root  *os.Root
	index filegate.ObjectIndex
	now   func() time.Time
}

// NewFileStorage creates a new Store with the given root directory and index.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root, index filegate.ObjectIndex) *Store {
	return &Store{
		root:  root,
		index: index,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// EnsureBucket creates the bucket directory.
func (s *Store) EnsureBucket(ctx context.Context, bucket string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.root.MkdirAll(bucket, 0o755); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	return nil
}

func (s *Store) HeadObject(ctx context.Context, h filegate.ObjectHandle) (filegate.ObjectMeta, error) {
	if err := s.checkBucket(ctx, h.Bucket); err != nil {
		return filegate.ObjectMeta{}, err
	}

	meta, err := s.index.Get(ctx, h.Bucket, h.Key)
	if err != nil {
		return filegate.ObjectMeta{}, err
	}
	return meta, nil
}

// GetObject opens the content of an object. Returns filegate.ErrNotFound if
// the object is not indexed or its content file is gone.
func (s *Store) GetObject(ctx context.Context, h filegate.ObjectHandle) (filegate.ObjectMeta, io.ReadCloser, error) {
	meta, err := s.HeadObject(ctx, h)
	if err != nil {
		return filegate.ObjectMeta{}, nil, err
	}

	f, err := s.root.Open(blobPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return filegate.ObjectMeta{}, nil, filegate.ErrNotFound
		}
		return filegate.ObjectMeta{}, nil, fmt.Errorf("failed to open file: %w", err)
	}

	return meta, f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// PutObject atomically writes body using a temp file and rename, then records
// its metadata in the index. The etag is the SHA256 of the content.
func (s *Store) PutObject(ctx context.Context, h filegate.ObjectHandle, body io.Reader, _ int64, contentType string) error {
	if err := s.checkBucket(ctx, h.Bucket); err != nil {
		return err
	}

	tmpFile := path.Join(h.Bucket, tmpFileName())
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	hash := sha256.New()
	w := io.MultiWriter(hash, t)

	size, err := io.Copy(w, &ctxReader{ctx: ctx, r: body})
	if err != nil {
		return fmt.Errorf("could not copy file contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return fmt.Errorf("could not sync written file: %w", err)
	}

	dest := blobPath(h)
	if err := s.root.MkdirAll(path.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("could not create intermediate directories: %w", err)
	}

	if err := s.root.Rename(tmpFile, dest); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	success = true

	_, err = s.index.Upsert(ctx, h.Bucket, filegate.ObjectMeta{
		Key:           h.Key,
		ContentType:   contentType,
		ContentLength: size,
		LastModified:  s.now(),
		ETag:          hex.EncodeToString(hash.Sum(nil)),
	})
	if err != nil {
		return fmt.Errorf("index object: %w", err)
	}

	return nil
}

// DeleteObject removes the index entry and then the content file.
func (s *Store) DeleteObject(ctx context.Context, h filegate.ObjectHandle) error {
	if err := s.checkBucket(ctx, h.Bucket); err != nil {
		return err
	}

	if err := s.index.Delete(ctx, h.Bucket, h.Key); err != nil {
		return err
	}

	if err := s.root.Remove(blobPath(h)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not delete file: %w", err)
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

func (s *Store) list(ctx context.Context, bucket, prefix, after string, maxKeys int) (filegate.ObjectPage, error) {
	if err := s.checkBucket(ctx, bucket); err != nil {
		return filegate.ObjectPage{}, err
	}

	items, more, err := s.index.List(ctx, bucket, prefix, after, maxKeys)
	if err != nil {
		return filegate.ObjectPage{}, fmt.Errorf("failed to list files: %w", err)
	}

	page := filegate.ObjectPage{Entries: make([]filegate.ObjectEntry, len(items))}
	for i, m := range items {
		page.Entries[i] = filegate.ObjectEntry{
			Key:          m.Key,
			Size:         m.ContentLength,
			LastModified: m.LastModified,
		}
	}

	if more && len(items) > 0 {
		page.NextCursor = filegate.EncodeKeyCursor(items[len(items)-1].Key)
	}

	return page, nil
}

func (s *Store) checkBucket(ctx context.Context, bucket string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := s.root.Stat(bucket)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("no such bucket: %s", bucket)
		}
		return fmt.Errorf("stat bucket: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("bucket %s is not a directory", bucket)
	}
	return nil
}

func blobPath(h filegate.ObjectHandle) string {
	sum := sha256.Sum256([]byte(h.Key))
	name := hex.EncodeToString(sum[:])
	return path.Join(h.Bucket, name[:2], name)
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}

var (
	_ filegate.ObjectStore       = (*Store)(nil)
	_ filegate.BucketInitializer = (*Store)(nil)
)
