// Package memory provides an in-process object store for filegate.
// It is used for development, tests and the end-to-end suite.
package memory

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sagarc03/filegate"
)

type object struct {
	meta filegate.ObjectMeta
	data []byte
}

// Store keeps objects in memory, grouped by bucket. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]map[string]object
	now     func() time.Time
}

// New creates a Store with the given buckets already present.
func New(buckets ...string) *Store {
	s := &Store{
		buckets: make(map[string]map[string]object),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, b := range buckets {
		s.buckets[b] = make(map[string]object)
	}
	return s
}

// EnsureBucket creates bucket if it does not exist.
func (s *Store) EnsureBucket(ctx context.Context, bucket string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buckets[bucket]; !ok {
		s.buckets[bucket] = make(map[string]object)
	}
	return nil
}

func (s *Store) HeadObject(ctx context.Context, h filegate.ObjectHandle) (filegate.ObjectMeta, error) {
	if err := ctx.Err(); err != nil {
		return filegate.ObjectMeta{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, err := s.lookup(h)
	if err != nil {
		return filegate.ObjectMeta{}, err
	}
	return obj.meta, nil
}

func (s *Store) GetObject(ctx context.Context, h filegate.ObjectHandle) (filegate.ObjectMeta, io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return filegate.ObjectMeta{}, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, err := s.lookup(h)
	if err != nil {
		return filegate.ObjectMeta{}, nil, err
	}

	// data is never mutated after insert, so readers can share it.
	return obj.meta, io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *Store) PutObject(ctx context.Context, h filegate.ObjectHandle, body io.Reader, _ int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("put object: read body: %w", err)
	}

	sum := sha256.Sum256(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.buckets[h.Bucket]
	if !ok {
		return fmt.Errorf("put object: no such bucket: %s", h.Bucket)
	}

	objects[h.Key] = object{
		meta: filegate.ObjectMeta{
			Key:           h.Key,
			ContentType:   contentType,
			ContentLength: int64(len(data)),
			LastModified:  s.now(),
			ETag:          hex.EncodeToString(sum[:]),
		},
		data: data,
	}
	return nil
}

func (s *Store) DeleteObject(ctx context.Context, h filegate.ObjectHandle) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(h); err != nil {
		return err
	}
	delete(s.buckets[h.Bucket], h.Key)
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
	if err := ctx.Err(); err != nil {
		return filegate.ObjectPage{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, ok := s.buckets[bucket]
	if !ok {
		return filegate.ObjectPage{}, fmt.Errorf("list objects: no such bucket: %s", bucket)
	}

	keys := slices.Sorted(maps.Keys(objects))

	page := filegate.ObjectPage{Entries: []filegate.ObjectEntry{}}
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) || (after != "" && k <= after) {
			continue
		}
		if len(page.Entries) == maxKeys {
			page.NextCursor = filegate.EncodeKeyCursor(page.Entries[len(page.Entries)-1].Key)
			break
		}
		m := objects[k].meta
		page.Entries = append(page.Entries, filegate.ObjectEntry{
			Key:          k,
			Size:         m.ContentLength,
			LastModified: m.LastModified,
		})
	}

	return page, nil
}

func (s *Store) lookup(h filegate.ObjectHandle) (object, error) {
	objects, ok := s.buckets[h.Bucket]
	if !ok {
		return object{}, fmt.Errorf("no such bucket: %s", h.Bucket)
	}
	obj, ok := objects[h.Key]
	if !ok {
		return object{}, filegate.ErrNotFound
	}
	return obj, nil
}
