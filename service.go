package filegate

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// DefaultContentType is stored when an upload does not declare one.
const DefaultContentType = "application/octet-stream"

// ObjectStore is the storage capability the gateway needs from a backend.
//
// Single-object calls return an error matching ErrNotFound when the key does
// not exist. List calls return NextCursor only when the listing was truncated.
type ObjectStore interface {
	// HeadObject returns the metadata of an object without its content.
	HeadObject(ctx context.Context, h ObjectHandle) (ObjectMeta, error)

	// GetObject opens an object for reading. The caller closes the body.
	GetObject(ctx context.Context, h ObjectHandle) (ObjectMeta, io.ReadCloser, error)

	// PutObject creates or overwrites an object. size is -1 when unknown.
	PutObject(ctx context.Context, h ObjectHandle, body io.Reader, size int64, contentType string) error

	// DeleteObject removes an object.
	DeleteObject(ctx context.Context, h ObjectHandle) error

	// ListObjects starts a listing of keys under prefix.
	ListObjects(ctx context.Context, bucket, prefix string, maxKeys int) (ObjectPage, error)

	// ListObjectsContinue resumes a listing from a cursor returned by an
	// earlier call with the same prefix.
	ListObjectsContinue(ctx context.Context, bucket, prefix, cursor string, maxKeys int) (ObjectPage, error)
}

// BucketInitializer is implemented by backends that can create their bucket.
type BucketInitializer interface {
	EnsureBucket(ctx context.Context, bucket string) error
}

// ServiceConfig holds configuration options for FileService.
type ServiceConfig struct {
	Bucket string
	// Bounds limits the page size of every listing, including resumed ones.
	// The zero value means DefaultPageSizeBounds.
	Bounds PageSizeBounds
}

// FileService serves list, metadata and object operations for one bucket.
type FileService struct {
	store  ObjectStore
	bucket string
	bounds PageSizeBounds
}

func NewFileService(store ObjectStore, cfg ServiceConfig) (*FileService, error) {
	if store == nil {
		return nil, errors.New("new file service: store is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("new file service: bucket is required")
	}
	if cfg.Bounds == (PageSizeBounds{}) {
		cfg.Bounds = DefaultPageSizeBounds()
	}
	if err := cfg.Bounds.Validate(); err != nil {
		return nil, fmt.Errorf("new file service: %w", err)
	}
	return &FileService{store: store, bucket: cfg.Bucket, bounds: cfg.Bounds}, nil
}

// Bucket returns the bucket every operation targets.
func (s *FileService) Bucket() string {
	return s.bucket
}

// List returns one page of files.
//
// Without a continuation cursor it starts a listing of q.DirectoryPrefix with
// q.PageSize entries. With one, it resumes the listing the token was issued
// for, using that listing's prefix and page size.
func (s *FileService) List(ctx context.Context, q ListQuery) (ListPage, error) {
	if err := ctx.Err(); err != nil {
		return ListPage{}, err
	}

	prefix, size := q.DirectoryPrefix, q.PageSize

	var page ObjectPage
	var err error

	if q.ContinuationCursor != "" {
		tok, decodeErr := decodePageToken(q.ContinuationCursor)
		if decodeErr == nil && !s.bounds.Contains(tok.PageSize) {
			decodeErr = fmt.Errorf("page token size %d outside [%d, %d]", tok.PageSize, s.bounds.Min, s.bounds.Max)
		}
		if decodeErr != nil {
			return ListPage{}, NewValidationError(
				KindInvalidValue,
				[]string{"query", ParamPageToken},
				"Invalid page token",
				q.ContinuationCursor,
			)
		}
		prefix, size = tok.Prefix, tok.PageSize
		page, err = s.store.ListObjectsContinue(ctx, s.bucket, prefix, tok.Cursor, size)
	} else {
		if !s.bounds.Contains(size) {
			return ListPage{}, fmt.Errorf("list: page size %d: %w", size, ErrInvalidInput)
		}
		page, err = s.store.ListObjects(ctx, s.bucket, prefix, size)
	}
	if err != nil {
		return ListPage{}, Upstream("list objects", err)
	}

	files := make([]FileMetadata, len(page.Entries))
	for i, e := range page.Entries {
		files[i] = FileMetadata{
			Path:         e.Key,
			LastModified: e.LastModified,
			SizeBytes:    e.Size,
		}
	}

	result := ListPage{Files: files}
	if page.NextCursor != "" {
		result.NextPageToken = encodePageToken(pageToken{
			Cursor:   page.NextCursor,
			Prefix:   prefix,
			PageSize: size,
		})
	}

	return result, nil
}

// Exists reports whether key is present. Absence is not an error.
func (s *FileService) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if err := validateKey(key); err != nil {
		return false, err
	}

	_, err := s.store.HeadObject(ctx, s.handle(key))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, Upstream("head object", err)
	}

	return true, nil
}

// Metadata returns the content type, length and modification time of key.
// Returns an error matching ErrNotFound when the key does not exist.
func (s *FileService) Metadata(ctx context.Context, key string) (ObjectMeta, error) {
	if err := ctx.Err(); err != nil {
		return ObjectMeta{}, err
	}

	if err := validateKey(key); err != nil {
		return ObjectMeta{}, err
	}

	meta, err := s.store.HeadObject(ctx, s.handle(key))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ObjectMeta{}, fmt.Errorf("metadata %s: %w", key, ErrNotFound)
		}
		return ObjectMeta{}, Upstream("head object", err)
	}

	if meta.Key == "" {
		meta.Key = key
	}

	return meta, nil
}

// Put stores obj, replacing any existing object with the same key.
// PutResult.Created is false when an existing object was overwritten.
func (s *FileService) Put(ctx context.Context, obj PutObject) (PutResult, error) {
	if err := ctx.Err(); err != nil {
		return PutResult{}, err
	}

	existed, err := s.Exists(ctx, obj.Key)
	if err != nil {
		return PutResult{}, err
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}

	if err := s.store.PutObject(ctx, s.handle(obj.Key), obj.Body, obj.Size, contentType); err != nil {
		return PutResult{}, Upstream("put object", err)
	}

	return PutResult{Key: obj.Key, Created: !existed}, nil
}

// Get opens key for reading. The caller must close the returned body.
func (s *FileService) Get(ctx context.Context, key string) (ObjectMeta, io.ReadCloser, error) {
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return ObjectMeta{}, nil, err
	}
	if !exists {
		return ObjectMeta{}, nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}

	meta, body, err := s.store.GetObject(ctx, s.handle(key))
	if err != nil {
		return ObjectMeta{}, nil, Upstream("get object", err)
	}

	if meta.Key == "" {
		meta.Key = key
	}

	return meta, body, nil
}

// Delete removes key. Returns an error matching ErrNotFound when the key does
// not exist.
func (s *FileService) Delete(ctx context.Context, key string) error {
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("delete %s: %w", key, ErrNotFound)
	}

	if err := s.store.DeleteObject(ctx, s.handle(key)); err != nil {
		return Upstream("delete object", err)
	}

	return nil
}

func (s *FileService) handle(key string) ObjectHandle {
	return ObjectHandle{Bucket: s.bucket, Key: key}
}

func validateKey(key string) error {
	if !IsValidKey(key) {
		return NewValidationError(KindInvalidValue, []string{"path", "file_path"}, "Invalid file path", key)
	}
	return nil
}
