package filegate

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
)

// ObjectIndex persists object metadata for backends that do not keep their
// own (the filesystem backend). Implementations must be safe for concurrent use.
type ObjectIndex interface {
	// Get returns the metadata stored for key.
	// Returns ErrNotFound if the key is not indexed.
	Get(ctx context.Context, bucket, key string) (ObjectMeta, error)

	// Upsert creates or replaces the entry for meta.Key.
	// The returned bool is true when a new entry was created.
	Upsert(ctx context.Context, bucket string, meta ObjectMeta) (bool, error)

	// Delete removes the entry for key.
	// Returns ErrNotFound if the key is not indexed.
	Delete(ctx context.Context, bucket, key string) error

	// List returns up to limit entries whose key starts with prefix and sorts
	// strictly after the key named by after, in byte order. The bool is true
	// when more entries follow.
	List(ctx context.Context, bucket, prefix, after string, limit int) ([]ObjectMeta, bool, error)
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// ValidateTableName returns an error describing why name cannot be used.
func ValidateTableName(name string) error {
	if name == "" {
		return errors.New("validate table: table name cannot be empty")
	}

	if !IsValidTableName(name) {
		return fmt.Errorf("validate table: invalid table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", name)
	}

	return nil
}

// EncodeKeyCursor encodes the last key of a page as a backend cursor.
func EncodeKeyCursor(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

// DecodeKeyCursor decodes a cursor produced by EncodeKeyCursor.
func DecodeKeyCursor(cursor string) (string, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("decode cursor: invalid encoding: %w", err)
	}

	if len(decoded) == 0 {
		return "", errors.New("decode cursor: empty key")
	}

	return string(decoded), nil
}
