// Package postgres implements filegate.ObjectIndex on PostgreSQL using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/filegate"
)

// Repo stores object metadata in a single PostgreSQL table.
type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

// NewRepo returns a Repo over table. The table must already be migrated.
func NewRepo(pool *pgxpool.Pool, table string) (*Repo, error) {
	if err := filegate.ValidateTableName(table); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: pgx.Identifier{table}.Sanitize()}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) Get(ctx context.Context, bucket, key string) (filegate.ObjectMeta, error) {
	query := fmt.Sprintf(`
		SELECT object_key, content_type, etag, size_bytes, last_modified
		FROM %s
		WHERE bucket = $1 AND object_key = $2
	`, r.tableName)

	var m filegate.ObjectMeta
	err := r.pool.QueryRow(ctx, query, bucket, key).Scan(
		&m.Key, &m.ContentType, &m.ETag, &m.ContentLength, &m.LastModified,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return filegate.ObjectMeta{}, filegate.ErrNotFound
		}
		return filegate.ObjectMeta{}, fmt.Errorf("get: %w", err)
	}

	m.LastModified = m.LastModified.UTC()
	return m, nil
}

func (r *Repo) Upsert(ctx context.Context, bucket string, meta filegate.ObjectMeta) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (bucket, object_key, content_type, etag, size_bytes, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (bucket, object_key) DO UPDATE
		SET content_type = EXCLUDED.content_type,
			etag = EXCLUDED.etag,
			size_bytes = EXCLUDED.size_bytes,
			last_modified = EXCLUDED.last_modified
		RETURNING (xmax = 0) AS inserted
	`, r.tableName)

	var inserted bool
	err := r.pool.QueryRow(ctx, query,
		bucket, meta.Key, meta.ContentType, meta.ETag, meta.ContentLength, meta.LastModified.UTC(),
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}

	return inserted, nil
}

func (r *Repo) Delete(ctx context.Context, bucket, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE bucket = $1 AND object_key = $2`, r.tableName)

	result, err := r.pool.Exec(ctx, query, bucket, key)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete: %w", filegate.ErrNotFound)
	}

	return nil
}

// List pages through keys in byte order. It fetches limit+1 rows to learn
// whether another page follows.
func (r *Repo) List(ctx context.Context, bucket, prefix, after string, limit int) ([]filegate.ObjectMeta, bool, error) {
	if limit < 1 || limit > filegate.PageSizeCeiling {
		return nil, false, fmt.Errorf("list: invalid limit %d", limit)
	}

	query := fmt.Sprintf(`
		SELECT object_key, content_type, etag, size_bytes, last_modified
		FROM %s
		WHERE bucket = $1 AND starts_with(object_key, $2) AND object_key > $3
		ORDER BY object_key
		LIMIT $4
	`, r.tableName)

	rows, err := r.pool.Query(ctx, query, bucket, prefix, after, limit+1)
	if err != nil {
		return nil, false, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	items := make([]filegate.ObjectMeta, 0, min(limit, listPrealloc))
	for rows.Next() {
		var m filegate.ObjectMeta
		if err := rows.Scan(&m.Key, &m.ContentType, &m.ETag, &m.ContentLength, &m.LastModified); err != nil {
			return nil, false, fmt.Errorf("list: scan: %w", err)
		}
		m.LastModified = m.LastModified.UTC()
		items = append(items, m)
	}

	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("list: rows: %w", err)
	}

	if len(items) > limit {
		return items[:limit], true, nil
	}

	return items, false, nil
}

const listPrealloc = 128

var _ filegate.ObjectIndex = (*Repo)(nil)
