package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sagarc03/filegate"
)

// Repo stores object metadata in a single SQLite table.
type Repo struct {
	db        *sql.DB
	tableName string
}

// NewRepo returns a Repo over table. The table must already be migrated.
func NewRepo(db *sql.DB, table string) (*Repo, error) {
	if err := filegate.ValidateTableName(table); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{db: db, tableName: quoteIdentifier(table)}, nil
}

func (r *Repo) Get(ctx context.Context, bucket, key string) (filegate.ObjectMeta, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT object_key, content_type, etag, size_bytes, last_modified
		FROM %s
		WHERE bucket = ? AND object_key = ?`, r.tableName)

	m, err := scanMeta(r.db.QueryRowContext(ctx, query, bucket, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return filegate.ObjectMeta{}, filegate.ErrNotFound
		}
		return filegate.ObjectMeta{}, fmt.Errorf("get: %w", err)
	}

	return m, nil
}

func (r *Repo) Upsert(ctx context.Context, bucket string, meta filegate.ObjectMeta) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("upsert: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	checkQuery := fmt.Sprintf(`SELECT 1 FROM %s WHERE bucket = ? AND object_key = ?`, r.tableName) //nolint:gosec // table name is validated
	err = tx.QueryRowContext(ctx, checkQuery, bucket, meta.Key).Scan(&one)
	isInsert := errors.Is(err, sql.ErrNoRows)
	if err != nil && !isInsert {
		return false, fmt.Errorf("upsert: check existing: %w", err)
	}

	upsertQuery := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (bucket, object_key, content_type, etag, size_bytes, last_modified)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (bucket, object_key) DO UPDATE
		SET content_type = excluded.content_type,
			etag = excluded.etag,
			size_bytes = excluded.size_bytes,
			last_modified = excluded.last_modified`, r.tableName)

	_, err = tx.ExecContext(ctx, upsertQuery,
		bucket, meta.Key, meta.ContentType, meta.ETag, meta.ContentLength,
		meta.LastModified.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("upsert: commit: %w", err)
	}

	return isInsert, nil
}

func (r *Repo) Delete(ctx context.Context, bucket, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE bucket = ? AND object_key = ?`, r.tableName) //nolint:gosec // G201: table name is validated

	result, err := r.db.ExecContext(ctx, query, bucket, key)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: rows affected: %w", err)
	}

	if rowsAffected == 0 {
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

	// instr(x, '') is 1, so an empty prefix matches every key.
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT object_key, content_type, etag, size_bytes, last_modified
		FROM %s
		WHERE bucket = ? AND instr(object_key, ?) = 1 AND object_key > ?
		ORDER BY object_key
		LIMIT ?`, r.tableName)

	rows, err := r.db.QueryContext(ctx, query, bucket, prefix, after, limit+1)
	if err != nil {
		return nil, false, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]filegate.ObjectMeta, 0, min(limit, listPrealloc))
	for rows.Next() {
		m, scanErr := scanMeta(rows)
		if scanErr != nil {
			return nil, false, fmt.Errorf("list: %w", scanErr)
		}
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

type scanner interface {
	Scan(dest ...any) error
}

func scanMeta(row scanner) (filegate.ObjectMeta, error) {
	var m filegate.ObjectMeta
	var lastModified string

	if err := row.Scan(&m.Key, &m.ContentType, &m.ETag, &m.ContentLength, &lastModified); err != nil {
		return filegate.ObjectMeta{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, lastModified)
	if err != nil {
		return filegate.ObjectMeta{}, fmt.Errorf("parse last_modified: %w", err)
	}
	m.LastModified = t

	return m, nil
}

const listPrealloc = 128

var _ filegate.ObjectIndex = (*Repo)(nil)
