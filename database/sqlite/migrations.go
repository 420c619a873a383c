package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// quoteIdentifier quotes a table name already checked by filegate.ValidateTableName.
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

// The primary key on (bucket, object_key) serves both lookups and ordered
// listing; the default BINARY collation sorts keys by bytes.
const createObjectTableSQL = `
	CREATE TABLE IF NOT EXISTS %s (
		bucket TEXT NOT NULL,
		object_key TEXT NOT NULL,
		content_type TEXT NOT NULL,
		etag TEXT NOT NULL,
		size_bytes INTEGER NOT NULL,
		last_modified TEXT NOT NULL,
		PRIMARY KEY (bucket, object_key)
	)
`

// Migrate creates the object index table if it does not exist.
func Migrate(ctx context.Context, db *sql.DB, table string) error {
	if _, err := db.ExecContext(ctx, fmt.Sprintf(createObjectTableSQL, quoteIdentifier(table))); err != nil {
		return fmt.Errorf("migrate %s: %w", table, err)
	}
	return nil
}

// DropTables removes the tables created by Migrate.
func DropTables(ctx context.Context, db *sql.DB, table string) error {
	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdentifier(table)); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}
	return nil
}
