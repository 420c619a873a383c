package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the object index table if it does not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, table string) error {
	if err := createObjectTable(ctx, pool, table); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// DropTables removes the tables created by Migrate.
func DropTables(ctx context.Context, pool *pgxpool.Pool, table string) error {
	sql := fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{table}.Sanitize())
	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}

func createObjectTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()

	// COLLATE "C" makes the primary key order match S3 byte order.
	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			bucket TEXT NOT NULL,
			object_key TEXT COLLATE "C" NOT NULL,
			content_type TEXT NOT NULL,
			etag TEXT NOT NULL,
			size_bytes BIGINT NOT NULL,
			last_modified TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (bucket, object_key)
		);
	`, quotedTable)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create object table: %w", err)
	}
	return nil
}
