package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/filegate"
	"github.com/sagarc03/filegate/database/schema"
)

var objectTable = schema.Table{
	"bucket":        {Type: "text"},
	"object_key":    {Type: "text"},
	"content_type":  {Type: "text"},
	"etag":          {Type: "text"},
	"size_bytes":    {Type: "bigint"},
	"last_modified": {Type: "timestamp with time zone"},
}

// ValidateSchema checks that the index table exists in the public schema with
// the columns Migrate creates.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, table string) error {
	if err := filegate.ValidateTableName(table); err != nil {
		return err
	}

	actual, err := readColumns(ctx, pool, table)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", table, err)
	}

	if err := objectTable.Check(table, actual); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}
	return nil
}

func readColumns(ctx context.Context, pool *pgxpool.Pool, table string) (schema.Table, error) {
	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable = 'YES'
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
	`, table)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	columns := schema.Table{}
	for rows.Next() {
		var name string
		var col schema.Column
		if err := rows.Scan(&name, &col.Type, &col.Nullable); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns[name] = col
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	if len(columns) == 0 {
		return nil, schema.ErrTableMissing
	}
	return columns, nil
}
