package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/filegate"
	"github.com/sagarc03/filegate/database/schema"
)

// SQLite reports declared types, so these match the CREATE TABLE statement.
var objectTable = schema.Table{
	"bucket":        {Type: "text"},
	"object_key":    {Type: "text"},
	"content_type":  {Type: "text"},
	"etag":          {Type: "text"},
	"size_bytes":    {Type: "integer"},
	"last_modified": {Type: "text"},
}

// ValidateSchema checks that the index table exists with the columns Migrate
// creates.
func ValidateSchema(ctx context.Context, db *sql.DB, table string) error {
	if err := filegate.ValidateTableName(table); err != nil {
		return err
	}

	actual, err := readColumns(ctx, db, table)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", table, err)
	}

	if err := objectTable.Check(table, actual); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}
	return nil
}

func readColumns(ctx context.Context, db *sql.DB, table string) (schema.Table, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name, type, "notnull" FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns := schema.Table{}
	for rows.Next() {
		var name, typ string
		var notNull int
		if err := rows.Scan(&name, &typ, &notNull); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns[name] = schema.Column{Type: typ, Nullable: notNull == 0}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	if len(columns) == 0 {
		return nil, schema.ErrTableMissing
	}
	return columns, nil
}
