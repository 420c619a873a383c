// Package database connects the object index used by the local filesystem
// backend.
//
// The local backend keeps file content on disk and object metadata (content
// type, size, etag, modification time) in a SQL table so that listing is an
// ordered range query instead of a directory walk.
//
// # Supported Backends
//
//   - PostgreSQL: shared index using a pgx connection pool
//   - SQLite: single-node index using modernc.org/sqlite
//
// # Usage
//
//	cfg := database.Config{
//	    Type:  "sqlite",
//	    DSN:   "filegate.db",
//	    Table: "filegate_objects",
//	}
//
//	index, cleanup, err := database.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
//
// Connect opens the connection, runs migrations and validates the schema
// before returning.
package database
