package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/filegate"
	"github.com/sagarc03/filegate/database/postgres"
	"github.com/sagarc03/filegate/database/sqlite"

	_ "modernc.org/sqlite" // SQLite driver
)

// Config selects and locates the object index database.
type Config struct {
	// Type is "sqlite" or "postgres".
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres"`
	DSN  string `mapstructure:"dsn" validate:"required"`
	// Table holds one row per indexed object.
	Table string `mapstructure:"table" validate:"required"`
}

// Connect opens the index database, creates the table when missing and
// checks that an existing table has the expected columns. The returned
// cleanup closes the connection.
func Connect(ctx context.Context, cfg Config) (filegate.ObjectIndex, func(), error) {
	if err := filegate.ValidateTableName(cfg.Table); err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}

	switch cfg.Type {
	case "sqlite":
		return connectSQLite(ctx, cfg.DSN, cfg.Table)
	case "postgres":
		return connectPostgres(ctx, cfg.DSN, cfg.Table)
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

type step struct {
	name string
	run  func(context.Context) error
}

// prepare runs steps in order and stops at the first failure.
func prepare(ctx context.Context, driver string, steps ...step) error {
	for _, s := range steps {
		if err := s.run(ctx); err != nil {
			return fmt.Errorf("%s %s: %w", s.name, driver, err)
		}
	}
	return nil
}

func connectSQLite(ctx context.Context, dsn, table string) (filegate.ObjectIndex, func(), error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	cleanup := func() { _ = db.Close() }

	err = prepare(ctx, "sqlite",
		step{"ping", db.PingContext},
		step{"migrate", func(ctx context.Context) error { return sqlite.Migrate(ctx, db, table) }},
		step{"validate schema", func(ctx context.Context) error { return sqlite.ValidateSchema(ctx, db, table) }},
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	repo, err := sqlite.NewRepo(db, table)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create sqlite repo: %w", err)
	}
	return repo, cleanup, nil
}

func connectPostgres(ctx context.Context, dsn, table string) (filegate.ObjectIndex, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	err = prepare(ctx, "postgres",
		step{"ping", pool.Ping},
		step{"migrate", func(ctx context.Context) error { return postgres.Migrate(ctx, pool, table) }},
		step{"validate schema", func(ctx context.Context) error { return postgres.ValidateSchema(ctx, pool, table) }},
	)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	repo, err := postgres.NewRepo(pool, table)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("create postgres repo: %w", err)
	}
	return repo, pool.Close, nil
}
