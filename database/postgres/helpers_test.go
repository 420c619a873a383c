package postgres_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/filegate/database/postgres"
	"github.com/stretchr/testify/require"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	testPool     *pgxpool.Pool
	testPoolOnce sync.Once
	testPoolErr  error
)

// getSharedTestDatabase returns a pool on a postgres container shared by every
// test in the package.
func getSharedTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	testPoolOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			testPoolErr = fmt.Errorf("failed to start postgres container: %w", err)
			return
		}

		connectionStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			testPoolErr = fmt.Errorf("failed to get connection string: %w", err)
			return
		}

		testPool, testPoolErr = pgxpool.New(ctx, connectionStr)
	})

	require.NoError(t, testPoolErr, "shared test database")
	return testPool
}

// getDSN extracts the DSN from the pool config.
func getDSN(pool *pgxpool.Pool) string {
	return pool.Config().ConnString()
}

// getRandomString generates a random string for unique test identifiers.
func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestRepo creates a migrated repo with a unique table name, dropped on cleanup.
func setupTestRepo(t *testing.T) *postgres.Repo {
	t.Helper()

	pool := getSharedTestDatabase(t)
	ctx := context.Background()
	table := fmt.Sprintf("objects_%s", getRandomString(t))

	require.NoError(t, postgres.Migrate(ctx, pool, table), "failed to migrate")
	t.Cleanup(func() { _ = postgres.DropTables(ctx, pool, table) })

	repo, err := postgres.NewRepo(pool, table)
	require.NoError(t, err, "failed to create repo")

	return repo
}
