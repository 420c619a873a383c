package e2e_test

import (
	"context"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	testOnce    sync.Once
	testCleanup func()
	testDSN     string
	testErr     error
)

// getSharedPostgresDatabase returns the DSN of a PostgreSQL container shared
// by every E2E test in the run. TestMain terminates it. Skipped with -short.
func getSharedPostgresDatabase(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}

	testOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			testErr = err
			return
		}

		testCleanup = func() {
			_ = testcontainers.TerminateContainer(pgContainer)
		}

		testDSN, testErr = pgContainer.ConnectionString(ctx, "sslmode=disable")
	})

	if testErr != nil {
		t.Fatalf("failed to start postgres container: %v", testErr)
	}

	return testDSN
}
