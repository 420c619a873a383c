package sqlite_test

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/sagarc03/filegate/database/sqlite"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// getTestDatabase opens a file-backed database so every pooled connection
// sees the same tables.
func getTestDatabase(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err, "failed to open sqlite database")
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// setupTestRepo creates a migrated repo with a unique table name.
func setupTestRepo(t *testing.T) *sqlite.Repo {
	t.Helper()

	db := getTestDatabase(t)
	ctx := context.Background()
	table := fmt.Sprintf("objects_%s", getRandomString(t))

	require.NoError(t, sqlite.Migrate(ctx, db, table), "failed to migrate")

	repo, err := sqlite.NewRepo(db, table)
	require.NoError(t, err, "failed to create repo")

	return repo
}
