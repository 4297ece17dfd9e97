package sqlite_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/confguard"
	"github.com/sagarc03/confguard/database/sqlite"
	"github.com/stretchr/testify/require"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestRepo creates a repo on a fresh in-memory database.
func setupTestRepo(t *testing.T) confguard.RunRepo {
	t.Helper()

	ctx := context.Background()
	tableName := "runs_" + getRandomString(t)

	db, err := sqlite.Connect(ctx, ":memory:", tableName)
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx), "failed to migrate")

	return db.GetRepo()
}

func newRun(path string, errs []string, at time.Time) confguard.Run {
	return confguard.Run{
		ID:        uuid.New(),
		Path:      path,
		Valid:     len(errs) == 0,
		Errors:    errs,
		CheckedAt: at,
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
