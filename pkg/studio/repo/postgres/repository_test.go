package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/fiodorowphotography/studio/pkg/studio"
	"github.com/fiodorowphotography/studio/pkg/studio/repo/postgres"
	"github.com/fiodorowphotography/studio/pkg/studio/repo/repotest"
)

func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))

	repotest.Run(t, func(t *testing.T) studio.Repository {
		_, err := pool.Exec(ctx, `TRUNCATE studio_document, studio_asset`)
		require.NoError(t, err)
		return postgres.NewWithPool(pool)
	})
}
