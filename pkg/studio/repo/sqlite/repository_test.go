package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiodorowphotography/studio/pkg/studio"
	"github.com/fiodorowphotography/studio/pkg/studio/repo/repotest"
	"github.com/fiodorowphotography/studio/pkg/studio/repo/sqlite"
)

func TestSQLiteRepository(t *testing.T) {
	repotest.Run(t, func(t *testing.T) studio.Repository {
		repo, err := sqlite.Open(filepath.Join(t.TempDir(), "studio.db"))
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })
		return repo
	})
}

func TestSQLiteRepository_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "studio.db")

	repo, err := sqlite.Open(path)
	require.NoError(t, err)
	doc := repotest.NewReport("trwaly")
	require.NoError(t, repo.CreateDocument(ctx, doc))
	require.NoError(t, repo.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetDocumentBySlug(ctx, studio.KindReport, "trwaly")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.True(t, doc.CreatedAt.Equal(got.CreatedAt))
}
