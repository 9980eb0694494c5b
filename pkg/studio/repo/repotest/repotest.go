// Package repotest holds the behaviour every studio.Repository backend must
// share. Backend test files call Run with a constructor for a fresh, empty
// repository.
package repotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiodorowphotography/studio/pkg/studio"
)

// NewPortfolio returns a valid portfolio document that has not been stored.
func NewPortfolio(slug string) *studio.Document {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &studio.Document{
		ID:       uuid.New(),
		Kind:     studio.KindPortfolio,
		Title:    "Joanna & Darek",
		Slug:     slug,
		Date:     "2024-06-15",
		Revision: uuid.NewString(),
		Portfolio: &studio.Portfolio{
			Category: studio.CategoryWeddingReport,
			Location: "Siedlce",
			Images: studio.Collection{
				{Key: "a1", AssetRef: "image-aaa-10x10-jpg"},
				{Key: "b2", AssetRef: "image-bbb-10x10-png"},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewReport returns a valid report document that has not been stored.
func NewReport(slug string) *studio.Document {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &studio.Document{
		ID:       uuid.New(),
		Kind:     studio.KindReport,
		Title:    "Anna & Tomek",
		Slug:     slug,
		Date:     "2023-09-02",
		Revision: uuid.NewString(),
		Report: &studio.Report{
			Venue:  "Dworek pod Lipami",
			Story:  "Piękny *dzień*.",
			Images: studio.Collection{{Key: "c3", AssetRef: "image-ccc-10x10-jpg", Caption: "Pierwszy taniec"}},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Run exercises newRepo against the shared repository contract.
func Run(t *testing.T, newRepo func(t *testing.T) studio.Repository) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		repo := newRepo(t)
		doc := NewPortfolio("joanna-darek")
		require.NoError(t, repo.CreateDocument(ctx, doc))

		got, err := repo.GetDocument(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, doc.Title, got.Title)
		assert.Equal(t, doc.Revision, got.Revision)
		assert.Equal(t, doc.Date, got.Date)
		require.NotNil(t, got.Portfolio)
		assert.Equal(t, doc.Portfolio.Images, got.Portfolio.Images)
		assert.Equal(t, studio.CategoryWeddingReport, got.Portfolio.Category)
	})

	t.Run("ReturnedCopiesAreIndependent", func(t *testing.T) {
		repo := newRepo(t)
		doc := NewPortfolio("copy-check")
		require.NoError(t, repo.CreateDocument(ctx, doc))
		doc.Portfolio.Images[0].Key = "mutated"

		got, err := repo.GetDocument(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "a1", got.Portfolio.Images[0].Key)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetDocument(ctx, uuid.New())
		assert.ErrorIs(t, err, studio.ErrDocumentNotFound)

		_, err = repo.GetDocumentBySlug(ctx, studio.KindReport, "missing")
		assert.ErrorIs(t, err, studio.ErrDocumentNotFound)
	})

	t.Run("GetBySlugIsScopedByKind", func(t *testing.T) {
		repo := newRepo(t)
		p := NewPortfolio("same-slug")
		r := NewReport("same-slug")
		require.NoError(t, repo.CreateDocument(ctx, p))
		require.NoError(t, repo.CreateDocument(ctx, r))

		got, err := repo.GetDocumentBySlug(ctx, studio.KindReport, "same-slug")
		require.NoError(t, err)
		assert.Equal(t, r.ID, got.ID)
		require.NotNil(t, got.Report)
		assert.Equal(t, "Pierwszy taniec", got.Report.Images[0].Caption)
	})

	t.Run("DuplicateSlugRejected", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.CreateDocument(ctx, NewPortfolio("dup")))
		err := repo.CreateDocument(ctx, NewPortfolio("dup"))
		assert.ErrorIs(t, err, studio.ErrDuplicateSlug)
	})

	t.Run("ListFiltersByKind", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.CreateDocument(ctx, NewPortfolio("p1")))
		require.NoError(t, repo.CreateDocument(ctx, NewPortfolio("p2")))
		require.NoError(t, repo.CreateDocument(ctx, NewReport("r1")))

		all, err := repo.ListDocuments(ctx, studio.DocumentFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		reports, err := repo.ListDocuments(ctx, studio.DocumentFilter{Kind: studio.KindReport})
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, "r1", reports[0].Slug)
	})

	t.Run("UpdateComparesRevision", func(t *testing.T) {
		repo := newRepo(t)
		doc := NewPortfolio("cas")
		require.NoError(t, repo.CreateDocument(ctx, doc))
		original := doc.Revision

		next := doc.Clone()
		next.Portfolio.Images = studio.Collection{{Key: "z9", AssetRef: "image-zzz-1x1-gif"}}
		next.Revision = uuid.NewString()
		require.NoError(t, repo.UpdateDocument(ctx, next, original))

		stale := doc.Clone()
		stale.Revision = uuid.NewString()
		err := repo.UpdateDocument(ctx, stale, original)
		assert.ErrorIs(t, err, studio.ErrRevisionMismatch)

		got, err := repo.GetDocument(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, next.Revision, got.Revision)
		assert.Equal(t, next.Portfolio.Images, got.Portfolio.Images)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.UpdateDocument(ctx, NewPortfolio("ghost"), "x")
		assert.ErrorIs(t, err, studio.ErrDocumentNotFound)
	})

	t.Run("ConcurrentUpdatesOnlyOneWins", func(t *testing.T) {
		repo := newRepo(t)
		doc := NewPortfolio("race")
		require.NoError(t, repo.CreateDocument(ctx, doc))

		const writers = 8
		var wg sync.WaitGroup
		errs := make([]error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				next := doc.Clone()
				next.Revision = uuid.NewString()
				errs[i] = repo.UpdateDocument(ctx, next, doc.Revision)
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, studio.ErrRevisionMismatch)
		}
		assert.Equal(t, 1, wins)
	})

	t.Run("SoftDelete", func(t *testing.T) {
		repo := newRepo(t)
		doc := NewReport("gone")
		require.NoError(t, repo.CreateDocument(ctx, doc))
		require.NoError(t, repo.DeleteDocument(ctx, doc.ID))

		_, err := repo.GetDocument(ctx, doc.ID)
		assert.ErrorIs(t, err, studio.ErrDocumentNotFound)
		assert.ErrorIs(t, repo.DeleteDocument(ctx, doc.ID), studio.ErrDocumentNotFound)

		live, err := repo.ListDocuments(ctx, studio.DocumentFilter{})
		require.NoError(t, err)
		assert.Empty(t, live)

		withDeleted, err := repo.ListDocuments(ctx, studio.DocumentFilter{IncludeDeleted: true})
		require.NoError(t, err)
		require.Len(t, withDeleted, 1)
		assert.NotNil(t, withDeleted[0].DeletedAt)

		// The slug is free again once the holder is deleted.
		require.NoError(t, repo.CreateDocument(ctx, NewReport("gone")))
	})

	t.Run("Assets", func(t *testing.T) {
		repo := newRepo(t)
		asset := &studio.Asset{
			Ref:            "image-abc-640x480-jpg",
			FileName:       "IMG_0001.jpg",
			MimeType:       "image/jpeg",
			Size:           1234,
			Width:          640,
			Height:         480,
			Checksum:       "abc",
			ObjectKey:      "images/objects/ab/c.jpg",
			StorageBackend: "memory",
			CreatedAt:      time.Now().UTC().Truncate(time.Millisecond),
		}
		require.NoError(t, repo.CreateAsset(ctx, asset))
		// Re-recording the same content is not an error.
		require.NoError(t, repo.CreateAsset(ctx, asset))

		got, err := repo.GetAsset(ctx, asset.Ref)
		require.NoError(t, err)
		assert.Equal(t, asset.ObjectKey, got.ObjectKey)
		assert.Equal(t, asset.Width, got.Width)
		assert.Equal(t, asset.StorageBackend, got.StorageBackend)

		_, err = repo.GetAsset(ctx, "image-missing-1x1-png")
		assert.ErrorIs(t, err, studio.ErrAssetNotFound)
	})
}
