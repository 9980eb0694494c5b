package config

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiodorowphotography/studio/pkg/studio"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, DatabaseMemory, cfg.DatabaseType)
	assert.Equal(t, "memory", cfg.DefaultStorageBackend)
	assert.Equal(t, studio.DefaultMaxUploadBytes, cfg.MaxUploadBytes)
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	cfg := defaults()
	cfg.DatabaseType = DatabasePostgres
	assert.Error(t, cfg.Validate())

	cfg.DatabaseType = "mysql"
	assert.Error(t, cfg.Validate())
}

func TestBuildServiceMemory(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	svc, err := cfg.BuildService(context.Background(), nil)
	require.NoError(t, err)
	defer cfg.Close()

	exerciseService(t, svc)
}

func TestBuildServiceSQLiteAndFilesystem(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(
		WithDatabaseURL("sqlite://"+filepath.Join(dir, "studio.db")),
		WithStorageURL("file://"+filepath.Join(dir, "blobs")),
		WithObjectKeyGenerator("flat"),
	)
	require.NoError(t, err)

	svc, err := cfg.BuildService(context.Background(), nil)
	require.NoError(t, err)
	defer cfg.Close()

	exerciseService(t, svc)

	_, err = svc.GetBackend("fs")
	assert.NoError(t, err)
}

func exerciseService(t *testing.T, svc studio.Service) {
	t.Helper()
	ctx := context.Background()

	doc, err := svc.CreateDocument(ctx, studio.CreateDocumentRequest{
		Kind:      studio.KindPortfolio,
		Title:     "Anna i Piotr",
		Portfolio: &studio.Portfolio{Category: studio.CategoryWeddingReport},
	})
	require.NoError(t, err)
	assert.Equal(t, "anna-i-piotr", doc.Slug)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 3))))
	payload := buf.Bytes()

	asset, err := svc.UploadAsset(ctx, studio.UploadAssetRequest{
		FileName: "a.png",
		MimeType: "image/png",
		Body:     bytes.NewReader(payload),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, asset.Width)
	assert.Equal(t, 3, asset.Height)

	rc, _, err := svc.DownloadAsset(ctx, asset.Ref)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	updated, err := svc.ReplaceField(ctx, studio.ReplaceFieldRequest{
		DocumentID: doc.ID,
		Field:      studio.FieldImages,
		Images:     studio.Collection{{Key: "k1", AssetRef: asset.Ref}},
		IfRevision: doc.Revision,
	})
	require.NoError(t, err)
	assert.Len(t, updated.Images(), 1)
}
