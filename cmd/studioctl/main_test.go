package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiodorowphotography/studio/pkg/studio"
	"github.com/fiodorowphotography/studio/pkg/studio/api"
	"github.com/fiodorowphotography/studio/pkg/studio/repo/memory"
	memorystorage "github.com/fiodorowphotography/studio/pkg/studio/storage/memory"
)

const testSecret = "studioctl-test-secret"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writePNG(t *testing.T, dir, name string) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 3))))
}

func TestTokenRequiresSecret(t *testing.T) {
	t.Setenv("STUDIO_JWT_SECRET", "")
	_, err := execute(t, "token")
	assert.ErrorContains(t, err, "STUDIO_JWT_SECRET")
}

func TestUploadRequiresEnvironment(t *testing.T) {
	t.Setenv(envAPIURL, "")
	t.Setenv(envWriteToken, "")
	_, err := execute(t, "upload", "slug", t.TempDir())
	assert.ErrorContains(t, err, envAPIURL)

	t.Setenv(envAPIURL, "http://localhost:8080/api/v1")
	_, err = execute(t, "upload", "slug", t.TempDir())
	assert.ErrorContains(t, err, envWriteToken)
}

func TestUploadAgainstServer(t *testing.T) {
	svc, err := studio.New(
		studio.WithRepository(memory.New()),
		studio.WithBlobStore("memory", memorystorage.New()),
	)
	require.NoError(t, err)

	router := chi.NewRouter()
	require.NoError(t, api.Register(router, api.Config{Service: svc, JWTSecret: testSecret}))
	srv := httptest.NewServer(router)
	defer srv.Close()

	doc, err := svc.CreateDocument(context.Background(), studio.CreateDocumentRequest{
		Kind:      studio.KindPortfolio,
		Title:     "Ania i Tomek",
		Portfolio: &studio.Portfolio{Category: studio.CategoryWeddingReport},
	})
	require.NoError(t, err)

	token, err := execute(t, "token", "--secret", testSecret, "--subject", "ci")
	require.NoError(t, err)

	dir := t.TempDir()
	writePNG(t, dir, "b.png")
	writePNG(t, dir, "a.png")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("#"), 0644))
	reportPath := filepath.Join(t.TempDir(), "run.yaml")

	t.Setenv(envAPIURL, srv.URL+"/api/v1")
	t.Setenv(envWriteToken, strings.TrimSpace(token))

	out, err := execute(t, "upload", doc.Slug, dir, "--report", reportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Report written to")

	stored, err := svc.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Images(), 2)

	report, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "a.png")
}

func TestUploadRejectsBadToken(t *testing.T) {
	svc, err := studio.New(
		studio.WithRepository(memory.New()),
		studio.WithBlobStore("memory", memorystorage.New()),
	)
	require.NoError(t, err)

	router := chi.NewRouter()
	require.NoError(t, api.Register(router, api.Config{Service: svc, JWTSecret: testSecret}))
	srv := httptest.NewServer(router)
	defer srv.Close()

	doc, err := svc.CreateDocument(context.Background(), studio.CreateDocumentRequest{
		Kind:      studio.KindPortfolio,
		Title:     "Sesja",
		Portfolio: &studio.Portfolio{Category: studio.CategoryWeddingReport},
	})
	require.NoError(t, err)

	dir := t.TempDir()
	writePNG(t, dir, "a.png")

	t.Setenv(envAPIURL, srv.URL+"/api/v1")
	t.Setenv(envWriteToken, "not-a-token")

	_, err = execute(t, "upload", doc.Slug, dir)
	assert.Error(t, err)
}
