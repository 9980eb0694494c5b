package bulkupload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fiodorowphotography/studio/pkg/studio"
	"github.com/fiodorowphotography/studio/pkg/studio/repo/memory"
	memorystorage "github.com/fiodorowphotography/studio/pkg/studio/storage/memory"
)

func setupService(t *testing.T) studio.Service {
	t.Helper()
	svc, err := studio.New(
		studio.WithRepository(memory.New()),
		studio.WithBlobStore("memory", memorystorage.New()),
	)
	require.NoError(t, err)
	return svc
}

func createPortfolio(t *testing.T, svc studio.Service, slug string, images studio.Collection) *studio.Document {
	t.Helper()
	doc, err := svc.CreateDocument(context.Background(), studio.CreateDocumentRequest{
		Kind:      studio.KindPortfolio,
		Title:     "Joanna i Darek",
		Slug:      slug,
		Portfolio: &studio.Portfolio{Category: studio.CategoryWeddingReport, Images: images},
	})
	require.NoError(t, err)
	return doc
}

func writePNG(t *testing.T, dir, name string, shade uint8) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{B: shade, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0644))
}

func sequentialKeys() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("key%09d", n)
	}
}

func TestScanFolder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.webp", "A.JPG", "b.jpeg", "notes.txt", "raw.cr2", "d.gif", "e.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jpg"), 0755))

	files, err := ScanFolder(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{"A.JPG", "b.jpeg", "c.webp", "d.gif", "e.png"}, names)

	_, err = ScanFolder(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "image/jpeg", MimeType("IMG_001.JPG"))
	assert.Equal(t, "image/webp", MimeType("a.webp"))
	assert.Equal(t, "", MimeType("a.heic"))
}

func TestRun_AppendsInNameOrder(t *testing.T) {
	svc := setupService(t)
	existing := studio.Collection{{Key: "existing0001", AssetRef: "image-abc-1x1-png"}}
	doc := createPortfolio(t, svc, "joanna-darek", existing)

	dir := t.TempDir()
	writePNG(t, dir, "02.png", 2)
	writePNG(t, dir, "01.png", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("skip me"), 0644))

	var out bytes.Buffer
	report, err := NewRunner(svc, WithOutput(&out), WithKeyFunc(sequentialKeys())).Run(context.Background(), "joanna-darek", dir)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Found)
	require.Len(t, report.Uploaded, 2)
	assert.Equal(t, "01.png", report.Uploaded[0].File)
	assert.Equal(t, "02.png", report.Uploaded[1].File)
	assert.Empty(t, report.Failed)

	stored, err := svc.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"existing0001", "key000000001", "key000000002"}, studio.Keys(stored.Images()))
	assert.Equal(t, stored.Revision, report.Revision)
	assert.Contains(t, out.String(), "Done! Added 2 images")
}

func TestRun_SkipsFailedFiles(t *testing.T) {
	svc := setupService(t)
	doc := createPortfolio(t, svc, "sesja", nil)

	dir := t.TempDir()
	writePNG(t, dir, "a.png", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), []byte("not really a png"), 0644))
	writePNG(t, dir, "c.png", 3)

	report, err := NewRunner(svc, WithOutput(&bytes.Buffer{})).Run(context.Background(), "sesja", dir)
	assert.ErrorIs(t, err, ErrUploadsFailed)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "b.png", report.Failed[0].File)

	stored, err := svc.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Len(t, stored.Images(), 2)
	assert.Equal(t, report.Uploaded[0].AssetRef, stored.Images()[0].AssetRef)
	assert.Equal(t, report.Uploaded[1].AssetRef, stored.Images()[1].AssetRef)
}

func TestRun_AllFailedWritesNothing(t *testing.T) {
	svc := setupService(t)
	doc := createPortfolio(t, svc, "pusto", nil)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("broken"), 0644))

	report, err := NewRunner(svc, WithOutput(&bytes.Buffer{})).Run(context.Background(), "pusto", dir)
	assert.ErrorIs(t, err, ErrUploadsFailed)
	assert.Empty(t, report.Revision)

	stored, err := svc.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Revision, stored.Revision)
}

func TestRun_PortfolioNotFound(t *testing.T) {
	svc := setupService(t)
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 1)

	_, err := NewRunner(svc, WithOutput(&bytes.Buffer{})).Run(context.Background(), "brak", dir)
	assert.ErrorIs(t, err, studio.ErrDocumentNotFound)
}

func TestRun_EmptyFolder(t *testing.T) {
	svc := setupService(t)
	report, err := NewRunner(svc, WithOutput(&bytes.Buffer{})).Run(context.Background(), "anything", t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, report.Found)
}

// racingStore changes the gallery behind the runner's back on the first upload.
type racingStore struct {
	studio.Service
	once sync.Once
	doc  *studio.Document
}

func (s *racingStore) UploadAsset(ctx context.Context, req studio.UploadAssetRequest) (*studio.Asset, error) {
	s.once.Do(func() {
		_, err := s.Service.ReplaceField(ctx, studio.ReplaceFieldRequest{
			DocumentID: s.doc.ID,
			Field:      studio.FieldImages,
			Images:     studio.Collection{{Key: "fromstudio01", AssetRef: "image-fff-2x2-png"}},
		})
		if err != nil {
			panic(err)
		}
	})
	return s.Service.UploadAsset(ctx, req)
}

func TestRun_ConcurrentEditIsDetected(t *testing.T) {
	svc := setupService(t)
	doc := createPortfolio(t, svc, "wyscig", nil)
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 1)

	_, err := NewRunner(&racingStore{Service: svc, doc: doc}, WithOutput(&bytes.Buffer{})).Run(context.Background(), "wyscig", dir)
	assert.ErrorIs(t, err, studio.ErrRevisionMismatch)

	stored, err := svc.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"fromstudio01"}, studio.Keys(stored.Images()))
}

func TestReportWriteYAML(t *testing.T) {
	report := &Report{
		Slug:     "sesja",
		Folder:   "/photos",
		Found:    2,
		Uploaded: []UploadedFile{{File: "a.png", Key: "k1", AssetRef: "image-a-1x1-png"}},
		Failed:   []FailedFile{{File: "b.png", Error: "unsupported media type"}},
	}
	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, report.WriteYAML(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Report
	require.NoError(t, yaml.Unmarshal(raw, &got))
	assert.Equal(t, report.Uploaded, got.Uploaded)
	assert.Equal(t, report.Failed, got.Failed)
}
