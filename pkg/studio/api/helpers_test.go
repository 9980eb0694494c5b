package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/fiodorowphotography/studio/pkg/studio"
	"github.com/fiodorowphotography/studio/pkg/studio/auth"
	"github.com/fiodorowphotography/studio/pkg/studio/mail"
	"github.com/fiodorowphotography/studio/pkg/studio/repo/memory"
	memorystorage "github.com/fiodorowphotography/studio/pkg/studio/storage/memory"
)

const testSecret = "test-secret"

type testServer struct {
	t       *testing.T
	router  *chi.Mux
	service studio.Service
	token   string
}

func setupTestServer(t *testing.T, mutate ...func(*Config)) *testServer {
	t.Helper()
	svc, err := studio.New(
		studio.WithRepository(memory.New()),
		studio.WithBlobStore("memory", memorystorage.New()),
	)
	require.NoError(t, err)

	cfg := Config{
		Service:      svc,
		JWTSecret:    testSecret,
		ImageBaseURL: "https://cdn.example.com",
		SiteURL:      "https://fiodorowphotography.pl",
	}
	for _, m := range mutate {
		m(&cfg)
	}

	router := chi.NewRouter()
	require.NoError(t, Register(router, cfg))

	token, err := auth.IssueWriteToken(testSecret, "test", time.Hour)
	require.NoError(t, err)
	return &testServer{t: t, router: router, service: svc, token: token}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// authed sends an authorized request with an optional JSON body.
func (s *testServer) authed(method, path string, body interface{}) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	return s.do(req)
}

func (s *testServer) createPortfolio(title string, order *int, featured bool) *studio.Document {
	s.t.Helper()
	doc, err := s.service.CreateDocument(context.Background(), studio.CreateDocumentRequest{
		Kind:  studio.KindPortfolio,
		Title: title,
		Date:  "2024-06-01",
		Portfolio: &studio.Portfolio{
			Category: studio.CategoryEngagement,
			Featured: featured,
			Order:    order,
		},
	})
	require.NoError(s.t, err)
	return doc
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func pngBytes(t *testing.T, w, h int, shade uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: shade, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type part struct {
	field, name, mimeType string
	body                  []byte
}

func multipartBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.field, p.name))
		h.Set("Content-Type", p.mimeType)
		pw, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(p.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// fakeMailer records sent messages or fails with err.
type fakeMailer struct {
	sent []mail.ContactMessage
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg mail.ContactMessage) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newJSONRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}
