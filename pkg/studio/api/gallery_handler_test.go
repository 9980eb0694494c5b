package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiodorowphotography/studio/pkg/studio"
)

func (s *testServer) addImages(path string, parts ...part) *httptest.ResponseRecorder {
	body, contentType := multipartBody(s.t, parts...)
	req := httptest.NewRequest(http.MethodPost, path+"/images", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.token)
	return s.do(req)
}

func galleryPath(doc *studio.Document) string {
	return "/api/v1/documents/" + doc.ID.String() + "/gallery/images"
}

func TestGalleryHandler_AddReorderDelete(t *testing.T) {
	s := setupTestServer(t)
	doc := s.createPortfolio("Plener", nil, false)
	path := galleryPath(doc)

	w := s.addImages(path,
		part{field: "files", name: "img1.jpg", mimeType: "image/png", body: pngBytes(t, 4, 4, 1)},
		part{field: "files", name: "notes.txt", mimeType: "text/plain", body: []byte("hello")},
		part{field: "files", name: "img2.png", mimeType: "image/png", body: pngBytes(t, 4, 4, 2)},
		part{field: "files", name: "img3.png", mimeType: "image/png", body: pngBytes(t, 4, 4, 3)},
	)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var added AddImagesResponse
	decode(t, w, &added)
	require.Len(t, added.Images, 3)
	assert.Len(t, added.Added, 3)
	assert.Empty(t, added.Failed)
	assert.Equal(t, []string{"notes.txt"}, added.Skipped)
	assert.Equal(t, studio.Progress{}, added.Progress)
	assert.False(t, added.Uploading)
	assert.Contains(t, added.Images[0].ThumbnailURL, "fit=crop&h=150&w=150")

	a, b, c := added.Images[0].Key, added.Images[1].Key, added.Images[2].Key

	w = s.authed(http.MethodPost, path+"/reorder", ReorderRequest{Source: 0, Target: 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var state GalleryResponse
	decode(t, w, &state)
	assert.Equal(t, []string{b, c, a}, imageKeys(state))

	w = s.authed(http.MethodDelete, path+"/images/1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &state)
	assert.Equal(t, []string{b, a}, imageKeys(state))

	stored, err := s.service.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b, a}, studio.Keys(stored.Images()))
	assert.Equal(t, stored.Revision, state.Revision)
}

func TestGalleryHandler_ConflictRefreshesEditor(t *testing.T) {
	s := setupTestServer(t)
	doc := s.createPortfolio("Konflikt", nil, false)
	path := galleryPath(doc)

	w := s.addImages(path,
		part{field: "files", name: "a.png", mimeType: "image/png", body: pngBytes(t, 2, 2, 1)},
		part{field: "files", name: "b.png", mimeType: "image/png", body: pngBytes(t, 2, 2, 2)},
	)
	require.Equal(t, http.StatusOK, w.Code)

	// Another writer replaces the field behind the editor's back.
	current, err := s.service.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	_, err = s.service.ReplaceField(context.Background(), studio.ReplaceFieldRequest{
		DocumentID: doc.ID,
		Field:      studio.FieldImages,
		Images:     current.Images()[:1],
	})
	require.NoError(t, err)

	w = s.authed(http.MethodDelete, path+"/images/0", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.authed(http.MethodDelete, path+"/images/0", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var state GalleryResponse
	decode(t, w, &state)
	assert.Empty(t, state.Images)
}

func TestGalleryHandler_DocumentUpdateDropsCachedEditor(t *testing.T) {
	s := setupTestServer(t)
	doc := s.createPortfolio("Przed zmianą", nil, false)
	path := galleryPath(doc)

	w := s.addImages(path,
		part{field: "files", name: "a.png", mimeType: "image/png", body: pngBytes(t, 2, 2, 1)},
		part{field: "files", name: "b.png", mimeType: "image/png", body: pngBytes(t, 2, 2, 2)},
	)
	require.Equal(t, http.StatusOK, w.Code)
	var added AddImagesResponse
	decode(t, w, &added)
	a, b := added.Images[0].Key, added.Images[1].Key

	w = s.authed(http.MethodPut, "/api/v1/documents/"+doc.ID.String(), DocumentRequest{
		Title:     "Po zmianie",
		Date:      "2024-06-01",
		Portfolio: &studio.Portfolio{Category: studio.CategoryEngagement},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.authed(http.MethodPost, path+"/reorder", ReorderRequest{Source: 0, Target: 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var state GalleryResponse
	decode(t, w, &state)
	assert.Equal(t, []string{b, a}, imageKeys(state))
}

func TestGalleryHandler_EditorCacheIsBounded(t *testing.T) {
	s := setupTestServer(t)
	h := NewGalleryHandler(s.service, nil, nil)
	router := chi.NewRouter()
	h.Routes(router)

	first := s.createPortfolio("Pierwsza", nil, false)
	require.Equal(t, http.StatusOK, serve(router, http.MethodGet, galleryPath(first)).Code)
	assert.Len(t, h.editors, 1)

	h.Forget(first.ID)
	assert.Empty(t, h.editors)

	for i := 0; i <= maxIdleEditors; i++ {
		doc := s.createPortfolio("Sesja "+strconv.Itoa(i), nil, false)
		require.Equal(t, http.StatusOK, serve(router, http.MethodGet, galleryPath(doc)).Code)
	}
	assert.LessOrEqual(t, len(h.editors), maxIdleEditors)
}

func serve(router http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestGalleryHandler_Errors(t *testing.T) {
	s := setupTestServer(t)
	doc := s.createPortfolio("Błędy", nil, false)
	path := galleryPath(doc)

	assert.Equal(t, http.StatusBadRequest, s.authed(http.MethodGet, "/api/v1/documents/"+doc.ID.String()+"/gallery/cover", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.authed(http.MethodGet, "/api/v1/documents/00000000-0000-0000-0000-000000000001/gallery/images", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.authed(http.MethodDelete, path+"/images/5", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.authed(http.MethodDelete, path+"/images/x", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.authed(http.MethodPost, path+"/reorder", ReorderRequest{Source: 0, Target: 1}).Code)
}

func TestGalleryHandler_GetAndProgress(t *testing.T) {
	s := setupTestServer(t)
	doc := s.createPortfolio("Stan", nil, false)
	path := galleryPath(doc)

	w := s.authed(http.MethodGet, path+"/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var progress ProgressResponse
	decode(t, w, &progress)
	assert.Equal(t, ProgressResponse{}, progress)

	w = s.authed(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var state GalleryResponse
	decode(t, w, &state)
	assert.Equal(t, doc.ID, state.DocumentID)
	assert.Equal(t, studio.FieldImages, state.Field)
	assert.Equal(t, doc.Revision, state.Revision)
	assert.Empty(t, state.Images)
}

func imageKeys(state GalleryResponse) []string {
	keys := make([]string, 0, len(state.Images))
	for _, img := range state.Images {
		keys = append(keys, img.Key)
	}
	return keys
}
