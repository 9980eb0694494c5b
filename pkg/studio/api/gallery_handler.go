package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/fiodorowphotography/studio/pkg/studio"
	"github.com/fiodorowphotography/studio/pkg/studio/imageurl"
)

// maxIdleEditors bounds how many idle editors are cached.
const maxIdleEditors = 128

type editorKey struct {
	documentID uuid.UUID
	field      string
}

// GalleryHandler exposes one long-lived collection editor per document
// field, so progress of a running batch can be polled.
type GalleryHandler struct {
	store  studio.ContentStore
	images *imageurl.Builder
	logger *slog.Logger

	mu      sync.Mutex
	editors map[editorKey]*studio.Editor
}

// NewGalleryHandler creates a GalleryHandler.
func NewGalleryHandler(store studio.ContentStore, images *imageurl.Builder, logger *slog.Logger) *GalleryHandler {
	if images == nil {
		images = imageurl.New("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GalleryHandler{
		store:   store,
		images:  images,
		logger:  logger,
		editors: make(map[editorKey]*studio.Editor),
	}
}

// Routes registers the gallery endpoints.
func (h *GalleryHandler) Routes(r chi.Router) {
	r.Route("/documents/{id}/gallery/{field}", func(r chi.Router) {
		r.Get("/", h.GetGallery)
		r.Get("/progress", h.GetProgress)
		r.Post("/images", h.AddImages)
		r.Post("/reorder", h.Reorder)
		r.Delete("/images/{index}", h.DeleteImage)
	})
}

// GalleryImage is one entry of the collection with its thumbnail.
type GalleryImage struct {
	studio.ImageReference
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// GalleryResponse is the editor state.
type GalleryResponse struct {
	DocumentID uuid.UUID       `json:"document_id"`
	Field      string          `json:"field"`
	Revision   string          `json:"revision"`
	Images     []GalleryImage  `json:"images"`
	Progress   studio.Progress `json:"progress"`
	Uploading  bool            `json:"uploading"`
}

// FailedUpload names a file whose upload failed.
type FailedUpload struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

// AddImagesResponse is the editor state after an Add batch.
type AddImagesResponse struct {
	GalleryResponse
	Added   studio.Collection `json:"added"`
	Failed  []FailedUpload    `json:"failed"`
	Skipped []string          `json:"skipped"`
}

// ReorderRequest moves the image at Source to Target.
type ReorderRequest struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// ProgressResponse reports the running batch.
type ProgressResponse struct {
	studio.Progress
	Uploading bool `json:"uploading"`
}

// GetGallery reloads the field from the store and returns it.
func (h *GalleryHandler) GetGallery(w http.ResponseWriter, r *http.Request) {
	ed, ok := h.editor(w, r)
	if !ok {
		return
	}
	if err := ed.Refresh(r.Context()); err != nil {
		writeError(w, r, err, "Failed to refresh gallery")
		return
	}
	render.JSON(w, r, h.state(ed))
}

// GetProgress returns the progress of the running batch, if any.
func (h *GalleryHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	key, ok := parseEditorKey(w, r)
	if !ok {
		return
	}
	h.mu.Lock()
	ed := h.editors[key]
	h.mu.Unlock()

	var resp ProgressResponse
	if ed != nil {
		resp.Progress = ed.Progress()
		resp.Uploading = ed.Uploading()
	}
	render.JSON(w, r, resp)
}

// AddImages uploads the "files" parts of a multipart body and appends them.
func (h *GalleryHandler) AddImages(w http.ResponseWriter, r *http.Request) {
	ed, ok := h.editor(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		badRequest(w, r, "Invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files, closeAll, err := openParts(r.MultipartForm.File["files"])
	defer closeAll()
	if err != nil {
		writeError(w, r, err, "Failed to open uploaded file")
		return
	}

	// A client that hangs up mid-batch still gets its finished uploads saved.
	result, err := ed.Add(context.WithoutCancel(r.Context()), files)
	if err != nil {
		h.refreshAfterConflict(r, ed, err)
		writeError(w, r, err, "Failed to save gallery")
		return
	}

	resp := AddImagesResponse{
		GalleryResponse: h.state(ed),
		Added:           result.Added,
		Failed:          []FailedUpload{},
		Skipped:         result.Skipped,
	}
	if resp.Skipped == nil {
		resp.Skipped = []string{}
	}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, FailedUpload{FileName: f.FileName, Error: f.Err.Error()})
	}
	render.JSON(w, r, resp)
}

// Reorder moves one image.
func (h *GalleryHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	ed, ok := h.editor(w, r)
	if !ok {
		return
	}
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request", "error", err)
		badRequest(w, r, "Invalid request body")
		return
	}
	if err := ed.Reorder(r.Context(), req.Source, req.Target); err != nil {
		h.refreshAfterConflict(r, ed, err)
		writeError(w, r, err, "Failed to reorder gallery")
		return
	}
	render.JSON(w, r, h.state(ed))
}

// DeleteImage removes the image at {index}.
func (h *GalleryHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	ed, ok := h.editor(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		badRequest(w, r, "Invalid index")
		return
	}
	if err := ed.Delete(r.Context(), index); err != nil {
		h.refreshAfterConflict(r, ed, err)
		writeError(w, r, err, "Failed to delete image")
		return
	}
	render.JSON(w, r, h.state(ed))
}

// editor returns the cached editor for the request's document field,
// creating it on first use.
func (h *GalleryHandler) editor(w http.ResponseWriter, r *http.Request) (*studio.Editor, bool) {
	key, ok := parseEditorKey(w, r)
	if !ok {
		return nil, false
	}

	h.mu.Lock()
	ed := h.editors[key]
	h.mu.Unlock()
	if ed != nil {
		return ed, true
	}

	ed, err := studio.NewEditor(r.Context(), h.store, key.documentID, key.field, studio.WithEditorLogger(h.logger))
	if err != nil {
		writeError(w, r, err, "Failed to open gallery")
		return nil, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if existing := h.editors[key]; existing != nil {
		return existing, true
	}
	if len(h.editors) >= maxIdleEditors {
		h.evictIdleLocked(func(editorKey) bool { return true })
	}
	h.editors[key] = ed
	return ed, true
}

// Forget drops the cached editors of a document that was changed or deleted
// outside the gallery routes. Editors with a batch in flight are kept; their
// final write is revision-checked.
func (h *GalleryHandler) Forget(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.evictIdleLocked(func(k editorKey) bool { return k.documentID == id })
}

func (h *GalleryHandler) evictIdleLocked(match func(editorKey) bool) {
	for k, ed := range h.editors {
		if match(k) && !ed.Uploading() {
			delete(h.editors, k)
		}
	}
}

// refreshAfterConflict reloads a stale editor so the next call starts from
// the stored state.
func (h *GalleryHandler) refreshAfterConflict(r *http.Request, ed *studio.Editor, err error) {
	if !errors.Is(err, studio.ErrRevisionMismatch) {
		return
	}
	if rerr := ed.Refresh(r.Context()); rerr != nil {
		h.logger.Error("Failed to refresh gallery after conflict", "document_id", ed.DocumentID(), "error", rerr)
	}
}

func (h *GalleryHandler) state(ed *studio.Editor) GalleryResponse {
	images := ed.Collection()
	resp := GalleryResponse{
		DocumentID: ed.DocumentID(),
		Field:      ed.Field(),
		Revision:   ed.Revision(),
		Images:     make([]GalleryImage, 0, len(images)),
		Progress:   ed.Progress(),
		Uploading:  ed.Uploading(),
	}
	for _, img := range images {
		thumb, _ := h.images.Thumbnail(img.AssetRef)
		resp.Images = append(resp.Images, GalleryImage{ImageReference: img, ThumbnailURL: thumb})
	}
	return resp
}

func parseEditorKey(w http.ResponseWriter, r *http.Request) (editorKey, bool) {
	id, ok := documentID(w, r)
	if !ok {
		return editorKey{}, false
	}
	field := chi.URLParam(r, "field")
	if err := studio.CheckField(field); err != nil {
		badRequest(w, r, err.Error())
		return editorKey{}, false
	}
	return editorKey{documentID: id, field: field}, true
}

// openParts opens every multipart file. The returned func closes whatever
// was opened, also on error.
func openParts(headers []*multipart.FileHeader) ([]studio.File, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	files := make([]studio.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, err
		}
		opened = append(opened, f)
		files = append(files, studio.File{
			Name:     fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Body:     f,
		})
	}
	return files, closeAll, nil
}
