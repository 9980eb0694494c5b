package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/fiodorowphotography/studio/pkg/studio"
	"github.com/fiodorowphotography/studio/pkg/studio/imageurl"
	"github.com/fiodorowphotography/studio/pkg/studio/richtext"
)

// DocumentsHandler serves portfolio and report documents.
type DocumentsHandler struct {
	service studio.Service
	images  *imageurl.Builder
	changed func(id uuid.UUID)
}

// NewDocumentsHandler creates a DocumentsHandler. images may be nil, in
// which case image URLs are root-relative.
func NewDocumentsHandler(service studio.Service, images *imageurl.Builder) *DocumentsHandler {
	if images == nil {
		images = imageurl.New("")
	}
	return &DocumentsHandler{service: service, images: images, changed: func(uuid.UUID) {}}
}

// OnChange registers fn to run after a document is updated, deleted or has
// a field replaced through this handler.
func (h *DocumentsHandler) OnChange(fn func(id uuid.UUID)) {
	h.changed = fn
}

// PublicRoutes registers the read-only endpoints.
func (h *DocumentsHandler) PublicRoutes(r chi.Router) {
	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/lookup", h.LookupDocument)
	r.Get("/documents/{id}", h.GetDocument)
	r.Get("/categories", h.ListCategories)
}

// ProtectedRoutes registers the write endpoints.
func (h *DocumentsHandler) ProtectedRoutes(r chi.Router) {
	r.Post("/documents", h.CreateDocument)
	r.Put("/documents/{id}", h.UpdateDocument)
	r.Delete("/documents/{id}", h.DeleteDocument)
	r.Put("/documents/{id}/fields/{field}", h.ReplaceField)
}

// DocumentResponse is a document with the URLs and rendered text a page needs.
type DocumentResponse struct {
	*studio.Document
	CoverImageURL string   `json:"cover_image_url,omitempty"`
	ImageURLs     []string `json:"image_urls,omitempty"`
	StoryHTML     string   `json:"story_html,omitempty"`
}

// DocumentRequest is the body of create and update calls.
type DocumentRequest struct {
	Kind       studio.DocumentKind `json:"kind"`
	Title      string              `json:"title"`
	Slug       string              `json:"slug,omitempty"`
	Date       string              `json:"date,omitempty"`
	Portfolio  *studio.Portfolio   `json:"portfolio,omitempty"`
	Report     *studio.Report      `json:"report,omitempty"`
	IfRevision string              `json:"if_revision,omitempty"`
}

// ReplaceFieldRequest is the body of a full collection replacement.
type ReplaceFieldRequest struct {
	Images     studio.Collection `json:"images"`
	IfRevision string            `json:"if_revision,omitempty"`
}

// CategoryResponse is one portfolio category.
type CategoryResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ListDocuments lists documents of one kind.
func (h *DocumentsHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := studio.ListDocumentsRequest{
		Kind:   studio.DocumentKind(q.Get("kind")),
		SortBy: studio.SortBy(q.Get("sort")),
	}
	if req.Kind != "" && !req.Kind.IsValid() {
		badRequest(w, r, "Invalid kind")
		return
	}
	switch req.SortBy {
	case "", studio.SortByOrder, studio.SortByDate:
	default:
		badRequest(w, r, "Invalid sort, use 'order' or 'date'")
		return
	}
	if v := q.Get("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(w, r, "Invalid featured flag")
			return
		}
		req.FeaturedOnly = featured
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			badRequest(w, r, "Invalid limit")
			return
		}
		req.Limit = limit
	}

	docs, err := h.service.ListDocuments(r.Context(), req)
	if err != nil {
		writeError(w, r, err, "Failed to list documents")
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, h.toResponse(doc))
	}
	render.JSON(w, r, resp)
}

// LookupDocument finds a document by kind and slug.
func (h *DocumentsHandler) LookupDocument(w http.ResponseWriter, r *http.Request) {
	kind := studio.DocumentKind(r.URL.Query().Get("kind"))
	slug := r.URL.Query().Get("slug")
	if !kind.IsValid() || slug == "" {
		badRequest(w, r, "kind and slug are required")
		return
	}

	doc, err := h.service.GetDocumentBySlug(r.Context(), kind, slug)
	if err != nil {
		writeError(w, r, err, "Failed to look up document")
		return
	}
	render.JSON(w, r, h.toResponse(doc))
}

// GetDocument returns a document by ID.
func (h *DocumentsHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.GetDocument(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to get document")
		return
	}
	render.JSON(w, r, h.toResponse(doc))
}

// ListCategories returns the portfolio categories with their labels.
func (h *DocumentsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	resp := make([]CategoryResponse, 0, len(studio.Categories()))
	for _, c := range studio.Categories() {
		resp = append(resp, CategoryResponse{Value: string(c), Label: c.Label()})
	}
	render.JSON(w, r, resp)
}

// CreateDocument creates a document.
func (h *DocumentsHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request", "error", err)
		badRequest(w, r, "Invalid request body")
		return
	}

	doc, err := h.service.CreateDocument(r.Context(), studio.CreateDocumentRequest{
		Kind:      req.Kind,
		Title:     req.Title,
		Slug:      req.Slug,
		Date:      req.Date,
		Portfolio: req.Portfolio,
		Report:    req.Report,
	})
	if err != nil {
		writeError(w, r, err, "Failed to create document")
		return
	}

	slog.Info("Document created", "id", doc.ID, "kind", doc.Kind, "slug", doc.Slug)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, h.toResponse(doc))
}

// UpdateDocument replaces the scalar fields of a document.
func (h *DocumentsHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}
	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request", "error", err)
		badRequest(w, r, "Invalid request body")
		return
	}

	doc, err := h.service.UpdateDocument(r.Context(), studio.UpdateDocumentRequest{
		ID:         id,
		Title:      req.Title,
		Slug:       req.Slug,
		Date:       req.Date,
		Portfolio:  req.Portfolio,
		Report:     req.Report,
		IfRevision: req.IfRevision,
	})
	if err != nil {
		writeError(w, r, err, "Failed to update document")
		return
	}
	h.changed(id)
	render.JSON(w, r, h.toResponse(doc))
}

// DeleteDocument soft-deletes a document.
func (h *DocumentsHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteDocument(r.Context(), id); err != nil {
		writeError(w, r, err, "Failed to delete document")
		return
	}
	h.changed(id)
	w.WriteHeader(http.StatusNoContent)
}

// ReplaceField overwrites a whole image collection.
func (h *DocumentsHandler) ReplaceField(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}
	var req ReplaceFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request", "error", err)
		badRequest(w, r, "Invalid request body")
		return
	}

	doc, err := h.service.ReplaceField(r.Context(), studio.ReplaceFieldRequest{
		DocumentID: id,
		Field:      chi.URLParam(r, "field"),
		Images:     req.Images,
		IfRevision: req.IfRevision,
	})
	if err != nil {
		writeError(w, r, err, "Failed to replace field")
		return
	}
	h.changed(id)
	render.JSON(w, r, h.toResponse(doc))
}

func (h *DocumentsHandler) toResponse(doc *studio.Document) DocumentResponse {
	resp := DocumentResponse{Document: doc}
	if cover := doc.CoverImage(); cover != nil {
		if u, err := h.images.Site(cover.AssetRef); err == nil {
			resp.CoverImageURL = u
		}
	}
	for _, img := range doc.Images() {
		u, err := h.images.Site(img.AssetRef)
		if err != nil {
			slog.Warn("Skipping image with invalid ref", "document_id", doc.ID, "asset_ref", img.AssetRef)
			continue
		}
		resp.ImageURLs = append(resp.ImageURLs, u)
	}
	if doc.Report != nil {
		resp.StoryHTML = richtext.ToHTML(doc.Report.Story)
	}
	return resp
}

func documentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		slog.Error("Invalid document ID", "id", raw, "error", err)
		badRequest(w, r, "Invalid document ID")
		return uuid.Nil, false
	}
	return id, true
}
