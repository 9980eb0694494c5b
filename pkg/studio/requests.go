package studio

import (
	"io"

	"github.com/google/uuid"
)

// CreateDocumentRequest contains parameters for creating a document. Slug is
// derived from Title when empty.
type CreateDocumentRequest struct {
	Kind      DocumentKind
	Title     string
	Slug      string
	Date      string
	Portfolio *Portfolio
	Report    *Report
}

// UpdateDocumentRequest replaces the scalar fields of a document. Image
// collections are left untouched; use ReplaceField for those.
type UpdateDocumentRequest struct {
	ID         uuid.UUID
	Title      string
	Slug       string
	Date       string
	Portfolio  *Portfolio
	Report     *Report
	IfRevision string
}

// ListDocumentsRequest contains parameters for listing documents
type ListDocumentsRequest struct {
	Kind         DocumentKind
	FeaturedOnly bool
	SortBy       SortBy
	Limit        int
}

// ReplaceFieldRequest overwrites a whole collection field. An empty
// IfRevision skips the revision check.
type ReplaceFieldRequest struct {
	DocumentID uuid.UUID
	Field      string
	Images     Collection
	IfRevision string
}

// UploadAssetRequest contains the raw bytes of an image upload
type UploadAssetRequest struct {
	FileName string
	MimeType string
	Body     io.Reader
}
