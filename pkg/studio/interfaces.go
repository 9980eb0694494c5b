package studio

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// BlobStore defines the interface for storage backends
type BlobStore interface {
	// Upload uploads content directly
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// UploadWithParams uploads content with additional parameters
	UploadWithParams(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download downloads content directly
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete deletes content
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// Repository defines the interface for document and asset persistence
type Repository interface {
	// Document operations
	CreateDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, id uuid.UUID) (*Document, error)
	GetDocumentBySlug(ctx context.Context, kind DocumentKind, slug string) (*Document, error)
	ListDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)
	// UpdateDocument stores doc only if the stored revision equals
	// expectedRevision; otherwise it returns ErrRevisionMismatch.
	UpdateDocument(ctx context.Context, doc *Document, expectedRevision string) error
	DeleteDocument(ctx context.Context, id uuid.UUID) error

	// Asset operations
	CreateAsset(ctx context.Context, asset *Asset) error
	GetAsset(ctx context.Context, ref string) (*Asset, error)
}

// EventSink defines the interface for event handling
type EventSink interface {
	DocumentCreated(ctx context.Context, doc *Document) error
	DocumentUpdated(ctx context.Context, doc *Document) error
	DocumentDeleted(ctx context.Context, id uuid.UUID) error
	AssetUploaded(ctx context.Context, asset *Asset) error
}

// AssetUploader is the asset-upload capability of a content store.
type AssetUploader interface {
	UploadAsset(ctx context.Context, req UploadAssetRequest) (*Asset, error)
}

// DocumentStore is the document read/replace capability used by editors.
type DocumentStore interface {
	GetDocument(ctx context.Context, id uuid.UUID) (*Document, error)
	ReplaceField(ctx context.Context, req ReplaceFieldRequest) (*Document, error)
}

// ContentStore is everything the gallery editor and the batch uploader need.
// It is satisfied by Service and by client.Client.
type ContentStore interface {
	AssetUploader
	DocumentStore
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
	Metadata    map[string]string
}

// UploadParams contains parameters for uploading an object
type UploadParams struct {
	ObjectKey string
	MimeType  string
}
