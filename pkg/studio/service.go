package studio

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Service defines the main interface of the studio content store
type Service interface {
	// Document operations
	CreateDocument(ctx context.Context, req CreateDocumentRequest) (*Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*Document, error)
	GetDocumentBySlug(ctx context.Context, kind DocumentKind, slug string) (*Document, error)
	ListDocuments(ctx context.Context, req ListDocumentsRequest) ([]*Document, error)
	UpdateDocument(ctx context.Context, req UpdateDocumentRequest) (*Document, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error

	// Collection field replacement
	ReplaceField(ctx context.Context, req ReplaceFieldRequest) (*Document, error)

	// Asset operations
	UploadAsset(ctx context.Context, req UploadAssetRequest) (*Asset, error)
	GetAsset(ctx context.Context, ref string) (*Asset, error)
	DownloadAsset(ctx context.Context, ref string) (io.ReadCloser, *Asset, error)

	// Storage backend operations
	RegisterBackend(name string, backend BlobStore)
	GetBackend(name string) (BlobStore, error)
}
