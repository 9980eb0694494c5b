package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fiodorowphotography/studio/pkg/studio"
)

// Repository implements studio.Repository using in-memory storage
type Repository struct {
	mu        sync.RWMutex
	documents map[uuid.UUID]*studio.Document
	assets    map[string]*studio.Asset
}

// New creates a new in-memory repository
func New() studio.Repository {
	return &Repository{
		documents: make(map[uuid.UUID]*studio.Document),
		assets:    make(map[string]*studio.Asset),
	}
}

// Document operations

func (r *Repository) CreateDocument(ctx context.Context, doc *studio.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.documents[doc.ID]; exists {
		return fmt.Errorf("document %s already exists", doc.ID)
	}
	if r.slugTaken(doc) {
		return fmt.Errorf("%s/%s: %w", doc.Kind, doc.Slug, studio.ErrDuplicateSlug)
	}

	r.documents[doc.ID] = doc.Clone()
	return nil
}

func (r *Repository) GetDocument(ctx context.Context, id uuid.UUID) (*studio.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, exists := r.documents[id]
	if !exists || doc.DeletedAt != nil {
		return nil, studio.ErrDocumentNotFound
	}
	return doc.Clone(), nil
}

func (r *Repository) GetDocumentBySlug(ctx context.Context, kind studio.DocumentKind, slug string) (*studio.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, doc := range r.documents {
		if doc.DeletedAt == nil && doc.Kind == kind && doc.Slug == slug {
			return doc.Clone(), nil
		}
	}
	return nil, studio.ErrDocumentNotFound
}

func (r *Repository) ListDocuments(ctx context.Context, filter studio.DocumentFilter) ([]*studio.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*studio.Document
	for _, doc := range r.documents {
		if doc.DeletedAt != nil && !filter.IncludeDeleted {
			continue
		}
		if filter.Kind != "" && doc.Kind != filter.Kind {
			continue
		}
		result = append(result, doc.Clone())
	}
	// Map iteration order is random; give callers a stable base order.
	studio.SortDocuments(result, studio.SortByDate)
	return result, nil
}

func (r *Repository) UpdateDocument(ctx context.Context, doc *studio.Document, expectedRevision string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.documents[doc.ID]
	if !exists || current.DeletedAt != nil {
		return studio.ErrDocumentNotFound
	}
	if current.Revision != expectedRevision {
		return studio.ErrRevisionMismatch
	}
	if r.slugTaken(doc) {
		return fmt.Errorf("%s/%s: %w", doc.Kind, doc.Slug, studio.ErrDuplicateSlug)
	}

	r.documents[doc.ID] = doc.Clone()
	return nil
}

func (r *Repository) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, exists := r.documents[id]
	if !exists || doc.DeletedAt != nil {
		return studio.ErrDocumentNotFound
	}

	// Soft delete
	now := time.Now().UTC()
	doc.DeletedAt = &now
	doc.UpdatedAt = now
	return nil
}

// slugTaken reports whether another live document of the same kind uses
// doc's slug. Callers hold the lock.
func (r *Repository) slugTaken(doc *studio.Document) bool {
	for id, other := range r.documents {
		if id != doc.ID && other.DeletedAt == nil && other.Kind == doc.Kind && other.Slug == doc.Slug {
			return true
		}
	}
	return false
}

// Asset operations

func (r *Repository) CreateAsset(ctx context.Context, asset *studio.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.assets[asset.Ref]; exists {
		return nil
	}
	assetCopy := *asset
	r.assets[asset.Ref] = &assetCopy
	return nil
}

func (r *Repository) GetAsset(ctx context.Context, ref string) (*studio.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	asset, exists := r.assets[ref]
	if !exists {
		return nil, studio.ErrAssetNotFound
	}
	assetCopy := *asset
	return &assetCopy, nil
}
