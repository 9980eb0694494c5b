package studio

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/fiodorowphotography/studio/pkg/studio/objectkey"
)

// DefaultMaxUploadBytes is the upload size limit when none is configured.
const DefaultMaxUploadBytes int64 = 40 << 20

// service implements the Service interface
type service struct {
	repository     Repository
	blobStores     map[string]BlobStore
	defaultBackend string
	eventSink      EventSink
	logger         *slog.Logger
	keyGenerator   objectkey.Generator
	maxUploadBytes int64
	now            func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore adds a blob storage backend. The first backend added becomes
// the default unless WithDefaultBackend says otherwise.
func WithBlobStore(name string, store BlobStore) Option {
	return func(s *service) {
		if s.blobStores == nil {
			s.blobStores = make(map[string]BlobStore)
		}
		s.blobStores[name] = store
		if s.defaultBackend == "" {
			s.defaultBackend = name
		}
	}
}

// WithDefaultBackend selects the backend new assets are written to
func WithDefaultBackend(name string) Option {
	return func(s *service) {
		s.defaultBackend = name
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithKeyGenerator sets the object key strategy for stored assets
func WithKeyGenerator(gen objectkey.Generator) Option {
	return func(s *service) {
		s.keyGenerator = gen
	}
}

// WithMaxUploadBytes limits the size of a single asset upload
func WithMaxUploadBytes(n int64) Option {
	return func(s *service) {
		s.maxUploadBytes = n
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		blobStores:     make(map[string]BlobStore),
		eventSink:      NewNoopEventSink(),
		logger:         slog.Default(),
		keyGenerator:   objectkey.NewRecommendedGenerator(),
		maxUploadBytes: DefaultMaxUploadBytes,
		now:            func() time.Time { return time.Now().UTC() },
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.maxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive")
	}
	if s.defaultBackend != "" {
		if _, ok := s.blobStores[s.defaultBackend]; !ok {
			return nil, fmt.Errorf("default backend %q: %w", s.defaultBackend, ErrStorageBackendNotFound)
		}
	}

	return s, nil
}

// Document operations

func (s *service) CreateDocument(ctx context.Context, req CreateDocumentRequest) (*Document, error) {
	now := s.now()
	doc := &Document{
		ID:        uuid.New(),
		Kind:      req.Kind,
		Title:     req.Title,
		Slug:      req.Slug,
		Date:      req.Date,
		Revision:  newRevision(),
		Portfolio: req.Portfolio,
		Report:    req.Report,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if doc.Slug == "" {
		doc.Slug = Slugify(doc.Title)
	}
	doc = doc.Clone()
	normalizeBody(doc)

	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}
	if err := s.checkSlugFree(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.repository.CreateDocument(ctx, doc); err != nil {
		return nil, &DocumentError{DocumentID: doc.ID, Op: "create", Err: err}
	}

	s.emit(ctx, "DocumentCreated", func() error { return s.eventSink.DocumentCreated(ctx, doc) })
	return doc, nil
}

func (s *service) GetDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	doc, err := s.repository.GetDocument(ctx, id)
	if err != nil {
		return nil, &DocumentError{DocumentID: id, Op: "get", Err: err}
	}
	return doc, nil
}

func (s *service) GetDocumentBySlug(ctx context.Context, kind DocumentKind, slug string) (*Document, error) {
	return s.repository.GetDocumentBySlug(ctx, kind, slug)
}

func (s *service) ListDocuments(ctx context.Context, req ListDocumentsRequest) ([]*Document, error) {
	docs, err := s.repository.ListDocuments(ctx, DocumentFilter{Kind: req.Kind})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	if req.FeaturedOnly {
		featured := docs[:0]
		for _, d := range docs {
			if d.Featured() {
				featured = append(featured, d)
			}
		}
		docs = featured
	}

	SortDocuments(docs, req.SortBy)

	if req.Limit > 0 && len(docs) > req.Limit {
		docs = docs[:req.Limit]
	}
	return docs, nil
}

func (s *service) UpdateDocument(ctx context.Context, req UpdateDocumentRequest) (*Document, error) {
	current, err := s.repository.GetDocument(ctx, req.ID)
	if err != nil {
		return nil, &DocumentError{DocumentID: req.ID, Op: "update", Err: err}
	}
	if req.IfRevision != "" && req.IfRevision != current.Revision {
		return nil, &DocumentError{DocumentID: req.ID, Op: "update", Err: ErrRevisionMismatch}
	}

	next := current.Clone()
	next.Title = req.Title
	next.Date = req.Date
	if req.Slug != "" {
		next.Slug = req.Slug
	}
	switch next.Kind {
	case KindPortfolio:
		if req.Portfolio == nil {
			return nil, &ValidationError{Field: "portfolio", Reason: "is required"}
		}
		p := *req.Portfolio
		p.Images = next.Portfolio.Images
		next.Portfolio = &p
	case KindReport:
		if req.Report == nil {
			return nil, &ValidationError{Field: "report", Reason: "is required"}
		}
		r := *req.Report
		r.Images = next.Report.Images
		next.Report = &r
	}
	next = next.Clone()

	if err := ValidateDocument(next); err != nil {
		return nil, err
	}
	if next.Slug != current.Slug {
		if err := s.checkSlugFree(ctx, next); err != nil {
			return nil, err
		}
	}

	if err := s.commit(ctx, next, current.Revision, "update"); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *service) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	if err := s.repository.DeleteDocument(ctx, id); err != nil {
		return &DocumentError{DocumentID: id, Op: "delete", Err: err}
	}
	s.emit(ctx, "DocumentDeleted", func() error { return s.eventSink.DocumentDeleted(ctx, id) })
	return nil
}

// ReplaceField overwrites the whole collection field with req.Images.
func (s *service) ReplaceField(ctx context.Context, req ReplaceFieldRequest) (*Document, error) {
	if err := CheckField(req.Field); err != nil {
		return nil, err
	}
	if err := Validate(req.Images); err != nil {
		return nil, err
	}

	current, err := s.repository.GetDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, &DocumentError{DocumentID: req.DocumentID, Op: "replace_field", Err: err}
	}
	if req.IfRevision != "" && req.IfRevision != current.Revision {
		return nil, &DocumentError{DocumentID: req.DocumentID, Op: "replace_field", Err: ErrRevisionMismatch}
	}

	next := current.Clone()
	next.setImages(Append(nil, req.Images...))

	if err := s.commit(ctx, next, current.Revision, "replace_field"); err != nil {
		return nil, err
	}
	return next, nil
}

// commit stores next if the stored revision still equals expected.
func (s *service) commit(ctx context.Context, next *Document, expected, op string) error {
	next.Revision = newRevision()
	next.UpdatedAt = s.now()
	if err := s.repository.UpdateDocument(ctx, next, expected); err != nil {
		return &DocumentError{DocumentID: next.ID, Op: op, Err: err}
	}
	s.emit(ctx, "DocumentUpdated", func() error { return s.eventSink.DocumentUpdated(ctx, next) })
	return nil
}

func (s *service) checkSlugFree(ctx context.Context, doc *Document) error {
	existing, err := s.repository.GetDocumentBySlug(ctx, doc.Kind, doc.Slug)
	switch {
	case errors.Is(err, ErrDocumentNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check slug: %w", err)
	case existing.ID != doc.ID:
		return &ValidationError{Field: "slug", Reason: fmt.Sprintf("%q: %v", doc.Slug, ErrDuplicateSlug)}
	}
	return nil
}

// Asset operations

// UploadAsset stores an image and records it. Identical bytes map to the
// same asset, so repeated uploads return the existing record.
func (s *service) UploadAsset(ctx context.Context, req UploadAssetRequest) (*Asset, error) {
	backend, err := s.GetBackend(s.defaultBackend)
	if err != nil {
		return nil, err
	}
	if req.Body == nil {
		return nil, fmt.Errorf("%s: empty body: %w", req.FileName, ErrUnsupportedMediaType)
	}

	data, err := io.ReadAll(io.LimitReader(req.Body, s.maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", req.FileName, err)
	}
	if int64(len(data)) > s.maxUploadBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes: %w", req.FileName, s.maxUploadBytes, ErrAssetTooLarge)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.FileName, ErrUnsupportedMediaType)
	}
	ext := format
	if ext == "jpeg" {
		ext = "jpg"
	}

	sum := sha1.Sum(data)
	checksum := hex.EncodeToString(sum[:])
	parts := AssetRefParts{ID: checksum, Width: cfg.Width, Height: cfg.Height, Ext: ext}

	existing, err := s.repository.GetAsset(ctx, parts.Ref())
	if err == nil {
		if err := s.restoreBlob(ctx, existing, data); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, ErrAssetNotFound) {
		return nil, fmt.Errorf("lookup asset: %w", err)
	}

	asset := &Asset{
		Ref:            parts.Ref(),
		FileName:       req.FileName,
		MimeType:       "image/" + format,
		Size:           int64(len(data)),
		Width:          cfg.Width,
		Height:         cfg.Height,
		Checksum:       checksum,
		ObjectKey:      s.keyGenerator.GenerateKey(checksum, &objectkey.KeyMetadata{Ext: ext}),
		StorageBackend: s.defaultBackend,
		CreatedAt:      s.now(),
	}

	err = backend.UploadWithParams(ctx, bytes.NewReader(data), UploadParams{
		ObjectKey: asset.ObjectKey,
		MimeType:  asset.MimeType,
	})
	if err != nil {
		return nil, &StorageError{Backend: s.defaultBackend, Key: asset.ObjectKey, Op: "upload", Err: err}
	}

	if err := s.repository.CreateAsset(ctx, asset); err != nil {
		s.discardBlob(ctx, backend, asset)
		return nil, fmt.Errorf("record asset %s: %w", asset.Ref, err)
	}

	s.emit(ctx, "AssetUploaded", func() error { return s.eventSink.AssetUploaded(ctx, asset) })
	return asset, nil
}

// restoreBlob puts the bytes of a recorded asset back when its object has
// gone missing from the backend.
func (s *service) restoreBlob(ctx context.Context, asset *Asset, data []byte) error {
	backend, err := s.GetBackend(asset.StorageBackend)
	if err != nil {
		return err
	}
	_, err = backend.GetObjectMeta(ctx, asset.ObjectKey)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, ErrObjectNotFound):
		return &StorageError{Backend: asset.StorageBackend, Key: asset.ObjectKey, Op: "stat", Err: err}
	}

	s.logger.WarnContext(ctx, "Restoring missing asset object", "ref", asset.Ref, "backend", asset.StorageBackend, "object_key", asset.ObjectKey)
	if err := backend.Upload(ctx, asset.ObjectKey, bytes.NewReader(data)); err != nil {
		return &StorageError{Backend: asset.StorageBackend, Key: asset.ObjectKey, Op: "upload", Err: err}
	}
	return nil
}

// discardBlob removes an object whose asset record could not be written,
// unless a concurrent upload of the same bytes recorded it meanwhile.
func (s *service) discardBlob(ctx context.Context, backend BlobStore, asset *Asset) {
	ctx = context.WithoutCancel(ctx)
	if _, err := s.repository.GetAsset(ctx, asset.Ref); err == nil {
		return
	}
	if err := backend.Delete(ctx, asset.ObjectKey); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete unrecorded asset object",
			"ref", asset.Ref, "backend", s.defaultBackend, "object_key", asset.ObjectKey, "error", err)
	}
}

func (s *service) GetAsset(ctx context.Context, ref string) (*Asset, error) {
	return s.repository.GetAsset(ctx, ref)
}

func (s *service) DownloadAsset(ctx context.Context, ref string) (io.ReadCloser, *Asset, error) {
	asset, err := s.repository.GetAsset(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	backend, err := s.GetBackend(asset.StorageBackend)
	if err != nil {
		return nil, nil, err
	}
	rc, err := backend.Download(ctx, asset.ObjectKey)
	if err != nil {
		return nil, nil, &StorageError{Backend: asset.StorageBackend, Key: asset.ObjectKey, Op: "download", Err: err}
	}
	return rc, asset, nil
}

// Storage backend operations

func (s *service) RegisterBackend(name string, backend BlobStore) {
	s.blobStores[name] = backend
	if s.defaultBackend == "" {
		s.defaultBackend = name
	}
}

func (s *service) GetBackend(name string) (BlobStore, error) {
	backend, ok := s.blobStores[name]
	if !ok {
		return nil, fmt.Errorf("backend %q: %w", name, ErrStorageBackendNotFound)
	}
	return backend, nil
}

// emit runs an event sink call. Failures are logged, never returned.
func (s *service) emit(ctx context.Context, event string, fn func() error) {
	if err := fn(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to deliver event", "event", event, "error", err)
	}
}

// SortDocuments orders docs in place. SortByOrder puts documents with an
// order value first (ascending), then the rest; ties fall back to date
// descending. SortByDate and the zero value sort by date descending.
func SortDocuments(docs []*Document, by SortBy) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		if by == SortByOrder {
			ao, bo := manualOrder(a), manualOrder(b)
			switch {
			case ao != nil && bo == nil:
				return true
			case ao == nil && bo != nil:
				return false
			case ao != nil && bo != nil && *ao != *bo:
				return *ao < *bo
			}
		}
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func manualOrder(d *Document) *int {
	if d.Portfolio != nil {
		return d.Portfolio.Order
	}
	return nil
}

// normalizeBody gives the body matching Kind a non-nil gallery.
func normalizeBody(doc *Document) {
	if doc.Portfolio != nil && doc.Portfolio.Images == nil {
		doc.Portfolio.Images = Collection{}
	}
	if doc.Report != nil && doc.Report.Images == nil {
		doc.Report.Images = Collection{}
	}
}

func newRevision() string {
	return uuid.NewString()
}
