package studio

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Editor keeps one image collection field of one document in sync with a
// content store. Every change is written as a full replacement of the field,
// guarded by the last revision the editor saw. Local state only changes after
// a successful write.
//
// An Editor is safe for concurrent use. Uploads within one Add call run one
// at a time; concurrent calls serialize their writes.
type Editor struct {
	store      DocumentStore
	uploader   *Uploader
	logger     *slog.Logger
	newKey     func() string
	documentID uuid.UUID
	field      string

	writeMu sync.Mutex // held across ReplaceField, never while uploading

	mu       sync.Mutex
	images   Collection
	revision string
	progress Progress
	active   int
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithEditorLogger sets the logger used for per-file upload failures.
func WithEditorLogger(logger *slog.Logger) EditorOption {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithEditorKeyFunc overrides reference key generation.
func WithEditorKeyFunc(fn func() string) EditorOption {
	return func(e *Editor) {
		e.newKey = fn
	}
}

// AddResult summarizes one Add batch.
type AddResult struct {
	// Added holds the new references in file order.
	Added Collection
	// Failed holds one error per file whose upload failed.
	Failed []*UploadError
	// Skipped holds the names of files that were not images.
	Skipped []string
}

// NewEditor creates an editor for documentID's field and loads its current
// state from store.
func NewEditor(ctx context.Context, store ContentStore, documentID uuid.UUID, field string, opts ...EditorOption) (*Editor, error) {
	if err := CheckField(field); err != nil {
		return nil, err
	}
	e := &Editor{
		store:      store,
		logger:     slog.Default(),
		newKey:     NewKey,
		documentID: documentID,
		field:      field,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.uploader = NewUploader(store, WithUploaderKeyFunc(e.newKey))
	if err := e.Refresh(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// DocumentID returns the document the editor is bound to.
func (e *Editor) DocumentID() uuid.UUID { return e.documentID }

// Field returns the collection field the editor is bound to.
func (e *Editor) Field() string { return e.field }

// Collection returns a copy of the current collection.
func (e *Editor) Collection() Collection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append(Collection(nil), e.images...)
}

// Revision returns the document revision of the last load or write.
func (e *Editor) Revision() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.revision
}

// Progress returns the progress of in-flight uploads. It is the zero value
// when idle.
func (e *Editor) Progress() Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress
}

// Uploading reports whether an Add batch is in flight.
func (e *Editor) Uploading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active > 0
}

// Refresh reloads the collection and revision from the store.
func (e *Editor) Refresh(ctx context.Context) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	doc, err := e.store.GetDocument(ctx, e.documentID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.images = append(Collection(nil), doc.Images()...)
	e.revision = doc.Revision
	e.mu.Unlock()
	return nil
}

// Add uploads the image files among files one by one and appends the
// resulting references with a single write. Non-image files are skipped
// without being counted. A failed upload is logged and the batch continues.
// Once started, the batch runs through its whole queue and writes what it
// uploaded even if ctx is cancelled; ctx only carries values. The returned
// error is non-nil only when the final write fails.
func (e *Editor) Add(ctx context.Context, files []File) (AddResult, error) {
	var result AddResult
	accepted := make([]File, 0, len(files))
	for _, f := range files {
		if !IsImageMimeType(f.MimeType) {
			result.Skipped = append(result.Skipped, f.Name)
			continue
		}
		accepted = append(accepted, f)
	}
	if len(accepted) == 0 {
		return result, nil
	}

	e.beginBatch(len(accepted))
	defer e.endBatch()
	ctx = context.WithoutCancel(ctx)

	batch := make(Collection, 0, len(accepted))
	for _, f := range accepted {
		ref, err := e.uploader.Upload(ctx, f)
		e.step()
		if err != nil {
			var uerr *UploadError
			if !errors.As(err, &uerr) {
				uerr = &UploadError{FileName: f.Name, Err: err}
			}
			e.logger.Error("Failed to upload image", "document_id", e.documentID, "file", f.Name, "error", uerr.Err)
			result.Failed = append(result.Failed, uerr)
			continue
		}
		batch = append(batch, ref)
	}
	if len(batch) == 0 {
		return result, nil
	}

	err := e.write(ctx, func(current Collection) (Collection, error) {
		for i := range batch {
			for HasKey(current, batch[i].Key) || HasKey(batch[:i], batch[i].Key) {
				batch[i].Key = e.newKey()
			}
		}
		return Append(current, batch...), nil
	})
	if err != nil {
		return result, err
	}
	result.Added = batch
	return result, nil
}

// Reorder moves the reference at source to target and writes the result.
// Equal indices are a no-op.
func (e *Editor) Reorder(ctx context.Context, source, target int) error {
	if source == target {
		e.mu.Lock()
		err := checkIndex(e.images, source)
		e.mu.Unlock()
		return err
	}
	return e.write(ctx, func(current Collection) (Collection, error) {
		return Move(current, source, target)
	})
}

// Delete removes the reference at index and writes the result.
func (e *Editor) Delete(ctx context.Context, index int) error {
	return e.write(ctx, func(current Collection) (Collection, error) {
		return Remove(current, index)
	})
}

// write builds the next collection from the current one and replaces the
// stored field with it. Local state is updated only on success.
func (e *Editor) write(ctx context.Context, build func(Collection) (Collection, error)) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	e.mu.Lock()
	current := append(Collection(nil), e.images...)
	revision := e.revision
	e.mu.Unlock()

	next, err := build(current)
	if err != nil {
		return err
	}
	doc, err := e.store.ReplaceField(ctx, ReplaceFieldRequest{
		DocumentID: e.documentID,
		Field:      e.field,
		Images:     next,
		IfRevision: revision,
	})
	if err != nil {
		e.logger.Error("Failed to write collection", "document_id", e.documentID, "field", e.field, "error", err)
		return err
	}

	e.mu.Lock()
	e.images = append(Collection(nil), doc.Images()...)
	e.revision = doc.Revision
	e.mu.Unlock()
	return nil
}

func (e *Editor) beginBatch(total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active++
	e.progress.Total += total
}

func (e *Editor) step() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progress.Current++
}

func (e *Editor) endBatch() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active--
	if e.active == 0 {
		e.progress = Progress{}
	}
}
