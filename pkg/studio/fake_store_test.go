package studio

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
)

var errUploadRejected = errors.New("upload rejected")

// fakeStore is an in-process ContentStore that records every call.
type fakeStore struct {
	mu        sync.Mutex
	doc       *Document
	failFiles map[string]bool
	writeErr  error
	uploads   []string
	writes    []ReplaceFieldRequest
	onUpload  func(name string)
}

func newFakeStore(images Collection) *fakeStore {
	return &fakeStore{
		doc: &Document{
			ID:        uuid.New(),
			Kind:      KindPortfolio,
			Title:     "Sesja",
			Slug:      "sesja",
			Revision:  "rev-0",
			Portfolio: &Portfolio{Category: CategoryEngagement, Images: images},
		},
		failFiles: map[string]bool{},
	}
}

func (f *fakeStore) UploadAsset(ctx context.Context, req UploadAssetRequest) (*Asset, error) {
	if f.onUpload != nil {
		f.onUpload(req.FileName)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, req.FileName)
	if f.failFiles[req.FileName] {
		return nil, errUploadRejected
	}
	if req.Body != nil {
		io.Copy(io.Discard, req.Body)
	}
	return &Asset{Ref: "image-" + req.FileName + "-1x1-jpg"}, nil
}

func (f *fakeStore) GetDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id != f.doc.ID {
		return nil, ErrDocumentNotFound
	}
	return f.doc.Clone(), nil
}

func (f *fakeStore) ReplaceField(ctx context.Context, req ReplaceFieldRequest) (*Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, req)
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	if req.IfRevision != "" && req.IfRevision != f.doc.Revision {
		return nil, ErrRevisionMismatch
	}
	f.doc.setImages(Append(nil, req.Images...))
	f.doc.Revision = uuid.NewString()
	return f.doc.Clone(), nil
}

func (f *fakeStore) storedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Keys(f.doc.Images())
}

func (f *fakeStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}
