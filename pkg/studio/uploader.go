package studio

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// KeyLength is the number of hex characters in a generated reference key.
const KeyLength = 12

// NewKey returns a random reference key.
func NewKey() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:KeyLength]
}

// Uploader turns one file into an image reference by storing its bytes
// through an AssetUploader.
type Uploader struct {
	store  AssetUploader
	newKey func() string
}

// UploaderOption configures an Uploader.
type UploaderOption func(*Uploader)

// WithUploaderKeyFunc overrides reference key generation.
func WithUploaderKeyFunc(fn func() string) UploaderOption {
	return func(u *Uploader) {
		u.newKey = fn
	}
}

// NewUploader creates an Uploader backed by store.
func NewUploader(store AssetUploader, opts ...UploaderOption) *Uploader {
	u := &Uploader{store: store, newKey: NewKey}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload stores f and returns a reference with a fresh key. Failures are
// returned as *UploadError.
func (u *Uploader) Upload(ctx context.Context, f File) (ImageReference, error) {
	asset, err := u.store.UploadAsset(ctx, UploadAssetRequest{
		FileName: f.Name,
		MimeType: f.MimeType,
		Body:     f.Body,
	})
	if err != nil {
		return ImageReference{}, &UploadError{FileName: f.Name, Err: err}
	}
	return ImageReference{Key: u.newKey(), AssetRef: asset.Ref}, nil
}

// IsImageMimeType reports whether mimeType names an image type.
func IsImageMimeType(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}
