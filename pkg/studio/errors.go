package studio

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrDocumentNotFound indicates a document was not found
	ErrDocumentNotFound = errors.New("document not found")

	// ErrAssetNotFound indicates an asset was not found
	ErrAssetNotFound = errors.New("asset not found")

	// ErrStorageBackendNotFound indicates a storage backend was not found
	ErrStorageBackendNotFound = errors.New("storage backend not found")

	// ErrObjectNotFound indicates a blob store has no object under the key
	ErrObjectNotFound = errors.New("object not found")

	// ErrRevisionMismatch indicates the stored document changed since it was last read
	ErrRevisionMismatch = errors.New("document revision mismatch")

	// ErrInvalidDocument indicates a document failed validation
	ErrInvalidDocument = errors.New("invalid document")

	// ErrDuplicateSlug indicates another document of the same kind uses the slug
	ErrDuplicateSlug = errors.New("slug already in use")

	// ErrUnknownField indicates a field name that is not an image collection
	ErrUnknownField = errors.New("unknown collection field")

	// ErrIndexOutOfRange indicates a collection index outside the current sequence
	ErrIndexOutOfRange = errors.New("collection index out of range")

	// ErrUnsupportedMediaType indicates an upload that is not a decodable image
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrAssetTooLarge indicates an upload above the configured size limit
	ErrAssetTooLarge = errors.New("asset too large")

	// ErrInvalidAssetRef indicates a malformed asset reference
	ErrInvalidAssetRef = errors.New("invalid asset reference")
)

// UploadError is returned by the upload pipeline for a single failed file.
type UploadError struct {
	FileName string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %s failed: %v", e.FileName, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// DocumentError represents an error related to document operations
type DocumentError struct {
	DocumentID uuid.UUID
	Op         string
	Err        error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document operation %s failed for document %s: %v", e.Op, e.DocumentID, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ValidationError describes a single invalid document field. It matches
// ErrInvalidDocument with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidDocument
}
