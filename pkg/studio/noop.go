package studio

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// DocumentCreated does nothing and returns nil
func (n *NoopEventSink) DocumentCreated(ctx context.Context, doc *Document) error {
	return nil
}

// DocumentUpdated does nothing and returns nil
func (n *NoopEventSink) DocumentUpdated(ctx context.Context, doc *Document) error {
	return nil
}

// DocumentDeleted does nothing and returns nil
func (n *NoopEventSink) DocumentDeleted(ctx context.Context, id uuid.UUID) error {
	return nil
}

// AssetUploaded does nothing and returns nil
func (n *NoopEventSink) AssetUploaded(ctx context.Context, asset *Asset) error {
	return nil
}

// LogEventSink writes every event to a structured logger.
type LogEventSink struct {
	logger *slog.Logger
}

// NewLogEventSink creates an event sink that logs at info level. A nil
// logger means slog.Default().
func NewLogEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventSink{logger: logger}
}

func (l *LogEventSink) DocumentCreated(ctx context.Context, doc *Document) error {
	l.logger.InfoContext(ctx, "Document created", "id", doc.ID, "kind", doc.Kind, "slug", doc.Slug)
	return nil
}

func (l *LogEventSink) DocumentUpdated(ctx context.Context, doc *Document) error {
	l.logger.InfoContext(ctx, "Document updated", "id", doc.ID, "revision", doc.Revision, "images", len(doc.Images()))
	return nil
}

func (l *LogEventSink) DocumentDeleted(ctx context.Context, id uuid.UUID) error {
	l.logger.InfoContext(ctx, "Document deleted", "id", id)
	return nil
}

func (l *LogEventSink) AssetUploaded(ctx context.Context, asset *Asset) error {
	l.logger.InfoContext(ctx, "Asset uploaded", "ref", asset.Ref, "size", asset.Size, "backend", asset.StorageBackend)
	return nil
}
