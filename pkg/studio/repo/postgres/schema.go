package postgres

import (
	"context"
	"fmt"
)

// Schema creates the tables used by Repository. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS studio_document (
	id          UUID PRIMARY KEY,
	kind        TEXT NOT NULL,
	title       TEXT NOT NULL,
	slug        TEXT NOT NULL,
	date        TEXT NOT NULL DEFAULT '',
	revision    TEXT NOT NULL,
	body        JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL,
	deleted_at  TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS studio_document_kind_slug_key
	ON studio_document (kind, slug) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS studio_asset (
	ref              TEXT PRIMARY KEY,
	file_name        TEXT NOT NULL DEFAULT '',
	mime_type        TEXT NOT NULL,
	size             BIGINT NOT NULL,
	width            INTEGER NOT NULL,
	height           INTEGER NOT NULL,
	checksum         TEXT NOT NULL,
	object_key       TEXT NOT NULL,
	storage_backend  TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL
);
`

// Migrate applies Schema.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
