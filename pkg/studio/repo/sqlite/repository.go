package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/fiodorowphotography/studio/pkg/studio"
	"github.com/fiodorowphotography/studio/pkg/studio/repo/internal/docbody"
)

const schema = `
CREATE TABLE IF NOT EXISTS studio_document (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	title       TEXT NOT NULL,
	slug        TEXT NOT NULL,
	date        TEXT NOT NULL DEFAULT '',
	revision    TEXT NOT NULL,
	body        TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL,
	deleted_at  TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS studio_document_kind_slug_key
	ON studio_document (kind, slug) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS studio_asset (
	ref              TEXT PRIMARY KEY,
	file_name        TEXT NOT NULL DEFAULT '',
	mime_type        TEXT NOT NULL,
	size             INTEGER NOT NULL,
	width            INTEGER NOT NULL,
	height           INTEGER NOT NULL,
	checksum         TEXT NOT NULL,
	object_key       TEXT NOT NULL,
	storage_backend  TEXT NOT NULL,
	created_at       TEXT NOT NULL
);`

// Repository implements studio.Repository on a SQLite database
type Repository struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for a throwaway database.
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases alive for the lifetime of the pool.
	db.SetMaxOpenConns(1)

	r, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// New wraps an open database and applies the schema.
func New(db *sql.DB) (*Repository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) handleSQLiteError(operation string, err error) error {
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		if strings.Contains(sqlErr.Error(), "slug") {
			return fmt.Errorf("%s: %w", operation, studio.ErrDuplicateSlug)
		}
		return fmt.Errorf("%s: duplicate entry", operation)
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

const documentColumns = `id, kind, title, slug, date, revision, body, created_at, updated_at, deleted_at`

// Document operations

func (r *Repository) CreateDocument(ctx context.Context, doc *studio.Document) error {
	body, err := docbody.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO studio_document (
			id, kind, title, slug, date, revision, body, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID.String(), string(doc.Kind), doc.Title, doc.Slug, doc.Date, doc.Revision,
		string(body), formatTime(doc.CreatedAt), formatTime(doc.UpdatedAt))
	if err != nil {
		return r.handleSQLiteError("create document", err)
	}
	return nil
}

func (r *Repository) GetDocument(ctx context.Context, id uuid.UUID) (*studio.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM studio_document WHERE id = ? AND deleted_at IS NULL`,
		id.String())
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, studio.ErrDocumentNotFound
		}
		return nil, r.handleSQLiteError("get document", err)
	}
	return doc, nil
}

func (r *Repository) GetDocumentBySlug(ctx context.Context, kind studio.DocumentKind, slug string) (*studio.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM studio_document WHERE kind = ? AND slug = ? AND deleted_at IS NULL`,
		string(kind), slug)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, studio.ErrDocumentNotFound
		}
		return nil, r.handleSQLiteError("get document by slug", err)
	}
	return doc, nil
}

func (r *Repository) ListDocuments(ctx context.Context, filter studio.DocumentFilter) ([]*studio.Document, error) {
	var (
		conds []string
		args  []interface{}
	)
	if !filter.IncludeDeleted {
		conds = append(conds, "deleted_at IS NULL")
	}
	if filter.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	query := `SELECT ` + documentColumns + ` FROM studio_document`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.handleSQLiteError("list documents", err)
	}
	defer rows.Close()

	var docs []*studio.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, r.handleSQLiteError("scan document", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handleSQLiteError("list documents", err)
	}
	return docs, nil
}

func (r *Repository) UpdateDocument(ctx context.Context, doc *studio.Document, expectedRevision string) error {
	body, err := docbody.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE studio_document SET
			title = ?, slug = ?, date = ?, revision = ?, body = ?, updated_at = ?
		WHERE id = ? AND revision = ? AND deleted_at IS NULL`,
		doc.Title, doc.Slug, doc.Date, doc.Revision, string(body), formatTime(doc.UpdatedAt),
		doc.ID.String(), expectedRevision)
	if err != nil {
		return r.handleSQLiteError("update document", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return r.handleSQLiteError("update document", err)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM studio_document WHERE id = ? AND deleted_at IS NULL)`,
		doc.ID.String()).Scan(&exists)
	if err != nil {
		return r.handleSQLiteError("update document", err)
	}
	if !exists {
		return studio.ErrDocumentNotFound
	}
	return studio.ErrRevisionMismatch
}

func (r *Repository) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	now := formatTime(time.Now().UTC())
	res, err := r.db.ExecContext(ctx,
		`UPDATE studio_document SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id.String())
	if err != nil {
		return r.handleSQLiteError("delete document", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return r.handleSQLiteError("delete document", err)
	}
	if n == 0 {
		return studio.ErrDocumentNotFound
	}
	return nil
}

// Asset operations

func (r *Repository) CreateAsset(ctx context.Context, asset *studio.Asset) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO studio_asset (
			ref, file_name, mime_type, size, width, height, checksum,
			object_key, storage_backend, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (ref) DO NOTHING`,
		asset.Ref, asset.FileName, asset.MimeType, asset.Size, asset.Width, asset.Height,
		asset.Checksum, asset.ObjectKey, asset.StorageBackend, formatTime(asset.CreatedAt))
	if err != nil {
		return r.handleSQLiteError("create asset", err)
	}
	return nil
}

func (r *Repository) GetAsset(ctx context.Context, ref string) (*studio.Asset, error) {
	var (
		asset     studio.Asset
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT ref, file_name, mime_type, size, width, height, checksum,
		       object_key, storage_backend, created_at
		FROM studio_asset WHERE ref = ?`, ref).Scan(
		&asset.Ref, &asset.FileName, &asset.MimeType, &asset.Size, &asset.Width, &asset.Height,
		&asset.Checksum, &asset.ObjectKey, &asset.StorageBackend, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, studio.ErrAssetNotFound
		}
		return nil, r.handleSQLiteError("get asset", err)
	}
	if asset.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &asset, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row scanner) (*studio.Document, error) {
	var (
		doc                  studio.Document
		id, kind, body       string
		createdAt, updatedAt string
		deletedAt            sql.NullString
	)
	err := row.Scan(&id, &kind, &doc.Title, &doc.Slug, &doc.Date, &doc.Revision,
		&body, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if doc.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse document id %q: %w", id, err)
	}
	doc.Kind = studio.DocumentKind(kind)
	if err := docbody.Unmarshal(&doc, []byte(body)); err != nil {
		return nil, fmt.Errorf("decode body of %s: %w", id, err)
	}
	if doc.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if doc.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t, err := parseTime(deletedAt.String)
		if err != nil {
			return nil, err
		}
		doc.DeletedAt = &t
	}
	return &doc, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
