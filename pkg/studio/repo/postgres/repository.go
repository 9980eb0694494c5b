package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fiodorowphotography/studio/pkg/studio"
	"github.com/fiodorowphotography/studio/pkg/studio/repo/internal/docbody"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements studio.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) studio.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) studio.Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "slug") {
				return fmt.Errorf("%s: %w", operation, studio.ErrDuplicateSlug)
			}
			return fmt.Errorf("%s: duplicate entry", operation)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
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

	query := `
		INSERT INTO studio_document (
			id, kind, title, slug, date, revision, body, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.Exec(ctx, query,
		doc.ID, string(doc.Kind), doc.Title, doc.Slug, doc.Date, doc.Revision,
		string(body), doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create document", err)
	}
	return nil
}

func (r *Repository) GetDocument(ctx context.Context, id uuid.UUID) (*studio.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM studio_document WHERE id = $1 AND deleted_at IS NULL`
	doc, err := scanDocument(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, studio.ErrDocumentNotFound
		}
		return nil, r.handlePostgresError("get document", err)
	}
	return doc, nil
}

func (r *Repository) GetDocumentBySlug(ctx context.Context, kind studio.DocumentKind, slug string) (*studio.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM studio_document
		WHERE kind = $1 AND slug = $2 AND deleted_at IS NULL`
	doc, err := scanDocument(r.db.QueryRow(ctx, query, string(kind), slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, studio.ErrDocumentNotFound
		}
		return nil, r.handlePostgresError("get document by slug", err)
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
		args = append(args, string(filter.Kind))
		conds = append(conds, fmt.Sprintf("kind = $%d", len(args)))
	}

	query := `SELECT ` + documentColumns + ` FROM studio_document`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list documents", err)
	}
	defer rows.Close()

	var docs []*studio.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan document", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list documents", err)
	}
	return docs, nil
}

func (r *Repository) UpdateDocument(ctx context.Context, doc *studio.Document, expectedRevision string) error {
	body, err := docbody.Marshal(doc)
	if err != nil {
		return err
	}

	query := `
		UPDATE studio_document SET
			title = $2, slug = $3, date = $4, revision = $5, body = $6, updated_at = $7
		WHERE id = $1 AND revision = $8 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query,
		doc.ID, doc.Title, doc.Slug, doc.Date, doc.Revision, string(body), doc.UpdatedAt,
		expectedRevision)
	if err != nil {
		return r.handlePostgresError("update document", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Nothing matched: tell a missing document apart from a stale revision.
	var exists bool
	err = r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM studio_document WHERE id = $1 AND deleted_at IS NULL)`,
		doc.ID).Scan(&exists)
	if err != nil {
		return r.handlePostgresError("update document", err)
	}
	if !exists {
		return studio.ErrDocumentNotFound
	}
	return studio.ErrRevisionMismatch
}

func (r *Repository) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE studio_document SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return r.handlePostgresError("delete document", err)
	}
	if tag.RowsAffected() == 0 {
		return studio.ErrDocumentNotFound
	}
	return nil
}

// Asset operations

func (r *Repository) CreateAsset(ctx context.Context, asset *studio.Asset) error {
	query := `
		INSERT INTO studio_asset (
			ref, file_name, mime_type, size, width, height, checksum,
			object_key, storage_backend, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (ref) DO NOTHING`

	_, err := r.db.Exec(ctx, query,
		asset.Ref, asset.FileName, asset.MimeType, asset.Size, asset.Width, asset.Height,
		asset.Checksum, asset.ObjectKey, asset.StorageBackend, asset.CreatedAt)
	if err != nil {
		return r.handlePostgresError("create asset", err)
	}
	return nil
}

func (r *Repository) GetAsset(ctx context.Context, ref string) (*studio.Asset, error) {
	query := `
		SELECT ref, file_name, mime_type, size, width, height, checksum,
		       object_key, storage_backend, created_at
		FROM studio_asset WHERE ref = $1`

	var asset studio.Asset
	err := r.db.QueryRow(ctx, query, ref).Scan(
		&asset.Ref, &asset.FileName, &asset.MimeType, &asset.Size, &asset.Width, &asset.Height,
		&asset.Checksum, &asset.ObjectKey, &asset.StorageBackend, &asset.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, studio.ErrAssetNotFound
		}
		return nil, r.handlePostgresError("get asset", err)
	}
	return &asset, nil
}

func scanDocument(row pgx.Row) (*studio.Document, error) {
	var (
		doc  studio.Document
		kind string
		body []byte
	)
	err := row.Scan(&doc.ID, &kind, &doc.Title, &doc.Slug, &doc.Date, &doc.Revision,
		&body, &doc.CreatedAt, &doc.UpdatedAt, &doc.DeletedAt)
	if err != nil {
		return nil, err
	}
	doc.Kind = studio.DocumentKind(kind)
	if err := docbody.Unmarshal(&doc, body); err != nil {
		return nil, fmt.Errorf("decode body of %s: %w", doc.ID, err)
	}
	return &doc, nil
}
