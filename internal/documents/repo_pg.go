package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"docchat-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, user_id, title, original_name, mime_type, size_bytes, storage_provider, storage_key,
extracted_text, summary, error_message, extraction_method, page_count, extracted_at, created_at, updated_at`

// Create inserts a new document with its extraction results.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    title,
    original_name,
    mime_type,
    size_bytes,
    storage_provider,
    storage_key,
    extracted_text,
    summary,
    error_message,
    extraction_method,
    page_count,
    extracted_at,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	storageProvider := doc.StorageProvider
	if storageProvider == "" {
		storageProvider = "local"
	}
	updatedAt := doc.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = doc.CreatedAt
	}
	var errMsg sql.NullString
	if doc.ErrorMessage != "" {
		errMsg = sql.NullString{String: doc.ErrorMessage, Valid: true}
	}
	var extractedAt sql.NullTime
	if doc.ExtractedAt != nil {
		extractedAt = sql.NullTime{Time: *doc.ExtractedAt, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.Title,
		doc.OriginalName,
		doc.MimeType,
		doc.SizeBytes,
		storageProvider,
		doc.StorageKey,
		doc.ExtractedText,
		doc.Summary,
		errMsg,
		doc.ExtractionMethod,
		doc.PageCount,
		extractedAt,
		doc.CreatedAt,
		updatedAt,
	)
	return err
}

// GetByID fetches a document regardless of owner; callers enforce ownership.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	query := `SELECT ` + documentColumns + `
FROM documents
WHERE id = $1
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || db.IsInvalidID(err) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser lists documents ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	query := `SELECT ` + documentColumns + `
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		if db.IsInvalidID(err) {
			return []Document{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// UpdateTitle renames a document.
func (r *PGRepo) UpdateTitle(ctx context.Context, id, title string, updatedAt time.Time) error {
	const query = `
UPDATE documents
SET title = $1, updated_at = $2
WHERE id = $3`
	res, err := r.DB.ExecContext(ctx, query, title, updatedAt, id)
	if err != nil {
		return notFoundIfInvalidID(err)
	}
	return requireRow(res)
}

// Delete removes a document row; chat_messages cascade in the schema.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return notFoundIfInvalidID(err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var errMsg sql.NullString
	var extractedAt sql.NullTime
	if err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Title,
		&doc.OriginalName,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.StorageProvider,
		&doc.StorageKey,
		&doc.ExtractedText,
		&doc.Summary,
		&errMsg,
		&doc.ExtractionMethod,
		&doc.PageCount,
		&extractedAt,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	); err != nil {
		return Document{}, err
	}
	if errMsg.Valid {
		doc.ErrorMessage = errMsg.String
	}
	if extractedAt.Valid {
		doc.ExtractedAt = &extractedAt.Time
	}
	return doc, nil
}

func notFoundIfInvalidID(err error) error {
	if db.IsInvalidID(err) {
		return ErrNotFound
	}
	return err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
