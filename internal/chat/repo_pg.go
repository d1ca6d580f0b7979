package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"docchat-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a message; metadata is stored as JSONB.
func (r *PGRepo) Create(ctx context.Context, msg Message) error {
	const query = `
INSERT INTO chat_messages (id, document_id, role, content, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	var metadata any
	if len(msg.Metadata) > 0 {
		raw, err := json.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		metadata = raw
	}
	_, err := r.DB.ExecContext(ctx, query, msg.ID, msg.DocumentID, msg.Role, msg.Content, metadata, msg.CreatedAt)
	return err
}

// List returns a document's messages ordered by creation time.
func (r *PGRepo) List(ctx context.Context, documentID string, opts ListOptions) ([]Message, error) {
	query := `
SELECT id, document_id, role, content, metadata, created_at
FROM chat_messages
WHERE document_id = $1
ORDER BY created_at ASC`
	if opts.Order == OrderNewestFirst {
		query = `
SELECT id, document_id, role, content, metadata, created_at
FROM chat_messages
WHERE document_id = $1
ORDER BY created_at DESC`
	}
	args := []any{documentID}
	if opts.Limit > 0 {
		query += "\nLIMIT $2"
		args = append(args, opts.Limit)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		if db.IsInvalidID(err) {
			return []Message{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	out := make([]Message, 0)
	for rows.Next() {
		var msg Message
		var metadata []byte
		if err := rows.Scan(&msg.ID, &msg.DocumentID, &msg.Role, &msg.Content, &metadata, &msg.CreatedAt); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &msg.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata for message %s: %w", msg.ID, err)
			}
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

// DeleteByDocument removes every message of a document.
func (r *PGRepo) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM chat_messages WHERE document_id = $1`, documentID)
	if err != nil {
		if db.IsInvalidID(err) {
			return 0, nil
		}
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

var _ Repo = (*PGRepo)(nil)
