package documents

import (
	"context"
	"time"
)

// Repo defines persistence operations for documents.
type Repo interface {
	// Create stores a document together with its extraction results.
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	// ListByUser returns the user's documents newest first.
	ListByUser(ctx context.Context, userID string) ([]Document, error)
	UpdateTitle(ctx context.Context, id, title string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}
