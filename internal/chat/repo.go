package chat

import "context"

// Order selects the direction messages are listed in.
type Order int

const (
	OrderOldestFirst Order = iota
	OrderNewestFirst
)

// ListOptions bounds a listing. Limit <= 0 means no limit.
type ListOptions struct {
	Limit int
	Order Order
}

// Repo persists chat messages. Messages are append-only; the only removal is
// the bulk delete issued when their document goes away.
type Repo interface {
	Create(ctx context.Context, msg Message) error
	List(ctx context.Context, documentID string, opts ListOptions) ([]Message, error)
	DeleteByDocument(ctx context.Context, documentID string) (int, error)
}
