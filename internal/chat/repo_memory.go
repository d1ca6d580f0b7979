package chat

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string][]Message
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string][]Message)}
}

func (r *MemoryRepo) Create(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg.Metadata = cloneMetadata(msg.Metadata)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[msg.DocumentID] = append(r.byID[msg.DocumentID], msg)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, documentID string, opts ListOptions) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	stored := r.byID[documentID]
	out := make([]Message, len(stored))
	for i, m := range stored {
		m.Metadata = cloneMetadata(m.Metadata)
		out[i] = m
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if opts.Order == OrderNewestFirst {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (r *MemoryRepo) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.byID[documentID])
	delete(r.byID, documentID)
	return n, nil
}

func cloneMetadata(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var _ Repo = (*MemoryRepo)(nil)
