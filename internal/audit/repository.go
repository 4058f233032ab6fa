package audit

import (
	"context"
	"sync"
)

// Repository persists audit entries. Implementations append, never update.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
	ListByOrder(ctx context.Context, orderID int64) ([]Entry, error)
}

// MemoryRepository keeps entries in process. Used when no database path is
// configured and in tests.
type MemoryRepository struct {
	mu      sync.Mutex
	entries []Entry
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Save(_ context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *MemoryRepository) ListByOrder(_ context.Context, orderID int64) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Entry
	for _, e := range r.entries {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

// All returns every entry in insertion order.
func (r *MemoryRepository) All() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}
