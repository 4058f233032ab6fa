package session

import (
	"context"
	"sync"
	"time"

	"github.com/jcmexdev/koi-console/internal/console/core/ports"
)

type memoryItem struct {
	value     string
	expiresAt time.Time // zero: never
}

// MemoryRepository is the process-local fallback when Redis is not configured.
type MemoryRepository struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

var _ ports.SessionRepository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]memoryItem), now: time.Now}
}

func (r *MemoryRepository) Save(_ context.Context, key, value string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = r.now().Add(ttl)
	}
	r.items[key] = item
	return nil
}

func (r *MemoryRepository) Load(_ context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[key]
	if !ok {
		return "", false, nil
	}
	if !item.expiresAt.IsZero() && !r.now().Before(item.expiresAt) {
		delete(r.items, key)
		return "", false, nil
	}
	return item.value, true, nil
}

func (r *MemoryRepository) Delete(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		delete(r.items, k)
	}
	return nil
}
