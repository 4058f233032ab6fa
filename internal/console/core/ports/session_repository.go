package ports

import (
	"context"
	"time"
)

// SessionRepository persists the raw session blobs under fixed keys.
// A zero ttl means the value does not expire on its own.
type SessionRepository interface {
	Save(ctx context.Context, key, value string, ttl time.Duration) error
	Load(ctx context.Context, key string) (value string, found bool, err error)
	Delete(ctx context.Context, keys ...string) error
}
