package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jcmexdev/koi-console/internal/console/core/ports"
	"github.com/jcmexdev/koi-console/internal/pkg/cache"
)

const cacheOperation = "session"

// RedisRepository keeps session blobs in Redis under
// "<namespace>:session:<key>".
type RedisRepository struct {
	cache cache.Cache
}

var _ ports.SessionRepository = (*RedisRepository)(nil)

func NewRedisRepository(c cache.Cache) *RedisRepository {
	return &RedisRepository{cache: c}
}

func (r *RedisRepository) Save(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.cache.Set(ctx, r.cache.GenerateKey(cacheOperation, key), value, ttl); err != nil {
		return fmt.Errorf("save session %s: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) Load(ctx context.Context, key string) (string, bool, error) {
	v, err := r.cache.Get(ctx, r.cache.GenerateKey(cacheOperation, key))
	if err != nil {
		return "", false, fmt.Errorf("load session %s: %w", key, err)
	}
	return v, v != "", nil
}

func (r *RedisRepository) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.cache.GenerateKey(cacheOperation, k)
	}
	if err := r.cache.Delete(ctx, full...); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
