package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestDecodeToken_PlainClaims(t *testing.T) {
	tok := signToken(t, jwt.MapClaims{
		"id": "12", "email": "sales@koi.local", "name": "Mai", "role": "SalesStaff", "exp": 1900000000,
	})

	info, err := DecodeToken(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(12), info.ID)
	assert.Equal(t, "sales@koi.local", info.Email)
	assert.Equal(t, "Mai", info.Name)
	assert.Equal(t, "SalesStaff", info.Role)
	assert.Equal(t, int64(1900000000), info.Exp)
}

func TestDecodeToken_IdentityURIClaims(t *testing.T) {
	tok := signToken(t, jwt.MapClaims{
		claimIDURI:   "7",
		claimNameURI: "Binh",
		claimRoleURI: []any{"DeliveringStaff", "Customer"},
		"exp":        1900000000,
	})

	info, err := DecodeToken(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), info.ID)
	assert.Equal(t, "Binh", info.Name)
	assert.Equal(t, "DeliveringStaff", info.Role)
}

func TestDecodeToken_Rejects(t *testing.T) {
	for name, tok := range map[string]string{
		"garbage": "not-a-jwt",
		"no exp":  signToken(t, jwt.MapClaims{"role": "Customer"}),
		"no role": signToken(t, jwt.MapClaims{"exp": 1900000000}),
		"bad id":  signToken(t, jwt.MapClaims{"role": "Customer", "exp": 1900000000, "sub": "abc"}),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeToken(tok)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestMemoryRepository_TTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewMemoryRepository()
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "accessToken", "tok", time.Minute))
	require.NoError(t, repo.Save(ctx, "userInfo", "{}", 0))

	v, ok, err := repo.Load(ctx, "accessToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)

	now = now.Add(time.Minute)
	_, ok, _ = repo.Load(ctx, "accessToken")
	assert.False(t, ok)
	_, ok, _ = repo.Load(ctx, "userInfo")
	assert.True(t, ok)

	require.NoError(t, repo.Delete(ctx, "userInfo"))
	_, ok, _ = repo.Load(ctx, "userInfo")
	assert.False(t, ok)
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key], nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeCache) Ping(context.Context) error { return nil }

func (f *fakeCache) GenerateKey(operation, key string) string {
	return "console:" + operation + ":" + key
}

func TestRedisRepository_NamespacesKeys(t *testing.T) {
	c := newFakeCache()
	repo := NewRedisRepository(c)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "accessToken", "tok", time.Hour))
	assert.Equal(t, "tok", c.data["console:session:accessToken"])
	assert.Equal(t, time.Hour, c.ttls["console:session:accessToken"])

	v, ok, err := repo.Load(ctx, "accessToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)

	_, ok, err = repo.Load(ctx, "userInfo")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Delete(ctx, "accessToken", "userInfo"))
	assert.Empty(t, c.data)
}
