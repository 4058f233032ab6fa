package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/console/session"
)

var now = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

func token(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": "5", "name": "Lan", "email": "lan@koi.local", "role": role, "exp": exp.Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func newStore(repo *session.MemoryRepository) *Store {
	return New(repo, WithClock(func() time.Time { return now }))
}

func TestSlice_UnknownUntilSet(t *testing.T) {
	s := NewSlice[[]int]()
	_, known := s.Get()
	assert.False(t, known)

	s.Set(nil)
	v, known := s.Get()
	assert.True(t, known)
	assert.Empty(t, v)
}

func TestSlice_SubscribersNotified(t *testing.T) {
	s := NewSlice[string]()
	var got []string
	cancel := s.Subscribe(func(v string) { got = append(got, v) })

	s.Set("a")
	s.Set("b")
	cancel()
	s.Set("c")
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestHydrate_SessionUnknownBeforeHydration(t *testing.T) {
	st := newStore(session.NewMemoryRepository())

	_, known := st.Session.Get()
	assert.False(t, known)
	assert.False(t, st.IsLoggedIn())

	require.NoError(t, st.Hydrate(context.Background()))
	info, known := st.Session.Get()
	assert.True(t, known)
	assert.Nil(t, info)
}

func TestHydrate_RestoresValidSession(t *testing.T) {
	repo := session.NewMemoryRepository()
	ctx := context.Background()
	tok := token(t, "SalesStaff", now.Add(time.Hour))
	blob, _ := json.Marshal(entity.UserInfo{ID: 5, Name: "Lan", Role: "SalesStaff", Exp: now.Add(time.Hour).Unix()})
	require.NoError(t, repo.Save(ctx, KeyAccessToken, tok, 0))
	require.NoError(t, repo.Save(ctx, KeyUserInfo, string(blob), 0))

	st := newStore(repo)
	require.NoError(t, st.Hydrate(ctx))
	assert.True(t, st.IsLoggedIn())
	assert.Equal(t, tok, st.Token(ctx))

	role, err := st.Role(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSalesStaff, role)
}

func TestHydrate_ExpiredSessionIsCleared(t *testing.T) {
	repo := session.NewMemoryRepository()
	ctx := context.Background()
	blob, _ := json.Marshal(entity.UserInfo{ID: 5, Role: "Customer", Exp: now.Add(-time.Second).Unix()})
	require.NoError(t, repo.Save(ctx, KeyAccessToken, "stale", 0))
	require.NoError(t, repo.Save(ctx, KeyUserInfo, string(blob), 0))

	st := newStore(repo)
	err := st.Hydrate(ctx)
	require.ErrorIs(t, err, entity.ErrExpiredSession)
	assert.False(t, st.IsLoggedIn())

	_, found, _ := repo.Load(ctx, KeyAccessToken)
	assert.False(t, found)
	_, found, _ = repo.Load(ctx, KeyUserInfo)
	assert.False(t, found)

	info, known := st.Session.Get()
	assert.True(t, known, "expired session still completes hydration")
	assert.Nil(t, info)
}

func TestHydrate_ExpiryBoundaryIsExclusive(t *testing.T) {
	repo := session.NewMemoryRepository()
	ctx := context.Background()
	blob, _ := json.Marshal(entity.UserInfo{ID: 5, Role: "Customer", Exp: now.Unix()})
	require.NoError(t, repo.Save(ctx, KeyUserInfo, string(blob), 0))

	err := newStore(repo).Hydrate(ctx)
	assert.ErrorIs(t, err, entity.ErrExpiredSession)
}

func TestHydrate_TokenOnlyFallsBackToClaims(t *testing.T) {
	repo := session.NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, KeyAccessToken, token(t, "Manager", now.Add(time.Hour)), 0))

	st := newStore(repo)
	require.NoError(t, st.Hydrate(ctx))
	sess, err := st.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Manager", sess.User.Role)
}

func TestLoginLogout(t *testing.T) {
	repo := session.NewMemoryRepository()
	ctx := context.Background()
	st := newStore(repo)
	require.NoError(t, st.Hydrate(ctx))

	var published []*entity.UserInfo
	st.Session.Subscribe(func(u *entity.UserInfo) { published = append(published, u) })

	info, err := st.Login(ctx, token(t, "DeliveringStaff", now.Add(2*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.ID)
	assert.True(t, st.IsLoggedIn())

	role, err := st.Role(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleDeliveryStaff, role)

	raw, found, _ := repo.Load(ctx, KeyUserInfo)
	require.True(t, found)
	assert.Contains(t, raw, `"role":"DeliveringStaff"`)

	require.NoError(t, st.Logout(ctx))
	assert.False(t, st.IsLoggedIn())
	_, found, _ = repo.Load(ctx, KeyAccessToken)
	assert.False(t, found)

	require.Len(t, published, 2)
	assert.NotNil(t, published[0])
	assert.Nil(t, published[1])
}

func TestLogin_RejectsExpiredToken(t *testing.T) {
	st := newStore(session.NewMemoryRepository())
	_, err := st.Login(context.Background(), token(t, "Customer", now.Add(-time.Minute)))
	assert.ErrorIs(t, err, entity.ErrExpiredSession)
}

func TestCurrent_ExpiryDetectedLater(t *testing.T) {
	repo := session.NewMemoryRepository()
	ctx := context.Background()
	clock := now
	st := New(repo, WithClock(func() time.Time { return clock }))

	_, err := st.Login(ctx, token(t, "Customer", now.Add(time.Minute)))
	require.NoError(t, err)

	clock = clock.Add(2 * time.Minute)
	_, err = st.Current(ctx)
	require.ErrorIs(t, err, entity.ErrExpiredSession)

	_, err = st.Current(ctx)
	assert.ErrorIs(t, err, entity.ErrNoSession)
}

func TestList_SameSliceByName(t *testing.T) {
	st := newStore(session.NewMemoryRepository())
	a := List[entity.Order](st, "orders")
	b := List[entity.Order](st, "orders")
	assert.Same(t, a, b)

	_, known := a.Get()
	assert.False(t, known)
}

func TestSessionChange_ClearsListsAndRunsHooks(t *testing.T) {
	ctx := context.Background()
	st := newStore(session.NewMemoryRepository())
	require.NoError(t, st.Hydrate(ctx))

	orders := List[[]entity.Order](st, "order-history")
	resets := 0
	st.OnSessionChange(func() { resets++ })

	_, err := st.Login(ctx, token(t, "Customer", now.Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 1, resets)

	orders.Set([]entity.Order{{ID: 1, CustomerID: 5}})
	require.NoError(t, st.Logout(ctx))
	assert.Equal(t, 2, resets)
	got, known := orders.Get()
	assert.True(t, known)
	assert.Empty(t, got)

	orders.Set([]entity.Order{{ID: 1, CustomerID: 5}})
	_, err = st.Login(ctx, token(t, "Customer", now.Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 3, resets)
	got, _ = orders.Get()
	assert.Empty(t, got)
}
