package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/console/core/ports"
	"github.com/jcmexdev/koi-console/internal/console/session"
)

// Persisted session keys.
const (
	KeyAccessToken = "accessToken"
	KeyUserInfo    = "userInfo"
)

// Store holds the state shared by every screen of one console. Build it with
// New and pass it to whatever needs it.
type Store struct {
	// Session is nil when nobody is logged in.
	Session     *Slice[*entity.UserInfo]
	AccessToken *Slice[string]

	repo ports.SessionRepository
	now  func() time.Time

	listsMu sync.Mutex
	lists   map[string]any

	hooksMu sync.Mutex
	hooks   []func()
}

type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(repo ports.SessionRepository, opts ...Option) *Store {
	s := &Store{
		Session:     NewSlice[*entity.UserInfo](),
		AccessToken: NewSlice[string](),
		repo:        repo,
		now:         time.Now,
		lists:       make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the named screen's list slice, creating it on first use. The
// same name must always be used with the same record type.
func List[T any](s *Store, name string) *Slice[T] {
	s.listsMu.Lock()
	defer s.listsMu.Unlock()
	if existing, ok := s.lists[name]; ok {
		return existing.(*Slice[T])
	}
	sl := NewSlice[T]()
	s.lists[name] = sl
	return sl
}

// OnSessionChange registers fn to run whenever the logged-in user changes:
// on login, on logout and when an expired session is wiped.
func (s *Store) OnSessionChange(fn func()) {
	s.hooksMu.Lock()
	s.hooks = append(s.hooks, fn)
	s.hooksMu.Unlock()
}

// Hydrate loads the persisted session. Until it returns, the session slices
// are unknown. An expired credential is wiped and reported as
// entity.ErrExpiredSession; the store is usable (logged out) either way.
func (s *Store) Hydrate(ctx context.Context) error {
	token, info, err := s.load(ctx)
	if err != nil {
		s.clearSlices()
		slog.ErrorContext(ctx, "session hydration failed", "error", err)
		return err
	}
	if info == nil {
		s.clearSlices()
		return nil
	}
	if info.Expired(s.now()) {
		s.wipe(ctx)
		slog.InfoContext(ctx, "stored session expired", "user_id", info.ID, "exp", info.Exp)
		return entity.ErrExpiredSession
	}
	s.AccessToken.Set(token)
	s.Session.Set(info)
	return nil
}

func (s *Store) load(ctx context.Context) (string, *entity.UserInfo, error) {
	token, _, err := s.repo.Load(ctx, KeyAccessToken)
	if err != nil {
		return "", nil, fmt.Errorf("hydrate: %w", err)
	}
	raw, found, err := s.repo.Load(ctx, KeyUserInfo)
	if err != nil {
		return "", nil, fmt.Errorf("hydrate: %w", err)
	}

	if found {
		var info entity.UserInfo
		if err := json.Unmarshal([]byte(raw), &info); err == nil {
			return token, &info, nil
		}
		slog.WarnContext(ctx, "discarding unreadable stored user info")
	}
	// Older sessions only stored the token.
	if token != "" {
		if info, err := session.DecodeToken(token); err == nil {
			return token, &info, nil
		}
	}
	return "", nil, nil
}

// Login decodes token, persists it with the profile until the token's exp,
// and publishes both slices.
func (s *Store) Login(ctx context.Context, token string) (entity.UserInfo, error) {
	info, err := session.DecodeToken(token)
	if err != nil {
		return entity.UserInfo{}, err
	}
	now := s.now()
	if info.Expired(now) {
		return entity.UserInfo{}, entity.ErrExpiredSession
	}

	blob, err := json.Marshal(info)
	if err != nil {
		return entity.UserInfo{}, fmt.Errorf("login: encode user info: %w", err)
	}
	ttl := time.Unix(info.Exp, 0).Sub(now)
	if err := s.repo.Save(ctx, KeyAccessToken, token, ttl); err != nil {
		return entity.UserInfo{}, fmt.Errorf("login: %w", err)
	}
	if err := s.repo.Save(ctx, KeyUserInfo, string(blob), ttl); err != nil {
		return entity.UserInfo{}, fmt.Errorf("login: %w", err)
	}

	s.resetLists()
	s.AccessToken.Set(token)
	s.Session.Set(&info)
	slog.InfoContext(ctx, "user logged in", "user_id", info.ID, "role", info.Role)
	return info, nil
}

// Logout clears persisted and in-memory session state.
func (s *Store) Logout(ctx context.Context) error {
	err := s.repo.Delete(ctx, KeyAccessToken, KeyUserInfo)
	s.clearSlices()
	s.resetLists()
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *Store) IsLoggedIn() bool {
	info, known := s.Session.Get()
	return known && info != nil && !info.Expired(s.now())
}

// Current returns the active session. An expired one is wiped on the way
// out and reported as entity.ErrExpiredSession.
func (s *Store) Current(ctx context.Context) (entity.Session, error) {
	info, known := s.Session.Get()
	if !known || info == nil {
		return entity.Session{}, entity.ErrNoSession
	}
	if info.Expired(s.now()) {
		s.wipe(ctx)
		return entity.Session{}, entity.ErrExpiredSession
	}
	token, _ := s.AccessToken.Get()
	return entity.Session{AccessToken: token, User: *info}, nil
}

// Token is the bearer token for outgoing API calls, "" when logged out.
func (s *Store) Token(context.Context) string {
	if !s.IsLoggedIn() {
		return ""
	}
	token, _ := s.AccessToken.Get()
	return token
}

// Role is the logged-in user's role.
func (s *Store) Role(ctx context.Context) (entity.Role, error) {
	sess, err := s.Current(ctx)
	if err != nil {
		return "", err
	}
	role, ok := entity.ParseRole(sess.User.Role)
	if !ok {
		return "", fmt.Errorf("unknown role %q", sess.User.Role)
	}
	return role, nil
}

func (s *Store) wipe(ctx context.Context) {
	if err := s.repo.Delete(ctx, KeyAccessToken, KeyUserInfo); err != nil && !errors.Is(err, context.Canceled) {
		slog.WarnContext(ctx, "failed to clear stored session", "error", err)
	}
	s.clearSlices()
	s.resetLists()
}

func (s *Store) clearSlices() {
	s.AccessToken.Clear()
	s.Session.Clear()
}

// resetLists empties every screen's list slice and runs the session hooks,
// so no records fetched for one user are shown to the next.
func (s *Store) resetLists() {
	s.listsMu.Lock()
	lists := make([]interface{ Clear() }, 0, len(s.lists))
	for _, l := range s.lists {
		if c, ok := l.(interface{ Clear() }); ok {
			lists = append(lists, c)
		}
	}
	s.listsMu.Unlock()
	for _, l := range lists {
		l.Clear()
	}

	s.hooksMu.Lock()
	hooks := append([]func(){}, s.hooks...)
	s.hooksMu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}
