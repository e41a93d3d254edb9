package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Picces04/ToyStore-Client/internal/auth"
	"github.com/Picces04/ToyStore-Client/internal/infrastructure/kv"
	"github.com/rs/zerolog"
)

// Persisted keys, one set per visitor namespace.
const (
	KeyUser        = "user"
	KeyToken       = "token"
	KeyTokenExpiry = "tokenExpiry"
)

var ErrEmptyToken = errors.New("session: empty token")

// User is the signed-in account as returned by the backend.
type User struct {
	ID          string   `json:"id"`
	FullName    string   `json:"fullName"`
	Email       string   `json:"email"`
	PhoneNumber *string  `json:"phoneNumber"`
	Gender      *string  `json:"gender"`
	Address     *string  `json:"address"`
	AvatarURL   *string  `json:"avatarUrl"`
	Roles       []string `json:"roles"`
}

// Snapshot is the read model of a session.
type Snapshot struct {
	User          *User      `json:"user"`
	Authenticated bool       `json:"authenticated"`
	TokenExpiry   *time.Time `json:"tokenExpiry,omitempty"`
}

// Store holds the current user in memory and mirrors it, together with the
// bearer token, into persistent key-value storage.
type Store struct {
	mu   sync.RWMutex
	kv   kv.KV
	user *User
	log  zerolog.Logger
}

func NewStore(store kv.KV, log zerolog.Logger) *Store {
	return &Store{
		kv:  store,
		log: log.With().Str("component", "session").Logger(),
	}
}

// Init restores the user from storage. A stored user that cannot be decoded,
// or decodes to null, is treated as absent: user and token are removed and the session stays
// anonymous. Only storage failures are returned.
func (s *Store) Init(ctx context.Context) error {
	const op = "Store.Init"

	rawUser, hasUser, err := s.kv.Get(ctx, KeyUser)
	if err != nil && !errors.Is(err, kv.ErrTampered) {
		return fmt.Errorf("%s: %w", op, err)
	}
	userTampered := err != nil

	_, hasToken, err := s.kv.Get(ctx, KeyToken)
	if err != nil && !errors.Is(err, kv.ErrTampered) {
		return fmt.Errorf("%s: %w", op, err)
	}
	tokenTampered := err != nil

	if userTampered || tokenTampered {
		s.discard(ctx)
		return nil
	}
	if !hasUser || !hasToken {
		return nil
	}

	var u *User
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil || u == nil {
		s.log.Warn().Err(err).Msg("stored user is malformed, clearing session")
		s.discard(ctx)
		return nil
	}

	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	return nil
}

func (s *Store) discard(ctx context.Context) {
	if err := errors.Join(s.kv.Delete(ctx, KeyUser), s.kv.Delete(ctx, KeyToken)); err != nil {
		s.log.Error().Err(err).Msg("failed to clear malformed session")
	}
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// SetUser replaces the current user and persists it. A nil user logs out.
func (s *Store) SetUser(ctx context.Context, u *User) error {
	const op = "Store.SetUser"

	if u == nil {
		return s.Logout(ctx)
	}

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.kv.Set(ctx, KeyUser, string(data)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	cp := *u
	s.mu.Lock()
	s.user = &cp
	s.mu.Unlock()
	return nil
}

// SignIn persists the user, the bearer token and its expiry. A zero expiry
// is read from the token's exp claim; a token without one is stored without
// an expiry.
func (s *Store) SignIn(ctx context.Context, u User, token string, expiry time.Time) error {
	const op = "Store.SignIn"

	if token == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyToken)
	}
	if expiry.IsZero() {
		if exp, err := auth.TokenExpiry(token); err == nil {
			expiry = exp
		} else {
			s.log.Debug().Err(err).Msg("token expiry unknown")
		}
	}

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.kv.Set(ctx, KeyToken, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.kv.Set(ctx, KeyUser, string(data)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if expiry.IsZero() {
		err = s.kv.Delete(ctx, KeyTokenExpiry)
	} else {
		err = s.kv.Set(ctx, KeyTokenExpiry, expiry.UTC().Format(time.RFC3339))
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return nil
}

// Logout clears the user and removes every persisted key. All removals are
// attempted; their failures are joined.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	var errs []error
	for _, key := range []string{KeyUser, KeyToken, KeyTokenExpiry} {
		if err := s.kv.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("Store.Logout: %w", err)
	}
	return nil
}

// IsAuthenticated is true when a user is held and a token is persisted.
// Token expiry is not checked. Storage errors count as unauthenticated.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	if s.User() == nil {
		return false
	}
	_, ok, err := s.kv.Get(ctx, KeyToken)
	if err != nil {
		s.log.Warn().Err(err).Msg("token lookup failed")
		return false
	}
	return ok
}

// User returns a copy of the current user, or nil.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}

// Token returns the persisted bearer token.
func (s *Store) Token(ctx context.Context) (string, bool, error) {
	return s.kv.Get(ctx, KeyToken)
}

// TokenExpiry returns the persisted expiry, if one is stored and parseable.
func (s *Store) TokenExpiry(ctx context.Context) (time.Time, bool) {
	raw, ok, err := s.kv.Get(ctx, KeyTokenExpiry)
	if err != nil || !ok {
		return time.Time{}, false
	}
	exp, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return exp, true
}

func (s *Store) Snapshot(ctx context.Context) Snapshot {
	snap := Snapshot{
		User:          s.User(),
		Authenticated: s.IsAuthenticated(ctx),
	}
	if exp, ok := s.TokenExpiry(ctx); ok {
		snap.TokenExpiry = &exp
	}
	return snap
}
