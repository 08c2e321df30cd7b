// Package session keeps the per-client state a browser would hold in local
// storage: the session token, the dark theme preference and the premium flag.
// The Store is passed explicitly to whoever needs it; there is no package
// level state.
package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/example/expense-tracker/internal/cache"
	"github.com/example/expense-tracker/internal/models"
)

const (
	tokenKey   = "expensetracker_token"
	userKey    = "expensetracker_uid"
	themeKey   = "expensetracker_pref_dark"
	premiumKey = "expensetracker_premium"
)

// Lookuper resolves a session token to the user it belongs to.
type Lookuper interface {
	Lookup(ctx context.Context, idToken string) (*models.User, error)
}

// Status is the outcome of the startup check.
type Status struct {
	Authenticated bool
	User          *models.User
	// Cleared is true when a stored token was rejected and removed.
	Cleared bool
}

// Store reads and writes per-client values through a cache.Cache.
type Store struct {
	cache  cache.Cache
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewStore creates a Store. A zero ttl keeps values until they are cleared.
func NewStore(c cache.Cache, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{cache: c, logger: logger, ttl: ttl, now: time.Now}
}

func key(clientID, name string) string {
	return "client:" + clientID + ":" + name
}

func (s *Store) read(ctx context.Context, clientID, name string) (string, bool, error) {
	v, err := s.cache.Get(ctx, key(clientID, name))
	if errors.Is(err, cache.ErrMiss) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Get returns the current token of clientID, if any.
func (s *Store) Get(ctx context.Context, clientID string) (string, bool, error) {
	token, ok, err := s.read(ctx, clientID, tokenKey)
	if err != nil || !ok || token == "" {
		return "", false, err
	}
	return token, true, nil
}

// Set persists token for clientID.
func (s *Store) Set(ctx context.Context, clientID, token string) error {
	if token == "" {
		return errors.New("session: refusing to store an empty token")
	}
	return s.cache.Set(ctx, key(clientID, tokenKey), token, s.ttl)
}

// SetUser records the user the current token belongs to, so the user is
// still known once the token itself stops resolving.
func (s *Store) SetUser(ctx context.Context, clientID, userID string) error {
	if userID == "" {
		return errors.New("session: refusing to store an empty user id")
	}
	return s.cache.Set(ctx, key(clientID, userKey), userID, s.ttl)
}

// UserID returns the user recorded with the current token, if any.
func (s *Store) UserID(ctx context.Context, clientID string) (string, bool, error) {
	userID, ok, err := s.read(ctx, clientID, userKey)
	if err != nil || !ok || userID == "" {
		return "", false, err
	}
	return userID, true, nil
}

// Clear removes the token, its user and the premium flag of clientID. The
// theme preference survives logout.
func (s *Store) Clear(ctx context.Context, clientID string) error {
	for _, name := range []string{tokenKey, userKey, premiumKey} {
		if err := s.cache.Delete(ctx, key(clientID, name)); err != nil {
			return err
		}
	}
	return nil
}

// Theme returns the dark theme preference, false when never set.
func (s *Store) Theme(ctx context.Context, clientID string) (bool, error) {
	v, ok, err := s.read(ctx, clientID, themeKey)
	if err != nil || !ok {
		return false, err
	}
	dark, err := strconv.ParseBool(v)
	if err != nil {
		// An unreadable value counts as never set.
		return false, nil
	}
	return dark, nil
}

// SetTheme persists the dark theme preference.
func (s *Store) SetTheme(ctx context.Context, clientID string, dark bool) error {
	return s.cache.Set(ctx, key(clientID, themeKey), strconv.FormatBool(dark), 0)
}

// ToggleTheme flips the dark theme preference and persists the new value.
func (s *Store) ToggleTheme(ctx context.Context, clientID string) (bool, error) {
	dark, err := s.Theme(ctx, clientID)
	if err != nil {
		return false, err
	}
	dark = !dark
	if err := s.SetTheme(ctx, clientID, dark); err != nil {
		return false, err
	}
	return dark, nil
}

// Premium reports whether premium was activated in this session.
func (s *Store) Premium(ctx context.Context, clientID string) (bool, error) {
	v, ok, err := s.read(ctx, clientID, premiumKey)
	if err != nil || !ok {
		return false, err
	}
	return v == "true", nil
}

// SetPremium marks the session as premium.
func (s *Store) SetPremium(ctx context.Context, clientID string) error {
	return s.cache.Set(ctx, key(clientID, premiumKey), "true", s.ttl)
}

// Check is the startup check. A stored token is kept only when the identity
// provider resolves it to a user; any other outcome clears it. The check is
// best effort and never retried. Only a storage failure is returned as error.
func (s *Store) Check(ctx context.Context, clientID string, lookup Lookuper) (Status, error) {
	token, ok, err := s.Get(ctx, clientID)
	if err != nil {
		return Status{}, err
	}
	if !ok {
		return Status{}, nil
	}

	if s.expired(token) {
		s.logger.Info("Stored session token is past its expiry, clearing", zap.String("client_id", clientID))
		return Status{Cleared: true}, s.Clear(ctx, clientID)
	}

	user, err := lookup.Lookup(ctx, token)
	if err != nil || user == nil {
		s.logger.Info("Session token rejected by identity provider, clearing",
			zap.String("client_id", clientID), zap.Error(err))
		return Status{Cleared: true}, s.Clear(ctx, clientID)
	}
	return Status{Authenticated: true, User: user}, nil
}

// expired reads the exp claim without verifying the signature. Tokens that are
// not JWTs, or carry no exp, are left for the provider to judge.
func (s *Store) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !s.now().Before(exp.Time)
}
