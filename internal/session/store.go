// Package session holds the authenticated identity for the lifetime of the
// process. It is a single-owner state container created on startup and passed
// to whatever needs the current user; there is no package-level global.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ramonehamilton/YGO-Companion/internal/api"
)

// Store caches the authenticated user. Loading starts true and resolves on
// the first Refresh or SetCurrentUser. A failed refresh while a user is
// cached keeps the stale identity and records the error instead of logging
// the user out: a flaky network must not destroy a working session.
type Store struct {
	client *api.Client
	logger *slog.Logger

	mu      sync.RWMutex
	user    *api.User
	loading bool
	lastErr error
}

// NewStore creates a session store in the loading state.
func NewStore(client *api.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client:  client,
		logger:  logger,
		loading: true,
	}
}

// CurrentUser returns the cached identity, or nil when logged out. Callers
// that require authentication must wait for IsLoading to turn false before
// treating nil as logged-out.
func (s *Store) CurrentUser() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsLoading reports whether the initial identity fetch is still unresolved.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastError returns the most recent refresh error, or nil. A non-nil value
// with a non-nil CurrentUser means the identity is stale but usable.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// SetCurrentUser installs an identity directly, used right after a successful
// login or registration response to avoid a redundant /auth/me round trip.
// Passing nil marks the store logged-out.
func (s *Store) SetCurrentUser(user *api.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.loading = false
	s.lastErr = nil
}

// Refresh fetches the identity behind the current session cookie. On failure
// with a cached user the stale identity is kept and the error recorded; on
// failure with no cached user the store resolves to logged-out.
func (s *Store) Refresh(ctx context.Context) error {
	user, err := s.client.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.lastErr = err
		if s.user != nil {
			s.logger.Warn("session refresh failed, keeping cached identity", "user", s.user.Username, "error", err)
			return err
		}
		s.user = nil
		return err
	}

	s.user = user
	s.lastErr = nil
	return nil
}

// Logout clears the cached identity and drops the session cookies.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.user = nil
	s.loading = false
	s.lastErr = nil
	s.mu.Unlock()
	return s.client.ClearSession()
}
