// Package session holds the client-side session state: who is logged in,
// whether that is still being determined, and the last normalized error.
// The store is the single source of truth every view reads; it is mutated
// only through the transitions defined here.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"session-hub/domain"
)

// Store is an injectable session state container. All access is
// mutex-guarded; network calls run outside the lock so concurrent reads
// (the guard, the refresher) never block on the backend.
type Store struct {
	gw   domain.AuthGateway
	snap domain.SnapshotStore

	mu       sync.RWMutex
	state    domain.SessionState
	user     *domain.User
	lastErr  *domain.Envelope
	errTimer *time.Timer

	errTTL time.Duration
	sf     singleflight.Group
}

// StoreOption configures the store.
type StoreOption func(*Store)

// WithErrorTTL sets how long an error stays attached before it self-clears
// (the banner auto-dismiss policy). Zero disables self-clearing.
func WithErrorTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.errTTL = d }
}

// NewStore creates an anonymous session store.
func NewStore(gw domain.AuthGateway, snap domain.SnapshotStore, opts ...StoreOption) *Store {
	s := &Store{
		gw:    gw,
		snap:  snap,
		state: domain.StateAnonymous,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current session state.
func (s *Store) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns a copy of the current identity, or nil when anonymous.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// LastError returns the last normalized error, or nil.
func (s *Store) LastError() *domain.Envelope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastErr == nil {
		return nil
	}
	e := *s.lastErr
	return &e
}

// ClearError drops the attached error. An expired session collapses to
// anonymous once its error is acknowledged.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearErrorLocked()
}

// Hydrate loads the persisted snapshot as a hint. The store enters
// StateAuthenticating: protected rendering stays gated until
// ConfirmIdentity resolves the hint against the backend.
func (s *Store) Hydrate() {
	user, err := s.snap.Load()
	if err != nil {
		if !errors.Is(err, domain.ErrSnapshotNotFound) {
			slog.Warn("failed to load session snapshot", "error", err)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.StateAnonymous {
		return
	}
	s.user = user
	s.state = domain.StateAuthenticating
}

// Login authenticates with the backend. On success the store is
// authenticated with the returned identity and the snapshot is written; on
// failure the store is anonymous with the envelope attached. No retry.
func (s *Store) Login(ctx context.Context, creds domain.Credentials) error {
	s.mu.Lock()
	if s.state.Authenticated() {
		s.mu.Unlock()
		return nil
	}
	s.state = domain.StateAuthenticating
	s.clearErrorLocked()
	s.mu.Unlock()

	user, err := s.gw.Login(ctx, creds)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.user = nil
		s.state = domain.StateAnonymous
		s.attachErrorLocked(err)
		return err
	}

	s.user = user
	s.state = domain.StateAuthenticated
	s.clearErrorLocked()
	s.persistLocked()
	return nil
}

// Register creates an account. It never authenticates: the caller is
// redirected to the login view afterwards. Failures attach the envelope
// without touching the session.
func (s *Store) Register(ctx context.Context, reg domain.Registration) error {
	if err := s.gw.Register(ctx, reg); err != nil {
		s.mu.Lock()
		s.attachErrorLocked(err)
		s.mu.Unlock()
		return err
	}
	return nil
}

// ConfirmIdentity fetches the authoritative identity. A 401 invalidates the
// local session (identity cleared, snapshot deleted); other failures leave
// an established session intact. A hydrated-but-unconfirmed session falls
// back to anonymous on any failure, since the cached hint alone never
// grants access. Idempotent for an unchanged backend identity.
func (s *Store) ConfirmIdentity(ctx context.Context) error {
	user, err := s.gw.CurrentUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		wasEstablished := s.state.Authenticated()
		s.attachErrorLocked(err)

		var env *domain.Envelope
		if errors.As(err, &env) && env.Unauthorized() {
			s.user = nil
			s.clearSnapshotLocked()
			if wasEstablished {
				s.state = domain.StateExpired
			} else {
				s.state = domain.StateAnonymous
			}
			return err
		}

		if !wasEstablished {
			// Unconfirmed hint plus an unreachable backend: resolve to
			// anonymous but keep the snapshot for the next start.
			s.user = nil
			s.state = domain.StateAnonymous
		}
		return err
	}

	s.user = user
	s.state = domain.StateAuthenticated
	s.clearErrorLocked()
	s.persistLocked()
	return nil
}

// Refresh extends the session validity. Concurrent calls collapse into one
// in-flight refresh. Failure means the session is expired: identity and
// snapshot are cleared.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if !s.state.Authenticated() {
		s.mu.Unlock()
		return domain.ErrNotAuthenticated
	}
	s.state = domain.StateRefreshing
	s.mu.Unlock()

	v, err, _ := s.sf.Do("refresh", func() (any, error) {
		return s.gw.Refresh(ctx)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.StateRefreshing {
		// Logout raced the refresh; the later transition wins.
		return nil
	}
	if err != nil {
		s.user = nil
		s.state = domain.StateExpired
		s.clearSnapshotLocked()
		s.attachErrorLocked(err)
		return err
	}

	// The backend may rotate identity fields alongside the new cookies.
	if user, ok := v.(*domain.User); ok && user != nil {
		s.user = user
	}
	s.state = domain.StateAuthenticated
	s.persistLocked()
	return nil
}

// Refreshing reports whether a refresh is currently in flight.
func (s *Store) Refreshing() bool {
	return s.State() == domain.StateRefreshing
}

// Logout invalidates the session. The remote call is best-effort: local
// state and the snapshot are cleared unconditionally, so logout never fails
// from the user's perspective.
func (s *Store) Logout(ctx context.Context) {
	if err := s.gw.Logout(ctx); err != nil {
		slog.WarnContext(ctx, "remote logout failed, clearing local session anyway", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.state = domain.StateAnonymous
	s.clearErrorLocked()
	s.clearSnapshotLocked()
}

// attachErrorLocked records a normalized error and arms the auto-dismiss
// timer. Non-envelope errors (context cancellation) are not surfaced.
func (s *Store) attachErrorLocked(err error) {
	var env *domain.Envelope
	if !errors.As(err, &env) {
		return
	}
	s.lastErr = env

	if s.errTimer != nil {
		s.errTimer.Stop()
	}
	if s.errTTL > 0 {
		s.errTimer = time.AfterFunc(s.errTTL, s.ClearError)
	}
}

func (s *Store) clearErrorLocked() {
	s.lastErr = nil
	if s.errTimer != nil {
		s.errTimer.Stop()
		s.errTimer = nil
	}
	if s.state == domain.StateExpired {
		s.state = domain.StateAnonymous
	}
}

func (s *Store) persistLocked() {
	if s.user == nil {
		return
	}
	if err := s.snap.Save(s.user); err != nil {
		slog.Warn("failed to persist session snapshot", "error", err)
	}
}

func (s *Store) clearSnapshotLocked() {
	if err := s.snap.Clear(); err != nil {
		slog.Warn("failed to clear session snapshot", "error", err)
	}
}
