// Package services holds the client synchronization core: the session state
// machine, the trending aggregator and the saved-movie store. All three talk
// to RemoteStore only through client.Client.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/movieshelf/internal/client/client"
	"github.com/dmitrijs2005/movieshelf/internal/client/models"
	"github.com/dmitrijs2005/movieshelf/internal/logging"
)

// ErrNotLoggedIn is returned by operations that need a resolved identity.
var ErrNotLoggedIn = fmt.Errorf("%w: not logged in", client.ErrUnauthorized)

// State is the coarse session status shown in the prompt.
type State int

const (
	StateUnknown State = iota
	StateLoggedOut
	StateLoggedIn
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged out"
	case StateLoggedIn:
		return "logged in"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent view of the session. Identity is set only in
// StateLoggedIn.
type Snapshot struct {
	State    State
	Identity *models.Identity
}

// LoggedIn reports whether the snapshot carries a usable identity.
func (s Snapshot) LoggedIn() bool {
	return s.State == StateLoggedIn && s.Identity != nil
}

// TokenStore persists the session token across runs.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// SessionManager owns the sign-up/sign-in/sign-out lifecycle. It starts in
// StateUnknown and leaves it once, on the first completed resolution.
type SessionManager struct {
	client client.Client
	tokens TokenStore
	logger logging.Logger

	mu        sync.RWMutex
	snap      Snapshot
	listeners []func(Snapshot)
}

// NewSessionManager returns a manager in StateUnknown. Call Resolve to
// restore a stored token.
func NewSessionManager(c client.Client, tokens TokenStore, l logging.Logger) *SessionManager {
	return &SessionManager{
		client: c,
		tokens: tokens,
		logger: l.With("module", "session"),
		snap:   Snapshot{State: StateUnknown},
	}
}

// Snapshot returns the current state.
func (m *SessionManager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// OnChange registers fn to be called after every state transition.
func (m *SessionManager) OnChange(fn func(Snapshot)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// RequireIdentity returns the logged-in identity or ErrNotLoggedIn.
func (m *SessionManager) RequireIdentity() (models.Identity, error) {
	snap := m.Snapshot()
	if !snap.LoggedIn() {
		return models.Identity{}, ErrNotLoggedIn
	}
	return *snap.Identity, nil
}

func (m *SessionManager) set(state State, id *models.Identity) Snapshot {
	m.mu.Lock()
	prev := m.snap
	m.snap = Snapshot{State: state, Identity: id}
	snap := m.snap
	listeners := append([]func(Snapshot){}, m.listeners...)
	m.mu.Unlock()

	if prev.State != snap.State || !sameIdentity(prev.Identity, snap.Identity) {
		for _, fn := range listeners {
			fn(snap)
		}
	}
	return snap
}

func sameIdentity(a, b *models.Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Resolve rehydrates the stored token and settles the initial state. It is a
// no-op once the state is known. A transport failure still lands in
// StateLoggedOut, but the stored token is kept for the next attempt.
func (m *SessionManager) Resolve(ctx context.Context) (Snapshot, error) {
	if snap := m.Snapshot(); snap.State != StateUnknown {
		return snap, nil
	}

	token, err := m.tokens.Load(ctx)
	if err != nil {
		m.logger.Warn(ctx, "failed to load stored session", "error", err)
	}
	if token == "" {
		return m.set(StateLoggedOut, nil), nil
	}

	m.client.SetToken(token)
	if _, err := m.GetCurrentIdentity(ctx); err != nil {
		m.logger.Warn(ctx, "session resolution failed", "error", err)
		return m.set(StateLoggedOut, nil), err
	}
	return m.Snapshot(), nil
}

// GetCurrentIdentity asks the server who the current session belongs to.
// (nil, nil) means there is no session; it is never reported as an error.
// A session the server no longer recognises moves the state to
// StateLoggedOut.
func (m *SessionManager) GetCurrentIdentity(ctx context.Context) (*models.Identity, error) {
	id, err := m.client.GetSession(ctx)
	if err != nil {
		return nil, err
	}

	if id == nil {
		if m.client.Token() != "" {
			m.client.SetToken("")
		}
		m.clearStoredToken(ctx)
		m.set(StateLoggedOut, nil)
		return nil, nil
	}

	m.set(StateLoggedIn, id)
	return id, nil
}

// SignUp creates the identity and signs in with it. An existing account is
// reported as client.ErrValidation.
func (m *SessionManager) SignUp(ctx context.Context, email, password, name string) (*models.Identity, error) {
	if _, err := m.client.CreateIdentity(ctx, email, password, name); err != nil {
		if errors.Is(err, client.ErrConflict) {
			return nil, fmt.Errorf("%w: account already exists", client.ErrValidation)
		}
		return nil, fmt.Errorf("sign up: %w", err)
	}
	return m.SignIn(ctx, email, password)
}

// SignIn replaces any current session with a new one. Failure to revoke the
// old session is not reported.
func (m *SessionManager) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	if m.client.Token() != "" {
		if err := m.client.DeleteSession(ctx); err != nil {
			m.logger.Debug(ctx, "previous session not revoked", "error", err)
		}
	}

	session, err := m.client.CreateSession(ctx, email, password)
	if err != nil {
		// the old session is gone once the client dropped its token
		if m.client.Token() == "" {
			m.clearStoredToken(ctx)
			m.set(StateLoggedOut, nil)
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}

	if err := m.tokens.Save(ctx, session.Token); err != nil {
		m.logger.Warn(ctx, "failed to persist session", "error", err)
	}

	id := session.Identity
	m.set(StateLoggedIn, &id)
	m.logger.Info(ctx, "signed in", "user_id", id.ID)
	return &id, nil
}

// SignOut revokes the session on the server. Local state is cleared even
// when the remote call fails; that failure is still returned, except when
// the server had already dropped the session.
func (m *SessionManager) SignOut(ctx context.Context) error {
	if m.client.Token() == "" && !m.Snapshot().LoggedIn() {
		return ErrNotLoggedIn
	}

	err := m.client.DeleteSession(ctx)
	if errors.Is(err, client.ErrUnauthorized) {
		m.logger.Debug(ctx, "session already gone on the server", "error", err)
		err = nil
	}

	m.client.SetToken("")
	m.clearStoredToken(ctx)
	m.set(StateLoggedOut, nil)

	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (m *SessionManager) clearStoredToken(ctx context.Context) {
	if err := m.tokens.Clear(ctx); err != nil {
		m.logger.Warn(ctx, "failed to clear stored session", "error", err)
	}
}
