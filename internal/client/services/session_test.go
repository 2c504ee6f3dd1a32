package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/movieshelf/internal/client/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) (*SessionManager, *fakeRemote, *memTokens) {
	t.Helper()
	f := newFakeRemote()
	tokens := &memTokens{}
	return NewSessionManager(f, tokens, nopLogger()), f, tokens
}

func seedUser(t *testing.T, f *fakeRemote, email, password string) {
	t.Helper()
	_, err := f.CreateIdentity(context.Background(), email, password, "Ann")
	require.NoError(t, err)
}

func TestSessionManager_StartsUnknown(t *testing.T) {
	m, _, _ := newSession(t)
	assert.Equal(t, StateUnknown, m.Snapshot().State)
	assert.False(t, m.Snapshot().LoggedIn())

	_, err := m.RequireIdentity()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestResolve_NoStoredToken(t *testing.T) {
	m, f, _ := newSession(t)

	var seen []State
	m.OnChange(func(s Snapshot) { seen = append(seen, s.State) })

	snap, err := m.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateLoggedOut, snap.State)
	assert.Equal(t, []State{StateLoggedOut}, seen)
	assert.Zero(t, f.calls["GetSession"])
}

func TestResolve_RehydratesStoredToken(t *testing.T) {
	m, f, tokens := newSession(t)
	seedUser(t, f, "ann@example.com", "password1")
	s, err := f.CreateSession(context.Background(), "ann@example.com", "password1")
	require.NoError(t, err)
	f.SetToken("")
	tokens.token = s.Token

	snap, err := m.Resolve(context.Background())
	require.NoError(t, err)
	require.True(t, snap.LoggedIn())
	assert.Equal(t, "ann@example.com", snap.Identity.Email)
	assert.Equal(t, s.Token, f.Token())
}

func TestResolve_StaleTokenIsCleared(t *testing.T) {
	m, f, tokens := newSession(t)
	tokens.token = "revoked"

	snap, err := m.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateLoggedOut, snap.State)
	assert.Empty(t, tokens.token)
	assert.Empty(t, f.Token())
}

func TestResolve_NetworkFailureKeepsToken(t *testing.T) {
	m, f, tokens := newSession(t)
	tokens.token = "maybe-valid"
	f.errs["GetSession"] = fmt.Errorf("%w: down", client.ErrNetwork)

	snap, err := m.Resolve(context.Background())
	assert.ErrorIs(t, err, client.ErrNetwork)
	assert.Equal(t, StateLoggedOut, snap.State)
	assert.Equal(t, "maybe-valid", tokens.token)
}

func TestResolve_OnlyOnce(t *testing.T) {
	m, f, _ := newSession(t)

	_, err := m.Resolve(context.Background())
	require.NoError(t, err)

	f.errs["GetSession"] = fmt.Errorf("%w: down", client.ErrNetwork)
	snap, err := m.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateLoggedOut, snap.State)
}

func TestSignUp_SignsIn(t *testing.T) {
	m, f, tokens := newSession(t)

	id, err := m.SignUp(context.Background(), "bob@example.com", "password1", "Bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob", id.Name)

	snap := m.Snapshot()
	require.True(t, snap.LoggedIn())
	assert.Equal(t, id.ID, snap.Identity.ID)
	assert.Equal(t, f.Token(), tokens.token)
}

func TestSignUp_ExistingAccountIsValidationError(t *testing.T) {
	m, f, _ := newSession(t)
	seedUser(t, f, "bob@example.com", "password1")

	_, err := m.SignUp(context.Background(), "bob@example.com", "password2", "Bob")
	assert.ErrorIs(t, err, client.ErrValidation)
	assert.NotEqual(t, StateLoggedIn, m.Snapshot().State)
}

func TestSignUp_NetworkError(t *testing.T) {
	m, f, _ := newSession(t)
	f.errs["CreateIdentity"] = fmt.Errorf("%w: down", client.ErrNetwork)

	_, err := m.SignUp(context.Background(), "bob@example.com", "password1", "Bob")
	assert.ErrorIs(t, err, client.ErrNetwork)
}

func TestSignIn_BadCredentials(t *testing.T) {
	m, f, _ := newSession(t)
	seedUser(t, f, "ann@example.com", "password1")
	_, _ = m.Resolve(context.Background())

	_, err := m.SignIn(context.Background(), "ann@example.com", "wrong")
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, StateLoggedOut, m.Snapshot().State)
}

func TestSignIn_FailureWhileLoggedIn(t *testing.T) {
	m, f, tokens := newSession(t)
	seedUser(t, f, "ann@example.com", "password1")
	ctx := context.Background()

	_, err := m.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)

	_, err = m.SignIn(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	assert.Equal(t, StateLoggedOut, m.Snapshot().State)
	assert.Empty(t, f.Token())
	assert.Empty(t, tokens.token)
	assert.Zero(t, f.activeSessions())
	_, err = m.RequireIdentity()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestSignIn_FailureAfterFailedRevokeKeepsOldSession(t *testing.T) {
	m, f, tokens := newSession(t)
	seedUser(t, f, "ann@example.com", "password1")
	ctx := context.Background()

	_, err := m.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)
	stored := tokens.token

	f.errs["DeleteSession"] = fmt.Errorf("%w: down", client.ErrNetwork)
	f.errs["CreateSession"] = fmt.Errorf("%w: down", client.ErrNetwork)
	_, err = m.SignIn(ctx, "ann@example.com", "password1")
	assert.ErrorIs(t, err, client.ErrNetwork)

	assert.True(t, m.Snapshot().LoggedIn())
	assert.Equal(t, stored, f.Token())
	assert.Equal(t, stored, tokens.token)
	assert.Equal(t, 1, f.activeSessions())
}

func TestSignIn_ReplacesExistingSession(t *testing.T) {
	m, f, _ := newSession(t)
	seedUser(t, f, "ann@example.com", "password1")
	ctx := context.Background()

	_, err := m.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)
	_, err = m.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)

	assert.Equal(t, 1, f.activeSessions())
	assert.Equal(t, 1, f.calls["DeleteSession"])
}

func TestSignIn_RevokeFailureIsSwallowed(t *testing.T) {
	m, f, _ := newSession(t)
	seedUser(t, f, "ann@example.com", "password1")
	ctx := context.Background()

	_, err := m.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)

	f.errs["DeleteSession"] = fmt.Errorf("%w: down", client.ErrNetwork)
	id, err := m.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", id.Email)
	assert.Equal(t, 1, f.activeSessions())
}

func TestSignOutThenSignIn_SameIdentity(t *testing.T) {
	m, f, tokens := newSession(t)
	seedUser(t, f, "ann@example.com", "password1")
	ctx := context.Background()

	first, err := m.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)

	require.NoError(t, m.SignOut(ctx))
	assert.Equal(t, StateLoggedOut, m.Snapshot().State)
	assert.Empty(t, tokens.token)

	id, err := m.GetCurrentIdentity(ctx)
	require.NoError(t, err)
	assert.Nil(t, id)

	second, err := m.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, m.Snapshot().LoggedIn())
}

func TestSignOut_RemoteFailureStillClearsLocalState(t *testing.T) {
	m, f, tokens := newSession(t)
	seedUser(t, f, "ann@example.com", "password1")
	ctx := context.Background()

	_, err := m.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)

	f.errs["DeleteSession"] = fmt.Errorf("%w: down", client.ErrNetwork)
	err = m.SignOut(ctx)
	assert.ErrorIs(t, err, client.ErrNetwork)

	assert.Equal(t, StateLoggedOut, m.Snapshot().State)
	assert.Empty(t, f.Token())
	assert.Empty(t, tokens.token)
}

func TestSignOut_ServerAlreadyDroppedSession(t *testing.T) {
	m, f, tokens := newSession(t)
	seedUser(t, f, "ann@example.com", "password1")
	ctx := context.Background()

	_, err := m.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)

	f.mu.Lock()
	f.sessions = map[string]string{}
	f.mu.Unlock()

	require.NoError(t, m.SignOut(ctx))
	assert.Equal(t, StateLoggedOut, m.Snapshot().State)
	assert.Empty(t, f.Token())
	assert.Empty(t, tokens.token)
}

func TestSignOut_NotLoggedIn(t *testing.T) {
	m, _, _ := newSession(t)
	_, _ = m.Resolve(context.Background())

	assert.ErrorIs(t, m.SignOut(context.Background()), ErrNotLoggedIn)
}

func TestGetCurrentIdentity_ServerDroppedSession(t *testing.T) {
	m, f, _ := newSession(t)
	seedUser(t, f, "ann@example.com", "password1")
	ctx := context.Background()

	_, err := m.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)

	f.mu.Lock()
	f.sessions = map[string]string{}
	f.mu.Unlock()

	id, err := m.GetCurrentIdentity(ctx)
	require.NoError(t, err)
	assert.Nil(t, id)
	assert.Equal(t, StateLoggedOut, m.Snapshot().State)
}

func TestOnChange_FiresOnTransitionsOnly(t *testing.T) {
	m, f, _ := newSession(t)
	seedUser(t, f, "ann@example.com", "password1")
	ctx := context.Background()

	var seen []State
	m.OnChange(func(s Snapshot) { seen = append(seen, s.State) })

	_, _ = m.Resolve(ctx)
	_, _ = m.SignIn(ctx, "ann@example.com", "password1")
	_, _ = m.GetCurrentIdentity(ctx)
	_ = m.SignOut(ctx)

	assert.Equal(t, []State{StateLoggedOut, StateLoggedIn, StateLoggedOut}, seen)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unknown", StateUnknown.String())
	assert.Equal(t, "logged out", StateLoggedOut.String())
	assert.Equal(t, "logged in", StateLoggedIn.String())
}
