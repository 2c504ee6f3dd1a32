// Package services contains server-side business logic. AccountService
// handles sign-up, sign-in and the sessions tokens are bound to.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/movieshelf/internal/common"
	"github.com/dmitrijs2005/movieshelf/internal/cryptox"
	"github.com/dmitrijs2005/movieshelf/internal/server/auth"
	"github.com/dmitrijs2005/movieshelf/internal/server/config"
	"github.com/dmitrijs2005/movieshelf/internal/server/models"
	"github.com/dmitrijs2005/movieshelf/internal/server/repositories/repomanager"
)

// Caller is the authenticated principal of a request.
type Caller struct {
	User    *models.User
	Session *models.Session
}

// SignedSession is a freshly created session and its bearer token.
type SignedSession struct {
	Token   string
	User    *models.User
	Session *models.Session
}

type AccountService struct {
	repomanager       repomanager.RepositoryManager
	jwtSecret         []byte
	sessionValidity   time.Duration
	minPasswordLength int
	now               func() time.Time
}

func NewAccountService(m repomanager.RepositoryManager, cfg *config.Config) *AccountService {
	return &AccountService{
		repomanager:       m,
		jwtSecret:         []byte(cfg.SecretKey),
		sessionValidity:   cfg.SessionValidityDuration,
		minPasswordLength: cfg.MinPasswordLength,
		now:               time.Now,
	}
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
}

// CreateIdentity registers a new account.
func (s *AccountService) CreateIdentity(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, validationError("invalid email")
	}
	if name == "" {
		return nil, validationError("name is required")
	}
	if len(password) < s.minPasswordLength {
		return nil, validationError(fmt.Sprintf("password must be at least %d characters", s.minPasswordLength))
	}

	hash, salt := cryptox.HashPassword(password)
	u, err := s.repomanager.Repositories().Users.Create(ctx, &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Salt:         salt,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// CreateSession verifies credentials and opens a session. A previous token
// held by the device is revoked in the same transaction, whichever user it
// belonged to, so a device never keeps two live sessions.
func (s *AccountService) CreateSession(ctx context.Context, email, password, previous string) (*SignedSession, error) {
	user, err := s.repomanager.Repositories().Users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	if !cryptox.VerifyPassword(password, user.Salt, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	var session *models.Session
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if claims := s.previousClaims(previous); claims != nil {
			if err := r.Sessions.Delete(ctx, claims.SessionID); err != nil && !errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("error revoking previous session: %w", err)
			}
		}

		var err error
		session, err = r.Sessions.Create(ctx, &models.Session{
			UserID:    user.ID,
			ExpiresAt: s.now().Add(s.sessionValidity),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken(user.ID, session.ID, s.jwtSecret, session.ExpiresAt)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &SignedSession{Token: token, User: user, Session: session}, nil
}

// previousClaims reads a token handed back on sign-in. Expired tokens still
// name a session worth revoking, so only the signature is trusted here.
func (s *AccountService) previousClaims(token string) *auth.Claims {
	if token == "" {
		return nil
	}
	claims, err := auth.ParseIgnoringExpiry(token, s.jwtSecret)
	if err != nil {
		return nil
	}
	return claims
}

// Authenticate resolves a bearer token to its caller. The session must still
// exist and be unexpired.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*Caller, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	repos := s.repomanager.Repositories()

	session, err := repos.Sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading session: %w", err)
	}
	if session.UserID != claims.UserID {
		return nil, common.ErrInvalidToken
	}
	if session.Expired(s.now()) {
		return nil, common.ErrSessionExpired
	}

	user, err := repos.Users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	return &Caller{User: user, Session: session}, nil
}

// DeleteSession revokes the session. Already gone counts as done.
func (s *AccountService) DeleteSession(ctx context.Context, sessionID string) error {
	err := s.repomanager.Repositories().Sessions.Delete(ctx, sessionID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions drops sessions past their expiry and reports how many.
func (s *AccountService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.repomanager.Repositories().Sessions.DeleteExpired(ctx, s.now())
}
