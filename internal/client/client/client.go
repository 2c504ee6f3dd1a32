package client

import (
	"context"

	"github.com/dmitrijs2005/movieshelf/internal/client/models"
)

// Client is the RemoteStore surface the services use. Errors are mapped to
// the kinds in errors.go.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	// SetToken replaces the session token attached to calls; "" clears it.
	SetToken(token string)
	Token() string

	CreateIdentity(ctx context.Context, email, password, name string) (*models.Identity, error)
	// CreateSession signs in and adopts the returned token. A token held
	// before the call is handed to the server for revocation.
	CreateSession(ctx context.Context, email, password string) (*models.Session, error)
	// DeleteSession revokes the current session. The token is dropped once
	// the server no longer knows it.
	DeleteSession(ctx context.Context) error
	// GetSession returns (nil, nil) when there is no valid session.
	GetSession(ctx context.Context) (*models.Identity, error)

	List(ctx context.Context, collection string, q models.Query) ([]*models.Document, error)
	Create(ctx context.Context, collection string, fields map[string]any) (*models.Document, error)
	// Update merges fields into the document. expectedRevision > 0 makes the
	// write conditional; a mismatch fails with ErrConflict.
	Update(ctx context.Context, collection, id string, fields map[string]any, expectedRevision int64) (*models.Document, error)
	Delete(ctx context.Context, collection, id string) error
}
