// Package repomanager bundles the server repositories behind one backend:
// Postgres for deployments, process memory for local runs and tests.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/movieshelf/internal/server/repositories/documents"
	"github.com/dmitrijs2005/movieshelf/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/movieshelf/internal/server/repositories/users"
)

// Repositories is a set of repositories bound to the same connection or
// transaction.
type Repositories struct {
	Users     users.Repository
	Sessions  sessions.Repository
	Documents documents.Repository
}

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	// Repositories returns repositories outside any transaction.
	Repositories() Repositories
	// WithTx runs fn with repositories bound to one transaction, committed
	// when fn returns nil.
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
	Ping(ctx context.Context) error
	Close() error
}
