package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/movieshelf/internal/server/repositories/documents"
	"github.com/dmitrijs2005/movieshelf/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/movieshelf/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps everything in process memory. WithTx
// serialises callers but does not roll back partial writes.
type InMemoryRepositoryManager struct {
	txMu  sync.Mutex
	repos Repositories
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		repos: Repositories{
			Users:     users.NewMemoryRepository(),
			Sessions:  sessions.NewMemoryRepository(),
			Documents: documents.NewMemoryRepository(),
		},
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Repositories() Repositories { return m.repos }

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, m.repos)
}

func (m *InMemoryRepositoryManager) Ping(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Close() error { return nil }
