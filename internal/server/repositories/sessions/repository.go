// Package sessions persists signed-in devices. A token is only honoured while
// its session row exists.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/movieshelf/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Session) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	// Delete removes a session; a missing one yields common.ErrorNotFound.
	Delete(ctx context.Context, id string) error
	// DeleteExpired purges sessions whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
