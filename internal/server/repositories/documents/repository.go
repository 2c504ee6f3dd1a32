// Package documents stores records of named collections as JSON objects.
// Every write bumps the revision so callers can update optimistically.
package documents

import (
	"context"

	"github.com/dmitrijs2005/movieshelf/internal/server/models"
)

type Repository interface {
	// List returns documents matching every filter of q.
	List(ctx context.Context, q models.DocumentQuery) ([]*models.Document, error)
	Get(ctx context.Context, collection, id string) (*models.Document, error)
	// Create stores a new document with revision 1. A clash on the
	// collection's unique key yields common.ErrorAlreadyExists.
	Create(ctx context.Context, collection string, data map[string]any) (*models.Document, error)
	// Update merges fields into the document. When expectedRevision is
	// non-zero and differs from the stored one, common.ErrVersionConflict
	// is returned and nothing changes.
	Update(ctx context.Context, collection, id string, fields map[string]any, expectedRevision int64) (*models.Document, error)
	Delete(ctx context.Context, collection, id string) error
}
