// Package users persists accounts. Emails are stored lowercased and are unique.
package users

import (
	"context"

	"github.com/dmitrijs2005/movieshelf/internal/server/models"
)

type Repository interface {
	// Create stores u; a taken email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
