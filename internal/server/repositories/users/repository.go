// Package users stores accounts. Lookups return common.ErrorNotFound for a
// missing user and Create returns common.ErrorAlreadyExists when the
// username or email is taken.
package users

import (
	"context"

	"github.com/dmitrijs2005/ocrdesk/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Update overwrites the email and name of the user with user.ID and
	// returns the stored row.
	Update(ctx context.Context, user *models.User) (*models.User, error)
}
