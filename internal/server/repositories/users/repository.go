// Package users persists user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/keywarden/internal/server/models"
)

type Repository interface {
	// Create inserts a new user. A duplicate username yields
	// common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByLogin returns common.ErrNotFound for unknown usernames.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
