// Package localtokens persists the password-wrapped per-category key
// material. Rows are created at provisioning and never updated.
package localtokens

import (
	"context"

	"github.com/dmitrijs2005/keywarden/internal/server/models"
)

type Repository interface {
	// Create inserts a password-wrapped local token. A duplicate
	// (user, kind) pair yields common.ErrAlreadyExists.
	Create(ctx context.Context, token *models.LocalToken) (*models.LocalToken, error)
	// FindByUser lists every local token the user owns.
	FindByUser(ctx context.Context, userID int64) ([]*models.LocalToken, error)
	// FindByUserAndKind returns common.ErrNotFound when the category was
	// never provisioned for the user.
	FindByUserAndKind(ctx context.Context, userID int64, kind models.ResourceKind) (*models.LocalToken, error)
}
