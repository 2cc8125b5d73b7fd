// Package sessiontokens persists session records: one row per login,
// holding the hash of the bearer secret and the expiry instant.
package sessiontokens

import (
	"context"

	"github.com/dmitrijs2005/keywarden/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, token *models.SessionToken) (*models.SessionToken, error)
	// Find returns common.ErrNotFound for unknown or already revoked ids.
	Find(ctx context.Context, id int64) (*models.SessionToken, error)
	// Delete is idempotent: deleting an absent row is not an error.
	Delete(ctx context.Context, id int64) error
}
