// Package courses persists course records. Name fields are stored as
// ciphertext produced under the owner's "course" local token; the
// repository never sees plaintext.
package courses

import (
	"context"

	"github.com/dmitrijs2005/keywarden/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, course *models.Course) (*models.Course, error)
	FindByUser(ctx context.Context, userID int64) ([]*models.Course, error)
	// FindByID returns common.ErrNotFound for unknown ids.
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	// Update replaces the ciphertext of an existing course owned by
	// course.UserID; common.ErrNotFound when no such row.
	Update(ctx context.Context, course *models.Course) error
	// Delete removes the course only if it belongs to userID; deleting a
	// row that is absent or foreign yields common.ErrNotFound.
	Delete(ctx context.Context, id, userID int64) error
}
