// Package sessionlocaltokens persists local-token copies re-wrapped under a
// session secret: the join entity that lets a live session reach a category
// without the password. All rows of a session are removed together at
// revocation, before the session record itself.
package sessionlocaltokens

import (
	"context"

	"github.com/dmitrijs2005/keywarden/internal/server/models"
)

type Repository interface {
	// Create inserts a session-wrapped copy. A duplicate
	// (local_token_id, session_id) pair yields common.ErrAlreadyExists.
	Create(ctx context.Context, token *models.SessionLocalToken) (*models.SessionLocalToken, error)
	// FindByLocalTokenAndSession returns common.ErrNotFound when the
	// session has no copy for this local token (session predates the
	// category, or corruption).
	FindByLocalTokenAndSession(ctx context.Context, localTokenID, sessionID int64) (*models.SessionLocalToken, error)
	// DeleteBySession removes every wrapped copy of one session.
	// Idempotent.
	DeleteBySession(ctx context.Context, sessionID int64) error
}
