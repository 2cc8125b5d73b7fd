package sessionlocaltokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/dmitrijs2005/keywarden/internal/common"
	"github.com/dmitrijs2005/keywarden/internal/dbx"
	"github.com/dmitrijs2005/keywarden/internal/server/models"
)

type SqliteRepository struct {
	db dbx.DBTX
}

func NewSqliteRepository(db dbx.DBTX) *SqliteRepository {
	return &SqliteRepository{db: db}
}

func (r *SqliteRepository) Create(ctx context.Context, token *models.SessionLocalToken) (*models.SessionLocalToken, error) {

	query :=
		`INSERT INTO session_local_tokens (local_token_id, token_crypt, session_id)
		 VALUES (?, ?, ?)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		token.LocalTokenID, token.TokenCrypt.Ciphertext, token.SessionID).Scan(&token.ID)

	if err != nil {
		var se *sqlite.Error
		if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return token, nil
}

func (r *SqliteRepository) FindByLocalTokenAndSession(ctx context.Context, localTokenID, sessionID int64) (*models.SessionLocalToken, error) {
	query :=
		`SELECT id, local_token_id, token_crypt, session_id FROM session_local_tokens
		 WHERE local_token_id = ? AND session_id = ?
		 `

	t := &models.SessionLocalToken{}
	err := r.db.QueryRowContext(ctx, query, localTokenID, sessionID).
		Scan(&t.ID, &t.LocalTokenID, &t.TokenCrypt.Ciphertext, &t.SessionID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

func (r *SqliteRepository) DeleteBySession(ctx context.Context, sessionID int64) error {
	query := `DELETE FROM session_local_tokens WHERE session_id = ?`

	if _, err := r.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
