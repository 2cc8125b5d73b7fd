package sessiontokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *SqliteRepository) Create(ctx context.Context, token *models.SessionToken) (*models.SessionToken, error) {

	query :=
		`INSERT INTO session_tokens (secret_hash, user_id, valid_until)
		 VALUES (?, ?, ?)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		token.SecretHash, token.UserID, token.ValidUntil.Unix()).Scan(&token.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return token, nil
}

func (r *SqliteRepository) Find(ctx context.Context, id int64) (*models.SessionToken, error) {
	query :=
		`SELECT id, secret_hash, user_id, valid_until FROM session_tokens
		 WHERE id = ?
		 `

	t := &models.SessionToken{}
	var validUntil int64
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&t.ID, &t.SecretHash, &t.UserID, &validUntil)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	t.ValidUntil = time.Unix(validUntil, 0).UTC()
	return t, nil
}

func (r *SqliteRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM session_tokens WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
