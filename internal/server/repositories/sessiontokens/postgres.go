package sessiontokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/keywarden/internal/common"
	"github.com/dmitrijs2005/keywarden/internal/dbx"
	"github.com/dmitrijs2005/keywarden/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, token *models.SessionToken) (*models.SessionToken, error) {

	query :=
		`INSERT INTO session_tokens (secret_hash, user_id, valid_until)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		token.SecretHash, token.UserID, token.ValidUntil).Scan(&token.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return token, nil
}

func (r *PostgresRepository) Find(ctx context.Context, id int64) (*models.SessionToken, error) {
	query :=
		`SELECT id, secret_hash, user_id, valid_until FROM session_tokens
		 WHERE id = $1
		 `

	t := &models.SessionToken{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&t.ID, &t.SecretHash, &t.UserID, &t.ValidUntil)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM session_tokens WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
