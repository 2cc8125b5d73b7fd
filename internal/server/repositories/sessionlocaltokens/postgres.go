package sessionlocaltokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

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

func (r *PostgresRepository) Create(ctx context.Context, token *models.SessionLocalToken) (*models.SessionLocalToken, error) {

	query :=
		`INSERT INTO session_local_tokens (local_token_id, token_crypt, session_id)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		token.LocalTokenID, token.TokenCrypt.Ciphertext, token.SessionID).Scan(&token.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return token, nil
}

func (r *PostgresRepository) FindByLocalTokenAndSession(ctx context.Context, localTokenID, sessionID int64) (*models.SessionLocalToken, error) {
	query :=
		`SELECT id, local_token_id, token_crypt, session_id FROM session_local_tokens
		 WHERE local_token_id = $1 AND session_id = $2
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

func (r *PostgresRepository) DeleteBySession(ctx context.Context, sessionID int64) error {
	query := `DELETE FROM session_local_tokens WHERE session_id = $1`

	if _, err := r.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
