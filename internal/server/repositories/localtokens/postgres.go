package localtokens

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

func (r *PostgresRepository) Create(ctx context.Context, token *models.LocalToken) (*models.LocalToken, error) {

	query :=
		`INSERT INTO local_tokens (user_id, resource_kind, token_crypt)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		token.UserID, string(token.Kind), token.TokenCrypt.Ciphertext).Scan(&token.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return token, nil
}

func (r *PostgresRepository) FindByUser(ctx context.Context, userID int64) ([]*models.LocalToken, error) {
	query :=
		`SELECT id, user_id, resource_kind, token_crypt FROM local_tokens
		 WHERE user_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var tokens []*models.LocalToken
	for rows.Next() {
		t := &models.LocalToken{}
		var kind string
		if err := rows.Scan(&t.ID, &t.UserID, &kind, &t.TokenCrypt.Ciphertext); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		t.Kind = models.ResourceKind(kind)
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return tokens, nil
}

func (r *PostgresRepository) FindByUserAndKind(ctx context.Context, userID int64, kind models.ResourceKind) (*models.LocalToken, error) {
	query :=
		`SELECT id, user_id, resource_kind, token_crypt FROM local_tokens
		 WHERE user_id = $1 AND resource_kind = $2
		 `

	t := &models.LocalToken{}
	var k string
	err := r.db.QueryRowContext(ctx, query, userID, string(kind)).
		Scan(&t.ID, &t.UserID, &k, &t.TokenCrypt.Ciphertext)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	t.Kind = models.ResourceKind(k)
	return t, nil
}
