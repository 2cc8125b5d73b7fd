package localtokens

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

func (r *SqliteRepository) Create(ctx context.Context, token *models.LocalToken) (*models.LocalToken, error) {

	query :=
		`INSERT INTO local_tokens (user_id, resource_kind, token_crypt)
		 VALUES (?, ?, ?)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		token.UserID, string(token.Kind), token.TokenCrypt.Ciphertext).Scan(&token.ID)

	if err != nil {
		var se *sqlite.Error
		if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return token, nil
}

func (r *SqliteRepository) FindByUser(ctx context.Context, userID int64) ([]*models.LocalToken, error) {
	query :=
		`SELECT id, user_id, resource_kind, token_crypt FROM local_tokens
		 WHERE user_id = ?
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

func (r *SqliteRepository) FindByUserAndKind(ctx context.Context, userID int64, kind models.ResourceKind) (*models.LocalToken, error) {
	query :=
		`SELECT id, user_id, resource_kind, token_crypt FROM local_tokens
		 WHERE user_id = ? AND resource_kind = ?
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
