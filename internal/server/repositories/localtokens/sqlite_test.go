package localtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/keywarden/internal/common"
	"github.com/dmitrijs2005/keywarden/internal/crypt"
	"github.com/dmitrijs2005/keywarden/internal/server/models"
)

var testDBSeq int

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:localtokens_test_%d?mode=memory&cache=shared", testDBSeq)
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE local_tokens (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		resource_kind TEXT NOT NULL,
		token_crypt BLOB NOT NULL,
		UNIQUE (user_id, resource_kind)
	)`)
	require.NoError(t, err)
	return db
}

func TestCreate_UniquePerUserAndKind(t *testing.T) {
	db := setupDB(t)
	repo := NewSqliteRepository(db)
	ctx := context.Background()

	token := &models.LocalToken{
		UserID:     1,
		Kind:       models.KindCourse,
		TokenCrypt: crypt.EncryptedString{Ciphertext: []byte("wrapped")},
	}

	created, err := repo.Create(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	// Same (user, kind) again.
	_, err = repo.Create(ctx, &models.LocalToken{
		UserID:     1,
		Kind:       models.KindCourse,
		TokenCrypt: crypt.EncryptedString{Ciphertext: []byte("other")},
	})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	// Same kind, different user is fine.
	_, err = repo.Create(ctx, &models.LocalToken{
		UserID:     2,
		Kind:       models.KindCourse,
		TokenCrypt: crypt.EncryptedString{Ciphertext: []byte("wrapped2")},
	})
	assert.NoError(t, err)
}

func TestFindByUser_OrderedAndScoped(t *testing.T) {
	db := setupDB(t)
	repo := NewSqliteRepository(db)
	ctx := context.Background()

	for i, kind := range []models.ResourceKind{"course", "note", "file"} {
		_, err := repo.Create(ctx, &models.LocalToken{
			UserID:     1,
			Kind:       kind,
			TokenCrypt: crypt.EncryptedString{Ciphertext: []byte{byte(i)}},
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &models.LocalToken{
		UserID:     2,
		Kind:       "course",
		TokenCrypt: crypt.EncryptedString{Ciphertext: []byte("x")},
	})
	require.NoError(t, err)

	tokens, err := repo.FindByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, models.ResourceKind("course"), tokens[0].Kind)
	assert.Equal(t, models.ResourceKind("note"), tokens[1].Kind)
	assert.Equal(t, models.ResourceKind("file"), tokens[2].Kind)

	tokens, err = repo.FindByUser(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestFindByUserAndKind(t *testing.T) {
	db := setupDB(t)
	repo := NewSqliteRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.LocalToken{
		UserID:     1,
		Kind:       models.KindCourse,
		TokenCrypt: crypt.EncryptedString{Ciphertext: []byte("wrapped")},
	})
	require.NoError(t, err)

	got, err := repo.FindByUserAndKind(ctx, 1, models.KindCourse)
	require.NoError(t, err)
	assert.Equal(t, []byte("wrapped"), got.TokenCrypt.Ciphertext)

	_, err = repo.FindByUserAndKind(ctx, 1, "note")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}
