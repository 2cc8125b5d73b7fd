package sessiontokens

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/keywarden/internal/common"
	"github.com/dmitrijs2005/keywarden/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+session_tokens\s*\(secret_hash,\s*user_id,\s*valid_until\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id\s*$`

	until := time.Now().Add(time.Hour)
	rows := sqlmock.NewRows([]string{"id"}).AddRow(7)
	mock.ExpectQuery(q).
		WithArgs("hash", int64(1), until).
		WillReturnRows(rows)

	got, err := repo.Create(context.Background(), &models.SessionToken{SecretHash: "hash", UserID: 1, ValidUntil: until})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 7 {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestFind_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*secret_hash,\s*user_id,\s*valid_until\s+FROM\s+session_tokens\s+WHERE\s+id\s*=\s*\$1\s*$`

	until := time.Now().Add(time.Hour)
	rows := sqlmock.NewRows([]string{"id", "secret_hash", "user_id", "valid_until"}).
		AddRow(7, "hash", 1, until)
	mock.ExpectQuery(q).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	got, err := repo.Find(context.Background(), 7)
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if got.ID != 7 || got.UserID != 1 || !got.ValidUntil.Equal(until) {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestFind_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*secret_hash`

	mock.ExpectQuery(q).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), 404)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+session_tokens\s+WHERE\s+id\s*=\s*\$1\s*$`

	// Zero rows affected is still success: revocation is idempotent.
	mock.ExpectExec(q).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 7); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDelete_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+session_tokens`

	mock.ExpectExec(q).
		WithArgs(int64(7)).
		WillReturnError(errors.New("db down"))

	err := repo.Delete(context.Background(), 7)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
