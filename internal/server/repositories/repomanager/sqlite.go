package repomanager

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/keywarden/internal/dbx"
	"github.com/dmitrijs2005/keywarden/internal/server/migrations"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/courses"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/localtokens"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/sessionlocaltokens"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/sessiontokens"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/users"
)

// SqliteRepositoryManager serves single-node deployments, which is how the
// system originally ran. The protocol code is identical; only SQL dialect
// and time encoding differ.
type SqliteRepositoryManager struct{}

func NewSqliteRepositoryManager() *SqliteRepositoryManager {
	return &SqliteRepositoryManager{}
}

func (m *SqliteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSqliteRepository(db)
}

func (m *SqliteRepositoryManager) LocalTokens(db dbx.DBTX) localtokens.Repository {
	return localtokens.NewSqliteRepository(db)
}

func (m *SqliteRepositoryManager) SessionTokens(db dbx.DBTX) sessiontokens.Repository {
	return sessiontokens.NewSqliteRepository(db)
}

func (m *SqliteRepositoryManager) SessionLocalTokens(db dbx.DBTX) sessionlocaltokens.Repository {
	return sessionlocaltokens.NewSqliteRepository(db)
}

func (m *SqliteRepositoryManager) Courses(db dbx.DBTX) courses.Repository {
	return courses.NewSqliteRepository(db)
}

// RunMigrations sets up goose with the embedded migrations and applies the
// sqlite directory.
func (m *SqliteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return gooseUpContext(ctx, db, "sqlite")
}
