package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/keywarden/internal/dbx"
	"github.com/dmitrijs2005/keywarden/internal/server/migrations"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/courses"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/localtokens"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/sessionlocaltokens"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/sessiontokens"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/users"
)

type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) LocalTokens(db dbx.DBTX) localtokens.Repository {
	return localtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) SessionTokens(db dbx.DBTX) sessiontokens.Repository {
	return sessiontokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) SessionLocalTokens(db dbx.DBTX) sessionlocaltokens.Repository {
	return sessionlocaltokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Courses(db dbx.DBTX) courses.Repository {
	return courses.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing RunMigrations.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and applies the
// postgres directory.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return gooseUpContext(ctx, db, "postgres")
}
