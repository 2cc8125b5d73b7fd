// Package repomanager wires repository constructors and database
// migrations together behind one interface, so services stay ignorant of
// the SQL dialect in use.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/keywarden/internal/dbx"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/courses"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/localtokens"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/sessionlocaltokens"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/sessiontokens"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/users"
)

// Supported database drivers.
const (
	DriverPgx    = "pgx"
	DriverSqlite = "sqlite"
)

// RepositoryManager hands out repositories bound to a DBTX (either the
// pooled *sql.DB or a transaction) and runs the dialect's migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	LocalTokens(db dbx.DBTX) localtokens.Repository
	SessionTokens(db dbx.DBTX) sessiontokens.Repository
	SessionLocalTokens(db dbx.DBTX) sessionlocaltokens.Repository
	Courses(db dbx.DBTX) courses.Repository
}

// New returns the manager for the configured driver name.
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case DriverPgx:
		return NewPostgresRepositoryManager(), nil
	case DriverSqlite:
		return NewSqliteRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown database driver: %s", driver)
	}
}
