// Package server initializes and runs the main application server. It opens
// the configured database, runs migrations, wires the services, and starts
// the HTTP endpoint with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/keywarden/internal/crypt"
	"github.com/dmitrijs2005/keywarden/internal/logging"
	"github.com/dmitrijs2005/keywarden/internal/server/config"
	"github.com/dmitrijs2005/keywarden/internal/server/httpapi"
	"github.com/dmitrijs2005/keywarden/internal/server/models"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/keywarden/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open(c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm, err := repomanager.New(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	provider, err := crypt.New(c.CryptProvider)
	if err != nil {
		return nil, err
	}

	kinds := make([]models.ResourceKind, 0, len(c.ResourceKinds))
	for _, k := range c.ResourceKinds {
		kinds = append(kinds, models.ResourceKind(k))
	}
	if len(kinds) == 0 {
		// An empty list would register users without any local tokens.
		kinds = models.DefaultResourceKinds()
	}

	auth := services.NewAuthService(db, rm, provider, logger,
		kinds, c.SessionTokenValidityDuration)
	courses := services.NewCourseService(db, rm, provider, logger)

	api := httpapi.NewServer(c.EndpointAddr, logger, auth, courses)

	return &App{config: c, logger: logger, db: db, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.api.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
