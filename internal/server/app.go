// Package server initializes and runs the credkeeper server: it opens the
// database, applies migrations, wires the services together, and starts
// the HTTP endpoint with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/avetisov/credkeeper/internal/logging"
	"github.com/avetisov/credkeeper/internal/server/auth"
	"github.com/avetisov/credkeeper/internal/server/config"
	"github.com/avetisov/credkeeper/internal/server/httpapi"
	"github.com/avetisov/credkeeper/internal/server/notifier"
	"github.com/avetisov/credkeeper/internal/server/repositories/repomanager"
	"github.com/avetisov/credkeeper/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	activation  *services.ActivationService
	credentials *services.CredentialService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	codec := auth.NewTokenCodec([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)
	verifier := services.NewAccountPasswordVerifier(db, rm)

	var n notifier.Notifier
	if cfg.SMTPAddr != "" {
		n = notifier.NewSMTPNotifier(cfg.SMTPAddr, cfg.SMTPFrom, cfg.PublicBaseURL)
	} else {
		n = notifier.NewLogNotifier(logger, cfg.PublicBaseURL)
	}

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		activation:  services.NewActivationService(db, rm, n, cfg, logger),
		credentials: services.NewCredentialService(db, rm, codec, verifier, logger),
	}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	handler := httpapi.NewHandler(app.activation, app.credentials, app.logger)
	s := httpapi.NewHTTPServer(app.config.EndpointAddr, handler, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
