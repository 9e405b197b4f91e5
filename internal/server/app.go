// Package server wires the reflections API: it opens Postgres, applies the
// migrations, builds the services and serves them over HTTP until the
// process is signalled.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/dailyreflect/internal/logging"
	"github.com/dmitrijs2005/dailyreflect/internal/server/config"
	"github.com/dmitrijs2005/dailyreflect/internal/server/httpapi"
	"github.com/dmitrijs2005/dailyreflect/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dailyreflect/internal/server/services"
)

const (
	tokenPurgeInterval = time.Hour
	shutdownTimeout    = 10 * time.Second
)

type tokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	handler     http.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	us := services.NewUserService(db, rm, c)
	rs := services.NewReflectionService(db, rm)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		userService: us,
		handler:     httpapi.NewRouter(c.AllowedOrigins, logger, us, rs),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// serveHTTP blocks until ctx is done, then drains in-flight requests.
func serveHTTP(ctx context.Context, srv *http.Server, log logging.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "Starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// purgeTokensLoop removes expired refresh tokens every interval until ctx
// is done.
func purgeTokensLoop(ctx context.Context, p tokenPurger, interval time.Duration, log logging.Logger) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := p.PurgeExpiredTokens(ctx)
			if err != nil {
				log.Warn(ctx, "purge expired tokens", "error", err)
				continue
			}
			if n > 0 {
				log.Debug(ctx, "purged expired tokens", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:              app.config.EndpointAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := serveHTTP(ctx, srv, app.logger); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		purgeTokensLoop(ctx, app.userService, tokenPurgeInterval, app.logger)
	}()

	wg.Wait()
	app.logger.Info(ctx, "Stopped")
}
