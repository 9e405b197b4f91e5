package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/dailyreflect/internal/client/client"
	"github.com/dmitrijs2005/dailyreflect/internal/client/config"
	"github.com/dmitrijs2005/dailyreflect/internal/client/remote"
	"github.com/dmitrijs2005/dailyreflect/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dailyreflect/internal/client/services"
	"github.com/dmitrijs2005/dailyreflect/internal/client/store"
	"github.com/dmitrijs2005/dailyreflect/internal/logging"
	"github.com/dmitrijs2005/dailyreflect/internal/models"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
	// ModeLocal means there is no server to reach.
	ModeLocal Mode = "local"
)

type App struct {
	config      *config.Config
	log         logging.Logger
	db          *sql.DB
	api         client.Client
	auth        services.AuthService
	reflections *services.ReflectionService
	remoteName  string

	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time

	modeMu sync.RWMutex
	mode   Mode
}

// NewApp opens the local database and wires services according to c.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	repo := metadata.NewSQLiteRepository(db)
	api := client.NewHTTPClient(c.ServerURL, c.RemoteTimeout)

	auth, err := newAuth(c, api, repo, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	adapter, err := newAdapter(ctx, c, api, auth)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	st := store.NewMetadataStore(repo, log)
	rs := services.NewReflectionService(st, adapter, auth, log, services.ReflectionConfig{
		RemoteTimeout: c.RemoteTimeout,
	})

	a := &App{
		config:      c,
		log:         log.With("module", "cli"),
		db:          db,
		auth:        auth,
		reflections: rs,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		now:         time.Now,
		mode:        ModeLocal,
	}
	if adapter != nil {
		a.remoteName = adapter.Name()
	}
	if usesServer(c) {
		a.api = api
		a.mode = ModeOffline
	}
	return a, nil
}

func usesServer(c *config.Config) bool {
	return c.Remote == config.RemoteREST || c.AuthMode == config.AuthSession
}

func newAuth(c *config.Config, api client.Client, repo metadata.Repository, log logging.Logger) (services.AuthService, error) {
	switch c.AuthMode {
	case config.AuthSession:
		return services.NewSessionAuth(api, repo, log), nil
	case config.AuthStatic:
		return services.NewStaticAuth(models.User{ID: c.StaticUser, Email: c.StaticEmail}), nil
	case config.AuthNone:
		return services.NewNoAuth(), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", c.AuthMode)
	}
}

func newAdapter(ctx context.Context, c *config.Config, api client.Client, auth services.AuthService) (remote.Adapter, error) {
	switch c.Remote {
	case config.RemoteNone:
		return nil, nil
	case config.RemoteREST:
		return remote.NewRESTAdapter(api, auth.Token), nil
	case config.RemoteS3:
		if c.S3.Bucket == "" {
			return nil, fmt.Errorf("remote %q needs s3_bucket", c.Remote)
		}
		s3c, err := remote.NewS3Client(ctx, c.S3)
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		return remote.NewBlobAdapter(s3c, c.S3.Bucket).WithPassphrase(c.S3.Passphrase), nil
	case config.RemoteFake:
		return remote.NewFakeAdapter(c.FakeLatency), nil
	default:
		return nil, fmt.Errorf("unknown remote %q", c.Remote)
	}
}

// Run restores the session, loads the journal and serves the REPL until the
// user exits or input ends. Background remote writes are awaited before the
// database is closed.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	if err := a.auth.Restore(ctx); err != nil {
		a.log.Warn(ctx, "could not restore session", "error", err)
	}
	a.reflections.Init(ctx)

	watchCtx, stop := context.WithCancel(ctx)
	defer stop()
	if a.api != nil {
		go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)
	}

	a.println("Daily reflections (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)

	a.reflections.Wait()
}

func (a *App) Mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.IsAuthenticated()
}

func (a *App) getStatus() string {
	s := ""
	if u, ok := a.auth.CurrentUser(); ok {
		s = u.Email + " "
	}
	s += string(a.Mode())
	return fmt.Sprintf("(%s)", s)
}

// StartOnlineStatusWatcher pings the server every interval and flips the
// mode shown in the prompt.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.checkOnline(ctx)
	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.api.Ping(pingCtx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
