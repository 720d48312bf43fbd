package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/omnisent/omnisent/internal/client/api"
	"github.com/omnisent/omnisent/internal/client/config"
	"github.com/omnisent/omnisent/internal/client/repositories/credentials"
	"github.com/omnisent/omnisent/internal/client/session"
	"github.com/omnisent/omnisent/internal/client/uploads"
	"github.com/omnisent/omnisent/internal/logging"

	_ "modernc.org/sqlite"
)

// App ties together the session manager, the API client and the upload
// queue behind the REPL command surface.
type App struct {
	config  *config.Config
	api     api.Client
	session *session.Manager
	queue   *uploads.Queue
	logger  logging.Logger
	reader  *bufio.Reader
	db      *sql.DB

	stopAutoLogout func()
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := sql.Open("sqlite", c.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := credentials.InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	mgr := session.NewManager(credentials.NewSQLiteRepository(db), logger)
	if err := mgr.Load(ctx); err != nil {
		logger.Warn(ctx, "could not restore previous session", "error", err)
	}

	apiClient := api.NewHTTPClient(c.ServerURL, mgr.Token)
	queue := uploads.NewQueue(apiClient, logger, uploads.WithConcurrency(c.UploadConcurrency))

	return &App{
		config:  c,
		api:     apiClient,
		session: mgr,
		queue:   queue,
		logger:  logger,
		reader:  bufio.NewReader(os.Stdin),
		db:      db,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

// sessionExpired runs when the auto-logout timer (or the periodic
// re-validation check) decides the credential is gone.
func (a *App) sessionExpired() {
	printlnFn("Session expired, you have been logged out.")
}

func (a *App) getStatus() string {
	u := a.session.User()
	if u == nil {
		return "(not logged in)"
	}
	return fmt.Sprintf("(%s %s)", u.Username, u.Role)
}

// Run starts the background session watchers and the REPL, blocking until
// the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	go a.session.StartRevalidation(ctx, a.config.RevalidateInterval)

	if a.session.IsAuthenticated() {
		a.stopAutoLogout = a.session.ScheduleAutoLogout(a.sessionExpired)
		printlnFn("Welcome back,", a.session.User().Username)
	}

	printlnFn("Omnisent CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

// Close releases the API client, waits out running transfers and closes the
// local database.
func (a *App) Close() {
	if a.stopAutoLogout != nil {
		a.stopAutoLogout()
	}
	a.queue.Wait()
	if err := a.api.Close(); err != nil {
		a.logger.Error(context.Background(), "error closing api client", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error(context.Background(), "error closing database", "error", err)
	}
}
