// Package cli provides the bakelink command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ericfisherdev/bakelink/internal/adapter/driven/bakelink"
	"github.com/ericfisherdev/bakelink/internal/adapter/driven/notify"
	sqliteadapter "github.com/ericfisherdev/bakelink/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/bakelink/internal/application"
	"github.com/ericfisherdev/bakelink/internal/config"
)

// errNotLoggedIn is returned by commands that need a session when none is stored.
var errNotLoggedIn = errors.New(`not logged in; run "bakelink login"`)

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	apiURL string
	dbPath string

	// transport replaces http.DefaultTransport when set.
	transport http.RoundTripper
}

func (g *globalFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&g.apiURL, "api-url", "", "backend base URL (overrides BAKELINK_API_URL)")
	fs.StringVar(&g.dbPath, "db", "", "session database path (overrides BAKELINK_DB_PATH)")
}

// Option customizes the root command.
type Option func(*globalFlags)

// WithTransport sends every backend request through rt.
func WithTransport(rt http.RoundTripper) Option {
	return func(g *globalFlags) { g.transport = rt }
}

// NewRootCmd creates the root command for the bakelink CLI.
func NewRootCmd(opts ...Option) *cobra.Command {
	g := &globalFlags{}
	for _, opt := range opts {
		opt(g)
	}

	cmd := &cobra.Command{
		Use:   "bakelink",
		Short: "bakelink - bakery back-office client",
		Long: `bakelink talks to the bakery back-office API: it manages the login
session and lets you work with orders, products, categories and schedules.`,
		SilenceUsage: true,
	}

	g.bind(cmd.PersistentFlags())

	cmd.AddCommand(newLoginCmd(g))
	cmd.AddCommand(newLogoutCmd(g))
	cmd.AddCommand(newWhoamiCmd(g))
	cmd.AddCommand(newStatusCmd(g))
	cmd.AddCommand(newResourceCmd(g, resourceSpec{
		use:    "orders",
		short:  "Manage customer orders",
		status: orderStatusFilter,
		service: func(c *bakelink.Client) resourceService {
			return c.Orders
		},
	}))
	cmd.AddCommand(newResourceCmd(g, resourceSpec{
		use:   "products",
		short: "Manage products",
		service: func(c *bakelink.Client) resourceService {
			return c.Products
		},
	}))
	cmd.AddCommand(newResourceCmd(g, resourceSpec{
		use:     "categories",
		aliases: []string{"product-categories"},
		short:   "Manage product categories",
		service: func(c *bakelink.Client) resourceService {
			return c.ProductCategories
		},
	}))
	cmd.AddCommand(newSchedulesCmd(g))
	cmd.AddCommand(newUploadCmd(g))
	cmd.AddCommand(newOptionsCmd())

	return cmd
}

// app is the wired object graph for one command invocation.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sqliteadapter.DB
	creds    *sqliteadapter.CredentialRepo
	session  *application.Session
	sessions *application.SessionStore
	client   *bakelink.Client
}

// open loads configuration, opens the session database and wires the
// pipeline and session store. The persisted token is restored before return.
func open(ctx context.Context, cmd *cobra.Command, g *globalFlags) (*app, error) {
	cfg, err := config.LoadWith(config.Overrides{APIURL: g.apiURL, DBPath: g.dbPath})
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))
	logger.Debug("config loaded",
		"api_url", cfg.APIURL,
		"db_path", cfg.DBPath,
		"encrypted", cfg.HasSecretKey(),
		"http_cache", cfg.HTTPCache,
	)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}

	creds := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
	tokens := sqliteadapter.NewTokenRepo(creds)
	session := application.NewSession()
	notifier := notify.NewTerminal(cmd.ErrOrStderr(), cmd.InOrStdin())
	httpClient := bakelink.NewHTTPClient(g.transport, cfg.HTTPCache, cfg.HTTPTimeout, logger)

	pipeline, err := bakelink.NewPipeline(httpClient, cfg.APIURL, session, notifier, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	client := bakelink.NewClient(pipeline)
	sessions := application.NewSessionStore(session, client.Auth, tokens, logger)

	if err := sessions.Restore(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		creds:    creds,
		session:  session,
		sessions: sessions,
		client:   client,
	}, nil
}

// Close releases the session database.
func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}

// requireSession is the route guard for commands that call authenticated endpoints.
func (a *app) requireSession() error {
	if !a.session.Authenticated() {
		return errNotLoggedIn
	}
	return nil
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, g *globalFlags, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := open(ctx, cmd, g)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// withSession is withApp behind the route guard. A 401 from the backend
// means the stored token is no longer accepted, so the session is dropped.
func withSession(cmd *cobra.Command, g *globalFlags, fn func(ctx context.Context, a *app) error) error {
	return withApp(cmd, g, func(ctx context.Context, a *app) error {
		if err := a.requireSession(); err != nil {
			return err
		}
		err := fn(ctx, a)
		if isUnauthorized(err) {
			a.logger.Info("backend rejected the stored token, logging out")
			a.sessions.Logout(context.WithoutCancel(ctx))
		}
		return err
	})
}

func isUnauthorized(err error) bool {
	var statusErr *bakelink.StatusError
	return errors.As(err, &statusErr) && statusErr.Response.StatusCode == http.StatusUnauthorized
}
