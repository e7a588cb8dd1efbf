package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"cartable/internal/auth"
	"cartable/internal/client"
	"cartable/internal/config"
	"cartable/internal/domain"
	"cartable/internal/domain/services"
	"cartable/internal/i18n"
	serviceChat "cartable/internal/service/chat"
	servicePedagogy "cartable/internal/service/pedagogy"
	serviceTree "cartable/internal/service/tree"
)

// Options configures the command tree. Zero values are filled from the
// environment when the root command runs.
type Options struct {
	Config     *config.Config
	HTTPClient *http.Client // nil: a client with Config.HTTPTimeout
	LogOutput  io.Writer    // nil: the command's stderr
}

// App holds what every subcommand needs once the root command has run.
type App struct {
	opts    Options
	verbose bool

	cfg     *config.Config
	logger  *slog.Logger
	api     *client.Client
	store   *auth.FileStore
	session *auth.Session
	labels  *i18n.Catalog

	progressions services.ProgressionService
	resources    services.ResourceService
	chat         *serviceChat.Service
}

// init wires the app. It runs once, from the root PersistentPreRunE.
func (a *App) init(stderr io.Writer) error {
	cfg := a.opts.Config
	if cfg == nil {
		cfg = config.Load()
	}
	if a.verbose {
		cfg.Debug = true
	}
	a.cfg = cfg

	logOut := a.opts.LogOutput
	if logOut == nil {
		logOut = stderr
	}
	a.logger = config.NewLogger(cfg, logOut, config.LogText)

	httpClient := a.opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	a.api = client.NewWithHTTPClient(cfg.APIBaseURL, httpClient, a.logger)

	labels, err := i18n.NewCatalog(cfg.Locale)
	if err != nil {
		return fmt.Errorf("load message catalog: %w", err)
	}
	a.labels = labels

	a.store = auth.NewFileStore(cfg.SessionFile)
	session, err := a.store.Load()
	if err != nil {
		// A corrupt session file must not lock the user out of `login`.
		a.logger.Warn("ignoring unreadable session file", "path", a.store.Path(), "error", err)
		session = auth.NewSession("", nil)
	}
	a.session = session

	// No tree registry in the terminal: each command builds its own controller.
	a.progressions = servicePedagogy.NewProgressionService(a.api, nil, a.logger)
	a.resources = servicePedagogy.NewResourceService(a.api, a.api, nil, a.logger)
	a.chat = serviceChat.NewService(a.api, cfg.ChatHistoryLimit, a.logger)

	a.logger.Debug("cli initialized",
		"api", a.api.BaseURL(),
		"session_file", a.store.Path(),
		"authenticated", a.session.Authenticated(),
	)
	return nil
}

// caller identifies the stored user to the services.
func (a *App) caller() services.Caller {
	token := a.session.Token()
	return services.Caller{UserKey: auth.UserKey(token), Token: token}
}

// newTree builds a tree controller fed by the stored session.
func (a *App) newTree() *serviceTree.Controller {
	return serviceTree.NewController(a.api, a.session, a.labels, a.logger,
		serviceTree.WithFetchConcurrency(a.cfg.FetchConcurrency),
	)
}

// ErrNotLoggedIn is returned by commands that need a stored session.
var ErrNotLoggedIn = errors.New("not logged in: run `cartable login` first")

// check turns authentication failures into actionable errors. A 401 from
// the API means the stored token is dead, so the session is discarded.
func (a *App) check(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrUnauthenticated):
		return ErrNotLoggedIn
	case errors.Is(err, domain.ErrUnauthorized):
		a.session.Clear()
		if clearErr := a.store.Clear(); clearErr != nil {
			a.logger.Warn("failed to clear session file", "error", clearErr)
		}
		return fmt.Errorf("session expired, log in again: %w", err)
	}
	return err
}

// requireLogin fails fast when no token is stored.
func (a *App) requireLogin() error {
	if !a.session.Authenticated() {
		return ErrNotLoggedIn
	}
	return nil
}
