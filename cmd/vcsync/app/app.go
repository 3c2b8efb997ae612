// Package app provides the application context and dependency management
// for the vcsync CLI. It centralizes configuration, logging, and the
// lazily-built reconciler behind one injection point so subcommands stay
// thin.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/sieteunoseis/vcsync"
	"github.com/sieteunoseis/vcsync/internal/config"
	"github.com/sieteunoseis/vcsync/internal/fetcher"
	"github.com/sieteunoseis/vcsync/pkg/errors"
	"github.com/sieteunoseis/vcsync/pkg/logging"
	"github.com/sieteunoseis/vcsync/pkg/netbox"
	"github.com/sieteunoseis/vcsync/pkg/vcenter"
)

// App represents the vcsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	// Global flag state, filled in before any command runs.
	configFile string
	verbose    bool
	quiet      bool
	noColor    bool
	logLevel   string

	logger *zerolog.Logger

	// Injected collaborators (tests, embedding). When nil they are built
	// from configuration on first use.
	provider vcenter.SessionProvider
	client   netbox.Client

	mu         sync.Mutex
	config     *config.Config
	reconciler *vcsync.Reconciler
}

// New creates a new App instance with the given version information.
func New(version, commit, date string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version string.
func (a *App) Version() string {
	return a.version
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Config loads and caches the application configuration.
func (a *App) Config() (*config.Config, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.configLocked()
}

func (a *App) configLocked() (*config.Config, error) {
	if a.config != nil {
		return a.config, nil
	}
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return nil, err
	}
	a.config = cfg
	return cfg, nil
}

// Reconciler returns the reconciler, building it from configuration on
// first use. The instance is shared by all commands in the process so they
// see one cache.
func (a *App) Reconciler() (*vcsync.Reconciler, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.reconciler != nil {
		return a.reconciler, nil
	}

	cfg, err := a.configLocked()
	if err != nil {
		return nil, err
	}

	provider := a.provider
	if provider == nil {
		// Live vCenter transport stays behind the SessionProvider
		// interface; the built-in provider reads a YAML inventory export.
		if cfg.InventoryFile == "" {
			return nil, errors.NewConfigError("reconciler",
				"no session provider available: set inventory_file or inject one", nil)
		}
		provider = fetcher.NewFileProvider(cfg.InventoryFile)
	}

	client := a.client
	if client == nil {
		if cfg.AssetFile != "" {
			client, err = netbox.NewFileClient(cfg.AssetFile)
			if err != nil {
				return nil, err
			}
		} else {
			a.logger.Warn().Msg("No asset_file configured, using an in-memory asset inventory (changes are not persisted)")
			client = netbox.NewMemoryClient()
		}
	}

	matcher, err := cfg.Matcher()
	if err != nil {
		return nil, err
	}

	r, err := vcsync.New(
		vcsync.WithSessionProvider(provider),
		vcsync.WithAssetClient(client),
		vcsync.WithMatcher(matcher),
		vcsync.WithLogger(a.logger),
		vcsync.WithTimeout(cfg.Timeout()),
		vcsync.WithCredentials(cfg.Credentials()),
		vcsync.WithNormalizeNames(cfg.NormalizeNames),
		vcsync.WithUpdateExisting(cfg.UpdateExisting),
		vcsync.WithDefaults(cfg.DefaultTag, cfg.DefaultRole, cfg.DefaultPlatform),
		vcsync.WithWorkers(cfg.Workers),
	)
	if err != nil {
		return nil, err
	}
	a.reconciler = r
	return r, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithSessionProvider injects a session provider instead of the file-backed
// default (useful for testing and embedding).
func WithSessionProvider(p vcenter.SessionProvider) Option {
	return func(a *App) error {
		a.provider = p
		return nil
	}
}

// WithAssetClient injects an asset client instead of the configured one.
func WithAssetClient(c netbox.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithConfig sets a pre-loaded configuration (useful for testing).
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}
