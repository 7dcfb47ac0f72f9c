package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/marginiq/marginiq/internal/bus"
	"github.com/marginiq/marginiq/internal/config"
	"github.com/marginiq/marginiq/internal/logging"
	"github.com/marginiq/marginiq/internal/notifications"
	"github.com/marginiq/marginiq/internal/persistence"
	"github.com/marginiq/marginiq/internal/settings"
	"github.com/marginiq/marginiq/internal/theme"
	"github.com/marginiq/marginiq/internal/updates"
)

const notificationDrainTimeout = 2 * time.Second

// Options override runtime defaults, mostly from command line flags.
type Options struct {
	RootDir    string
	ConfigFile string
	Backend    config.StorageBackend
	LogLevel   string
	Console    io.Writer
	// Sender replaces the configured notification senders.
	Sender     notifications.Sender
	HTTPClient *http.Client
	// FyneApp is used for the preferences backend and theme target.
	FyneApp fyne.App
}

type Runtime struct {
	mu sync.RWMutex

	Ctx    context.Context
	cancel context.CancelFunc

	Paths  Paths
	Config config.AppConfig

	LogManager *logging.Manager
	Bus        *bus.PubSubBus
	DB         *sql.DB
	KV         *persistence.KVRepo
	Storage    settings.KeyValueStore
	FyneApp    fyne.App

	Theme         *theme.Runtime
	Updates       settings.UpdateChecker
	Notifications *NotificationService
	Settings      *settings.Store
	LoadOutcome   settings.LoadOutcome
}

func Initialize(parent context.Context, opts Options) (*Runtime, error) {
	paths, err := ResolvePaths(opts.RootDir)
	if err != nil {
		return nil, err
	}
	if file := strings.TrimSpace(opts.ConfigFile); file != "" {
		paths.ConfigFile = file
	}
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return nil, err
	}
	if opts.Backend != "" {
		cfg.Storage.Backend = opts.Backend
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	cfg.FillMissingDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ctx, cancel := context.WithCancel(parent)
	rt := &Runtime{
		Ctx:     ctx,
		cancel:  cancel,
		Paths:   paths,
		Config:  cfg,
		FyneApp: opts.FyneApp,
	}

	logMgr := logging.NewManager(opts.Console)
	if err := logMgr.Configure(cfg.Logging, paths.LogFile); err != nil {
		_ = logMgr.Close()
		cancel()
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	rt.LogManager = logMgr
	slog.Debug("starting marginiq runtime", "version", BuildVersion(), "build_date", BuildDateYMD(), "backend", cfg.Storage.Backend)

	if err := rt.openStorage(ctx); err != nil {
		_ = rt.Close()
		return nil, err
	}

	rt.Bus = bus.New(logMgr.Logger("bus"), 0)
	rt.Theme = rt.newThemeRuntime()

	checker, err := newUpdateChecker(cfg.Updates, opts.HTTPClient, logMgr.Logger("updates"))
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("initialize update checker: %w", err)
	}
	rt.Updates = checker

	sender := opts.Sender
	if sender == nil {
		sender = newNotificationSender(cfg.Notifications, logMgr.Logger("notifications"))
	}
	rt.Notifications = NewNotificationService(rt.Bus, rt.CurrentConfig, sender, logMgr.Logger("app.notifications"))
	rt.Notifications.Start(ctx)

	rt.Settings = settings.NewStore(settings.Dependencies{
		Storage: rt.Storage,
		Key:     cfg.Storage.Key,
		Theme:   rt.Theme,
		Updates: rt.Updates,
		Events:  rt.Bus,
		Status: settings.StatusInfo{
			Version:     BuildVersion(),
			LastUpdated: BuildDateYMD(),
		},
		Logger: logMgr.Logger("settings"),
	})
	rt.LoadOutcome = rt.Settings.Initialize(ctx)

	return rt, nil
}

func (r *Runtime) openStorage(ctx context.Context) error {
	switch r.Config.Storage.Backend {
	case config.BackendSQLite:
		db, err := persistence.Open(ctx, r.Paths.DBFile)
		if err != nil {
			return err
		}
		r.DB = db
		r.KV = persistence.NewKVRepo(db)
		r.Storage = r.KV
	case config.BackendPreferences:
		if r.FyneApp == nil {
			r.FyneApp = fyneapp.NewWithID(PreferencesAppID)
		}
		r.Storage = persistence.NewPreferencesStore(r.FyneApp.Preferences())
	case config.BackendKeyring:
		r.Storage = persistence.NewKeyringStore(r.Config.Storage.KeyringService)
	case config.BackendMemory:
		r.Storage = persistence.NewMemoryStore()
	default:
		return fmt.Errorf("unknown storage backend: %s", r.Config.Storage.Backend)
	}

	return nil
}

func (r *Runtime) newThemeRuntime() *theme.Runtime {
	rt := theme.NewRuntime(r.LogManager.Logger("theme"), theme.NewLogTarget(r.LogManager.Logger("theme")))
	if r.Config.Theme.MarkerFile {
		rt.AddTarget(theme.NewFileTarget(r.Paths.DarkMarkerFile))
	}
	if r.FyneApp != nil {
		rt.AddTarget(theme.NewFyneTarget(r.FyneApp))
	}

	return rt
}

func newUpdateChecker(cfg config.UpdatesConfig, client *http.Client, logger *slog.Logger) (settings.UpdateChecker, error) {
	if client == nil {
		client = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	}

	switch cfg.Source {
	case config.UpdateSourceFeed:
		return updates.NewFeedChecker(updates.FeedConfig{
			CurrentVersion: BuildVersion(),
			Endpoint:       cfg.Endpoint,
			HTTPClient:     client,
			Logger:         logger,
		})
	case config.UpdateSourceGitHub:
		return updates.NewGitHubChecker(updates.GitHubConfig{
			Owner:          cfg.GitHubOwner,
			Repo:           cfg.GitHubRepo,
			CurrentVersion: BuildVersion(),
			BaseURL:        cfg.Endpoint,
			HTTPClient:     client,
			Logger:         logger,
		})
	case config.UpdateSourceStatic:
		return updates.StaticChecker{
			CurrentVersion: BuildVersion(),
			Delay:          time.Duration(cfg.StaticDelayMillis) * time.Millisecond,
		}, nil
	default:
		return nil, fmt.Errorf("unknown update source: %s", cfg.Source)
	}
}

func newNotificationSender(cfg config.NotificationConfig, logger *slog.Logger) notifications.Sender {
	senders := notifications.MultiSender{notifications.NewLogSender(logger)}
	if cfg.Desktop {
		senders = append(senders, notifications.NewDesktopSender(DisplayName, logger))
	}

	return notifications.NewThrottledSender(senders, cfg.RatePerMinute, logger)
}

func (r *Runtime) CurrentConfig() config.AppConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.Config
}

// SaveAndApplyConfig persists cfg and applies the logging section. Storage and
// update source changes take effect on the next start.
func (r *Runtime) SaveAndApplyConfig(cfg config.AppConfig) error {
	cfg.FillMissingDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	if err := config.Save(r.Paths.ConfigFile, cfg); err != nil {
		r.mu.Unlock()
		return err
	}
	r.Config = cfg
	r.mu.Unlock()

	return r.LogManager.Configure(cfg.Logging, r.Paths.LogFile)
}

// LastSavedAt reports when the settings record was last written. Only the
// sqlite backend tracks it.
func (r *Runtime) LastSavedAt(ctx context.Context) (time.Time, bool) {
	if r.KV == nil {
		return time.Time{}, false
	}
	at, err := r.KV.UpdatedAt(ctx, r.CurrentConfig().Storage.Key)
	if err != nil {
		slog.Warn("read settings timestamp", "error", err)
		return time.Time{}, false
	}

	return at, !at.IsZero()
}

// Close stops the runtime. Notifications queued before Close are delivered.
func (r *Runtime) Close() error {
	if r.Bus != nil {
		r.Bus.Close()
	}
	if r.Notifications != nil {
		select {
		case <-r.Notifications.Done():
		case <-time.After(notificationDrainTimeout):
			slog.Warn("notification service did not stop in time")
		}
	}
	if r.cancel != nil {
		r.cancel()
	}
	if r.DB != nil {
		_ = r.DB.Close()
	}
	if r.LogManager != nil {
		_ = r.LogManager.Close()
	}
	return nil
}
