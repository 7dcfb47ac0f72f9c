package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StorageBackend identifies where the settings record is persisted.
type StorageBackend string

// UpdateSource identifies which release service answers update checks.
type UpdateSource string

const (
	BackendSQLite      StorageBackend = "sqlite"
	BackendPreferences StorageBackend = "preferences"
	BackendKeyring     StorageBackend = "keyring"
	BackendMemory      StorageBackend = "memory"

	UpdateSourceStatic UpdateSource = "static"
	UpdateSourceFeed   UpdateSource = "feed"
	UpdateSourceGitHub UpdateSource = "github"

	DefaultStorageKey        = "marginIQ-settings"
	DefaultKeyringService    = "marginiq"
	DefaultUpdateTimeoutSecs = 15
	DefaultStaticDelayMillis = 2000
	DefaultLogMaxSizeMB      = 10
	DefaultLogMaxBackups     = 2
	DefaultGitHubOwner       = "marginiq"
	DefaultGitHubRepo        = "marginiq"
)

// StorageConfig selects the persistence provider for the settings record.
type StorageConfig struct {
	Backend        StorageBackend `json:"backend"`
	Key            string         `json:"key"`
	KeyringService string         `json:"keyring_service"`
}

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level      string `json:"level"`
	LogToFile  bool   `json:"log_to_file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
}

// UpdatesConfig selects and tunes the update checker.
type UpdatesConfig struct {
	Source            UpdateSource `json:"source"`
	Endpoint          string       `json:"endpoint"`
	GitHubOwner       string       `json:"github_owner"`
	GitHubRepo        string       `json:"github_repo"`
	TimeoutSeconds    int          `json:"timeout_seconds"`
	StaticDelayMillis int          `json:"static_delay_ms"`
}

// NotificationConfig stores toast preferences.
type NotificationConfig struct {
	Desktop       bool                     `json:"desktop"`
	RatePerMinute int                      `json:"rate_per_minute"`
	Events        NotificationEventsConfig `json:"events"`
}

// NotificationEventsConfig stores per-event notification toggles.
type NotificationEventsConfig struct {
	Saved           bool `json:"saved"`
	SaveFailed      bool `json:"save_failed"`
	Reset           bool `json:"reset"`
	UpToDate        bool `json:"up_to_date"`
	UpdateAvailable bool `json:"update_available"`
	UpdateFailed    bool `json:"update_failed"`
}

// ThemeConfig controls the dark marker targets.
type ThemeConfig struct {
	MarkerFile bool `json:"marker_file"`
}

// AppConfig is the root persisted application configuration.
type AppConfig struct {
	Storage       StorageConfig      `json:"storage"`
	Logging       LoggingConfig      `json:"logging"`
	Updates       UpdatesConfig      `json:"updates"`
	Notifications NotificationConfig `json:"notifications"`
	Theme         ThemeConfig        `json:"theme"`
}

func Default() AppConfig {
	return AppConfig{
		Storage: StorageConfig{
			Backend:        BackendSQLite,
			Key:            DefaultStorageKey,
			KeyringService: DefaultKeyringService,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogToFile:  false,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
		},
		Updates: UpdatesConfig{
			Source:            UpdateSourceStatic,
			GitHubOwner:       DefaultGitHubOwner,
			GitHubRepo:        DefaultGitHubRepo,
			TimeoutSeconds:    DefaultUpdateTimeoutSecs,
			StaticDelayMillis: DefaultStaticDelayMillis,
		},
		Notifications: NotificationConfig{
			Desktop:       false,
			RatePerMinute: 30,
			Events: NotificationEventsConfig{
				Saved:           true,
				SaveFailed:      true,
				Reset:           true,
				UpToDate:        true,
				UpdateAvailable: true,
				UpdateFailed:    true,
			},
		},
		Theme: ThemeConfig{
			MarkerFile: true,
		},
	}
}

func Load(path string) (AppConfig, error) {
	cfg := Default()
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path is resolved by app runtime and points to user config dir.
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config json: %w", err)
	}

	cfg.FillMissingDefaults()

	return cfg, nil
}

func (c *AppConfig) FillMissingDefaults() {
	c.Storage.Backend = StorageBackend(strings.ToLower(strings.TrimSpace(string(c.Storage.Backend))))
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendSQLite
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		c.Storage.Key = DefaultStorageKey
	}
	if strings.TrimSpace(c.Storage.KeyringService) == "" {
		c.Storage.KeyringService = DefaultKeyringService
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}
	c.Updates.Source = UpdateSource(strings.ToLower(strings.TrimSpace(string(c.Updates.Source))))
	if c.Updates.Source == "" {
		c.Updates.Source = UpdateSourceStatic
	}
	if c.Updates.TimeoutSeconds <= 0 {
		c.Updates.TimeoutSeconds = DefaultUpdateTimeoutSecs
	}
	if c.Updates.StaticDelayMillis < 0 {
		c.Updates.StaticDelayMillis = DefaultStaticDelayMillis
	}
	if c.Notifications.RatePerMinute < 0 {
		c.Notifications.RatePerMinute = 0
	}
}

func (c AppConfig) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendPreferences, BackendKeyring, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage key is required")
	}

	switch c.Updates.Source {
	case UpdateSourceStatic:
	case UpdateSourceFeed:
		if strings.TrimSpace(c.Updates.Endpoint) == "" {
			return errors.New("update feed endpoint is required")
		}
	case UpdateSourceGitHub:
		if strings.TrimSpace(c.Updates.GitHubOwner) == "" || strings.TrimSpace(c.Updates.GitHubRepo) == "" {
			return errors.New("github owner and repo are required")
		}
	default:
		return fmt.Errorf("unknown update source: %s", c.Updates.Source)
	}

	return nil
}

func Save(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}

	return nil
}
