package settings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// StorageKey is the fixed key the bundle is persisted under.
const StorageKey = "marginIQ-settings"

const updateCheckFlight = "check-latest"

// Dependencies wires a Store to its collaborators. Only Storage is required
// for persistence; the others degrade to no-ops when nil.
type Dependencies struct {
	Storage KeyValueStore
	Key     string
	Theme   ThemeMarker
	Updates UpdateChecker
	Events  Publisher
	Status  StatusInfo
	Logger  *slog.Logger
	Now     func() time.Time
}

// Store owns the settings bundle and the unsaved-changes flag.
type Store struct {
	storage KeyValueStore
	key     string
	theme   ThemeMarker
	updates UpdateChecker
	events  Publisher
	info    StatusInfo
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	bundle   Bundle
	dirty    bool
	revision uint64
	checking bool

	checks singleflight.Group
}

func NewStore(deps Dependencies) *Store {
	key := strings.TrimSpace(deps.Key)
	if key == "" {
		key = StorageKey
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default().With("component", "settings")
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Store{
		storage: deps.Storage,
		key:     key,
		theme:   deps.Theme,
		updates: deps.Updates,
		events:  deps.Events,
		info:    deps.Status.withDefaults(),
		logger:  logger,
		now:     now,
		bundle:  Default(),
	}
}

// Initialize reconciles the bundle with the persisted record. It never fails:
// read faults and malformed records are logged and the current bundle is kept.
func (s *Store) Initialize(ctx context.Context) LoadOutcome {
	outcome, bundle := s.load(ctx, s.Bundle())

	s.mu.Lock()
	s.bundle = bundle
	s.dirty = false
	s.revision++
	if bundle.Preferences.DarkMode {
		ApplyEffect(s.theme, Effect{Kind: EffectAddDarkMarker})
	}
	s.mu.Unlock()

	s.logger.Info("settings initialized", "outcome", outcome, "connected_sources", bundle.DataSources.ConnectedCount())
	s.publish(TopicLoaded, Loaded{Outcome: outcome, Bundle: bundle})

	return outcome
}

func (s *Store) load(ctx context.Context, current Bundle) (LoadOutcome, Bundle) {
	if s.storage == nil {
		s.logger.Warn("settings storage is not configured, using defaults")
		return LoadDefaults, current
	}

	raw, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.Error("read settings record", "key", s.key, "error", err)
		return LoadRecovered, current
	}
	if !found {
		s.logger.Debug("no settings record stored", "key", s.key)
		return LoadDefaults, current
	}

	res, err := Decode(raw, current)
	if err != nil {
		parseErr := &ParseError{Key: s.key, Err: err}
		s.logger.Error("load saved settings", "error", parseErr)
		return LoadRecovered, current
	}
	for group, reason := range res.Fallbacks {
		s.logger.Warn("settings group unusable, keeping defaults", "group", group, "error", reason)
	}
	s.logger.Debug("settings record reconciled", "loaded_groups", res.Loaded)

	return LoadLoaded, res.Bundle
}

// SetField validates and applies a single field write. The store is marked
// dirty even if the value did not change. A darkMode write applies its marker
// effect synchronously before returning.
func (s *Store) SetField(field Field, value any) (Bundle, Effect, error) {
	s.mu.Lock()
	next, effect, err := s.bundle.WithField(field, value)
	if err != nil {
		current := s.bundle
		s.mu.Unlock()
		s.logger.Debug("rejected settings write", "field", field.String(), "error", err)

		return current, Effect{}, err
	}
	s.bundle = next
	s.dirty = true
	s.revision++
	ApplyEffect(s.theme, effect)
	s.mu.Unlock()

	s.logger.Debug("settings field changed", "field", field.String(), "value", value, "effect", effect.Kind)
	s.publish(TopicFieldChanged, FieldChanged{Field: field, Value: value, Effect: effect})

	return next, effect, nil
}

// Save writes the full bundle to the persistence provider. The lock is not
// held during the write, so writes made meanwhile stay in memory and keep the
// store dirty until the next Save.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	snapshot := s.bundle
	revision := s.revision
	s.mu.RUnlock()

	if err := s.write(ctx, snapshot); err != nil {
		s.logger.Error("save settings", "error", err)
		s.publish(TopicSaveFailed, SaveFailed{Err: err})

		return err
	}

	s.mu.Lock()
	if s.revision == revision {
		s.dirty = false
	}
	stillDirty := s.dirty
	s.mu.Unlock()

	s.logger.Info("settings saved", "key", s.key, "pending_changes", stillDirty)
	s.publish(TopicSaved, Saved{Bundle: snapshot, At: s.now()})

	return nil
}

func (s *Store) write(ctx context.Context, b Bundle) error {
	if s.storage == nil {
		return &PersistenceError{Key: s.key, Err: ErrNoStorage}
	}

	raw, err := Encode(b)
	if err != nil {
		return &PersistenceError{Key: s.key, Err: err}
	}
	if err := s.storage.Set(ctx, s.key, raw); err != nil {
		return &PersistenceError{Key: s.key, Err: err}
	}

	return nil
}

// ResetToDefaults restores the default bundle without persisting it. The dark
// marker is always removed, whatever the previous or default darkMode value.
func (s *Store) ResetToDefaults() Bundle {
	s.mu.Lock()
	s.bundle = Default()
	s.dirty = false
	s.revision++
	bundle := s.bundle
	ApplyEffect(s.theme, Effect{Kind: EffectRemoveDarkMarker})
	s.mu.Unlock()

	s.logger.Info("settings reset to defaults")
	s.publish(TopicReset, Reset{Bundle: bundle})

	return bundle
}

// CheckForUpdates asks the update service for the latest release. Concurrent
// callers share one in-flight check, which runs with the first caller's context.
func (s *Store) CheckForUpdates(ctx context.Context) (UpdateResult, error) {
	if s.updates == nil {
		err := &UpdateCheckError{Err: ErrNoUpdateChecker}
		s.publish(TopicUpdateCheckFailed, UpdateCheckFailed{Err: err})

		return UpdateResult{}, err
	}

	v, err, shared := s.checks.Do(updateCheckFlight, func() (any, error) {
		s.setChecking(true)
		defer s.setChecking(false)

		s.publish(TopicUpdateCheckStart, UpdateCheckStarted{})
		s.logger.Debug("checking for updates")

		result, err := s.updates.CheckLatest(ctx)
		if err != nil {
			checkErr := &UpdateCheckError{Err: err}
			s.logger.Warn("update check failed", "error", err)
			s.publish(TopicUpdateCheckFailed, UpdateCheckFailed{Err: checkErr})

			return UpdateResult{}, checkErr
		}
		s.logger.Info(
			"update check completed",
			"current_version", result.CurrentVersion,
			"latest_version", result.LatestVersion,
			"update_available", result.UpdateAvailable,
		)
		s.publish(TopicUpdateCheckDone, UpdateCheckFinished{Result: result})

		return result, nil
	})
	if shared {
		s.logger.Debug("joined in-flight update check")
	}
	if err != nil {
		var checkErr *UpdateCheckError
		if errors.As(err, &checkErr) {
			return UpdateResult{}, checkErr
		}

		return UpdateResult{}, &UpdateCheckError{Err: err}
	}

	return v.(UpdateResult), nil
}

func (s *Store) setChecking(v bool) {
	s.mu.Lock()
	s.checking = v
	s.mu.Unlock()
}

// Bundle returns a copy of the current bundle.
func (s *Store) Bundle() Bundle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.bundle
}

// HasUnsavedChanges reports the dirty flag.
func (s *Store) HasUnsavedChanges() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.dirty
}

// ConnectedCount is always derived from the current data source settings.
func (s *Store) ConnectedCount() int {
	return s.Bundle().DataSources.ConnectedCount()
}

func (s *Store) Status() SystemStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SystemStatus{
		Version:           s.info.Version,
		LastUpdated:       s.info.LastUpdated,
		ConnectedSources:  s.bundle.DataSources.ConnectedCount(),
		TotalSources:      TotalDataSources,
		AIModel:           s.info.AIModel,
		IsCheckingUpdates: s.checking,
	}
}

func (s *Store) publish(topic string, msg any) {
	if s.events == nil {
		return
	}
	s.events.Publish(topic, msg)
}
