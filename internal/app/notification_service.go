package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/marginiq/marginiq/internal/bus"
	"github.com/marginiq/marginiq/internal/config"
	"github.com/marginiq/marginiq/internal/notifications"
	"github.com/marginiq/marginiq/internal/settings"
)

const (
	toastSavedTitle         = "Settings saved successfully!"
	toastSavedContent       = "Your preferences have been updated."
	toastSaveFailedTitle    = "Error saving settings"
	toastSaveFailedContent  = "Please try again."
	toastResetTitle         = "Settings reset to defaults"
	toastResetContent       = "All settings have been restored to their default values."
	toastUpToDateTitle      = "System is up to date!"
	toastUpToDateContent    = "You're running the latest version of " + DisplayName + "."
	toastUpdateTitle        = "Update available"
	toastUpdateFailedTitle  = "Update check failed"
	toastUpdateFailedDetail = "Please check your internet connection and try again."
)

var notificationTopics = []string{
	settings.TopicSaved,
	settings.TopicSaveFailed,
	settings.TopicReset,
	settings.TopicUpdateCheckDone,
	settings.TopicUpdateCheckFailed,
}

// NotificationService listens to settings events and emits toasts.
type NotificationService struct {
	bus           bus.MessageBus
	currentConfig func() config.AppConfig
	sender        notifications.Sender
	logger        *slog.Logger

	done     chan struct{}
	doneOnce sync.Once
}

func NewNotificationService(
	messageBus bus.MessageBus,
	currentConfig func() config.AppConfig,
	sender notifications.Sender,
	logger *slog.Logger,
) *NotificationService {
	if logger == nil {
		logger = slog.Default().With("component", "app.notifications")
	}

	return &NotificationService{
		bus:           messageBus,
		currentConfig: currentConfig,
		sender:        sender,
		logger:        logger,
		done:          make(chan struct{}),
	}
}

// Start consumes events until ctx is cancelled or the bus is closed. Events
// already queued when the bus closes are still delivered.
func (s *NotificationService) Start(ctx context.Context) {
	if s == nil || s.bus == nil || s.sender == nil {
		s.finish()
		return
	}

	sub := s.bus.Subscribe(notificationTopics...)

	go func() {
		defer s.finish()
		defer s.bus.Unsubscribe(sub)

		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-sub:
				if !ok {
					return
				}
				s.handle(raw)
			}
		}
	}()
}

// Done is closed once the service stopped consuming events.
func (s *NotificationService) Done() <-chan struct{} {
	return s.done
}

func (s *NotificationService) finish() {
	if s == nil {
		return
	}
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *NotificationService) handle(raw any) {
	payload, enabled, ok := s.toast(raw)
	if !ok {
		s.logger.Debug("ignoring unexpected event", "payload_type", fmt.Sprintf("%T", raw))
		return
	}
	if !enabled {
		s.logger.Debug("notification disabled", "title", payload.Title)
		return
	}
	s.sender.Send(payload)
}

func (s *NotificationService) toast(raw any) (notifications.Payload, bool, bool) {
	events := s.notificationPrefs().Events

	switch event := raw.(type) {
	case settings.Saved:
		return notifications.NewPayload(toastSavedTitle, toastSavedContent, notifications.SeverityDefault), events.Saved, true
	case settings.SaveFailed:
		return notifications.NewPayload(toastSaveFailedTitle, toastSaveFailedContent, notifications.SeverityDestructive), events.SaveFailed, true
	case settings.Reset:
		return notifications.NewPayload(toastResetTitle, toastResetContent, notifications.SeverityDefault), events.Reset, true
	case settings.UpdateCheckFinished:
		if event.Result.UpdateAvailable {
			content := fmt.Sprintf("%s %s is available, you are running %s.", DisplayName, event.Result.LatestVersion, event.Result.CurrentVersion)
			return notifications.NewPayload(toastUpdateTitle, content, notifications.SeverityDefault), events.UpdateAvailable, true
		}
		return notifications.NewPayload(toastUpToDateTitle, toastUpToDateContent, notifications.SeverityDefault), events.UpToDate, true
	case settings.UpdateCheckFailed:
		return notifications.NewPayload(toastUpdateFailedTitle, toastUpdateFailedDetail, notifications.SeverityDestructive), events.UpdateFailed, true
	default:
		return notifications.Payload{}, false, false
	}
}

func (s *NotificationService) notificationPrefs() config.NotificationConfig {
	cfg := config.Default()
	if s.currentConfig != nil {
		cfg = s.currentConfig()
		cfg.FillMissingDefaults()
	}

	return cfg.Notifications
}
