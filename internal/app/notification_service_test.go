package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/marginiq/marginiq/internal/bus"
	"github.com/marginiq/marginiq/internal/config"
	"github.com/marginiq/marginiq/internal/notifications"
	"github.com/marginiq/marginiq/internal/settings"
)

func TestNotificationServiceMapsSettingsEvents(t *testing.T) {
	messageBus := newTestMessageBus(t)
	sender := newCollectingNotificationSender()
	service := NewNotificationService(messageBus, config.Default, sender, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	service.Start(ctx)

	messageBus.Publish(settings.TopicSaved, settings.Saved{Bundle: settings.Default(), At: time.Now()})
	messageBus.Publish(settings.TopicSaveFailed, settings.SaveFailed{Err: errors.New("disk full")})
	messageBus.Publish(settings.TopicReset, settings.Reset{Bundle: settings.Default()})
	messageBus.Publish(settings.TopicUpdateCheckDone, settings.UpdateCheckFinished{Result: settings.UpdateResult{CurrentVersion: "1.0.0", LatestVersion: "1.0.0"}})
	messageBus.Publish(settings.TopicUpdateCheckDone, settings.UpdateCheckFinished{Result: settings.UpdateResult{CurrentVersion: "1.0.0", LatestVersion: "1.1.0", UpdateAvailable: true}})
	messageBus.Publish(settings.TopicUpdateCheckFailed, settings.UpdateCheckFailed{Err: errors.New("offline")})

	got := sender.waitForCount(t, 6)
	want := []struct {
		title    string
		content  string
		severity notifications.Severity
	}{
		{"Settings saved successfully!", "Your preferences have been updated.", notifications.SeverityDefault},
		{"Error saving settings", "Please try again.", notifications.SeverityDestructive},
		{"Settings reset to defaults", "All settings have been restored to their default values.", notifications.SeverityDefault},
		{"System is up to date!", "You're running the latest version of MarginIQ.", notifications.SeverityDefault},
		{"Update available", "MarginIQ 1.1.0 is available, you are running 1.0.0.", notifications.SeverityDefault},
		{"Update check failed", "Please check your internet connection and try again.", notifications.SeverityDestructive},
	}
	for i, w := range want {
		if got[i].Title != w.title || got[i].Content != w.content || got[i].Severity != w.severity {
			t.Fatalf("notification %d = %+v, want %+v", i, got[i], w)
		}
		if got[i].ID == "" {
			t.Fatalf("notification %d has no id", i)
		}
	}
}

func TestNotificationServiceRespectsEventToggles(t *testing.T) {
	messageBus := newTestMessageBus(t)
	cfg := config.Default()
	cfg.Notifications.Events.Saved = false
	sender := newCollectingNotificationSender()
	service := NewNotificationService(messageBus, func() config.AppConfig { return cfg }, sender, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	service.Start(ctx)

	messageBus.Publish(settings.TopicSaved, settings.Saved{})
	messageBus.Publish(settings.TopicReset, settings.Reset{})

	got := sender.waitForCount(t, 1)
	if got[0].Title != "Settings reset to defaults" {
		t.Fatalf("expected only the reset toast, got %+v", got)
	}
	time.Sleep(20 * time.Millisecond)
	if n := len(sender.snapshot()); n != 1 {
		t.Fatalf("expected disabled saved toast to be skipped, got %d notifications", n)
	}
}

func TestNotificationServiceDrainsQueuedEventsOnBusClose(t *testing.T) {
	messageBus := bus.New(slog.New(slog.NewTextHandler(io.Discard, nil)), 16)
	sender := newCollectingNotificationSender()
	service := NewNotificationService(messageBus, config.Default, sender, nil)
	service.Start(context.Background())

	messageBus.Publish(settings.TopicSaved, settings.Saved{})
	messageBus.Publish(settings.TopicReset, settings.Reset{})
	messageBus.Close()

	select {
	case <-service.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for notification service to stop")
	}
	if n := len(sender.snapshot()); n != 2 {
		t.Fatalf("expected queued events to be delivered, got %d", n)
	}
}

func TestNotificationServiceWithoutSenderIsDone(t *testing.T) {
	service := NewNotificationService(nil, nil, nil, nil)
	service.Start(context.Background())

	select {
	case <-service.Done():
	default:
		t.Fatalf("expected service without sender to be done immediately")
	}
}

func newTestMessageBus(t *testing.T) *bus.PubSubBus {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	messageBus := bus.New(logger, 0)
	t.Cleanup(func() {
		messageBus.Close()
	})

	return messageBus
}

type collectingNotificationSender struct {
	mu            sync.Mutex
	notifications []notifications.Payload
	changes       chan struct{}
}

func newCollectingNotificationSender() *collectingNotificationSender {
	return &collectingNotificationSender{
		changes: make(chan struct{}, 1),
	}
}

func (s *collectingNotificationSender) Send(notification notifications.Payload) {
	s.mu.Lock()
	s.notifications = append(s.notifications, notification)
	s.mu.Unlock()

	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func (s *collectingNotificationSender) snapshot() []notifications.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]notifications.Payload, len(s.notifications))
	copy(out, s.notifications)

	return out
}

func (s *collectingNotificationSender) waitForCount(t *testing.T, expected int) []notifications.Payload {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		current := s.snapshot()
		if len(current) >= expected {
			return current
		}
		select {
		case <-s.changes:
		case <-time.After(10 * time.Millisecond):
		}
	}
	t.Fatalf("timed out waiting for %d notifications, got %d", expected, len(s.snapshot()))

	return nil
}
