package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/gen2brain/beeep"
	"golang.org/x/time/rate"
)

// DesktopSender shows payloads as native desktop notifications.
type DesktopSender struct {
	notify func(title, message string) error
	alert  func(title, message string) error
	logger *slog.Logger
}

func NewDesktopSender(appName string, logger *slog.Logger) *DesktopSender {
	if appName != "" {
		beeep.AppName = appName
	}
	if logger == nil {
		logger = slog.Default().With("component", "notifications.desktop")
	}

	return &DesktopSender{
		notify: func(title, message string) error { return beeep.Notify(title, message, "") },
		alert:  func(title, message string) error { return beeep.Alert(title, message, "") },
		logger: logger,
	}
}

func (s *DesktopSender) Send(payload Payload) {
	if s == nil || payload.Empty() {
		return
	}

	show := s.notify
	if payload.Severity == SeverityDestructive {
		show = s.alert
	}
	if err := show(payload.Title, payload.Content); err != nil {
		s.logger.Warn("send desktop notification", "id", payload.ID, "error", err)
	}
}

// LogSender writes payloads to a structured logger.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default().With("component", "notifications")
	}

	return &LogSender{logger: logger}
}

func (s *LogSender) Send(payload Payload) {
	if s == nil || payload.Empty() {
		return
	}

	level := slog.LevelInfo
	if payload.Severity == SeverityDestructive {
		level = slog.LevelWarn
	}
	s.logger.Log(context.Background(), level, payload.Title, "content", payload.Content, "id", payload.ID)
}

// ThrottledSender drops payloads that exceed perMinute.
type ThrottledSender struct {
	next    Sender
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewThrottledSender(next Sender, perMinute int, logger *slog.Logger) *ThrottledSender {
	if logger == nil {
		logger = slog.Default().With("component", "notifications")
	}

	limit := rate.Inf
	burst := 0
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
		burst = perMinute
	}

	return &ThrottledSender{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

func (s *ThrottledSender) Send(payload Payload) {
	if s == nil || s.next == nil {
		return
	}
	if !s.limiter.Allow() {
		s.logger.Debug("notification dropped by rate limit", "id", payload.ID, "title", payload.Title)

		return
	}
	s.next.Send(payload)
}

// MultiSender fans a payload out to several senders.
type MultiSender []Sender

func (m MultiSender) Send(payload Payload) {
	for _, sender := range m {
		if sender != nil {
			sender.Send(payload)
		}
	}
}
