package notifications

import (
	"strings"

	"github.com/google/uuid"
)

// Severity selects how prominently a notification is shown.
type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
)

// Payload is a generic user-facing notification payload.
type Payload struct {
	ID       string
	Title    string
	Content  string
	Severity Severity
}

// NewPayload builds a payload with a fresh id.
func NewPayload(title, content string, severity Severity) Payload {
	if severity == "" {
		severity = SeverityDefault
	}

	return Payload{
		ID:       uuid.NewString(),
		Title:    strings.TrimSpace(title),
		Content:  strings.TrimSpace(content),
		Severity: severity,
	}
}

// Empty reports a payload with neither title nor content.
func (p Payload) Empty() bool {
	return strings.TrimSpace(p.Title) == "" && strings.TrimSpace(p.Content) == ""
}

// Sender sends notifications using a platform-specific backend.
type Sender interface {
	Send(payload Payload)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(payload Payload)

func (f SenderFunc) Send(payload Payload) {
	f(payload)
}
