package platform

import (
	"errors"
	"strings"
)

// ErrSessionActive indicates another process holds the settings session lock.
var ErrSessionActive = errors.New("settings session already active")

// ErrSessionLockUnsupported indicates the current platform has no lock backend implementation.
var ErrSessionLockUnsupported = errors.New("session lock unsupported")

// SessionLock represents an acquired settings session lock.
type SessionLock interface {
	Release() error
}

// AcquireSessionLock takes the exclusive editing session for the settings
// stored under dir. It never blocks.
func AcquireSessionLock(dir string) (SessionLock, error) {
	return acquireSessionLock(strings.TrimSpace(dir))
}

func normalizeLockComponent(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	normalized := strings.Trim(b.String(), "_-.")
	if normalized == "" {
		return fallback
	}

	return normalized
}
