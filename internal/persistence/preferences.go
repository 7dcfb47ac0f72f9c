package persistence

import (
	"context"
	"strings"

	"fyne.io/fyne/v2"
)

// PreferencesStore keeps each value as one string preference of a fyne app.
// An empty preference is treated as absent.
type PreferencesStore struct {
	prefs fyne.Preferences
}

func NewPreferencesStore(prefs fyne.Preferences) *PreferencesStore {
	return &PreferencesStore{prefs: prefs}
}

func (s *PreferencesStore) Get(_ context.Context, key string) (string, bool, error) {
	value := s.prefs.StringWithFallback(key, "")
	if strings.TrimSpace(value) == "" {
		return "", false, nil
	}

	return value, true, nil
}

func (s *PreferencesStore) Set(_ context.Context, key, value string) error {
	s.prefs.SetString(key, value)

	return nil
}
