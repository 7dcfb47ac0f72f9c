package settings

import (
	"context"
	"strings"
	"time"
)

const (
	defaultStatusVersion     = "1.0.0"
	defaultStatusLastUpdated = "2024-01-15"
	defaultStatusAIModel     = "GPT-4 (Latest)"
)

// StatusInfo holds the static part of SystemStatus.
type StatusInfo struct {
	Version     string
	LastUpdated string
	AIModel     string
}

func (i StatusInfo) withDefaults() StatusInfo {
	if strings.TrimSpace(i.Version) == "" {
		i.Version = defaultStatusVersion
	}
	if strings.TrimSpace(i.LastUpdated) == "" {
		i.LastUpdated = defaultStatusLastUpdated
	}
	if strings.TrimSpace(i.AIModel) == "" {
		i.AIModel = defaultStatusAIModel
	}

	return i
}

// SystemStatus is derived display information. It is never persisted.
type SystemStatus struct {
	Version           string `json:"version" yaml:"version"`
	LastUpdated       string `json:"lastUpdated" yaml:"lastUpdated"`
	ConnectedSources  int    `json:"dataSourcesConnected" yaml:"dataSourcesConnected"`
	TotalSources      int    `json:"totalDataSources" yaml:"totalDataSources"`
	AIModel           string `json:"aiModel" yaml:"aiModel"`
	IsCheckingUpdates bool   `json:"isCheckingUpdates" yaml:"isCheckingUpdates"`
}

// UpdateResult is the outcome of a successful version check.
type UpdateResult struct {
	CurrentVersion  string    `json:"currentVersion" yaml:"currentVersion"`
	LatestVersion   string    `json:"latestVersion" yaml:"latestVersion"`
	UpdateAvailable bool      `json:"updateAvailable" yaml:"updateAvailable"`
	ReleaseURL      string    `json:"releaseUrl,omitempty" yaml:"releaseUrl,omitempty"`
	ReleaseNotes    string    `json:"releaseNotes,omitempty" yaml:"releaseNotes,omitempty"`
	CheckedAt       time.Time `json:"checkedAt" yaml:"checkedAt"`
}

// UpdateChecker asks a remote version service whether a newer release exists.
type UpdateChecker interface {
	CheckLatest(ctx context.Context) (UpdateResult, error)
}

// KeyValueStore is the persistence provider the bundle is written to.
// Get reports found=false for a key that was never written.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}
