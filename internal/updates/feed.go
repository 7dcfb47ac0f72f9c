package updates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/marginiq/marginiq/internal/settings"
)

const defaultRequestTimeout = 15 * time.Second

// FeedConfig customizes a FeedChecker.
type FeedConfig struct {
	CurrentVersion string
	Endpoint       string
	HTTPClient     *http.Client
	Logger         *slog.Logger
	Now            func() time.Time
}

// FeedChecker reads a JSON list of releases, newest first, from an HTTP endpoint.
type FeedChecker struct {
	currentVersion string
	endpoint       string
	client         *http.Client
	logger         *slog.Logger
	now            func() time.Time
}

type feedRelease struct {
	TagName     string    `json:"tag_name"`
	Body        string    `json:"body"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
}

func NewFeedChecker(cfg FeedConfig) (*FeedChecker, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("release feed endpoint is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultRequestTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "updates.feed")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &FeedChecker{
		currentVersion: strings.TrimSpace(cfg.CurrentVersion),
		endpoint:       endpoint,
		client:         client,
		logger:         logger,
		now:            now,
	}, nil
}

func (c *FeedChecker) CheckLatest(ctx context.Context) (settings.UpdateResult, error) {
	releases, err := c.fetchReleases(ctx)
	if err != nil {
		return settings.UpdateResult{}, err
	}
	if len(releases) == 0 {
		return settings.UpdateResult{}, fmt.Errorf("release feed has no published releases")
	}

	latest := releases[0]
	updateAvailable := isReleaseNewer(c.currentVersion, latest.TagName)
	c.logger.Debug(
		"resolved latest release",
		"current_version", c.currentVersion,
		"latest_version", latest.TagName,
		"release_count", len(releases),
		"update_available", updateAvailable,
	)

	return settings.UpdateResult{
		CurrentVersion:  c.currentVersion,
		LatestVersion:   latest.TagName,
		UpdateAvailable: updateAvailable,
		ReleaseURL:      latest.HTMLURL,
		ReleaseNotes:    latest.Body,
		CheckedAt:       c.now().UTC(),
	}, nil
}

func (c *FeedChecker) fetchReleases(ctx context.Context) ([]feedRelease, error) {
	c.logger.Debug("requesting releases", "endpoint", c.endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create releases request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request releases: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		trimmedBody := strings.TrimSpace(string(body))
		if trimmedBody == "" {
			return nil, fmt.Errorf("request releases: unexpected status %d", resp.StatusCode)
		}

		return nil, fmt.Errorf("request releases: unexpected status %d: %s", resp.StatusCode, trimmedBody)
	}

	var payload []feedRelease
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode releases response: %w", err)
	}

	releases := make([]feedRelease, 0, len(payload))
	for _, item := range payload {
		item.TagName = strings.TrimSpace(item.TagName)
		if item.TagName == "" || item.Draft || item.Prerelease {
			continue
		}
		item.Body = strings.TrimSpace(item.Body)
		item.HTMLURL = strings.TrimSpace(item.HTMLURL)
		releases = append(releases, item)
	}
	c.logger.Debug("parsed releases response", "items_total", len(payload), "items_usable", len(releases))

	return releases, nil
}
