package updates

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v63/github"

	"github.com/marginiq/marginiq/internal/settings"
)

// GitHubConfig customizes a GitHubChecker.
type GitHubConfig struct {
	Owner          string
	Repo           string
	CurrentVersion string
	// BaseURL overrides the API root, mainly for tests and GitHub Enterprise.
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
	Now        func() time.Time
}

// GitHubChecker compares the current version with the latest GitHub release.
type GitHubChecker struct {
	client         *github.Client
	owner          string
	repo           string
	currentVersion string
	logger         *slog.Logger
	now            func() time.Time
}

func NewGitHubChecker(cfg GitHubConfig) (*GitHubChecker, error) {
	owner := strings.TrimSpace(cfg.Owner)
	repo := strings.TrimSpace(cfg.Repo)
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("github owner and repo are required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	client := github.NewClient(httpClient)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		parsed, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse github base url: %w", err)
		}
		client.BaseURL = parsed
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "updates.github")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &GitHubChecker{
		client:         client,
		owner:          owner,
		repo:           repo,
		currentVersion: strings.TrimSpace(cfg.CurrentVersion),
		logger:         logger,
		now:            now,
	}, nil
}

func (c *GitHubChecker) CheckLatest(ctx context.Context) (settings.UpdateResult, error) {
	c.logger.Debug("requesting latest github release", "owner", c.owner, "repo", c.repo)

	release, _, err := c.client.Repositories.GetLatestRelease(ctx, c.owner, c.repo)
	if err != nil {
		return settings.UpdateResult{}, fmt.Errorf("fetch latest github release: %w", err)
	}

	latest := strings.TrimSpace(release.GetTagName())
	if latest == "" {
		return settings.UpdateResult{}, fmt.Errorf("latest github release has no tag")
	}

	return settings.UpdateResult{
		CurrentVersion:  c.currentVersion,
		LatestVersion:   latest,
		UpdateAvailable: isReleaseNewer(c.currentVersion, latest),
		ReleaseURL:      release.GetHTMLURL(),
		ReleaseNotes:    strings.TrimSpace(release.GetBody()),
		CheckedAt:       c.now().UTC(),
	}, nil
}
