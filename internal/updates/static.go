package updates

import (
	"context"
	"strings"
	"time"

	"github.com/marginiq/marginiq/internal/settings"
)

// DefaultStaticDelay mirrors the simulated check of the web page.
const DefaultStaticDelay = 2 * time.Second

// StaticChecker waits for Delay and reports the current version as latest.
// It is used when no release source is configured.
type StaticChecker struct {
	CurrentVersion string
	Delay          time.Duration
	Now            func() time.Time
}

func (c StaticChecker) CheckLatest(ctx context.Context) (settings.UpdateResult, error) {
	if c.Delay > 0 {
		timer := time.NewTimer(c.Delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return settings.UpdateResult{}, ctx.Err()
		case <-timer.C:
		}
	}

	now := c.Now
	if now == nil {
		now = time.Now
	}
	version := strings.TrimSpace(c.CurrentVersion)

	return settings.UpdateResult{
		CurrentVersion: version,
		LatestVersion:  version,
		CheckedAt:      now().UTC(),
	}, nil
}
