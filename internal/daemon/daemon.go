// SPDX-License-Identifier: MPL-2.0

// Package daemon runs periodic update checks in the background. It wraps a
// gocron scheduler around the update checker so `scriptup watch` can poll a
// manifest without an external cron entry.
package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"

	"github.com/schl3ck/scriptup/internal/update"
)

// UpdateChecker is the subset of the checker the daemon drives.
type UpdateChecker interface {
	CheckForUpdate(ctx context.Context, manifestURL string, interval update.Interval, currentVersion string) ([]update.VersionData, error)
}

// Options configures a Watcher.
type Options struct {
	// ManifestURL is the manifest endpoint polled on every tick.
	ManifestURL string
	// CurrentVersion is the installed script version updates are compared
	// against.
	CurrentVersion string
	// Interval gates how often a tick actually fetches the manifest.
	Interval update.Interval
	// PollEvery is the scheduler tick duration (default: 1h).
	PollEvery time.Duration
	// OnUpdates is invoked with the newer versions found by a tick. It is
	// never called with an empty slice.
	OnUpdates func(versions []update.VersionData)
}

// Watcher periodically runs an update check on a gocron schedule.
type Watcher struct {
	scheduler gocron.Scheduler
	checker   UpdateChecker
	opts      Options
	logger    *log.Logger
}

// NewWatcher creates a watcher around the given checker.
func NewWatcher(checker UpdateChecker, opts Options, logger *log.Logger) (*Watcher, error) {
	if opts.PollEvery <= 0 {
		opts.PollEvery = time.Hour
	}
	if logger == nil {
		logger = log.Default()
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	return &Watcher{
		scheduler: s,
		checker:   checker,
		opts:      opts,
		logger:    logger,
	}, nil
}

// Start schedules the periodic check and blocks until ctx is cancelled. The
// first check runs immediately rather than waiting a full tick.
func (w *Watcher) Start(ctx context.Context) error {
	_, err := w.scheduler.NewJob(
		gocron.DurationJob(w.opts.PollEvery),
		gocron.NewTask(w.tick, ctx),
		gocron.WithName("update-check"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("scheduling update check: %w", err)
	}

	w.logger.Info("watching for updates",
		"url", w.opts.ManifestURL,
		"interval", string(w.opts.Interval),
		"poll", w.opts.PollEvery)
	w.scheduler.Start()

	<-ctx.Done()
	if err := w.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("stopping scheduler: %w", err)
	}
	return nil
}

// tick runs one update check and reports the outcome.
func (w *Watcher) tick(ctx context.Context) {
	versions, err := w.checker.CheckForUpdate(ctx, w.opts.ManifestURL, w.opts.Interval, w.opts.CurrentVersion)
	if err != nil {
		w.logger.Error("update check failed", "err", err)
		return
	}
	if len(versions) == 0 {
		w.logger.Debug("no update available", "current", w.opts.CurrentVersion)
		return
	}

	w.logger.Info("update available",
		"current", w.opts.CurrentVersion,
		"latest", versions[0].Version,
		"count", len(versions))
	if w.opts.OnUpdates != nil {
		w.opts.OnUpdates(versions)
	}
}
