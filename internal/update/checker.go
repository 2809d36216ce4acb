// SPDX-License-Identifier: MPL-2.0

package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/schl3ck/scriptup/internal/version"
)

type (
	// Interval controls how often the checker is willing to hit the network.
	// It is configuration supplied per check, never persisted.
	Interval string

	// Checker decides whether the cached manifest is fresh enough and
	// filters the known versions against the currently installed one.
	Checker struct {
		cache  *Cache
		client *Client
		now    func() time.Time
		logger *log.Logger
	}

	// CheckerOption configures a Checker during construction.
	CheckerOption func(*Checker)
)

// Supported check intervals.
const (
	IntervalEveryTime Interval = "every time"
	IntervalDaily     Interval = "daily"
	IntervalWeekly    Interval = "weekly"
	IntervalMonthly   Interval = "monthly"
)

// ParseInterval normalizes a raw interval string from config or a flag.
func ParseInterval(raw string) (Interval, error) {
	switch Interval(strings.ToLower(strings.TrimSpace(raw))) {
	case IntervalEveryTime:
		return IntervalEveryTime, nil
	case IntervalDaily:
		return IntervalDaily, nil
	case IntervalWeekly:
		return IntervalWeekly, nil
	case IntervalMonthly:
		return IntervalMonthly, nil
	}
	return "", fmt.Errorf("unknown check interval %q (want %q, %q, %q, or %q)",
		raw, IntervalEveryTime, IntervalDaily, IntervalWeekly, IntervalMonthly)
}

// Cutoff returns the threshold before which a cached check is considered
// fresh. A cache whose lastChecked is at or before the cutoff is stale.
// "every time" uses now itself, so any past check is stale; the calendar
// intervals subtract from the start of the current local day, so a check from
// earlier today stays fresh under "daily".
func Cutoff(interval Interval, now time.Time) time.Time {
	if interval == IntervalEveryTime {
		return now
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch interval {
	case IntervalWeekly:
		return startOfDay.AddDate(0, 0, -7)
	case IntervalMonthly:
		return startOfDay.AddDate(0, -1, 0)
	default: // IntervalDaily
		return startOfDay
	}
}

// WithNow overrides the checker's clock, enabling deterministic tests.
func WithNow(now func() time.Time) CheckerOption {
	return func(c *Checker) {
		c.now = now
	}
}

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) CheckerOption {
	return func(c *Checker) {
		c.logger = l
	}
}

// NewChecker creates a Checker over the given cache and manifest client.
func NewChecker(cache *Cache, client *Client, opts ...CheckerOption) *Checker {
	c := &Checker{
		cache:  cache,
		client: client,
		now:    time.Now,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckForUpdate returns the manifest versions strictly newer than
// currentVersion, preserving manifest order.
//
// Flow: load cache → if stale per interval, fetch the manifest, replace the
// cached version list wholesale, bump lastChecked, and save best-effort →
// filter. A fetch failure surfaces as *FetchError with the cache unmodified;
// a cache save failure is logged and otherwise ignored. A first check with an
// empty cache is always stale (lastChecked 0 precedes every cutoff), so it
// fetches even under "monthly".
//
// An invalid currentVersion fails up front, before the cache is read or any
// request goes out: the comparison is doomed, so fetching and bumping
// lastChecked would only mask the configuration error.
func (c *Checker) CheckForUpdate(ctx context.Context, manifestURL string, interval Interval, currentVersion string) ([]VersionData, error) {
	if err := version.Validate(currentVersion, "currentVersion"); err != nil {
		return nil, err
	}

	data, err := c.cache.Load(ctx)
	if err != nil {
		return nil, err
	}

	now := c.now()
	if data.LastChecked <= Cutoff(interval, now).UnixMilli() {
		versions, err := c.client.Fetch(ctx, manifestURL)
		if err != nil {
			return nil, err
		}

		data.Versions = versions
		data.LastChecked = now.UnixMilli()
		if err := c.cache.Save(ctx, data); err != nil {
			c.logger.Warn("could not persist update cache; next check will fetch again", "err", err)
		}
	}

	var newer []VersionData
	for _, v := range data.Versions {
		cmp, err := version.CompareAs(v.Version, "manifestVersion", currentVersion, "currentVersion")
		if err != nil {
			return nil, err
		}
		if cmp > 0 {
			newer = append(newer, v)
		}
	}
	return newer, nil
}
