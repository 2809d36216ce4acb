// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/schl3ck/scriptup/internal/config"
	"github.com/schl3ck/scriptup/internal/issue"
	"github.com/schl3ck/scriptup/internal/store"
	"github.com/schl3ck/scriptup/internal/update"
)

// buildChecker wires a Checker from the resolved configuration. The returned
// close func releases the underlying cache store and must be called when the
// command is done.
func buildChecker(cfg *config.Config) (*update.Checker, func() error, error) {
	st, err := store.OpenSQLite(cfg.CachePath)
	if err != nil {
		return nil, nil, issue.NewErrorContext().
			WithOperation("opening update cache").
			WithResource(cfg.CachePath).
			WithSuggestion("check that the cache directory is writable").
			WithSuggestion("set cache_path in the config file to relocate the cache").
			Wrap(err).
			Build()
	}

	cache := update.NewCache(st, cfg.ScriptName)
	client := update.NewClient(update.WithUserAgent("scriptup/" + Version))
	return update.NewChecker(cache, client), st.Close, nil
}

// buildInstaller wires an Installer from the resolved configuration.
func buildInstaller(cfg *config.Config) *update.Installer {
	opts := []update.InstallerOption{}
	if cfg.StagingDir != "" {
		opts = append(opts, update.WithStagingDir(cfg.StagingDir))
	}
	return update.NewInstaller(cfg.ScriptDir, opts...)
}

// parseIntervalFlag resolves the effective check interval: the --interval
// flag wins over the configured one.
func parseIntervalFlag(flagValue, configured string) (update.Interval, error) {
	raw := configured
	if flagValue != "" {
		raw = flagValue
	}
	interval, err := update.ParseInterval(raw)
	if err != nil {
		return "", fmt.Errorf("invalid check interval %q: %w", raw, err)
	}
	return interval, nil
}
