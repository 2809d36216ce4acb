// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/schl3ck/scriptup/internal/daemon"
	"github.com/schl3ck/scriptup/internal/update"
)

// newWatchCommand creates the `scriptup watch` command, which keeps polling
// the manifest in the foreground and reports when updates appear.
func newWatchCommand() *cobra.Command {
	var pollEvery time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the manifest periodically and report available updates",
		Long: `Poll the manifest periodically and report available updates.

The process stays in the foreground until interrupted. Each tick runs
a normal update check, so the configured check interval still decides
how often the manifest is actually fetched; --poll only controls how
often the gate is evaluated.`,
		Example: `  # Evaluate the check interval once per hour (the default)
  scriptup watch

  # Evaluate every ten minutes
  scriptup watch --poll 10m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			cfg, err := loadConfig()
			if err != nil {
				printError(cmd.ErrOrStderr(), formatConfigError(err))
				return &ExitError{Code: 1, Err: err}
			}

			interval, err := update.ParseInterval(cfg.CheckInterval)
			if err != nil {
				return err
			}

			checker, closeStore, err := buildChecker(cfg)
			if err != nil {
				printError(cmd.ErrOrStderr(), formatErrorForDisplay(err, verbose))
				return &ExitError{Code: 1, Err: err}
			}
			defer closeStore() //nolint:errcheck

			stdout := cmd.OutOrStdout()
			watcher, err := daemon.NewWatcher(checker, daemon.Options{
				ManifestURL:    cfg.ManifestURL,
				CurrentVersion: cfg.CurrentVersion,
				Interval:       interval,
				PollEvery:      pollEvery,
				OnUpdates: func(versions []update.VersionData) {
					fmt.Fprintf(stdout, "Update available: %s (current: %s)\n",
						versions[0].Version, cfg.CurrentVersion)
					fmt.Fprintf(stdout, "Run %s to install it.\n", CmdStyle.Render("scriptup upgrade"))
				},
			}, log.Default())
			if err != nil {
				return err
			}

			if err := watcher.Start(cmd.Context()); err != nil {
				return &ExitError{Code: 2, Err: err}
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&pollEvery, "poll", time.Hour, "how often to evaluate the check interval")

	return cmd
}
