// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/schl3ck/scriptup/internal/issue"
	"github.com/schl3ck/scriptup/internal/update"
	"github.com/schl3ck/scriptup/internal/version"
)

// checkParams bundles the dependencies and flags for the check command,
// enabling the core logic in runCheck to be tested without a real Cobra
// command or a live manifest endpoint.
type checkParams struct {
	stdout         io.Writer
	checker        *update.Checker
	manifestURL    string
	currentVersion string
	interval       update.Interval
}

// newCheckCommand creates the `scriptup check` command, which looks for
// versions newer than the installed one.
func newCheckCommand() *cobra.Command {
	var intervalFlag string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the manifest for versions newer than the installed one",
		Long: `Check the manifest for versions newer than the installed one.

The manifest is only fetched when the configured check interval has
elapsed since the last fetch; otherwise the cached result is used.
Pass --interval "every time" to force a fetch.`,
		Example: `  # Check using the configured interval
  scriptup check

  # Force a fetch regardless of the configured interval
  scriptup check --interval "every time"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			cfg, err := loadConfig()
			if err != nil {
				printError(cmd.ErrOrStderr(), formatConfigError(err))
				return &ExitError{Code: 1, Err: err}
			}

			interval, err := parseIntervalFlag(intervalFlag, cfg.CheckInterval)
			if err != nil {
				return err
			}

			checker, closeStore, err := buildChecker(cfg)
			if err != nil {
				printError(cmd.ErrOrStderr(), formatErrorForDisplay(err, verbose))
				return &ExitError{Code: 1, Err: err}
			}
			defer closeStore() //nolint:errcheck

			p := checkParams{
				stdout:         cmd.OutOrStdout(),
				checker:        checker,
				manifestURL:    cfg.ManifestURL,
				currentVersion: cfg.CurrentVersion,
				interval:       interval,
			}

			if err := runCheck(cmd.Context(), p); err != nil {
				printError(cmd.ErrOrStderr(), formatCheckError(err))
				return &ExitError{Code: classifyCheckExitCode(err), Err: err}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&intervalFlag, "interval", "", `override the configured check interval ("every time", "daily", "weekly", "monthly")`)

	return cmd
}

// runCheck is the core check logic, separated from Cobra for testability.
func runCheck(ctx context.Context, p checkParams) error {
	newer, err := p.checker.CheckForUpdate(ctx, p.manifestURL, p.interval, p.currentVersion)
	if err != nil {
		return err
	}

	fmt.Fprintf(p.stdout, "Current version: %s\n", p.currentVersion)
	if len(newer) == 0 {
		fmt.Fprintln(p.stdout, "You are up to date.")
		return nil
	}

	fmt.Fprintf(p.stdout, "\n%d newer version(s) available:\n", len(newer))
	for _, v := range newer {
		line := fmt.Sprintf("  %s", v.Version)
		if v.Date != "" {
			line += fmt.Sprintf(" (%s)", v.Date)
		}
		fmt.Fprintln(p.stdout, line)
		if v.Notes != "" {
			fmt.Fprintf(p.stdout, "    %s\n", v.Notes)
		}
	}
	fmt.Fprintf(p.stdout, "\nRun %s to install the latest version.\n", CmdStyle.Render("scriptup upgrade"))
	return nil
}

// classifyCheckExitCode maps a check error to the appropriate process exit code.
// Invalid versions are user-correctable configuration problems (exit code 1);
// fetch failures are transient (exit code 2).
func classifyCheckExitCode(err error) int {
	var validationErr *version.ValidationError
	if errors.As(err, &validationErr) {
		return 1
	}
	return 2
}

// formatCheckError produces a user-friendly error message, appending the
// catalog remediation guide where one matches the error type.
func formatCheckError(err error) string {
	var fetchErr *update.FetchError
	if errors.As(err, &fetchErr) {
		return withIssueHelp(fetchErr.Error(), issue.ManifestUnreachableId)
	}

	var validationErr *version.ValidationError
	if errors.As(err, &validationErr) {
		return fmt.Sprintf("%s\n\nVersions must be 1-4 dot-separated numbers, e.g. 1.2.3.\nFix the offending value and retry.", validationErr.Error())
	}

	return err.Error()
}
