// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/schl3ck/scriptup/internal/issue"
	"github.com/schl3ck/scriptup/internal/tui"
	"github.com/schl3ck/scriptup/internal/update"
)

// upgradeParams bundles the dependencies and flags for the upgrade command,
// enabling the core logic in runUpgrade to be tested without a real Cobra
// command or a live download server.
type upgradeParams struct {
	stdout         io.Writer
	stderr         io.Writer
	checker        *update.Checker
	installer      *update.Installer
	manifestURL    string
	currentVersion string
	target         string // target version (empty = latest)
	yes            bool   // --yes flag: skip confirmation prompt
	keepBackup     bool   // --keep-backup flag: skip post-install cleanup
}

// newUpgradeCommand creates the `scriptup upgrade` command, which downloads
// a release archive and installs it over the current script directory.
func newUpgradeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade [version]",
		Short: "Download and install a newer version of the managed script",
		Long: `Download and install a newer version of the managed script.

The release archive is downloaded and unpacked into a staging
directory first. The current script directory is then moved aside as
a backup and the staged version takes its place. The backup is kept
until 'scriptup cleanup' removes it, so a bad upgrade can be undone
with 'scriptup rollback'.`,
		Example: `  # Upgrade to the latest version in the manifest
  scriptup upgrade

  # Upgrade to a specific version
  scriptup upgrade 2.1

  # Skip the confirmation prompt
  scriptup upgrade --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			yesFlag, _ := cmd.Flags().GetBool("yes")
			keepFlag, _ := cmd.Flags().GetBool("keep-backup")

			var target string
			if len(args) > 0 {
				target = args[0]
			}

			cfg, err := loadConfig()
			if err != nil {
				printError(cmd.ErrOrStderr(), formatConfigError(err))
				return &ExitError{Code: 1, Err: err}
			}

			checker, closeStore, err := buildChecker(cfg)
			if err != nil {
				printError(cmd.ErrOrStderr(), formatErrorForDisplay(err, verbose))
				return &ExitError{Code: 1, Err: err}
			}
			defer closeStore() //nolint:errcheck

			p := upgradeParams{
				stdout:         cmd.OutOrStdout(),
				stderr:         cmd.ErrOrStderr(),
				checker:        checker,
				installer:      buildInstaller(cfg),
				manifestURL:    cfg.ManifestURL,
				currentVersion: cfg.CurrentVersion,
				target:         target,
				yes:            yesFlag,
				keepBackup:     keepFlag,
			}

			if err := runUpgrade(cmd.Context(), p); err != nil {
				printError(p.stderr, formatUpgradeError(err, p.installer))
				return &ExitError{Code: classifyUpgradeExitCode(err), Err: err}
			}
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")
	cmd.Flags().Bool("keep-backup", false, "Keep the backup and staging directories after a successful install")

	return cmd
}

// errNoUpgradeTarget is returned when no version satisfies the upgrade request.
var errNoUpgradeTarget = errors.New("no matching version available")

// runUpgrade is the core upgrade logic, separated from Cobra for testability.
// All user-facing output goes through p.stdout and p.stderr.
//
// Flow:
//  1. Fetch the newer versions (the interval gate is bypassed: upgrading is
//     an explicit request for fresh data).
//  2. Pick the target: the requested version, or the first (newest) entry.
//  3. Confirm with the user unless --yes.
//  4. Download into staging, swap the script directory, report the backup.
func runUpgrade(ctx context.Context, p upgradeParams) error {
	newer, err := p.checker.CheckForUpdate(ctx, p.manifestURL, update.IntervalEveryTime, p.currentVersion)
	if err != nil {
		return fmt.Errorf("checking for upgrade: %w", err)
	}

	if len(newer) == 0 {
		fmt.Fprintf(p.stdout, "Current version: %s\n", p.currentVersion)
		fmt.Fprintln(p.stdout, "You are up to date.")
		return nil
	}

	target, err := pickTarget(newer, p.target)
	if err != nil {
		return err
	}

	fmt.Fprintf(p.stdout, "Current version: %s\n", p.currentVersion)
	fmt.Fprintf(p.stdout, "Target version:  %s\n", target.Version)

	if !p.yes {
		confirmed, confirmErr := tui.Confirm(tui.ConfirmOptions{
			Title:       fmt.Sprintf("Upgrade from %s to %s?", p.currentVersion, target.Version),
			Description: "The current version is kept as a backup until 'scriptup cleanup'.",
			Default:     true,
		})
		if confirmErr != nil {
			return fmt.Errorf("confirmation prompt: %w", confirmErr)
		}
		if !confirmed {
			return nil
		}
	}

	fmt.Fprintf(p.stdout, "\nDownloading %s...\n", target.URL)
	files, err := p.installer.Download(ctx, target.URL)
	if err != nil {
		return fmt.Errorf("downloading version %s: %w", target.Version, err)
	}
	fmt.Fprintf(p.stdout, "Unpacked %d file(s) into staging.\n", len(files))

	if err := p.installer.Install(); err != nil {
		return fmt.Errorf("installing version %s: %w", target.Version, err)
	}

	fmt.Fprintf(p.stdout, "Previous version backed up to %s\n", p.installer.BackupDir())
	fmt.Fprintln(p.stdout, SuccessStyle.Render(fmt.Sprintf("Successfully upgraded to %s", target.Version)))

	if p.keepBackup {
		fmt.Fprintf(p.stdout, "Run %s once you have verified the new version.\n", CmdStyle.Render("scriptup cleanup"))
	} else if err := p.installer.Cleanup(); err != nil {
		fmt.Fprintln(p.stderr, WarningStyle.Render("Warning: ")+fmt.Sprintf("cleanup failed: %v", err))
	}

	fmt.Fprintf(p.stdout, "Update current_version to %s in your config file.\n", target.Version)
	return nil
}

// pickTarget selects the version to install from the newer-than-current list.
// An empty want selects the first entry, which the manifest orders newest
// first.
func pickTarget(newer []update.VersionData, want string) (update.VersionData, error) {
	if want == "" {
		return newer[0], nil
	}
	for _, v := range newer {
		if v.Version == want {
			return v, nil
		}
	}
	return update.VersionData{}, fmt.Errorf("%w: %s is not among the newer versions", errNoUpgradeTarget, want)
}

// classifyUpgradeExitCode maps an upgrade error to the appropriate process
// exit code. Permission problems and unknown target versions are
// user-correctable (exit code 1); download and install failures are
// unexpected or transient (exit code 2).
func classifyUpgradeExitCode(err error) int {
	switch {
	case errors.Is(err, os.ErrPermission):
		return 1
	case errors.Is(err, errNoUpgradeTarget):
		return 1
	default:
		return 2
	}
}

// formatUpgradeError produces a user-friendly error message, appending the
// catalog remediation guide where one matches the error type.
func formatUpgradeError(err error, installer *update.Installer) string {
	var fetchErr *update.FetchError
	if errors.As(err, &fetchErr) {
		return withIssueHelp(err.Error(), issue.ManifestUnreachableId)
	}

	var downloadErr *update.DownloadError
	if errors.As(err, &downloadErr) {
		return fmt.Sprintf("%s\n\nNothing was written to disk. Check the manifest's download URL\nand try again.", downloadErr.Error())
	}

	var conversionErr *update.ConversionError
	if errors.As(err, &conversionErr) {
		return withIssueHelp(err.Error(), issue.DownloadCorruptId)
	}

	if errors.Is(err, os.ErrPermission) {
		return withIssueHelp(err.Error(), issue.PermissionDeniedId)
	}

	if errors.Is(err, os.ErrNotExist) {
		return withIssueHelp(err.Error(), issue.ScriptDirMissingId)
	}

	if installer != nil {
		if _, statErr := os.Stat(installer.BackupDir()); statErr == nil {
			return fmt.Sprintf("%s\n\nA backup of the previous version exists at:\n  %s\nRestore it with: scriptup rollback", err.Error(), installer.BackupDir())
		}
	}

	return fmt.Sprintf("%s\n\nCheck your network connection and try again.", err.Error())
}
