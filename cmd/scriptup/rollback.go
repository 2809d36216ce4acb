// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schl3ck/scriptup/internal/issue"
)

// newRollbackCommand creates the `scriptup rollback` command, which restores
// the previous version from the backup left behind by an upgrade.
func newRollbackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Restore the previous version from the upgrade backup",
		Long: `Restore the previous version from the upgrade backup.

An upgrade moves the old script directory aside instead of deleting
it. Rollback replaces the current script directory with that backup.
It fails if the backup has already been removed by 'scriptup cleanup'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			cfg, err := loadConfig()
			if err != nil {
				printError(cmd.ErrOrStderr(), formatConfigError(err))
				return &ExitError{Code: 1, Err: err}
			}

			installer := buildInstaller(cfg)
			if err := installer.Rollback(); err != nil {
				wrapped := issue.NewErrorContext().
					WithOperation("rolling back to the previous version").
					WithResource(installer.BackupDir()).
					Wrap(err).
					Build()
				printError(cmd.ErrOrStderr(), withIssueHelp(formatErrorForDisplay(wrapped, verbose), issue.BackupMissingId))
				return &ExitError{Code: 1, Err: wrapped}
			}

			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Previous version restored."))
			fmt.Fprintf(cmd.OutOrStdout(), "Remember to revert current_version in your config file.\n")
			return nil
		},
	}
}
