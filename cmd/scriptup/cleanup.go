// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newCleanupCommand creates the `scriptup cleanup` command, which removes
// the leftovers of the last upgrade.
func newCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove the upgrade backup, staging directory and archive",
		Long: `Remove the upgrade backup, staging directory and archive.

After cleanup the previous version can no longer be restored with
'scriptup rollback'. Running cleanup when nothing is left over is
harmless.`,
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
			if err := installer.Cleanup(); err != nil {
				printError(cmd.ErrOrStderr(), formatErrorForDisplay(err, verbose))
				return &ExitError{Code: 2, Err: err}
			}

			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Upgrade leftovers removed."))
			return nil
		},
	}
}
