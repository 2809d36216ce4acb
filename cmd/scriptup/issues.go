// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schl3ck/scriptup/internal/issue"
)

// newIssuesCommand creates the `scriptup issues` command, which prints the
// troubleshooting guides for every known failure situation. Individual guides
// are shown automatically when the matching failure occurs; this command is
// the browsable index.
func newIssuesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "issues",
		Short: "Show the troubleshooting guides for known failure situations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range issue.Ids() {
				if help := issueHelp(id); help != "" {
					fmt.Fprint(cmd.OutOrStdout(), help)
				}
			}
			return nil
		},
	}
}
