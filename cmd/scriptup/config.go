// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/schl3ck/scriptup/internal/config"
)

// newConfigCommand creates the `scriptup config` command tree.
func newConfigCommand() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage scriptup configuration",
		Long: `Manage scriptup configuration.

Configuration is stored in:
  - Linux: ~/.config/scriptup/config.toml
  - macOS: ~/Library/Application Support/scriptup/config.toml
  - Windows: %APPDATA%\scriptup\config.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigFilePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return cfgCmd
}

// showConfig prints the resolved configuration as TOML, defaults and env
// overrides included.
func showConfig(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}

	path, err := config.ConfigFilePath()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("# "+path))
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}
