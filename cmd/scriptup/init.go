// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/schl3ck/scriptup/internal/config"
)

var (
	initForce bool

	// initCmd scaffolds a config file to fill in
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file with commented defaults",
		Long: `Create a configuration file with commented defaults.

The generated file contains every supported setting. manifest_url,
script_name and script_dir must be filled in before the other
commands can run.`,
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
}

func newInitCommand() *cobra.Command {
	return initCmd
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := config.ConfigFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("config file '%s' already exists. Use --force to overwrite", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	content, err := generateConfigFile()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s Created %s\n", SuccessStyle.Render("✓"), path)
	fmt.Fprintln(out)
	fmt.Fprintln(out, SubtitleStyle.Render("Next steps:"))
	fmt.Fprintln(out, "  1. Set manifest_url, script_name and script_dir")
	fmt.Fprintln(out, "  2. Set current_version to the installed version")
	fmt.Fprintln(out, "  3. Run 'scriptup check' to look for updates")
	return nil
}

// generateConfigFile renders the default configuration with a usage header.
func generateConfigFile() ([]byte, error) {
	body, err := toml.Marshal(config.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("encoding default configuration: %w", err)
	}

	header := `# scriptup configuration
#
# manifest_url    - JSON manifest listing released versions (required)
# script_name     - name of the managed script (required)
# script_dir      - install location of the managed script (required)
# current_version - installed version, e.g. "1.2.3"
# check_interval  - "every time", "daily", "weekly" or "monthly"
# cache_path      - update cache database (default: next to this file)
# staging_dir     - unpack location for downloads (default: <script_dir>.staging)

`
	return append([]byte(header), body...), nil
}
