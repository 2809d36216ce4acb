// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for scriptup.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/schl3ck/scriptup/internal/config"
	"github.com/schl3ck/scriptup/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "scriptup",
		Short: "An update manager for long-lived scripts",
		Long: TitleStyle.Render("scriptup") + SubtitleStyle.Render(" - An update manager for long-lived scripts") + `

scriptup keeps a locally installed script up to date against a remote
JSON version manifest. It caches check results so a manifest is only
fetched once per configured interval, downloads release archives, and
installs them with a backup of the previous version.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'scriptup init' to create a configuration file
  2. Point manifest_url at your version manifest
  3. Run 'scriptup check' to look for newer versions

` + SubtitleStyle.Render("Examples:") + `
  scriptup check            Check for newer versions
  scriptup upgrade          Download and install the latest version
  scriptup upgrade 2.1      Install a specific version
  scriptup rollback         Restore the previous version from backup
  scriptup watch            Poll for updates in the background`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/scriptup/config.toml)")

	// Add subcommands
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newUpgradeCommand())
	rootCmd.AddCommand(newRollbackCommand())
	rootCmd.AddCommand(newCleanupCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newIssuesCommand())
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig applies the global flags before any command runs.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// loadConfig loads and validates the configuration for commands that need a
// complete one.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("loading configuration").
			Wrap(err).
			Build()
	}
	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validating configuration").
			Wrap(err).
			Build()
	}
	return cfg, nil
}

// formatConfigError formats a configuration failure with the catalog
// remediation guide attached.
func formatConfigError(err error) string {
	return withIssueHelp(formatErrorForDisplay(err, verbose), issue.ConfigLoadFailedId)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// printError writes a failure message to w behind a styled marker.
func printError(w io.Writer, msg string) {
	fmt.Fprintln(w, ErrorStyle.Render("✗")+" "+msg)
}
