// SPDX-License-Identifier: MPL-2.0

// Package config loads the scriptup configuration: which script is managed,
// where its manifest lives, and how often checks may hit the network.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used for config and cache paths.
	AppName = "scriptup"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
)

// Config is the resolved scriptup configuration.
type Config struct {
	// ManifestURL is the remote JSON version manifest.
	ManifestURL string `mapstructure:"manifest_url" toml:"manifest_url"`

	// ScriptName identifies the managed script; it namespaces the update
	// cache records.
	ScriptName string `mapstructure:"script_name" toml:"script_name"`

	// ScriptDir is the live install location of the managed script.
	ScriptDir string `mapstructure:"script_dir" toml:"script_dir"`

	// CurrentVersion is the installed version of the managed script.
	CurrentVersion string `mapstructure:"current_version" toml:"current_version"`

	// CheckInterval gates how often a check fetches the manifest:
	// "every time", "daily", "weekly", or "monthly".
	CheckInterval string `mapstructure:"check_interval" toml:"check_interval"`

	// CachePath is the SQLite database holding the update cache.
	// Empty means <config dir>/cache.db.
	CachePath string `mapstructure:"cache_path" toml:"cache_path"`

	// StagingDir is where downloaded archives are unpacked before install.
	// Empty means <script_dir>.staging.
	StagingDir string `mapstructure:"staging_dir" toml:"staging_dir"`
}

// DefaultConfig returns the built-in defaults. ManifestURL, ScriptName,
// ScriptDir, and CurrentVersion have no sensible defaults and must come from
// the config file or flags.
func DefaultConfig() *Config {
	return &Config{
		CheckInterval: "daily",
	}
}

// ConfigDir returns the scriptup configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	// Allow tests to override the config directory
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ConfigFilePath returns the full path to the config file, honoring the
// --config override when set.
func ConfigFilePath() (string, error) {
	if configFilePathOverride != "" {
		return configFilePathOverride, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// Load reads the configuration from the config file and SCRIPTUP_* env
// variables, applying defaults for anything unset. A missing config file is
// not an error: flags or env can supply everything.
func Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("manifest_url", defaults.ManifestURL)
	v.SetDefault("script_name", defaults.ScriptName)
	v.SetDefault("script_dir", defaults.ScriptDir)
	v.SetDefault("current_version", defaults.CurrentVersion)
	v.SetDefault("check_interval", defaults.CheckInterval)
	v.SetDefault("cache_path", defaults.CachePath)
	v.SetDefault("staging_dir", defaults.StagingDir)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := ConfigFilePath()
	if err != nil {
		return nil, err
	}
	v.SetConfigFile(path)
	v.SetConfigType(ConfigFileExt)

	if err := v.ReadInConfig(); err != nil {
		// The file is optional unless the user pointed at one explicitly.
		if _, statErr := os.Stat(path); statErr == nil || configFilePathOverride != "" {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config file %s: %w", path, err)
	}

	applyDerivedDefaults(&cfg)
	return &cfg, nil
}

// applyDerivedDefaults fills paths that depend on other settings.
func applyDerivedDefaults(cfg *Config) {
	if cfg.CachePath == "" {
		if dir, err := ConfigDir(); err == nil {
			cfg.CachePath = filepath.Join(dir, "cache.db")
		}
	}
	if cfg.StagingDir == "" && cfg.ScriptDir != "" {
		cfg.StagingDir = cfg.ScriptDir + ".staging"
	}
}

// Validate checks that the settings needed for an update check are present
// and well-formed.
func (c *Config) Validate() error {
	if c.ManifestURL == "" {
		return fmt.Errorf("manifest_url is not configured")
	}
	if c.ScriptName == "" {
		return fmt.Errorf("script_name is not configured")
	}
	if c.ScriptDir == "" {
		return fmt.Errorf("script_dir is not configured")
	}
	return nil
}
