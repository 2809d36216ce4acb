// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/schl3ck/scriptup/internal/config"
)

func TestGenerateConfigFile(t *testing.T) {
	t.Parallel()

	content, err := generateConfigFile()
	if err != nil {
		t.Fatalf("generateConfigFile: %v", err)
	}

	text := string(content)
	for _, want := range []string{"manifest_url", "script_name", "script_dir", "check_interval"} {
		if !strings.Contains(text, want) {
			t.Errorf("generated config missing %q:\n%s", want, text)
		}
	}

	// The body after the comment header must parse as TOML.
	var cfg config.Config
	if err := toml.Unmarshal(content, &cfg); err != nil {
		t.Fatalf("generated config does not parse: %v", err)
	}
	if cfg.CheckInterval != "daily" {
		t.Errorf("CheckInterval default = %q, want daily", cfg.CheckInterval)
	}
}

func TestRunInitWritesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scriptup", "config.toml")
	config.SetConfigFilePathOverride(path)
	defer config.Reset()

	cmd := newInitCommand()
	cmd.SetOut(io.Discard)

	if err := runInit(cmd, nil); err != nil {
		t.Fatalf("runInit: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	// A second run without --force must refuse to overwrite.
	if err := runInit(cmd, nil); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("second runInit err = %v, want already-exists error", err)
	}

	initForce = true
	defer func() { initForce = false }()
	if err := runInit(cmd, nil); err != nil {
		t.Fatalf("runInit with force: %v", err)
	}
}
