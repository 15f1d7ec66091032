// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config caches the CLI prompts' last-used answers (cert path,
// key path, sandbox root, password file) so an operator restarting the
// server isn't forced to retype them every time.
//
// File location (in order of precedence):
//   - $RIGSHELL_CONFIG
//   - ~/.rigshell/config.toml
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURE
// =============================================================================

// Defaults holds the last-accepted values from the server's interactive
// configuration prompts.
type Defaults struct {
	CertPath     string `toml:"cert_path"`
	KeyPath      string `toml:"key_path"`
	RootDir      string `toml:"root_dir"`
	PasswordFile string `toml:"password_file"`
	AuditDBPath  string `toml:"audit_db_path"`
}

// Path resolves the config file location, honoring RIGSHELL_CONFIG.
func Path() string {
	if p := os.Getenv("RIGSHELL_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rigshell/config.toml"
	}
	return filepath.Join(home, ".rigshell", "config.toml")
}

// Load reads Defaults from path. A missing file is not an error — it
// returns a zero-value Defaults so first-run prompts have nothing to
// prefill.
func Load(path string) (Defaults, error) {
	var d Defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return d, nil
	}
	_, err := toml.DecodeFile(path, &d)
	return d, err
}

// Save writes d to path, creating its parent directory if needed.
func Save(path string, d Defaults) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(d)
}
