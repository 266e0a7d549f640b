// Copyright 2025 Chonk Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// getConfigDir returns the config directory path.
// Uses CHONK_CONFIG_DIR env var if set, otherwise defaults to ~/.chonk.
// This is computed dynamically to support test isolation.
func getConfigDir() string {
	if dir := os.Getenv("CHONK_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".chonk")
}

// ConfigDir returns the configuration directory path
func ConfigDir() string {
	return getConfigDir()
}

// ConfigPath returns the settings file path
func ConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// LockPath returns the scan lock file path
func LockPath() string {
	return filepath.Join(getConfigDir(), "scan.lock")
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	return os.MkdirAll(getConfigDir(), 0700)
}

// Config is the settings file at {config_dir}/config.yaml
type Config struct {
	ReservedBytes uint64   `yaml:"reserved_bytes"` // backing reservation; default 8 GiB
	HeaderPages   uint32   `yaml:"header_pages"`   // pages committed at init; default 2
	Ignore        []string `yaml:"ignore"`         // gitignore-style skip patterns
	Logging       string   `yaml:"logging"`        // logging level: off, info, debug, trace (case insensitive)
	Top           int      `yaml:"top"`            // entries shown per directory listing
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Logging: "off",
		Top:     20,
	}
}

// Load reads the settings file, filling defaults for anything unset. A
// missing file is not an error; the defaults apply.
func Load() (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", ConfigPath(), err)
	}
	if cfg.Top <= 0 {
		cfg.Top = Default().Top
	}
	return cfg, nil
}
