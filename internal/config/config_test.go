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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHONK_CONFIG_DIR", dir)

	assert.Equal(t, dir, ConfigDir())
	assert.Equal(t, filepath.Join(dir, "config.yaml"), ConfigPath())
	assert.Equal(t, filepath.Join(dir, "scan.lock"), LockPath())
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	t.Setenv("CHONK_CONFIG_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 20, cfg.Top)
	assert.Zero(t, cfg.ReservedBytes, "storage layer supplies its own default")
}

func TestLoad_ReadsSettings(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHONK_CONFIG_DIR", dir)

	content := `
reserved_bytes: 1073741824
header_pages: 4
ignore:
  - node_modules/
  - "*.tmp"
logging: debug
top: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<30), cfg.ReservedBytes)
	assert.Equal(t, uint32(4), cfg.HeaderPages)
	assert.Equal(t, []string{"node_modules/", "*.tmp"}, cfg.Ignore)
	assert.Equal(t, "debug", cfg.Logging)
	assert.Equal(t, 5, cfg.Top)
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHONK_CONFIG_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("top: [broken"), 0600))

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_NonPositiveTopFallsBack(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHONK_CONFIG_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("top: -3"), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Top)
}

func TestEnsureConfigDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cfg")
	t.Setenv("CHONK_CONFIG_DIR", dir)

	require.NoError(t, EnsureConfigDir())
	fi, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}
