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

package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	log "github.com/sirupsen/logrus"

	"chonk/internal/config"
)

var loggingLevel string

// SetVersion sets the version info for the --version flag. chonk ships as
// one static binary, so one string of version, commit and build date is all
// the provenance needed.
func SetVersion(version, commit, date string) {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
}

var rootCmd = &cobra.Command{
	Use:   "chonk",
	Short: "Index a directory tree and report where the bytes went",
	Long:  `Index a filesystem subtree into an in-memory tree store and report per-directory disk usage, largest entries first.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		if err := config.EnsureConfigDir(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		configureLogging(loggingLevel)
		return nil
	},
}

// configureLogging enables logrus at the requested level. Logging stays
// discarded unless a level is named.
func configureLogging(level string) {
	switch strings.ToLower(level) {
	case "", "off", "none":
		log.SetOutput(io.Discard)
	case "info":
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	case "debug":
		log.SetOutput(os.Stderr)
		log.SetLevel(log.DebugLevel)
	case "trace":
		log.SetOutput(os.Stderr)
		log.SetLevel(log.TraceLevel)
	default:
		fmt.Fprintf(os.Stderr, "Warning: unknown logging level %q, logging disabled\n", level)
		log.SetOutput(io.Discard)
	}
}

func init() {
	// Logging off until explicitly enabled
	log.SetOutput(io.Discard)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("chonk version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&loggingLevel, "logging", "", "logging level: off, info, debug, trace")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
