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
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"chonk/internal/config"
	"chonk/internal/index"
	"chonk/internal/storage"
)

var scanTop int

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Index a directory tree and print the largest entries",
	Long: `Walk the given directory (default: current directory), index every file,
directory and symlink under it, and print the root's children largest first.

Examples:
  chonk scan
  chonk scan ~/projects
  chonk scan --top 10 /var/log`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTop, "top", 0, "number of entries to print (default from config)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	targetPath := "."
	if len(args) > 0 {
		targetPath = args[0]
	}
	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	fi, err := os.Lstat(absPath)
	if err != nil {
		return fmt.Errorf("path not found: %s", absPath)
	}
	if !fi.IsDir() {
		return fmt.Errorf("not a directory: %s", absPath)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if scanTop > 0 {
		cfg.Top = scanTop
	}
	if loggingLevel == "" && cfg.Logging != "" {
		// The --logging flag wins; otherwise the config file decides.
		configureLogging(cfg.Logging)
	}

	// One scan at a time per config dir; concurrent walks thrash the disk
	// they are both trying to measure.
	lock := flock.New(config.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire scan lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another scan is already running (lock: %s)", config.LockPath())
	}
	defer lock.Unlock()

	store, err := storage.NewTreeStore(absPath, storage.Config{
		ReservedBytes: cfg.ReservedBytes,
		HeaderPages:   cfg.HeaderPages,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	scanErr := index.Scan(ctx, store, osfs.New(absPath), cfg.Ignore)
	elapsed := time.Since(started)
	if scanErr != nil && ctx.Err() == nil {
		return scanErr
	}

	printListing(store, cfg.Top)
	printSummary(store, elapsed, scanErr != nil)
	return nil
}

func printListing(store *storage.TreeStore, top int) {
	rv := store.ReadView()
	var records []storage.ChildRecord
	switch rv.ChildrenOf(rv.Root(), &records) {
	case storage.NotReady:
		fmt.Println("Listing incomplete: scan was interrupted before the root's children finished.")
		return
	case storage.Empty:
		fmt.Println("Empty directory.")
		return
	}
	if len(records) > top {
		fmt.Printf("Largest %d of %d entries:\n", top, len(records))
		records = records[:top]
	}
	for _, rec := range records {
		marker := " "
		if rec.Kind == storage.KindDir {
			marker = "/"
		}
		fmt.Printf("  %10s  %s%s\n", humanBytes(rec.ByteCount), rec.Name, marker)
	}
}

func printSummary(store *storage.TreeStore, elapsed time.Duration, interrupted bool) {
	stats := store.Stats()
	status := "Indexed"
	if interrupted {
		status = "Interrupted after"
	}
	fmt.Printf("%s %d files in %d directories, %s apparent, %s on disk (%d entries, %d pages, %s)\n",
		status, stats.FilesIndexed, stats.DirsIndexed,
		humanBytes(store.Root().ByteCount()),
		humanBytes(store.Root().BlockCount()*512),
		stats.EntriesTotal,
		stats.PagesCommitted,
		elapsed.Round(time.Millisecond))
}

// humanBytes renders a byte count with a binary-unit suffix.
func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
