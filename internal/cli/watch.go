package cli

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/quireproject/quire/internal/corpus"
	"github.com/quireproject/quire/internal/model"
)

var watchInterval time.Duration

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-validate the corpus whenever documents change",
	Long: `Watch monitors the corpus roots and reruns validation after each batch of
file changes. Events are debounced so an editor save (write + rename +
chmod) triggers one run, not three.

Watch never regenerates tables; run rebuild for that. Exit with Ctrl-C.

Example:
  quire watch
  quire watch --debounce 2s`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchInterval, "debounce", 500*time.Millisecond, "quiet period before revalidating")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := addRoots(watcher, cfg); err != nil {
		return err
	}

	// One loader for the whole session: its parse cache carries across
	// cycles, so a change to one document re-parses one document.
	loader := corpus.NewLoader(cfg)

	runOnce := func() {
		c, rep, err := validateWith(ctx, cfg, loader)
		if err != nil {
			fmt.Fprintf(os.Stderr, "validation failed: %v\n", err)
			return
		}
		printReport(c, rep)
	}

	runOnce()
	fmt.Fprintln(os.Stderr, "watching for changes...")

	var timer *time.Timer
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New directories need their own watch before anything
			// inside them can fire.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = watcher.Add(ev.Name)
				}
			}
			if strings.HasPrefix(filepath.Base(ev.Name), ".") {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchInterval)
			} else {
				timer.Reset(watchInterval)
			}
			pending = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		case <-pending:
			pending = nil
			runOnce()
			fmt.Fprintln(os.Stderr, "watching for changes...")
		}
	}
}

// addRoots registers every directory under the corpus roots, skipping
// hidden trees and the tables output directory.
func addRoots(watcher *fsnotify.Watcher, cfg *model.Config) error {
	for _, root := range cfg.Corpus.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			if rel, err := filepath.Rel(root, path); err == nil && rel == cfg.Tables.Dir {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		})
		if err != nil {
			return fmt.Errorf("watch corpus root %s: %w", root, err)
		}
	}
	return nil
}
