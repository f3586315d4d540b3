package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/echo-systems/echo/internal/config"
	"github.com/echo-systems/echo/internal/watcher"
)

var (
	watchOnce bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Track package usage from the shim log",
		Long: `Watch the usage log and fold new entries into usage statistics.

The echo-shim binary appends one line to ~/.echo/usage.log each time a
package is invoked. The watcher picks up changes as they happen and updates
frequency, last-used time, contexts, and importance scores. Processed
entries are tracked by byte offset, so restarting never double-counts.

Run with --once to process the backlog and exit, which is handy in cron.`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  echo watch

  # Process pending entries and exit
  echo watch --once`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "process pending entries and exit")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	dataDir, err := getDataDir()
	if err != nil {
		return err
	}

	logger := newLogger()
	defer logger.Sync() //nolint:errcheck

	w, err := watcher.New(db, dataDir, cfg.Recommender(), logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if watchOnce {
		applied, err := watcher.ProcessUsageLog(db, w.LogPath(), w.OffsetPath(), cfg.Recommender())
		if err != nil {
			return err
		}
		fmt.Printf("Processed %d usage event(s)\n", applied)
		return nil
	}

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Printf("Tracking usage from %s (press Ctrl+C to stop)\n", w.LogPath())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh
	fmt.Printf("\nReceived signal %v, shutting down...\n", sig)

	if err := w.Stop(); err != nil {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}
	fmt.Println("Usage tracking stopped")
	return nil
}
