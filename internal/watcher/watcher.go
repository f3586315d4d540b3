// Package watcher folds usage-log entries into the stored usage patterns.
// The shim binary appends one line per package invocation; the watcher
// processes new lines when the log changes, with a slow ticker as a fallback
// for missed filesystem events.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/echo-systems/echo/internal/recommender"
	"github.com/echo-systems/echo/internal/store"
)

const (
	// debounce collapses the burst of write events a single append produces.
	debounce = 500 * time.Millisecond

	// fallbackInterval bounds staleness when fsnotify misses events, which
	// happens on some network filesystems.
	fallbackInterval = 60 * time.Second
)

// Watcher processes the usage log whenever it changes.
type Watcher struct {
	store   *store.Store
	cfg     recommender.Config
	logger  *zap.Logger
	dataDir string

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a watcher over the usage log in dataDir.
func New(st *store.Store, dataDir string, cfg recommender.Config, logger *zap.Logger) (*Watcher, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		store:   st,
		cfg:     cfg,
		logger:  logger.Named("watcher"),
		dataDir: dataDir,
		stopCh:  make(chan struct{}),
	}, nil
}

// LogPath returns the path of the usage log the watcher processes.
func (w *Watcher) LogPath() string {
	return filepath.Join(w.dataDir, "usage.log")
}

// OffsetPath returns the path of the byte-offset tracking file.
func (w *Watcher) OffsetPath() string {
	return filepath.Join(w.dataDir, "usage.offset")
}

// Start processes any backlog, then begins watching for changes.
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.dataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	w.process()

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	// Watch the directory, not the file: the log may not exist yet, and the
	// shim creates it on first use.
	if err := fsWatcher.Add(w.dataDir); err != nil {
		fsWatcher.Close()
		return fmt.Errorf("watch %s: %w", w.dataDir, err)
	}

	w.wg.Add(1)
	go w.run(fsWatcher)

	w.logger.Info("watcher started",
		zap.String("log", w.LogPath()),
		zap.Duration("fallback_interval", fallbackInterval))
	return nil
}

// run consumes filesystem events until stopped. Writes to the usage log are
// debounced; the ticker catches anything fsnotify drops.
func (w *Watcher) run(fsWatcher *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fsWatcher.Close()

	ticker := time.NewTicker(fallbackInterval)
	defer ticker.Stop()

	var pending <-chan time.Time
	logName := filepath.Base(w.LogPath())

	for {
		select {
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != logName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending = time.After(debounce)

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("fs watcher error", zap.Error(err))

		case <-pending:
			pending = nil
			w.process()

		case <-ticker.C:
			w.process()

		case <-w.stopCh:
			w.process()
			return
		}
	}
}

func (w *Watcher) process() {
	applied, err := ProcessUsageLog(w.store, w.LogPath(), w.OffsetPath(), w.cfg)
	if err != nil {
		w.logger.Warn("usage log processing failed", zap.Error(err))
		return
	}
	if applied > 0 {
		w.logger.Info("usage events applied", zap.Int("events", applied))
	}
}

// Stop halts the watcher after a final flush of the log.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	w.wg.Wait()
	w.logger.Info("watcher stopped")
	return nil
}
