package deck

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ramonehamilton/YGO-Companion/internal/api"
)

// WatcherConfig holds configuration for the import watcher.
type WatcherConfig struct {
	// Dir is the drop directory to watch for deck-list files.
	Dir string

	// DeckID is the deck new files are imported into.
	DeckID uint

	// SettleDelay is how long to wait after a file appears before uploading,
	// so a file still being written is read complete.
	SettleDelay time.Duration

	// Logger receives watch events. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultWatcherConfig returns a WatcherConfig with sensible defaults.
func DefaultWatcherConfig(dir string, deckID uint) *WatcherConfig {
	return &WatcherConfig{
		Dir:         dir,
		DeckID:      deckID,
		SettleDelay: 500 * time.Millisecond,
	}
}

// Watcher watches a drop directory and uploads newly created .ydk files to a
// deck. Each file is uploaded at most once per run.
type Watcher struct {
	client *api.Client
	config *WatcherConfig
	logger *slog.Logger

	mu       sync.Mutex
	uploaded map[string]bool
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewWatcher creates a watcher. Call Start to begin watching.
func NewWatcher(client *api.Client, config *WatcherConfig) *Watcher {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		client:   client,
		config:   config,
		logger:   logger,
		uploaded: make(map[string]bool),
	}
}

// Start begins watching the drop directory. It returns once the watch is
// established; uploads happen on a background goroutine until Stop or ctx
// cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	info, err := os.Stat(w.config.Dir)
	if err != nil {
		return fmt.Errorf("import directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("import path %s is not a directory", w.config.Dir)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(w.config.Dir); err != nil {
		_ = fsWatcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.config.Dir, err)
	}

	w.mu.Lock()
	if w.stopChan != nil {
		w.mu.Unlock()
		_ = fsWatcher.Close()
		return fmt.Errorf("watcher already running")
	}
	w.stopChan = make(chan struct{})
	w.doneChan = make(chan struct{})
	stopChan := w.stopChan
	w.mu.Unlock()

	go func() {
		defer close(w.doneChan)
		defer func() {
			_ = fsWatcher.Close()
		}()

		for {
			select {
			case event, ok := <-fsWatcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create == 0 {
					continue
				}
				w.handleFile(ctx, event.Name)
			case err, ok := <-fsWatcher.Errors:
				if !ok {
					return
				}
				w.logger.Error("watch error", "dir", w.config.Dir, "error", err)
			case <-stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.logger.Info("watching for deck lists", "dir", w.config.Dir, "deckId", w.config.DeckID)
	return nil
}

// Stop halts the watch and waits for the background goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopChan == nil {
		w.mu.Unlock()
		return
	}
	close(w.stopChan)
	doneChan := w.doneChan
	w.stopChan = nil
	w.doneChan = nil
	w.mu.Unlock()

	<-doneChan
}

// handleFile uploads one dropped file if it is a new .ydk.
func (w *Watcher) handleFile(ctx context.Context, path string) {
	if !strings.EqualFold(filepath.Ext(path), ".ydk") {
		return
	}

	w.mu.Lock()
	if w.uploaded[path] {
		w.mu.Unlock()
		return
	}
	w.uploaded[path] = true
	w.mu.Unlock()

	// Let the writer finish before reading.
	select {
	case <-time.After(w.config.SettleDelay):
	case <-ctx.Done():
		return
	}

	file, err := os.Open(path)
	if err != nil {
		w.logger.Error("failed to open dropped deck file", "path", path, "error", err)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	if err := w.client.ImportDeck(ctx, w.config.DeckID, path, file); err != nil {
		w.logger.Error("failed to import dropped deck file", "path", path, "error", err)
		return
	}
	w.logger.Info("imported deck list", "path", path, "deckId", w.config.DeckID)
}
