package config

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports changes to the config file. Writes whose content matches
// the last content passed to MarkSaved are ignored so the daemon does not
// reload its own saves.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
	onChange func()

	mu        sync.Mutex
	savedHash [sha256.Size]byte
	hasSaved  bool
}

// NewWatcher creates a watcher for path. onChange is called from the
// watcher's goroutine.
func NewWatcher(path string, logger *slog.Logger, onChange func()) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{path: path, debounce: DefaultDebounce, logger: logger, onChange: onChange}
}

// MarkSaved records data as written by this process.
func (w *Watcher) MarkSaved(data []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.savedHash = sha256.Sum256(data)
	w.hasSaved = true
}

func (w *Watcher) selfWrite() bool {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return false
	}
	sum := sha256.Sum256(data)
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hasSaved && bytes.Equal(sum[:], w.savedHash[:])
}

// Run watches until ctx is done. The directory is watched rather than the
// file so that atomic renames by editors are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("config watcher: watch %s: %w", dir, err)
	}

	name := filepath.Clean(w.path)
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			if w.selfWrite() {
				w.logger.Debug("config: ignoring own write", "path", w.path)
				continue
			}
			w.logger.Info("config: file changed", "path", w.path)
			if w.onChange != nil {
				w.onChange()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config: watcher error", "error", err)
		}
	}
}
