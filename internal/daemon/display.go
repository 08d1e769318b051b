package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/platform"
)

// DefaultDisplayInterval is how often the monitor layout is polled.
const DefaultDisplayInterval = 2 * time.Second

// LayoutFunc returns the current monitor rectangles.
type LayoutFunc func() ([]geometry.Rect, error)

// BackendLayout reads the layout from backend.
func BackendLayout(backend platform.Backend) LayoutFunc {
	return func() ([]geometry.Rect, error) {
		displays, err := backend.Displays()
		if err != nil {
			return nil, err
		}
		out := make([]geometry.Rect, 0, len(displays))
		for _, d := range displays {
			out = append(out, d.Bounds)
		}
		return out, nil
	}
}

// DisplayWatcherConfig configures a DisplayWatcher.
type DisplayWatcherConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// DisplayWatcher polls the monitor layout and reports changes. Monitors
// being plugged, unplugged or rearranged all show up as a changed layout.
type DisplayWatcher struct {
	interval time.Duration
	layout   LayoutFunc
	onChange func()
	logger   *slog.Logger

	last []geometry.Rect
}

// NewDisplayWatcher creates a watcher. onChange runs on the watcher's
// goroutine and should only post work to the UI loop.
func NewDisplayWatcher(cfg DisplayWatcherConfig, layout LayoutFunc, onChange func()) *DisplayWatcher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultDisplayInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DisplayWatcher{
		interval: interval,
		layout:   layout,
		onChange: onChange,
		logger:   logger,
	}
}

// Run polls until ctx is cancelled.
func (w *DisplayWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.check()
	w.logger.Info("display watcher started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("display watcher stopped")
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check performs a single poll and reports whether the layout changed. The
// first successful poll only records the baseline.
func (w *DisplayWatcher) check() (changed bool) {
	defer func() {
		if err := recover(); err != nil {
			w.logger.Error("display watcher panic recovered", "error", err)
			changed = false
		}
	}()

	mons, err := w.layout()
	if err != nil {
		w.logger.Debug("display watcher: layout query failed", "error", err)
		return false
	}
	if len(mons) == 0 {
		return false
	}
	if w.last == nil {
		w.last = mons
		return false
	}
	if platform.SameLayout(w.last, mons) {
		return false
	}
	w.logger.Info("monitor layout changed", "monitors", len(mons))
	w.last = mons
	if w.onChange != nil {
		w.onChange()
	}
	return true
}
