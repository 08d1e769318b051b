// Package uiloop owns the single thread that mutates overlay surfaces.
//
// Work reaches the loop through Post, timers, or the X event pump. The loop
// runs one piece of work at a time, so nothing it calls needs locking.
package uiloop

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop prevents any further invocation, including one already queued on
	// the loop. Safe to call more than once and from any goroutine.
	Stop()
}

// Scheduler is the part of the loop that engine components depend on.
type Scheduler interface {
	Post(fn func())
	After(d time.Duration, fn func()) Timer
	Every(d time.Duration, fn func()) Timer
}

// Pump interleaves an external event dispatcher with the loop. Before is
// signalled when the dispatcher is about to run callbacks and After when it
// is done; the loop runs nothing of its own in between. Quit closes the loop.
type Pump interface {
	Channels() (before, after, quit <-chan struct{})
}

// Loop is the default Scheduler backed by real time.
type Loop struct {
	logger *slog.Logger

	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

var _ Scheduler = (*Loop)(nil)

// New creates a loop. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		logger: logger,
		wake:   make(chan struct{}, 1),
	}
}

// Post enqueues fn to run on the loop. It never blocks.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call posts fn and waits for it to finish or for ctx to end.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	l.Post(func() { done <- fn() })
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// After runs fn once on the loop after d.
func (l *Loop) After(d time.Duration, fn func()) Timer {
	t := &timer{}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.t = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Swap(true) {
				return
			}
			fn()
		})
	})
	return t
}

// Every runs fn on the loop every d until stopped. The next tick is armed
// after fn returns, so slow callbacks never pile up.
func (l *Loop) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		d = time.Millisecond
	}
	t := &timer{}
	var arm func()
	arm = func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.stopped.Load() {
			return
		}
		t.t = time.AfterFunc(d, func() {
			l.Post(func() {
				if t.stopped.Load() {
					return
				}
				fn()
				arm()
			})
		})
	}
	arm()
	return t
}

// Run processes queued work until ctx is cancelled or the pump quits.
func (l *Loop) Run(ctx context.Context, pump Pump) error {
	var before, after, quit <-chan struct{}
	if pump != nil {
		before, after, quit = pump.Channels()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-quit:
			return nil
		case <-before:
			select {
			case <-after:
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-l.wake:
			l.drain()
		}
	}
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			l.runSafe(fn)
		}
	}
}

func (l *Loop) runSafe(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("ui loop task panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

type timer struct {
	mu      sync.Mutex
	t       *time.Timer
	stopped atomic.Bool
}

func (t *timer) Stop() {
	t.stopped.Store(true)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.t != nil {
		t.t.Stop()
	}
}
