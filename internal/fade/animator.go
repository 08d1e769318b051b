// Package fade drives the flash-and-disappear opacity decay of the
// temporary line.
package fade

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/screenline/internal/uiloop"
)

const (
	// TickInterval is the fade timer period.
	TickInterval = 50 * time.Millisecond
	// DecayConstant is the per-tick opacity drop for a two second fade.
	DecayConstant = 0.02
	// DefaultDuration is used when the configured duration is not positive.
	DefaultDuration = 1.0

	// hiddenEpsilon absorbs float drift in start - n*step.
	hiddenEpsilon = 1e-9
)

// Target is a surface the animator fades.
type Target interface {
	Opacity() float64
	SetOpacity(float64) error
	Hide() error
}

// Step returns the per-tick opacity decrement for a display duration in
// seconds.
func Step(duration float64) float64 {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return DecayConstant * (2.0 / duration)
}

// Animator runs Idle -> Showing -> Fading -> Idle. All methods must be called
// on the UI loop.
type Animator struct {
	sched  uiloop.Scheduler
	logger *slog.Logger

	timer   uiloop.Timer
	targets []Target
	start   float64
	step    float64
	ticks   int
	opacity float64

	// OnDone, if set, fires when a fade reaches zero or is aborted by a fault.
	OnDone func()
}

// New creates an idle animator.
func New(sched uiloop.Scheduler, logger *slog.Logger) *Animator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Animator{sched: sched, logger: logger}
}

// Running reports whether a fade timer is armed.
func (a *Animator) Running() bool { return a.timer != nil }

// Opacity returns the current fade opacity.
func (a *Animator) Opacity() float64 { return a.opacity }

// Ticks returns how many ticks the current or last fade has run.
func (a *Animator) Ticks() int { return a.ticks }

// Start cancels any running fade, shows every target at opacity, and begins
// decaying over duration seconds.
func (a *Animator) Start(targets []Target, opacity, duration float64) {
	a.Stop()
	if opacity > 1 {
		opacity = 1
	}
	a.targets = targets
	a.start = opacity
	a.opacity = opacity
	a.step = Step(duration)
	a.ticks = 0

	if opacity <= hiddenEpsilon {
		a.hideAll()
		a.done()
		return
	}
	for _, t := range targets {
		if err := t.SetOpacity(opacity); err != nil {
			a.logger.Warn("fade: show failed", "error", err)
		}
	}
	a.timer = a.sched.Every(TickInterval, a.tick)
}

// Stop cancels the fade timer without touching surface opacity.
func (a *Animator) Stop() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Animator) tick() {
	defer func() {
		if r := recover(); r != nil {
			a.abort(fmt.Errorf("panic: %v", r))
		}
	}()

	a.ticks++
	a.opacity = a.start - float64(a.ticks)*a.step
	if a.opacity <= hiddenEpsilon {
		a.opacity = 0
		a.Stop()
		a.hideAll()
		a.done()
		return
	}
	for _, t := range a.targets {
		if t.Opacity() <= 0 {
			continue
		}
		if err := t.SetOpacity(a.opacity); err != nil {
			a.abort(err)
			return
		}
	}
}

// abort stops the timer and forces every target hidden.
func (a *Animator) abort(err error) {
	a.logger.Warn("fade: tick failed, hiding", "error", err)
	a.Stop()
	a.opacity = 0
	a.hideAll()
	a.done()
}

func (a *Animator) hideAll() {
	for _, t := range a.targets {
		func() {
			defer func() { _ = recover() }()
			if err := t.Hide(); err != nil {
				a.logger.Debug("fade: hide failed", "error", err)
			}
		}()
	}
}

func (a *Animator) done() {
	if a.OnDone != nil {
		a.OnDone()
	}
}
