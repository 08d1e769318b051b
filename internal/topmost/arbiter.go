// Package topmost keeps visible overlays above other always-on-top windows.
//
// Screenshot and pin tools ("rivals") raise their own windows above
// everything when activated. The arbiter answers by re-asserting the overlay
// stacking order, either on a fixed interval or right after a rival becomes
// the foreground window.
package topmost

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/1broseidon/screenline/internal/overlay"
	"github.com/1broseidon/screenline/internal/uiloop"
)

const (
	// DefaultInterval is the polling period used when none (or a
	// non-positive one) is configured.
	DefaultInterval = 100 * time.Millisecond
	// RivalSettleDelay lets a rival finish raising itself before the overlays
	// are pushed back on top.
	RivalSettleDelay = 50 * time.Millisecond
)

// ErrSubscribe is returned by a ForegroundSource that cannot deliver
// foreground changes on this display.
var ErrSubscribe = errors.New("foreground subscription unavailable")

// Strategy selects how the arbiter notices that overlays were covered.
type Strategy int

const (
	StrategyPolling Strategy = iota
	StrategyEvent
)

func (s Strategy) String() string {
	if s == StrategyEvent {
		return "event"
	}
	return "polling"
}

// ParseStrategy maps a config value to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "polling", "poll":
		return StrategyPolling, nil
	case "event", "events", "event_driven":
		return StrategyEvent, nil
	default:
		return StrategyPolling, fmt.Errorf("unknown topmost strategy %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(b []byte) error {
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// State is the arbiter lifecycle state.
type State int

const (
	Disarmed State = iota
	ArmedPolling
	ArmedEvent
)

func (s State) String() string {
	switch s {
	case ArmedPolling:
		return "armed-polling"
	case ArmedEvent:
		return "armed-event"
	default:
		return "disarmed"
	}
}

// Rival is an application whose activation triggers a reassert.
type Rival struct {
	Title   string `yaml:"title" json:"title"`
	Enabled bool   `yaml:"enabled" json:"enabled"`
}

// Surfaces yields the surfaces to keep on top.
type Surfaces interface {
	VisibleSurfaces() []*overlay.Surface
}

// ForegroundSource delivers the title of each newly activated window. fn is
// called from the source's own goroutine. cancel stops delivery and may be
// called more than once.
type ForegroundSource interface {
	Subscribe(fn func(title string)) (cancel func(), err error)
}

// Config wires an arbiter.
type Config struct {
	Surfaces  Surfaces
	Scheduler uiloop.Scheduler
	// Source may be nil, in which case the event strategy always falls back
	// to polling.
	Source   ForegroundSource
	Logger   *slog.Logger
	Strategy Strategy
	Interval time.Duration
	Rivals   []Rival
}

// Arbiter is owned by the UI loop. Only the foreground callback runs
// elsewhere, and it does nothing but post back to the loop.
type Arbiter struct {
	surfaces Surfaces
	sched    uiloop.Scheduler
	source   ForegroundSource
	logger   *slog.Logger

	strategy Strategy
	interval time.Duration
	rivals   []Rival

	state    State
	menuOpen bool
	passes   int

	// gen is bumped on every stop so callbacks from an old subscription
	// are dropped.
	gen         int
	poll        uiloop.Timer
	pending     uiloop.Timer
	unsubscribe func()
}

// New creates a disarmed arbiter.
func New(cfg Config) *Arbiter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &Arbiter{
		surfaces: cfg.Surfaces,
		sched:    cfg.Scheduler,
		source:   cfg.Source,
		logger:   logger,
		strategy: cfg.Strategy,
		interval: sanitizeInterval(cfg.Interval),
	}
	a.SetRivals(cfg.Rivals)
	return a
}

func sanitizeInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultInterval
	}
	return d
}

// State returns the lifecycle state.
func (a *Arbiter) State() State { return a.state }

// Armed reports whether the arbiter is running.
func (a *Arbiter) Armed() bool { return a.state != Disarmed }

// Strategy returns the configured strategy, which may differ from the
// running one after a fallback.
func (a *Arbiter) Strategy() Strategy { return a.strategy }

// Interval returns the effective polling interval.
func (a *Arbiter) Interval() time.Duration { return a.interval }

// Passes counts reassert passes actually performed.
func (a *Arbiter) Passes() int { return a.passes }

// Arm starts the configured strategy. Arming an armed arbiter restarts it.
func (a *Arbiter) Arm() {
	a.stop()
	if a.strategy == StrategyEvent {
		err := a.subscribe()
		if err == nil {
			a.state = ArmedEvent
			return
		}
		a.logger.Warn("topmost: event strategy unavailable, falling back to polling", "error", err)
	}
	a.startPolling()
	a.state = ArmedPolling
}

// Disarm stops any running mechanism.
func (a *Arbiter) Disarm() {
	a.stop()
}

// SetEnabled arms or disarms.
func (a *Arbiter) SetEnabled(on bool) {
	if on {
		a.Arm()
		return
	}
	a.Disarm()
}

// SetStrategy changes the strategy, restarting if armed.
func (a *Arbiter) SetStrategy(s Strategy) {
	a.strategy = s
	if a.Armed() {
		a.Arm()
	}
}

// SetInterval changes the polling period. Non-positive values become
// DefaultInterval. A running poll is restarted.
func (a *Arbiter) SetInterval(d time.Duration) {
	a.interval = sanitizeInterval(d)
	if a.state == ArmedPolling {
		a.Arm()
	}
}

// SetMenuOpen tells the arbiter a context menu is open. Passes are skipped
// while it is.
func (a *Arbiter) SetMenuOpen(open bool) { a.menuOpen = open }

// MenuOpen reports the menu flag.
func (a *Arbiter) MenuOpen() bool { return a.menuOpen }

// Rivals returns a copy of the rival list.
func (a *Arbiter) Rivals() []Rival {
	return append([]Rival(nil), a.rivals...)
}

// SetRivals replaces the rival list. Entries with an empty title are dropped.
func (a *Arbiter) SetRivals(rivals []Rival) {
	a.rivals = make([]Rival, 0, len(rivals))
	for _, r := range rivals {
		r.Title = strings.TrimSpace(r.Title)
		if r.Title == "" {
			continue
		}
		a.rivals = append(a.rivals, r)
	}
}

// Matches reports whether a window title belongs to an enabled rival.
func (a *Arbiter) Matches(title string) bool {
	if title == "" {
		return false
	}
	lower := strings.ToLower(title)
	for _, r := range a.rivals {
		if r.Enabled && strings.Contains(lower, strings.ToLower(r.Title)) {
			return true
		}
	}
	return false
}

// Reassert pushes every visible surface back on top: the topmost flag is
// dropped and set again, then the surface is raised.
func (a *Arbiter) Reassert() {
	if a.menuOpen {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("topmost: reassert panicked", "panic", r)
		}
	}()
	a.passes++
	for _, s := range a.surfaces.VisibleSurfaces() {
		if !s.Valid() {
			continue
		}
		if err := s.SetTopmost(false); err != nil {
			a.logger.Debug("topmost: clear failed", "id", s.ID(), "error", err)
			continue
		}
		if err := s.SetTopmost(true); err != nil {
			a.logger.Debug("topmost: set failed", "id", s.ID(), "error", err)
			continue
		}
		if err := s.Raise(); err != nil {
			a.logger.Debug("topmost: raise failed", "id", s.ID(), "error", err)
		}
	}
}

func (a *Arbiter) startPolling() {
	a.poll = a.sched.Every(a.interval, a.Reassert)
}

func (a *Arbiter) subscribe() error {
	if a.source == nil {
		return ErrSubscribe
	}
	gen := a.gen
	cancel, err := a.source.Subscribe(func(title string) {
		// Foreign goroutine: hand the title to the loop untouched.
		a.sched.Post(func() { a.onForeground(gen, title) })
	})
	if err != nil {
		return err
	}
	a.unsubscribe = cancel
	return nil
}

func (a *Arbiter) onForeground(gen int, title string) {
	if gen != a.gen || a.state != ArmedEvent {
		return
	}
	if !a.Matches(title) {
		return
	}
	a.logger.Debug("topmost: rival activated", "title", title)
	if a.pending != nil {
		a.pending.Stop()
	}
	a.pending = a.sched.After(RivalSettleDelay, func() {
		a.pending = nil
		if gen == a.gen {
			a.Reassert()
		}
	})
}

func (a *Arbiter) stop() {
	a.gen++
	if a.poll != nil {
		a.poll.Stop()
		a.poll = nil
	}
	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.state = Disarmed
}
