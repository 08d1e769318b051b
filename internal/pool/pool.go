// Package pool owns every overlay surface: it issues IDs, keys surfaces by
// (kind, slot, monitor), fans lines out across monitors, places the bounding
// box and derives guide rails from it.
//
// A Pool is not safe for concurrent use; it lives on the UI loop.
package pool

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/screenline/internal/drag"
	"github.com/1broseidon/screenline/internal/fade"
	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/overlay"
	"github.com/1broseidon/screenline/internal/uiloop"
)

var (
	// ErrUnknownSurface is returned for pointer events addressed to an ID the
	// pool does not own.
	ErrUnknownSurface = errors.New("unknown surface")
	// ErrInvalidSlot is returned for slot indexes outside [0, MaxSlots).
	ErrInvalidSlot = errors.New("invalid slot")
	// ErrNoMonitors is returned when the screen reports no monitors.
	ErrNoMonitors = errors.New("no monitors")
)

// Screen reports the monitor layout and pointer position.
type Screen interface {
	Monitors() []geometry.Rect
	Pointer() geometry.Point
}

// Config wires a pool to its collaborators.
type Config struct {
	Presenter overlay.Presenter
	Screen    Screen
	Scheduler uiloop.Scheduler
	Logger    *slog.Logger

	Temporary  LineSettings
	Vertical   LineSettings
	Horizontal LineSettings
	Box        BoxSettings
	BoxRect    geometry.Rect
	Guides     [GuideSets]GuideSettings

	// OnBoxChanged fires when a box drag ends or the box is reset.
	OnBoxChanged func(geometry.Rect)
	// OnBoxMoved fires on every box geometry update during a drag.
	OnBoxMoved func(geometry.Rect)
}

// key identifies a logical slot. The monitor part of a surface's identity
// lives on the surface itself.
type key struct {
	kind overlay.Kind
	slot int
}

type route struct {
	surface *overlay.Surface
	ctrl    *drag.Controller
}

// Pool is the keyed registry of overlay surfaces.
type Pool struct {
	p      overlay.Presenter
	screen Screen
	logger *slog.Logger
	fader  *fade.Animator

	nextID overlay.ID
	routes map[overlay.ID]*route
	active *drag.Controller

	temp       LineSettings
	vertical   LineSettings
	horizontal LineSettings
	lines      map[key]*lineSlot

	allHidden bool

	box    *boxState
	guides [GuideSets]*guideSet

	onBoxChanged func(geometry.Rect)
	onBoxMoved   func(geometry.Rect)
}

// New creates an empty pool. No surface exists until something is shown.
func New(cfg Config) *Pool {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		p:            cfg.Presenter,
		screen:       cfg.Screen,
		logger:       logger,
		fader:        fade.New(cfg.Scheduler, logger),
		routes:       make(map[overlay.ID]*route),
		temp:         cfg.Temporary,
		vertical:     cfg.Vertical,
		horizontal:   cfg.Horizontal,
		lines:        make(map[key]*lineSlot),
		onBoxChanged: cfg.OnBoxChanged,
		onBoxMoved:   cfg.OnBoxMoved,
	}
	p.box = &boxState{settings: cfg.Box, rect: cfg.BoxRect}
	for i := range p.guides {
		p.guides[i] = &guideSet{index: i, settings: cfg.Guides[i]}
	}
	return p
}

// Fader exposes the temporary-line animator.
func (p *Pool) Fader() *fade.Animator { return p.fader }

func (p *Pool) create(monitor int, spec overlay.Spec) (*overlay.Surface, error) {
	p.nextID++
	spec.Topmost = true
	s, err := overlay.New(p.p, p.nextID, monitor, spec)
	if err != nil {
		return nil, err
	}
	p.routes[s.ID()] = &route{surface: s}
	return s, nil
}

func (p *Pool) attach(s *overlay.Surface, ctrl *drag.Controller) {
	if r, ok := p.routes[s.ID()]; ok {
		r.ctrl = ctrl
	}
}

func (p *Pool) release(s *overlay.Surface) {
	if s == nil {
		return
	}
	if r, ok := p.routes[s.ID()]; ok {
		if r.ctrl != nil {
			r.ctrl.Cancel()
			if p.active == r.ctrl {
				p.active = nil
			}
		}
		delete(p.routes, s.ID())
	}
	if err := s.Close(); err != nil {
		p.logger.Debug("pool: close surface failed", "id", s.ID(), "error", err)
	}
}

func (p *Pool) monitors() ([]geometry.Rect, error) {
	mons := p.screen.Monitors()
	if len(mons) == 0 {
		return nil, ErrNoMonitors
	}
	return mons, nil
}

// cursorMonitor returns the pointer position and the monitor under it.
func (p *Pool) cursorMonitor() (geometry.Point, int, []geometry.Rect, error) {
	mons, err := p.monitors()
	if err != nil {
		return geometry.Point{}, -1, nil, err
	}
	pt := p.screen.Pointer()
	return pt, geometry.MonitorAt(mons, pt), mons, nil
}

// HandlePointer routes a pointer event to the surface's drag controller and
// updates its cursor. While one surface is dragging, events for every other
// surface are ignored.
func (p *Pool) HandlePointer(id overlay.ID, ev overlay.PointerEvent) error {
	r, ok := p.routes[id]
	if !ok {
		return fmt.Errorf("pointer event for %d: %w", id, ErrUnknownSurface)
	}
	if r.ctrl == nil || r.surface.ClickThrough() {
		return nil
	}
	if p.active != nil && p.active != r.ctrl && p.active.Dragging() {
		return nil
	}

	cursor := r.ctrl.Handle(ev)
	if r.ctrl.Dragging() {
		p.active = r.ctrl
	} else if p.active == r.ctrl {
		p.active = nil
	}
	if r.surface.Valid() {
		if err := r.surface.SetCursor(cursor); err != nil {
			p.logger.Debug("pool: set cursor failed", "id", id, "error", err)
		}
	}
	return nil
}

// Dragging reports whether any surface is being dragged.
func (p *Pool) Dragging() bool {
	return p.active != nil && p.active.Dragging()
}

// VisibleSurfaces returns every live surface with opacity above zero.
func (p *Pool) VisibleSurfaces() []*overlay.Surface {
	var out []*overlay.Surface
	for _, r := range p.routes {
		if r.surface.Visible() {
			out = append(out, r.surface)
		}
	}
	return out
}

// Surface looks up a live surface by ID.
func (p *Pool) Surface(id overlay.ID) (*overlay.Surface, bool) {
	r, ok := p.routes[id]
	if !ok {
		return nil, false
	}
	return r.surface, true
}

// Len returns the number of live surfaces.
func (p *Pool) Len() int { return len(p.routes) }

// Relayout refits every live surface to the current monitor layout.
func (p *Pool) Relayout() {
	mons := p.screen.Monitors()
	if len(mons) == 0 {
		return
	}
	for k, ls := range p.lines {
		p.relayoutLine(k, ls, mons)
	}
	p.relayoutBox(mons)
	for _, g := range p.guides {
		p.relayoutGuides(g, mons)
	}
}

// Close destroys every surface the pool owns.
func (p *Pool) Close() {
	p.fader.Stop()
	for k := range p.lines {
		p.closeLine(k)
	}
	p.closeBox()
	for _, g := range p.guides {
		p.closeGuides(g)
	}
}

func logErr(logger *slog.Logger, msg string, err error, args ...any) {
	if err != nil {
		logger.Warn(msg, append(args, "error", err)...)
	}
}
