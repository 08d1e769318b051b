package overlay

import (
	"fmt"

	"github.com/1broseidon/screenline/internal/geometry"
)

// Surface is one borderless, always-visible rectangle. Hidden surfaces stay
// alive at opacity 0; only Close releases the native window.
//
// Every mutator is a no-op once the surface has been closed, so callbacks
// already in flight (fade ticks, drags) can keep calling into a surface whose
// slot was closed underneath them.
type Surface struct {
	p       Presenter
	id      ID
	kind    Kind
	monitor int

	rect         geometry.Rect
	style        Style
	opacity      float64
	clickThrough bool
	topmost      bool
	cursor       geometry.DragMode
	valid        bool
}

// New creates the native window for spec and returns its surface.
func New(p Presenter, id ID, monitor int, spec Spec) (*Surface, error) {
	spec.Opacity = clampOpacity(spec.Opacity)
	if err := p.Create(id, spec); err != nil {
		return nil, fmt.Errorf("create %s surface %d: %w", spec.Kind, id, err)
	}
	return &Surface{
		p:            p,
		id:           id,
		kind:         spec.Kind,
		monitor:      monitor,
		rect:         spec.Rect,
		style:        spec.Style,
		opacity:      spec.Opacity,
		clickThrough: spec.ClickThrough,
		topmost:      spec.Topmost,
		valid:        true,
	}, nil
}

func (s *Surface) ID() ID                    { return s.id }
func (s *Surface) Kind() Kind                { return s.kind }
func (s *Surface) Monitor() int              { return s.monitor }
func (s *Surface) Rect() geometry.Rect       { return s.rect }
func (s *Surface) Style() Style              { return s.style }
func (s *Surface) Opacity() float64          { return s.opacity }
func (s *Surface) ClickThrough() bool        { return s.clickThrough }
func (s *Surface) Topmost() bool             { return s.topmost }
func (s *Surface) Cursor() geometry.DragMode { return s.cursor }

// Valid reports whether the surface has not been closed.
func (s *Surface) Valid() bool { return s != nil && s.valid }

// Visible reports whether the surface is alive and not fully transparent.
func (s *Surface) Visible() bool { return s.Valid() && s.opacity > 0 }

// SetMonitor rebinds the surface to another monitor index.
func (s *Surface) SetMonitor(m int) { s.monitor = m }

// SetGeometry moves and resizes the surface.
func (s *Surface) SetGeometry(r geometry.Rect) error {
	if !s.Valid() || r == s.rect {
		return nil
	}
	if err := s.p.SetGeometry(s.id, r); err != nil {
		return err
	}
	s.rect = r
	return nil
}

// SetStyle changes color, thickness and dash pattern.
func (s *Surface) SetStyle(st Style) error {
	if !s.Valid() || st == s.style {
		return nil
	}
	if err := s.p.SetStyle(s.id, st); err != nil {
		return err
	}
	s.style = st
	return nil
}

// SetOpacity sets the opacity, clamped to [0,1]. Zero hides the surface.
func (s *Surface) SetOpacity(v float64) error {
	if !s.Valid() {
		return nil
	}
	v = clampOpacity(v)
	if err := s.p.SetOpacity(s.id, v); err != nil {
		return err
	}
	s.opacity = v
	return nil
}

// Hide is SetOpacity(0).
func (s *Surface) Hide() error { return s.SetOpacity(0) }

// SetClickThrough toggles input transparency. A click-through surface gets
// no pointer input and shows no cursor of its own.
func (s *Surface) SetClickThrough(on bool) error {
	if !s.Valid() || on == s.clickThrough {
		return nil
	}
	if err := s.p.SetClickThrough(s.id, on); err != nil {
		return err
	}
	s.clickThrough = on
	if on {
		s.cursor = geometry.DragNone
	}
	return nil
}

// SetTopmost sets the keep-above flag.
func (s *Surface) SetTopmost(on bool) error {
	if !s.Valid() {
		return nil
	}
	if err := s.p.SetTopmost(s.id, on); err != nil {
		return err
	}
	s.topmost = on
	return nil
}

// Raise restacks the surface above its siblings.
func (s *Surface) Raise() error {
	if !s.Valid() {
		return nil
	}
	return s.p.Raise(s.id)
}

// SetCursor picks the pointer shape for a drag mode. Click-through surfaces
// decline.
func (s *Surface) SetCursor(mode geometry.DragMode) error {
	if !s.Valid() || s.clickThrough || mode == s.cursor {
		return nil
	}
	if err := s.p.SetCursor(s.id, mode); err != nil {
		return err
	}
	s.cursor = mode
	return nil
}

// Close destroys the native window. Safe to call more than once.
func (s *Surface) Close() error {
	if !s.Valid() {
		return nil
	}
	s.valid = false
	s.opacity = 0
	return s.p.Destroy(s.id)
}

func clampOpacity(v float64) float64 {
	if v != v || v < 0 { // NaN or negative
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
