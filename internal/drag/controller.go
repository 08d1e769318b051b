// Package drag implements the pointer-drag state machine for overlay
// surfaces: free move/resize for the bounding box and one-axis slides for
// lines and guide rails.
package drag

import (
	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/overlay"
)

// Config wires a controller to the rectangle it manipulates.
type Config struct {
	// Bounds returns the current rectangle. Classification and deltas are
	// computed against it.
	Bounds func() geometry.Rect
	// Apply commits a new rectangle. A failed apply leaves the drag running
	// with the old bounds.
	Apply func(geometry.Rect) error

	// Border is the resize band width; defaults to 20.
	Border int
	// MinSize is the resize floor; defaults to 50.
	MinSize int

	// OnBoundsChanged fires after every successful Apply while dragging.
	OnBoundsChanged func(geometry.Rect)
	// OnDragEnd fires once when a drag returns to idle.
	OnDragEnd func(geometry.Rect)
}

// Controller is Idle until a pointer-down, then Dragging(mode) until the
// button is released. A move reporting the button up while dragging ends
// the drag, so a lost release never leaves the controller stuck.
type Controller struct {
	cfg  Config
	axis *geometry.Axis

	mode geometry.DragMode
	last geometry.Point
}

// NewFree returns a controller that moves and resizes in eight directions.
func NewFree(cfg Config) *Controller {
	return &Controller{cfg: withDefaults(cfg)}
}

// NewAxis returns a controller that only slides across the line's
// perpendicular axis.
func NewAxis(axis geometry.Axis, cfg Config) *Controller {
	return &Controller{cfg: withDefaults(cfg), axis: &axis}
}

func withDefaults(cfg Config) Config {
	if cfg.Border <= 0 {
		cfg.Border = geometry.DefaultBorderSensitivity
	}
	if cfg.MinSize <= 0 {
		cfg.MinSize = geometry.MinResizeSize
	}
	return cfg
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool { return c.mode != geometry.DragNone }

// Mode returns the active drag mode, DragNone when idle.
func (c *Controller) Mode() geometry.DragMode { return c.mode }

// Classify returns the mode a pointer-down at root would start.
func (c *Controller) Classify(root geometry.Point, alt bool) geometry.DragMode {
	if c.axis != nil {
		return c.axis.SlideMode()
	}
	if alt {
		return geometry.DragMove
	}
	r := c.cfg.Bounds()
	return geometry.ClassifyDrag(r.Local(root), r.Width, r.Height, c.cfg.Border)
}

// Handle advances the state machine and returns the cursor the hit surface
// should show.
func (c *Controller) Handle(ev overlay.PointerEvent) geometry.DragMode {
	switch ev.Kind {
	case overlay.PointerDown:
		c.mode = c.Classify(ev.Root, ev.Alt)
		c.last = ev.Root
		return c.mode

	case overlay.PointerMove:
		if !c.Dragging() {
			return c.Classify(ev.Root, ev.Alt)
		}
		if !ev.Pressed {
			c.finish()
			return c.Classify(ev.Root, ev.Alt)
		}
		c.step(ev.Root)
		return c.mode

	case overlay.PointerUp:
		if c.Dragging() {
			c.step(ev.Root)
			c.finish()
		}
		return c.Classify(ev.Root, ev.Alt)

	case overlay.PointerLeave:
		if c.Dragging() {
			return c.mode
		}
		return geometry.DragNone
	}
	return geometry.DragNone
}

// Cancel drops any drag in progress without firing callbacks.
func (c *Controller) Cancel() {
	c.mode = geometry.DragNone
}

func (c *Controller) step(root geometry.Point) {
	dx, dy := root.Sub(c.last)
	c.last = root
	if dx == 0 && dy == 0 {
		return
	}
	old := c.cfg.Bounds()
	var next geometry.Rect
	if c.axis != nil {
		next = geometry.SlideAlong(old, *c.axis, dx, dy)
	} else {
		next = geometry.ApplyDrag(old, c.mode, dx, dy, c.cfg.MinSize)
	}
	if next == old {
		return
	}
	if err := c.cfg.Apply(next); err != nil {
		return
	}
	if c.cfg.OnBoundsChanged != nil {
		c.cfg.OnBoundsChanged(next)
	}
}

func (c *Controller) finish() {
	c.mode = geometry.DragNone
	if c.cfg.OnDragEnd != nil {
		c.cfg.OnDragEnd(c.cfg.Bounds())
	}
}
