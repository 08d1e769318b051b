package platform

import (
	"log/slog"

	"github.com/1broseidon/screenline/internal/geometry"
)

// Screen adapts a Backend to the monitor and pointer queries of the overlay
// pool. Query failures fall back to the last answer that succeeded, then to
// the root window bounds, so a transient X error never leaves the pool with
// no monitors.
type Screen struct {
	backend Backend
	logger  *slog.Logger

	monitors []geometry.Rect
	pointer  geometry.Point
	hasPtr   bool
}

// NewScreen creates a Screen over backend.
func NewScreen(backend Backend, logger *slog.Logger) *Screen {
	if logger == nil {
		logger = slog.Default()
	}
	return &Screen{backend: backend, logger: logger}
}

// Monitors returns the bounds of every monitor, left to right.
func (s *Screen) Monitors() []geometry.Rect {
	displays, err := s.backend.Displays()
	if err == nil && len(displays) > 0 {
		mons := make([]geometry.Rect, 0, len(displays))
		for _, d := range displays {
			if !d.Bounds.Empty() {
				mons = append(mons, d.Bounds)
			}
		}
		if len(mons) > 0 {
			s.monitors = mons
			return cloneRects(mons)
		}
	}
	if err != nil {
		s.logger.Debug("platform: display query failed", "error", err)
	}
	if len(s.monitors) > 0 {
		return cloneRects(s.monitors)
	}
	bounds, berr := s.backend.ScreenBounds()
	if berr != nil || bounds.Empty() {
		s.logger.Warn("platform: no monitor layout available", "error", berr)
		return nil
	}
	return []geometry.Rect{bounds}
}

// Pointer returns the pointer position. Without any successful query it
// reports the center of the first monitor.
func (s *Screen) Pointer() geometry.Point {
	pt, err := s.backend.PointerPosition()
	if err == nil {
		s.pointer = pt
		s.hasPtr = true
		return pt
	}
	s.logger.Debug("platform: pointer query failed", "error", err)
	if s.hasPtr {
		return s.pointer
	}
	if mons := s.Monitors(); len(mons) > 0 {
		return mons[0].Center()
	}
	return geometry.Point{}
}

// SameLayout reports whether two monitor lists describe the same layout.
func SameLayout(a, b []geometry.Rect) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cloneRects(rs []geometry.Rect) []geometry.Rect {
	out := make([]geometry.Rect, len(rs))
	copy(out, rs)
	return out
}
