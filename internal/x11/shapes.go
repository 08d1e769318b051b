package x11

import (
	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/overlay"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xcursor"
)

// drawable returns r with a size X accepts: both dimensions at least 1.
func drawable(r geometry.Rect) geometry.Rect {
	if r.Width < 1 {
		r.Width = 1
	}
	if r.Height < 1 {
		r.Height = 1
	}
	return r
}

// dashRects returns the bounding region of a dashed line window, or nil for
// solid lines. The dash runs along the window's long side.
func dashRects(width, height int, style overlay.Style) []xproto.Rectangle {
	if style.Dash == geometry.DashSolid {
		return nil
	}
	horizontal := width >= height
	length, thickness := width, height
	if !horizontal {
		length, thickness = height, width
	}
	spans := geometry.DashSegments(length, thickness, style.Dash)
	rects := make([]xproto.Rectangle, 0, len(spans))
	for _, s := range spans {
		if horizontal {
			rects = append(rects, xproto.Rectangle{X: int16(s.Start), Y: 0, Width: uint16(s.Length), Height: uint16(thickness)})
		} else {
			rects = append(rects, xproto.Rectangle{X: 0, Y: int16(s.Start), Width: uint16(thickness), Height: uint16(s.Length)})
		}
	}
	return rects
}

// cursorGlyph maps a drag mode to a core cursor font glyph.
func cursorGlyph(mode geometry.DragMode) uint16 {
	switch mode {
	case geometry.DragMove:
		return xcursor.Fleur
	case geometry.ResizeTop:
		return xcursor.TopSide
	case geometry.ResizeBottom:
		return xcursor.BottomSide
	case geometry.ResizeLeft:
		return xcursor.LeftSide
	case geometry.ResizeRight:
		return xcursor.RightSide
	case geometry.ResizeTopLeft:
		return xcursor.TopLeftCorner
	case geometry.ResizeTopRight:
		return xcursor.TopRightCorner
	case geometry.ResizeBottomLeft:
		return xcursor.BottomLeftCorner
	case geometry.ResizeBottomRight:
		return xcursor.BottomRightCorner
	case geometry.SlideVertical:
		return xcursor.SBVDoubleArrow
	case geometry.SlideHorizontal:
		return xcursor.SBHDoubleArrow
	default:
		return xcursor.LeftPtr
	}
}

func pointerEvent(kind overlay.PointerKind, eventX, eventY, rootX, rootY int16, state uint16, pressed bool) overlay.PointerEvent {
	return overlay.PointerEvent{
		Kind:    kind,
		Local:   geometry.Point{X: int(eventX), Y: int(eventY)},
		Root:    geometry.Point{X: int(rootX), Y: int(rootY)},
		Pressed: pressed,
		Alt:     state&xproto.KeyButMaskMod1 != 0,
	}
}
