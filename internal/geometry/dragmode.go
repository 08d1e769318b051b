package geometry

// DragMode identifies which part of a rectangle a drag manipulates.
type DragMode int

const (
	DragNone DragMode = iota
	DragMove
	ResizeTop
	ResizeBottom
	ResizeLeft
	ResizeRight
	ResizeTopLeft
	ResizeTopRight
	ResizeBottomLeft
	ResizeBottomRight
	// SlideVertical and SlideHorizontal are the one-axis moves used by lines
	// and guide rails.
	SlideVertical
	SlideHorizontal
)

// DefaultBorderSensitivity is the width of the edge band that starts a resize.
const DefaultBorderSensitivity = 20

// MinResizeSize is the smallest width/height a resize may produce.
const MinResizeSize = 50

// MinPlacementSize is the smallest width/height used when a box is first placed.
const MinPlacementSize = 100

func (m DragMode) String() string {
	switch m {
	case DragNone:
		return "none"
	case DragMove:
		return "move"
	case ResizeTop:
		return "resize-top"
	case ResizeBottom:
		return "resize-bottom"
	case ResizeLeft:
		return "resize-left"
	case ResizeRight:
		return "resize-right"
	case ResizeTopLeft:
		return "resize-top-left"
	case ResizeTopRight:
		return "resize-top-right"
	case ResizeBottomLeft:
		return "resize-bottom-left"
	case ResizeBottomRight:
		return "resize-bottom-right"
	case SlideVertical:
		return "slide-vertical"
	case SlideHorizontal:
		return "slide-horizontal"
	default:
		return "unknown"
	}
}

// IsResize reports whether m changes the size of the rectangle.
func (m DragMode) IsResize() bool {
	return m >= ResizeTop && m <= ResizeBottomRight
}

// ClassifyDrag maps a point local to a width x height rectangle to a drag
// mode. Corners win over edges; anything outside the border band is Move.
func ClassifyDrag(local Point, width, height, border int) DragMode {
	nearLeft := local.X <= border
	nearRight := local.X >= width-border
	nearTop := local.Y <= border
	nearBottom := local.Y >= height-border

	switch {
	case nearTop && nearLeft:
		return ResizeTopLeft
	case nearTop && nearRight:
		return ResizeTopRight
	case nearBottom && nearLeft:
		return ResizeBottomLeft
	case nearBottom && nearRight:
		return ResizeBottomRight
	case nearTop:
		return ResizeTop
	case nearBottom:
		return ResizeBottom
	case nearLeft:
		return ResizeLeft
	case nearRight:
		return ResizeRight
	default:
		return DragMove
	}
}

// ApplyDrag applies a pointer delta to r according to mode. Resizes never
// shrink below minSize; when clamped, the edge opposite the one being dragged
// stays where it was.
func ApplyDrag(r Rect, mode DragMode, dx, dy, minSize int) Rect {
	left, top, right, bottom := r.X, r.Y, r.Right(), r.Bottom()

	switch mode {
	case DragMove:
		return r.Translate(dx, dy)
	case ResizeTop:
		top += dy
	case ResizeBottom:
		bottom += dy
	case ResizeLeft:
		left += dx
	case ResizeRight:
		right += dx
	case ResizeTopLeft:
		top += dy
		left += dx
	case ResizeTopRight:
		top += dy
		right += dx
	case ResizeBottomLeft:
		bottom += dy
		left += dx
	case ResizeBottomRight:
		bottom += dy
		right += dx
	default:
		return r
	}

	if right-left < minSize {
		if movesLeft(mode) {
			left = right - minSize
		} else {
			right = left + minSize
		}
	}
	if bottom-top < minSize {
		if movesTop(mode) {
			top = bottom - minSize
		} else {
			bottom = top + minSize
		}
	}
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

func movesLeft(m DragMode) bool {
	return m == ResizeLeft || m == ResizeTopLeft || m == ResizeBottomLeft
}

func movesTop(m DragMode) bool {
	return m == ResizeTop || m == ResizeTopLeft || m == ResizeTopRight
}

// Axis is the direction a line extends along.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// SlideMode is the drag mode for a line extending along a.
func (a Axis) SlideMode() DragMode {
	if a == Vertical {
		return SlideHorizontal
	}
	return SlideVertical
}

// SlideAlong moves r only across the line's perpendicular axis: horizontal
// lines slide vertically, vertical lines slide horizontally.
func SlideAlong(r Rect, axis Axis, dx, dy int) Rect {
	if axis == Horizontal {
		return r.Translate(0, dy)
	}
	return r.Translate(dx, 0)
}
