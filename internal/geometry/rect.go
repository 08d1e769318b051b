package geometry

import "fmt"

// Point is a position in physical screen pixels.
type Point struct {
	X int
	Y int
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Sub returns the delta from q to p.
func (p Point) Sub(q Point) (dx, dy int) {
	return p.X - q.X, p.Y - q.Y
}

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

func (r Rect) String() string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Center returns the center point of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside r (left/top inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Local converts a screen point to coordinates relative to r's origin.
func (r Rect) Local(p Point) Point {
	return Point{X: p.X - r.X, Y: p.Y - r.Y}
}

// Union returns the smallest rectangle covering every rect. The second
// result is false when rects is empty.
func Union(rects ...Rect) (Rect, bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	minX, minY := rects[0].X, rects[0].Y
	maxX, maxY := rects[0].Right(), rects[0].Bottom()
	for _, r := range rects[1:] {
		minX = min(minX, r.X)
		minY = min(minY, r.Y)
		maxX = max(maxX, r.Right())
		maxY = max(maxY, r.Bottom())
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

// EnsureMinSize grows r to at least minW x minH, keeping its origin.
func (r Rect) EnsureMinSize(minW, minH int) Rect {
	if r.Width < minW {
		r.Width = minW
	}
	if r.Height < minH {
		r.Height = minH
	}
	return r
}

// ClampInto shifts r so that it lies inside bounds. Overflow is resolved in
// the order right, bottom, left, top, so when r is larger than bounds the
// top-left corner wins.
func (r Rect) ClampInto(bounds Rect) Rect {
	if r.Right() > bounds.Right() {
		r.X = bounds.Right() - r.Width
	}
	if r.Bottom() > bounds.Bottom() {
		r.Y = bounds.Bottom() - r.Height
	}
	if r.X < bounds.X {
		r.X = bounds.X
	}
	if r.Y < bounds.Y {
		r.Y = bounds.Y
	}
	return r
}

// CenteredHalf returns a rectangle half the size of bounds, centered in it.
func CenteredHalf(bounds Rect) Rect {
	w, h := bounds.Width/2, bounds.Height/2
	return Rect{
		X:      bounds.X + (bounds.Width-w)/2,
		Y:      bounds.Y + (bounds.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

// ClampInt limits v to [lo, hi]. If hi < lo, lo wins.
func ClampInt(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
