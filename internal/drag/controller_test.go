package drag

import (
	"errors"
	"testing"

	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/overlay"
)

type box struct {
	r       geometry.Rect
	changed []geometry.Rect
	ended   int
	fail    bool
}

func (b *box) config() Config {
	return Config{
		Bounds: func() geometry.Rect { return b.r },
		Apply: func(r geometry.Rect) error {
			if b.fail {
				return errors.New("apply failed")
			}
			b.r = r
			return nil
		},
		OnBoundsChanged: func(r geometry.Rect) { b.changed = append(b.changed, r) },
		OnDragEnd:       func(geometry.Rect) { b.ended++ },
	}
}

func ev(kind overlay.PointerKind, x, y int, pressed bool) overlay.PointerEvent {
	return overlay.PointerEvent{Kind: kind, Root: geometry.Point{X: x, Y: y}, Pressed: pressed}
}

func TestFreeResizeBottomRight(t *testing.T) {
	b := &box{r: geometry.Rect{X: 100, Y: 100, Width: 400, Height: 300}}
	c := NewFree(b.config())

	if got := c.Handle(ev(overlay.PointerDown, 498, 398, true)); got != geometry.ResizeBottomRight {
		t.Fatalf("expected %s, got %s", geometry.ResizeBottomRight, got)
	}
	c.Handle(ev(overlay.PointerMove, 523, 423, true))
	c.Handle(ev(overlay.PointerMove, 548, 448, true))
	c.Handle(ev(overlay.PointerUp, 548, 448, false))

	want := geometry.Rect{X: 100, Y: 100, Width: 450, Height: 350}
	if b.r != want {
		t.Fatalf("expected %v, got %v", want, b.r)
	}
	if len(b.changed) != 2 {
		t.Fatalf("expected 2 bounds-changed callbacks, got %d", len(b.changed))
	}
	if b.ended != 1 {
		t.Fatalf("expected one drag end, got %d", b.ended)
	}
	if c.Dragging() {
		t.Fatal("expected idle after pointer-up")
	}
}

func TestFreeAltForcesMove(t *testing.T) {
	b := &box{r: geometry.Rect{X: 100, Y: 100, Width: 400, Height: 300}}
	c := NewFree(b.config())

	down := ev(overlay.PointerDown, 101, 101, true)
	down.Alt = true
	if got := c.Handle(down); got != geometry.DragMove {
		t.Fatalf("expected move with Alt, got %s", got)
	}
	c.Handle(ev(overlay.PointerMove, 111, 91, true))
	want := geometry.Rect{X: 110, Y: 90, Width: 400, Height: 300}
	if b.r != want {
		t.Fatalf("expected %v, got %v", want, b.r)
	}
}

func TestHoverUpdatesCursorWithoutDragging(t *testing.T) {
	b := &box{r: geometry.Rect{X: 0, Y: 0, Width: 200, Height: 200}}
	c := NewFree(b.config())

	tests := []struct {
		p    geometry.Point
		want geometry.DragMode
	}{
		{geometry.Point{X: 100, Y: 1}, geometry.ResizeTop},
		{geometry.Point{X: 1, Y: 1}, geometry.ResizeTopLeft},
		{geometry.Point{X: 199, Y: 100}, geometry.ResizeRight},
	}
	for _, tt := range tests {
		if got := c.Handle(ev(overlay.PointerMove, tt.p.X, tt.p.Y, false)); got != tt.want {
			t.Fatalf("hover at %v: expected %s, got %s", tt.p, tt.want, got)
		}
	}
	if c.Dragging() || len(b.changed) != 0 {
		t.Fatal("hover must not start a drag")
	}
}

func TestLostReleaseReturnsToIdle(t *testing.T) {
	b := &box{r: geometry.Rect{X: 0, Y: 0, Width: 200, Height: 200}}
	c := NewFree(b.config())

	c.Handle(ev(overlay.PointerDown, 199, 100, true))
	c.Handle(ev(overlay.PointerMove, 209, 100, true))
	if !c.Dragging() {
		t.Fatal("expected dragging")
	}
	// Button came up while focus was stolen; next move reports it released.
	c.Handle(ev(overlay.PointerMove, 400, 100, false))
	if c.Dragging() {
		t.Fatal("expected idle after move with button released")
	}
	if b.r.Width != 210 {
		t.Fatalf("expected width 210 from the pressed move only, got %d", b.r.Width)
	}
	if b.ended != 1 {
		t.Fatalf("expected drag end to fire, got %d", b.ended)
	}
}

func TestFailedApplyKeepsBounds(t *testing.T) {
	b := &box{r: geometry.Rect{X: 0, Y: 0, Width: 200, Height: 200}, fail: true}
	c := NewFree(b.config())
	c.Handle(ev(overlay.PointerDown, 100, 100, true))
	c.Handle(ev(overlay.PointerMove, 150, 150, true))
	if b.r != (geometry.Rect{X: 0, Y: 0, Width: 200, Height: 200}) || len(b.changed) != 0 {
		t.Fatalf("expected untouched bounds on failed apply, got %v", b.r)
	}
}

func TestAxisOnlySlidesPerpendicular(t *testing.T) {
	b := &box{r: geometry.Rect{X: 0, Y: 500, Width: 1920, Height: 1}}
	c := NewAxis(geometry.Horizontal, b.config())

	if got := c.Handle(ev(overlay.PointerDown, 5, 500, true)); got != geometry.SlideVertical {
		t.Fatalf("expected %s, got %s", geometry.SlideVertical, got)
	}
	c.Handle(ev(overlay.PointerMove, 300, 470, true))
	c.Handle(ev(overlay.PointerUp, 300, 470, false))
	want := geometry.Rect{X: 0, Y: 470, Width: 1920, Height: 1}
	if b.r != want {
		t.Fatalf("expected %v, got %v", want, b.r)
	}

	v := &box{r: geometry.Rect{X: 300, Y: 0, Width: 1, Height: 1080}}
	cv := NewAxis(geometry.Vertical, v.config())
	cv.Handle(ev(overlay.PointerDown, 300, 10, true))
	cv.Handle(ev(overlay.PointerMove, 340, 900, true))
	if v.r != (geometry.Rect{X: 340, Y: 0, Width: 1, Height: 1080}) {
		t.Fatalf("vertical line moved wrong axis: %v", v.r)
	}
}

func TestCancelSkipsCallbacks(t *testing.T) {
	b := &box{r: geometry.Rect{X: 0, Y: 0, Width: 200, Height: 200}}
	c := NewFree(b.config())
	c.Handle(ev(overlay.PointerDown, 100, 100, true))
	c.Cancel()
	c.Handle(ev(overlay.PointerUp, 120, 120, false))
	if b.ended != 0 {
		t.Fatalf("expected no drag end after cancel, got %d", b.ended)
	}
}
