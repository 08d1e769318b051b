package x11

import (
	"testing"

	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/overlay"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xcursor"
)

func TestDrawableEnforcesMinimumSize(t *testing.T) {
	got := drawable(geometry.Rect{X: 5, Y: 6, Width: 0, Height: -3})
	if got != (geometry.Rect{X: 5, Y: 6, Width: 1, Height: 1}) {
		t.Fatalf("expected 1x1 at (5,6), got %v", got)
	}
	r := geometry.Rect{Width: 40, Height: 2}
	if drawable(r) != r {
		t.Fatalf("expected %v unchanged, got %v", r, drawable(r))
	}
}

func TestDashRectsSolidIsNil(t *testing.T) {
	if rects := dashRects(100, 2, overlay.Style{Dash: geometry.DashSolid}); rects != nil {
		t.Fatalf("expected nil region for solid line, got %v", rects)
	}
}

func TestDashRectsFollowLongSide(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		dash          geometry.DashStyle
	}{
		{"horizontal dash", 300, 3, geometry.DashDash},
		{"vertical dot", 2, 240, geometry.DashDot},
		{"horizontal dashdot", 500, 4, geometry.DashDashDot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			horizontal := tt.width >= tt.height
			length, thickness := tt.width, tt.height
			if !horizontal {
				length, thickness = tt.height, tt.width
			}
			spans := geometry.DashSegments(length, thickness, tt.dash)
			rects := dashRects(tt.width, tt.height, overlay.Style{Dash: tt.dash, Thickness: thickness})
			if len(rects) != len(spans) {
				t.Fatalf("expected %d rects, got %d", len(spans), len(rects))
			}
			if len(rects) == 0 {
				t.Fatalf("expected a non-empty dash region")
			}
			for i, r := range rects {
				var want xproto.Rectangle
				if horizontal {
					want = xproto.Rectangle{X: int16(spans[i].Start), Width: uint16(spans[i].Length), Height: uint16(thickness)}
				} else {
					want = xproto.Rectangle{Y: int16(spans[i].Start), Width: uint16(thickness), Height: uint16(spans[i].Length)}
				}
				if r != want {
					t.Fatalf("rect %d: expected %+v, got %+v", i, want, r)
				}
			}
		})
	}
}

func TestCursorGlyph(t *testing.T) {
	tests := []struct {
		mode geometry.DragMode
		want uint16
	}{
		{geometry.DragMove, xcursor.Fleur},
		{geometry.ResizeTop, xcursor.TopSide},
		{geometry.ResizeBottomRight, xcursor.BottomRightCorner},
		{geometry.SlideVertical, xcursor.SBVDoubleArrow},
		{geometry.SlideHorizontal, xcursor.SBHDoubleArrow},
		{geometry.DragNone, xcursor.LeftPtr},
	}
	for _, tt := range tests {
		if got := cursorGlyph(tt.mode); got != tt.want {
			t.Fatalf("%v: expected glyph %d, got %d", tt.mode, tt.want, got)
		}
	}
}

func TestPointerEventTranslatesState(t *testing.T) {
	ev := pointerEvent(overlay.PointerMove, 3, 4, 103, 204, xproto.KeyButMaskMod1|xproto.KeyButMaskButton1, true)
	if ev.Kind != overlay.PointerMove {
		t.Fatalf("expected move, got %v", ev.Kind)
	}
	if ev.Local != (geometry.Point{X: 3, Y: 4}) || ev.Root != (geometry.Point{X: 103, Y: 204}) {
		t.Fatalf("unexpected coordinates: local %v root %v", ev.Local, ev.Root)
	}
	if !ev.Alt || !ev.Pressed {
		t.Fatalf("expected alt and pressed, got alt=%v pressed=%v", ev.Alt, ev.Pressed)
	}

	ev = pointerEvent(overlay.PointerDown, 0, 0, 0, 0, xproto.KeyButMaskShift, true)
	if ev.Alt {
		t.Fatalf("expected shift alone not to count as alt")
	}
}
