package overlay_test

import (
	"errors"
	"math"
	"testing"

	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/overlay"
	"github.com/1broseidon/screenline/internal/overlay/overlaytest"
)

func newSurface(t *testing.T, rec *overlaytest.Recorder, spec overlay.Spec) *overlay.Surface {
	t.Helper()
	s, err := overlay.New(rec, 7, 0, spec)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSurfaceOpacityClamped(t *testing.T) {
	rec := overlaytest.New()
	s := newSurface(t, rec, overlay.Spec{Kind: overlay.KindVerticalLine, Opacity: 3})
	if got := rec.Windows[7].Opacity; got != 1 {
		t.Fatalf("expected create opacity clamped to 1, got %v", got)
	}

	tests := []struct {
		in, want float64
	}{
		{0.5, 0.5},
		{-0.2, 0},
		{1.7, 1},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if err := s.SetOpacity(tt.in); err != nil {
			t.Fatalf("SetOpacity(%v): %v", tt.in, err)
		}
		if s.Opacity() != tt.want || rec.Windows[7].Opacity != tt.want {
			t.Fatalf("SetOpacity(%v): expected %v, got surface %v presenter %v", tt.in, tt.want, s.Opacity(), rec.Windows[7].Opacity)
		}
	}
}

func TestSurfaceHiddenStaysAlive(t *testing.T) {
	rec := overlaytest.New()
	s := newSurface(t, rec, overlay.Spec{Kind: overlay.KindTemporaryLine, Opacity: 1})
	if err := s.Hide(); err != nil {
		t.Fatalf("Hide: %v", err)
	}
	if s.Visible() {
		t.Fatal("expected hidden surface to report not visible")
	}
	if !s.Valid() {
		t.Fatal("expected hidden surface to stay valid")
	}
	if rec.Windows[7].Destroyed {
		t.Fatal("hide must not destroy the native window")
	}
}

func TestSurfaceCloseInvalidates(t *testing.T) {
	rec := overlaytest.New()
	s := newSurface(t, rec, overlay.Spec{Kind: overlay.KindBoxEdge, Opacity: 1})
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if got := rec.Count("destroy"); got != 1 {
		t.Fatalf("expected 1 destroy call, got %d", got)
	}

	rec.Reset()
	_ = s.SetOpacity(1)
	_ = s.SetGeometry(geometry.Rect{X: 1, Y: 2, Width: 3, Height: 4})
	_ = s.Raise()
	_ = s.SetTopmost(true)
	_ = s.SetCursor(geometry.DragMove)
	if len(rec.Calls) != 0 {
		t.Fatalf("expected no presenter calls after close, got %v", rec.Calls)
	}
	if s.Visible() {
		t.Fatal("closed surface must not be visible")
	}
}

func TestSurfaceClickThroughDeclinesCursor(t *testing.T) {
	rec := overlaytest.New()
	s := newSurface(t, rec, overlay.Spec{Kind: overlay.KindBoxEdge, Opacity: 1})

	if err := s.SetCursor(geometry.ResizeTop); err != nil {
		t.Fatalf("SetCursor: %v", err)
	}
	if rec.Windows[7].Cursor != geometry.ResizeTop {
		t.Fatalf("expected cursor %s, got %s", geometry.ResizeTop, rec.Windows[7].Cursor)
	}

	if err := s.SetClickThrough(true); err != nil {
		t.Fatalf("SetClickThrough: %v", err)
	}
	if s.Cursor() != geometry.DragNone {
		t.Fatalf("expected cursor reset on click-through, got %s", s.Cursor())
	}
	rec.Reset()
	if err := s.SetCursor(geometry.ResizeLeft); err != nil {
		t.Fatalf("SetCursor: %v", err)
	}
	if rec.Count("cursor") != 0 {
		t.Fatal("click-through surface must not pick a cursor")
	}
}

func TestSurfaceSkipsUnchangedGeometry(t *testing.T) {
	rec := overlaytest.New()
	r := geometry.Rect{X: 0, Y: 500, Width: 1920, Height: 1}
	s := newSurface(t, rec, overlay.Spec{Kind: overlay.KindHorizontalLine, Rect: r, Opacity: 1})
	rec.Reset()
	if err := s.SetGeometry(r); err != nil {
		t.Fatalf("SetGeometry: %v", err)
	}
	if len(rec.Calls) != 0 {
		t.Fatalf("expected no repaint for unchanged geometry, got %v", rec.Calls)
	}
}

func TestSurfacePresenterErrorKeepsState(t *testing.T) {
	rec := overlaytest.New()
	s := newSurface(t, rec, overlay.Spec{Kind: overlay.KindVerticalLine, Opacity: 1})
	boom := errors.New("boom")
	rec.Fail = func(op string, id overlay.ID) error {
		if op == "geometry" {
			return boom
		}
		return nil
	}
	err := s.SetGeometry(geometry.Rect{X: 10, Y: 0, Width: 1, Height: 100})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if s.Rect() != (geometry.Rect{}) {
		t.Fatalf("expected rect unchanged after failure, got %v", s.Rect())
	}
}

func TestNewWrapsCreateError(t *testing.T) {
	rec := overlaytest.New()
	rec.Fail = func(op string, id overlay.ID) error { return errors.New("no display") }
	if _, err := overlay.New(rec, 1, 0, overlay.Spec{}); err == nil {
		t.Fatal("expected error from failing presenter")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want overlay.Color
	}{
		{"#FF0000", overlay.Color{R: 0xFF, A: 0xFF}},
		{"LimeGreen", overlay.Color{R: 0x32, G: 0xCD, B: 0x32, A: 0xFF}},
		{"#800000FF", overlay.Color{B: 0xFF, A: 0x80}},
		{" blue ", overlay.Color{B: 0xFF, A: 0xFF}},
	}
	for _, tt := range tests {
		got, err := overlay.ParseColor(tt.in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseColor(%q): expected %+v, got %+v", tt.in, tt.want, got)
		}
	}
	for _, bad := range []string{"", "#12", "#GGGGGG", "chartreuse"} {
		if _, err := overlay.ParseColor(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
	if got := overlay.MustColor("#32CD32").String(); got != "#32CD32" {
		t.Fatalf("expected #32CD32, got %s", got)
	}
	if got := overlay.MustColor("red").Pixel(); got != 0xFF0000 {
		t.Fatalf("expected pixel 0xFF0000, got %#x", got)
	}
}
