package overlay

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/screenline/internal/geometry"
)

// ID is an opaque surface identifier issued by the pool. Presenters map it
// to whatever native handle they use.
type ID uint32

// Kind is the role a surface plays.
type Kind int

const (
	KindTemporaryLine Kind = iota
	KindHorizontalLine
	KindVerticalLine
	KindBoxEdge
	KindGuideLine
)

func (k Kind) String() string {
	switch k {
	case KindTemporaryLine:
		return "temporary"
	case KindHorizontalLine:
		return "horizontal"
	case KindVerticalLine:
		return "vertical"
	case KindBoxEdge:
		return "box"
	case KindGuideLine:
		return "guide"
	default:
		return "unknown"
	}
}

// ParseLineKind maps a user-facing persistent line kind name.
func ParseLineKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertical", "v", "column":
		return KindVerticalLine, nil
	case "horizontal", "h", "row":
		return KindHorizontalLine, nil
	}
	return 0, fmt.Errorf("unknown line kind %q (want vertical or horizontal)", s)
}

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

var namedColors = map[string]Color{
	"red":       {0xFF, 0x00, 0x00, 0xFF},
	"green":     {0x00, 0x80, 0x00, 0xFF},
	"blue":      {0x00, 0x00, 0xFF, 0xFF},
	"limegreen": {0x32, 0xCD, 0x32, 0xFF},
	"yellow":    {0xFF, 0xFF, 0x00, 0xFF},
	"orange":    {0xFF, 0xA5, 0x00, 0xFF},
	"purple":    {0x80, 0x00, 0x80, 0xFF},
	"black":     {0x00, 0x00, 0x00, 0xFF},
	"white":     {0xFF, 0xFF, 0xFF, 0xFF},
	"cyan":      {0x00, 0xFF, 0xFF, 0xFF},
	"magenta":   {0xFF, 0x00, 0xFF, 0xFF},
}

// NamedColors returns the palette offered by the menu, in display order.
func NamedColors() []string {
	return []string{"Red", "Green", "Blue", "LimeGreen", "Yellow", "Orange", "Purple", "Black", "White", "Cyan", "Magenta"}
}

// ParseColor accepts "#RRGGBB", "#AARRGGBB" or a named color.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 6:
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
	case 8:
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		return Color{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
	}
	return Color{}, fmt.Errorf("invalid color %q", s)
}

// MustColor is ParseColor for compile-time constants.
func MustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) String() string {
	if c.A != 0xFF {
		return fmt.Sprintf("#%02X%02X%02X%02X", c.A, c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Pixel returns the color as a 0xRRGGBB value for a 24-bit TrueColor visual.
func (c Color) Pixel() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Style is the visual appearance of a surface.
type Style struct {
	Color     Color
	Thickness int
	Dash      geometry.DashStyle
}

// Spec describes a surface at creation time.
type Spec struct {
	Kind         Kind
	Rect         geometry.Rect
	Style        Style
	Opacity      float64
	ClickThrough bool
	Topmost      bool
}

// PointerKind is the phase of a pointer event.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerLeave
)

// PointerEvent is a pointer event delivered to a surface.
type PointerEvent struct {
	Kind PointerKind
	// Local is relative to the surface origin, Root to the screen.
	Local geometry.Point
	Root  geometry.Point
	// Pressed reports whether the primary button is held at the time of the
	// event. A Move with Pressed=false while dragging means the release was lost.
	Pressed bool
	// Alt is set when Mod1 was held.
	Alt bool
}

// Presenter is the thin window-system adapter behind every surface. All
// methods are called from the UI loop only.
type Presenter interface {
	Create(id ID, spec Spec) error
	SetGeometry(id ID, r geometry.Rect) error
	SetStyle(id ID, s Style) error
	SetOpacity(id ID, opacity float64) error
	SetClickThrough(id ID, on bool) error
	SetTopmost(id ID, on bool) error
	Raise(id ID) error
	SetCursor(id ID, mode geometry.DragMode) error
	Destroy(id ID) error
}
