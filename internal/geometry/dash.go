package geometry

import (
	"fmt"
	"strings"
)

// DashStyle is the stroke pattern of a line.
type DashStyle int

const (
	DashSolid DashStyle = iota
	DashDash
	DashDot
	DashDashDot
	DashDashDotDot
)

var dashNames = []string{"solid", "dash", "dot", "dash_dot", "dash_dot_dot"}

// DashStyles lists every style in menu order.
func DashStyles() []DashStyle {
	return []DashStyle{DashSolid, DashDash, DashDot, DashDashDot, DashDashDotDot}
}

func (d DashStyle) String() string {
	if int(d) < 0 || int(d) >= len(dashNames) {
		return "solid"
	}
	return dashNames[d]
}

// ParseDashStyle accepts the snake_case name, case-insensitively, and the
// hyphenated and CamelCase spellings.
func ParseDashStyle(s string) (DashStyle, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	switch norm {
	case "", "solid":
		return DashSolid, nil
	case "dash":
		return DashDash, nil
	case "dot":
		return DashDot, nil
	case "dash_dot", "dashdot":
		return DashDashDot, nil
	case "dash_dot_dot", "dashdotdot":
		return DashDashDotDot, nil
	}
	return DashSolid, fmt.Errorf("unknown dash style %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d DashStyle) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DashStyle) UnmarshalText(b []byte) error {
	v, err := ParseDashStyle(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// pattern returns alternating on/off lengths in units of the dash unit.
func (d DashStyle) pattern() []int {
	switch d {
	case DashDash:
		return []int{4, 2}
	case DashDot:
		return []int{1, 1}
	case DashDashDot:
		return []int{4, 2, 1, 2}
	case DashDashDotDot:
		return []int{4, 2, 1, 2, 1, 2}
	default:
		return nil
	}
}

// Span is a visible run along a line.
type Span struct {
	Start  int
	Length int
}

// DashSegments returns the visible spans of a line of the given length.
// The dash unit scales with thickness and is never shorter than 2px.
func DashSegments(length, thickness int, style DashStyle) []Span {
	if length <= 0 {
		return nil
	}
	pat := style.pattern()
	if pat == nil {
		return []Span{{Start: 0, Length: length}}
	}
	unit := max(thickness, 2)

	var spans []Span
	pos := 0
	for i := 0; pos < length; i = (i + 1) % len(pat) {
		n := pat[i] * unit
		if i%2 == 0 {
			spans = append(spans, Span{Start: pos, Length: min(n, length-pos)})
		}
		pos += n
	}
	return spans
}
