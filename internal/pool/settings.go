package pool

import (
	"fmt"
	"strings"

	"github.com/1broseidon/screenline/internal/overlay"
)

// MaxSlots is the number of hotkey slots per persistent line kind.
const MaxSlots = 4

// GuideSets is the number of independent guide-rail sets.
const GuideSets = 2

// DisplayMode selects where a line fans out.
type DisplayMode int

const (
	// CurrentMonitor places one line on the monitor under the cursor.
	CurrentMonitor DisplayMode = iota
	// AllMonitors places one line per monitor at the same relative offset.
	AllMonitors
)

func (m DisplayMode) String() string {
	if m == AllMonitors {
		return "all_monitors"
	}
	return "current_monitor"
}

// ParseDisplayMode accepts the config spelling of a display mode.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "current_monitor", "current":
		return CurrentMonitor, nil
	case "all_monitors", "all":
		return AllMonitors, nil
	}
	return CurrentMonitor, fmt.Errorf("unknown display mode %q (want current_monitor or all_monitors)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m DisplayMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *DisplayMode) UnmarshalText(b []byte) error {
	v, err := ParseDisplayMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// LineSettings is the appearance of one line kind.
type LineSettings struct {
	Style        overlay.Style
	Opacity      float64
	ClickThrough bool
	Mode         DisplayMode
	// Duration is the fade length in seconds; only the temporary line uses it.
	Duration float64
}

// BoxSettings is the appearance and remembered position of the bounding box.
type BoxSettings struct {
	Style        overlay.Style
	Opacity      float64
	ClickThrough bool
}

// GuideSettings is the appearance of one guide-rail set.
type GuideSettings struct {
	Style     overlay.Style
	Opacity   float64
	Floor     float64
	Scale     float64
	Draggable bool
}

// RailOpacity is the dampened opacity rails are drawn with.
func (g GuideSettings) RailOpacity() float64 {
	return max(g.Floor, g.Opacity*g.Scale)
}

func thicknessOf(s overlay.Style) int {
	if s.Thickness < 1 {
		return 1
	}
	return s.Thickness
}
