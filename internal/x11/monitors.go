package x11

import (
	"fmt"
	"sort"

	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/kbinani/screenshot"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Rect returns the monitor bounds.
func (m Monitor) Rect() geometry.Rect {
	return geometry.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

// GetMonitors returns every active monitor, ordered left to right then top
// to bottom. RandR is asked first; servers where it reports no active CRTC
// (Xinerama-only, some nested servers) fall back to screenshot's display
// enumeration.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	var monitors []Monitor
	var randrErr error
	if c.HasRandR {
		monitors, randrErr = c.randrMonitors()
	} else {
		randrErr = fmt.Errorf("randr extension unavailable")
	}
	if len(monitors) == 0 {
		monitors = fallbackMonitors()
	}
	if len(monitors) == 0 {
		if randrErr != nil {
			return nil, randrErr
		}
		return nil, fmt.Errorf("no monitors found")
	}
	sortMonitors(monitors)
	return monitors, nil
}

func (c *Connection) randrMonitors() ([]Monitor, error) {
	// Get screen resources
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		m := Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		// Mirrored outputs share a CRTC geometry; keep one.
		if !containsMonitor(monitors, m) {
			monitors = append(monitors, m)
		}
	}

	return monitors, nil
}

func fallbackMonitors() []Monitor {
	n := screenshot.NumActiveDisplays()
	monitors := make([]Monitor, 0, n)
	for i := 0; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		if b.Empty() {
			continue
		}
		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   fmt.Sprintf("Display%d", i),
			X:      b.Min.X,
			Y:      b.Min.Y,
			Width:  b.Dx(),
			Height: b.Dy(),
		})
	}
	return monitors
}

func containsMonitor(monitors []Monitor, m Monitor) bool {
	for _, existing := range monitors {
		if existing.Rect() == m.Rect() {
			return true
		}
	}
	return false
}

func sortMonitors(monitors []Monitor) {
	sort.SliceStable(monitors, func(i, j int) bool {
		if monitors[i].X != monitors[j].X {
			return monitors[i].X < monitors[j].X
		}
		return monitors[i].Y < monitors[j].Y
	})
}

// PointerPosition returns the pointer position in root coordinates.
func (c *Connection) PointerPosition() (geometry.Point, error) {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return geometry.Point{}, fmt.Errorf("query pointer: %w", err)
	}
	return geometry.Point{X: int(pointer.RootX), Y: int(pointer.RootY)}, nil
}
