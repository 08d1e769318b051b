//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Connection returns the underlying X11 connection.
func (b *LinuxBackend) Connection() *x11.Connection {
	if b == nil {
		return nil
	}
	return b.conn
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays ordered left to right.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{ID: m.ID, Name: m.Name, Bounds: m.Rect()})
	}
	return displays, nil
}

// PointerPosition returns the pointer in root coordinates.
func (b *LinuxBackend) PointerPosition() (geometry.Point, error) {
	conn, err := b.connection()
	if err != nil {
		return geometry.Point{}, err
	}
	return conn.PointerPosition()
}

// ScreenBounds returns the root window bounds, the union of every monitor.
func (b *LinuxBackend) ScreenBounds() (geometry.Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return geometry.Rect{}, err
	}
	r, err := conn.ScreenBounds()
	if err != nil {
		return geometry.Rect{}, err
	}
	return geometry.Rect{X: int(r.X), Y: int(r.Y), Width: int(r.Width), Height: int(r.Height)}, nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// ListWindows lists normal, non-hidden client windows that have a title.
func (b *LinuxBackend) ListWindows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.ClientWindows()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, windowID := range clients {
		if !conn.IsNormalWindow(windowID) {
			continue
		}
		if b.shouldSkipByState(windowID) {
			continue
		}
		title := conn.WindowTitle(windowID)
		if title == "" {
			continue
		}

		rect, ok := b.windowRect(windowID)
		if !ok {
			continue
		}

		pid := 0
		if p, err := ewmh.WmPidGet(conn.XUtil, windowID); err == nil {
			pid = int(p)
		}

		windows = append(windows, Window{
			ID:     WindowID(windowID),
			PID:    pid,
			AppID:  conn.WindowClass(windowID),
			Title:  title,
			Bounds: rect,
		})
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].ID < windows[j].ID
	})

	return windows, nil
}

func (b *LinuxBackend) shouldSkipByState(windowID xproto.Window) bool {
	states, err := ewmh.WmStateGet(b.conn.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func (b *LinuxBackend) windowRect(windowID xproto.Window) (geometry.Rect, bool) {
	conn := b.conn
	geom, err := xproto.GetGeometry(conn.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return geometry.Rect{}, false
	}

	translate, err := xproto.TranslateCoordinates(
		conn.XUtil.Conn(),
		windowID,
		conn.Root,
		0, 0,
	).Reply()
	if err != nil {
		return geometry.Rect{}, false
	}

	return geometry.Rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, true
}
