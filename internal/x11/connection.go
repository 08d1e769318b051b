// Package x11 is the X11 side of screenline: overlay windows, monitor
// layout, pointer queries and foreground-window tracking.
package x11

import (
	"fmt"
	"time"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// HasShape is false on servers without the SHAPE extension; surfaces
	// then cannot be click-through and draw dashes as solid lines.
	HasShape bool
	HasRandR bool

	waker *waker
	pump  *Pump
}

// NewConnection establishes a connection to the X11 server and initializes required extensions
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for global hotkeys)
	keybind.Initialize(xu)

	c := &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}
	c.HasShape = shape.Init(xu.Conn()) == nil
	c.HasRandR = randr.Init(xu.Conn()) == nil
	return c, nil
}

// Pump exposes the xgbutil event loop as ping channels so that X callbacks
// run interleaved with the UI loop rather than concurrently with it.
type Pump struct {
	before, after, quit chan struct{}
}

// Channels implements uiloop.Pump.
func (p *Pump) Channels() (before, after, quit <-chan struct{}) {
	return p.before, p.after, p.quit
}

// StartPump starts the X event loop on its own goroutine.
func (c *Connection) StartPump() (*Pump, error) {
	if c.pump != nil {
		return c.pump, nil
	}
	w, err := newWaker(c.XUtil)
	if err != nil {
		return nil, err
	}
	c.waker = w
	before, after, quit := xevent.MainPing(c.XUtil)
	c.pump = &Pump{before: before, after: after, quit: quit}
	return c.pump, nil
}

// Close stops the event loop if one was started and disconnects. If the loop
// does not acknowledge within timeout the connection is left open, since
// closing it under a blocked read aborts the process.
func (c *Connection) Close(timeout time.Duration) {
	if c.pump == nil {
		c.XUtil.Conn().Close()
		return
	}
	xevent.Quit(c.XUtil)
	c.waker.wake()
	deadline := time.After(timeout)
	for {
		select {
		case <-c.pump.quit:
			c.XUtil.Conn().Close()
			return
		// Nobody else reads the pings once the UI loop has returned.
		case <-c.pump.before:
		case <-c.pump.after:
		case <-deadline:
			return
		}
	}
}

// ScreenBounds returns the root window geometry.
func (c *Connection) ScreenBounds() (xproto.Rectangle, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return xproto.Rectangle{}, fmt.Errorf("root geometry: %w", err)
	}
	return xproto.Rectangle{X: geom.X, Y: geom.Y, Width: geom.Width, Height: geom.Height}, nil
}
