package x11

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/screenline/internal/geometry"
	"github.com/1broseidon/screenline/internal/overlay"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const pointerEventMask = xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskLeaveWindow

// PointerHandler receives pointer input for a surface. It runs on the X
// event goroutine while the UI loop is parked, see uiloop.Pump.
type PointerHandler func(id overlay.ID, ev overlay.PointerEvent)

type surfaceWindow struct {
	win          *xwindow.Window
	rect         geometry.Rect
	style        overlay.Style
	opacity      float64
	mapped       bool
	clickThrough bool
}

// Presenter draws surfaces as override-redirect windows filled with their
// color. The window manager never sees them, so they take no focus and show
// on every desktop.
type Presenter struct {
	conn      *Connection
	logger    *slog.Logger
	windows   map[overlay.ID]*surfaceWindow
	cursors   map[uint16]xproto.Cursor
	onPointer PointerHandler
}

var _ overlay.Presenter = (*Presenter)(nil)

// NewPresenter creates a presenter on conn.
func NewPresenter(conn *Connection, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Presenter{
		conn:    conn,
		logger:  logger,
		windows: make(map[overlay.ID]*surfaceWindow),
		cursors: make(map[uint16]xproto.Cursor),
	}
}

// SetPointerHandler installs the receiver of pointer events.
func (p *Presenter) SetPointerHandler(fn PointerHandler) {
	p.onPointer = fn
}

func (p *Presenter) window(id overlay.ID) (*surfaceWindow, error) {
	sw, ok := p.windows[id]
	if !ok {
		return nil, fmt.Errorf("surface %d: no window", id)
	}
	return sw, nil
}

// Create implements overlay.Presenter.
func (p *Presenter) Create(id overlay.ID, spec overlay.Spec) error {
	if _, exists := p.windows[id]; exists {
		return fmt.Errorf("surface %d: already created", id)
	}
	xu := p.conn.XUtil
	win, err := xwindow.Generate(xu)
	if err != nil {
		return fmt.Errorf("generate window id: %w", err)
	}

	r := drawable(spec.Rect)
	evMask := pointerEventMask
	if spec.ClickThrough {
		evMask = 0
	}
	err = win.CreateChecked(p.conn.Root, r.X, r.Y, r.Width, r.Height,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		spec.Style.Color.Pixel(), 1, uint32(evMask))
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	if err := icccm.WmClassSet(xu, win.Id, &icccm.WmClass{Instance: "screenline", Class: "Screenline"}); err != nil {
		p.logger.Debug("x11: set WM_CLASS failed", "id", id, "error", err)
	}
	if err := icccm.WmNameSet(xu, win.Id, "screenline "+spec.Kind.String()); err != nil {
		p.logger.Debug("x11: set WM_NAME failed", "id", id, "error", err)
	}

	sw := &surfaceWindow{win: win, rect: r, style: spec.Style}
	p.windows[id] = sw
	p.connectPointer(id, win)

	p.applyBoundingShape(sw)
	if spec.ClickThrough {
		if err := p.setInputPassthrough(sw, true); err != nil {
			p.logger.Warn("x11: click-through unavailable", "id", id, "error", err)
		}
	}
	return p.SetOpacity(id, spec.Opacity)
}

// SetGeometry implements overlay.Presenter.
func (p *Presenter) SetGeometry(id overlay.ID, r geometry.Rect) error {
	sw, err := p.window(id)
	if err != nil {
		return err
	}
	r = drawable(r)
	resized := r.Width != sw.rect.Width || r.Height != sw.rect.Height
	sw.win.MoveResize(r.X, r.Y, r.Width, r.Height)
	sw.rect = r
	if resized {
		p.applyBoundingShape(sw)
	}
	return nil
}

// SetStyle implements overlay.Presenter.
func (p *Presenter) SetStyle(id overlay.ID, s overlay.Style) error {
	sw, err := p.window(id)
	if err != nil {
		return err
	}
	colorChanged := s.Color != sw.style.Color
	sw.style = s
	sw.win.Change(xproto.CwBackPixel, s.Color.Pixel())
	xproto.ClearArea(p.conn.XUtil.Conn(), true, sw.win.Id, 0, 0, 0, 0)
	p.applyBoundingShape(sw)
	if colorChanged && sw.mapped {
		// Alpha in the color scales the window opacity.
		return p.SetOpacity(id, sw.opacity)
	}
	return nil
}

// SetOpacity implements overlay.Presenter. Zero unmaps the window.
func (p *Presenter) SetOpacity(id overlay.ID, opacity float64) error {
	sw, err := p.window(id)
	if err != nil {
		return err
	}
	sw.opacity = opacity
	if opacity <= 0 {
		if sw.mapped {
			sw.win.Unmap()
			sw.mapped = false
		}
		return nil
	}
	effective := opacity * float64(sw.style.Color.A) / 0xFF
	if err := ewmh.WmWindowOpacitySet(p.conn.XUtil, sw.win.Id, effective); err != nil {
		return fmt.Errorf("set opacity: %w", err)
	}
	if !sw.mapped {
		sw.win.Map()
		sw.win.Stack(xproto.StackModeAbove)
		sw.mapped = true
	}
	return nil
}

// SetClickThrough implements overlay.Presenter.
func (p *Presenter) SetClickThrough(id overlay.ID, on bool) error {
	sw, err := p.window(id)
	if err != nil {
		return err
	}
	if err := p.setInputPassthrough(sw, on); err != nil {
		return err
	}
	mask := pointerEventMask
	if on {
		mask = 0
		// Click-through surfaces never own the pointer shape.
		sw.win.Change(xproto.CwCursor, uint32(xproto.CursorNone))
	}
	sw.win.Change(xproto.CwEventMask, uint32(mask))
	return nil
}

// SetTopmost implements overlay.Presenter. Override-redirect windows have no
// window manager keep-above state; on restacks them above their siblings and
// off is a no-op, so an off/on pair is one restack.
func (p *Presenter) SetTopmost(id overlay.ID, on bool) error {
	sw, err := p.window(id)
	if err != nil {
		return err
	}
	if on && sw.mapped {
		sw.win.Stack(xproto.StackModeAbove)
	}
	return nil
}

// Raise implements overlay.Presenter.
func (p *Presenter) Raise(id overlay.ID) error {
	sw, err := p.window(id)
	if err != nil {
		return err
	}
	if sw.mapped {
		return xproto.ConfigureWindowChecked(p.conn.XUtil.Conn(), sw.win.Id,
			xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove}).Check()
	}
	return nil
}

// SetCursor implements overlay.Presenter.
func (p *Presenter) SetCursor(id overlay.ID, mode geometry.DragMode) error {
	sw, err := p.window(id)
	if err != nil {
		return err
	}
	if sw.clickThrough {
		return nil
	}
	glyph := cursorGlyph(mode)
	cur, ok := p.cursors[glyph]
	if !ok {
		cur, err = xcursor.CreateCursor(p.conn.XUtil, glyph)
		if err != nil {
			return fmt.Errorf("create cursor: %w", err)
		}
		p.cursors[glyph] = cur
	}
	sw.win.Change(xproto.CwCursor, uint32(cur))
	return nil
}

// Destroy implements overlay.Presenter.
func (p *Presenter) Destroy(id overlay.ID) error {
	sw, err := p.window(id)
	if err != nil {
		return err
	}
	delete(p.windows, id)
	// Destroy detaches every xevent callback of the window.
	sw.win.Destroy()
	return nil
}

// Close destroys every window and frees cursors.
func (p *Presenter) Close() {
	for id := range p.windows {
		_ = p.Destroy(id)
	}
	for glyph, cur := range p.cursors {
		xproto.FreeCursor(p.conn.XUtil.Conn(), cur)
		delete(p.cursors, glyph)
	}
}

func (p *Presenter) setInputPassthrough(sw *surfaceWindow, on bool) error {
	if !p.conn.HasShape {
		if on {
			return fmt.Errorf("shape extension unavailable")
		}
		return nil
	}
	c := p.conn.XUtil.Conn()
	if on {
		// An empty input region lets every pointer event fall through.
		shape.Rectangles(c, shape.SoSet, shape.SkInput, xproto.ClipOrderingUnsorted, sw.win.Id, 0, 0, nil)
	} else {
		shape.Mask(c, shape.SoSet, shape.SkInput, sw.win.Id, 0, 0, xproto.PixmapNone)
	}
	sw.clickThrough = on
	return nil
}

func (p *Presenter) applyBoundingShape(sw *surfaceWindow) {
	if !p.conn.HasShape {
		return
	}
	c := p.conn.XUtil.Conn()
	rects := dashRects(sw.rect.Width, sw.rect.Height, sw.style)
	if rects == nil {
		shape.Mask(c, shape.SoSet, shape.SkBounding, sw.win.Id, 0, 0, xproto.PixmapNone)
		return
	}
	shape.Rectangles(c, shape.SoSet, shape.SkBounding, xproto.ClipOrderingUnsorted, sw.win.Id, 0, 0, rects)
}

func (p *Presenter) connectPointer(id overlay.ID, win *xwindow.Window) {
	xu := p.conn.XUtil
	emit := func(ev overlay.PointerEvent) {
		if p.onPointer != nil {
			p.onPointer(id, ev)
		}
	}
	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		if ev.Detail != xproto.ButtonIndex1 {
			return
		}
		emit(pointerEvent(overlay.PointerDown, ev.EventX, ev.EventY, ev.RootX, ev.RootY, ev.State, true))
	}).Connect(xu, win.Id)
	xevent.MotionNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		pressed := ev.State&xproto.KeyButMaskButton1 != 0
		emit(pointerEvent(overlay.PointerMove, ev.EventX, ev.EventY, ev.RootX, ev.RootY, ev.State, pressed))
	}).Connect(xu, win.Id)
	xevent.ButtonReleaseFun(func(_ *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		if ev.Detail != xproto.ButtonIndex1 {
			return
		}
		emit(pointerEvent(overlay.PointerUp, ev.EventX, ev.EventY, ev.RootX, ev.RootY, ev.State, false))
	}).Connect(xu, win.Id)
	xevent.LeaveNotifyFun(func(_ *xgbutil.XUtil, ev xevent.LeaveNotifyEvent) {
		pressed := ev.State&xproto.KeyButMaskButton1 != 0
		emit(pointerEvent(overlay.PointerLeave, ev.EventX, ev.EventY, ev.RootX, ev.RootY, ev.State, pressed))
	}).Connect(xu, win.Id)
}
