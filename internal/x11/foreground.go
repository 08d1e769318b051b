package x11

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/screenline/internal/topmost"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ForegroundSource reports activation of top-level windows by watching
// _NET_ACTIVE_WINDOW on the root window. Each subscription owns a private X
// connection and event loop, so callbacks arrive on that loop's goroutine.
type ForegroundSource struct {
	logger *slog.Logger
}

var _ topmost.ForegroundSource = (*ForegroundSource)(nil)

// NewForegroundSource creates a source for the display named by $DISPLAY.
func NewForegroundSource(logger *slog.Logger) *ForegroundSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForegroundSource{logger: logger}
}

// Subscribe implements topmost.ForegroundSource.
func (f *ForegroundSource) Subscribe(fn func(title string)) (func(), error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", topmost.ErrSubscribe, err)
	}
	fail := func(err error) (func(), error) {
		xu.Conn().Close()
		return nil, fmt.Errorf("%w: %v", topmost.ErrSubscribe, err)
	}

	if !supportsActiveWindow(xu) {
		return fail(fmt.Errorf("window manager does not publish _NET_ACTIVE_WINDOW"))
	}
	activeAtom, err := xprop.Atm(xu, "_NET_ACTIVE_WINDOW")
	if err != nil {
		return fail(err)
	}
	if err := xwindow.New(xu, xu.RootWin()).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fail(err)
	}
	w, err := newWaker(xu)
	if err != nil {
		return fail(err)
	}

	var last xproto.Window
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if ev.Atom != activeAtom {
			return
		}
		win, err := ewmh.ActiveWindowGet(xu)
		if err != nil || win == 0 || win == last {
			return
		}
		last = win
		fn(windowTitle(xu, win))
	}).Connect(xu, xu.RootWin())

	done := make(chan struct{})
	go func() {
		defer close(done)
		xevent.Main(xu)
		xu.Conn().Close()
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			xevent.Quit(xu)
			w.wake()
		})
	}
	f.logger.Debug("x11: watching foreground window")
	return cancel, nil
}

func supportsActiveWindow(xu *xgbutil.XUtil) bool {
	supported, err := ewmh.SupportedGet(xu)
	if err != nil {
		return false
	}
	for _, atom := range supported {
		if atom == "_NET_ACTIVE_WINDOW" {
			return true
		}
	}
	return false
}
